package pwl

import (
	"fmt"

	"github.com/speakeasy-api/superpose"
)

// Estimators is a sound under/over PWL estimator pair for one univariate
// component of a superposition: Under(x) <= g(x) <= Over(x) on the shared
// domain.
type Estimators struct {
	Under *Curve
	Over  *Curve
}

// IdentityPair returns the exact pair for g(x) = x on dom.
func IdentityPair(dom superpose.Interval) *Estimators {
	return &Estimators{Under: Identity(dom), Over: Identity(dom)}
}

// ConstantPair returns the exact pair for g(x) = v on dom.
func ConstantPair(dom superpose.Interval, v float64) *Estimators {
	return &Estimators{Under: Constant(dom, v), Over: Constant(dom, v)}
}

// NewEstimators validates and wraps an externally produced pair. The
// curves must share a domain and satisfy Under <= Over at every merged
// breakpoint.
func NewEstimators(under, over *Curve) (*Estimators, error) {
	if under.Empty() || over.Empty() {
		return nil, fmt.Errorf("pwl: estimator pair needs both curves")
	}
	ud, od := under.Domain(), over.Domain()
	if !ud.Encloses(od, domTol) || !od.Encloses(ud, domTol) {
		return nil, fmt.Errorf("pwl: estimator domain mismatch %v vs %v", ud, od)
	}
	for _, x := range mergeAbscissae(under.xs, over.xs) {
		if under.Eval(x) > over.Eval(x)+domTol {
			return nil, fmt.Errorf("pwl: under-estimator exceeds over-estimator at x=%g", x)
		}
	}
	return &Estimators{Under: under.Clone(), Over: over.Clone()}, nil
}

// Clone returns a deep copy of the pair.
func (e *Estimators) Clone() *Estimators {
	if e == nil {
		return nil
	}
	return &Estimators{Under: e.Under.Clone(), Over: e.Over.Clone()}
}

// Domain returns the shared abscissa range.
func (e *Estimators) Domain() superpose.Interval {
	return e.Under.Domain()
}

// Bounds returns [Under.Lb(), Over.Ub()], the slot's contribution range.
func (e *Estimators) Bounds() superpose.Interval {
	return superpose.Interval{Lo: e.Under.Lb(), Hi: e.Over.Ub()}
}

// Width returns Over.Ub() - Under.Lb().
func (e *Estimators) Width() float64 {
	return e.Over.Ub() - e.Under.Lb()
}

// Add adds o into e in place.
func (e *Estimators) Add(o *Estimators) error {
	if err := e.Under.AddCurve(o.Under); err != nil {
		return err
	}
	return e.Over.AddCurve(o.Over)
}

// AddConst shifts both curves by v.
func (e *Estimators) AddConst(v float64) {
	e.Under.AddConst(v)
	e.Over.AddConst(v)
}

// Scale multiplies both curves by v, swapping roles when v is negative
// so the invariant Under <= Over is preserved.
func (e *Estimators) Scale(v float64) {
	e.Under.Scale(v)
	e.Over.Scale(v)
	if v < 0 {
		e.Under, e.Over = e.Over, e.Under
	}
}

// Negate mirrors the pair.
func (e *Estimators) Negate() {
	e.Scale(-1)
}

// SetZero collapses both curves to the constant 0.
func (e *Estimators) SetZero() {
	e.Under.SetZero()
	e.Over.SetZero()
}

// Compress caps both curves at maxPts breakpoints, rounding soundly
// outward. maxPts < 2 leaves the pair untouched.
func (e *Estimators) Compress(maxPts int) {
	e.Under.Compress(maxPts, true)
	e.Over.Compress(maxPts, false)
}
