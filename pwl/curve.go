// Package pwl implements continuous univariate piecewise-linear curves
// and the under/over estimator pairs the enclosure engine composes.
package pwl

import (
	"fmt"
	"math"

	"github.com/speakeasy-api/superpose"
)

// domTol is the slack allowed when matching curve domains and clamping
// evaluation points to the domain.
const domTol = 1e-12

// Curve is a continuous piecewise-linear function on the closed domain
// [xs[0], xs[len-1]], stored as strictly increasing breakpoint abscissae
// with their values. A nil Curve is the empty curve.
type Curve struct {
	xs []float64
	ys []float64
}

// FromPoints builds a curve from breakpoints. xs must be strictly
// increasing with at least two entries and len(xs) == len(ys).
func FromPoints(xs, ys []float64) (*Curve, error) {
	if len(xs) < 2 {
		return nil, fmt.Errorf("pwl: need at least 2 breakpoints, got %d", len(xs))
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("pwl: breakpoint count mismatch: %d abscissae, %d values", len(xs), len(ys))
	}
	for k := 1; k < len(xs); k++ {
		if xs[k] <= xs[k-1] {
			return nil, fmt.Errorf("pwl: abscissae not strictly increasing at index %d", k)
		}
	}
	c := &Curve{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
	}
	return c, nil
}

// Identity returns the curve y = x on dom.
func Identity(dom superpose.Interval) *Curve {
	if dom.Hi <= dom.Lo {
		dom.Hi = dom.Lo + domTol
	}
	return &Curve{
		xs: []float64{dom.Lo, dom.Hi},
		ys: []float64{dom.Lo, dom.Hi},
	}
}

// Constant returns the curve y = v on dom.
func Constant(dom superpose.Interval, v float64) *Curve {
	if dom.Hi <= dom.Lo {
		dom.Hi = dom.Lo + domTol
	}
	return &Curve{
		xs: []float64{dom.Lo, dom.Hi},
		ys: []float64{v, v},
	}
}

// Empty reports whether the curve has no breakpoints.
func (c *Curve) Empty() bool {
	return c == nil || len(c.xs) == 0
}

// Domain returns the abscissa range of the curve.
func (c *Curve) Domain() superpose.Interval {
	if c.Empty() {
		return superpose.Interval{}
	}
	return superpose.Interval{Lo: c.xs[0], Hi: c.xs[len(c.xs)-1]}
}

// Len returns the number of breakpoints.
func (c *Curve) Len() int {
	if c == nil {
		return 0
	}
	return len(c.xs)
}

// Points returns copies of the breakpoint slices.
func (c *Curve) Points() (xs, ys []float64) {
	if c.Empty() {
		return nil, nil
	}
	return append([]float64(nil), c.xs...), append([]float64(nil), c.ys...)
}

// Lb returns the minimum value of the curve over its domain. Piecewise
// linearity puts extrema at breakpoints.
func (c *Curve) Lb() float64 {
	if c.Empty() {
		return math.Inf(1)
	}
	lb := c.ys[0]
	for _, y := range c.ys[1:] {
		if y < lb {
			lb = y
		}
	}
	return lb
}

// Ub returns the maximum value of the curve over its domain.
func (c *Curve) Ub() float64 {
	if c.Empty() {
		return math.Inf(-1)
	}
	ub := c.ys[0]
	for _, y := range c.ys[1:] {
		if y > ub {
			ub = y
		}
	}
	return ub
}

// ConstantValue reports whether the curve is constant, and its value.
func (c *Curve) ConstantValue() (float64, bool) {
	if c.Empty() {
		return 0, false
	}
	v := c.ys[0]
	for _, y := range c.ys[1:] {
		if y != v {
			return 0, false
		}
	}
	return v, true
}

// Eval evaluates the curve at x by linear interpolation. Points outside
// the domain are clamped to the nearest endpoint.
func (c *Curve) Eval(x float64) float64 {
	if c.Empty() {
		return 0
	}
	n := len(c.xs)
	if x <= c.xs[0] {
		return c.ys[0]
	}
	if x >= c.xs[n-1] {
		return c.ys[n-1]
	}
	// Binary search for the segment containing x.
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if c.xs[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	x0, x1 := c.xs[lo], c.xs[hi]
	y0, y1 := c.ys[lo], c.ys[hi]
	t := (x - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
}

// Clone returns a deep copy of the curve.
func (c *Curve) Clone() *Curve {
	if c.Empty() {
		return nil
	}
	return &Curve{
		xs: append([]float64(nil), c.xs...),
		ys: append([]float64(nil), c.ys...),
	}
}

// AddConst shifts the curve by v in place.
func (c *Curve) AddConst(v float64) {
	if c.Empty() {
		return
	}
	for k := range c.ys {
		c.ys[k] += v
	}
}

// Scale multiplies the curve by v in place. The caller is responsible
// for swapping estimator roles when v is negative.
func (c *Curve) Scale(v float64) {
	if c.Empty() {
		return
	}
	for k := range c.ys {
		c.ys[k] *= v
	}
}

// SetZero replaces the curve with the constant 0 on its domain.
func (c *Curve) SetZero() {
	if c.Empty() {
		return
	}
	dom := c.Domain()
	c.xs = []float64{dom.Lo, dom.Hi}
	c.ys = []float64{0, 0}
}

// AddCurve adds o to c in place. The domains must agree within a small
// slack; the result carries the union of both breakpoint sets.
func (c *Curve) AddCurve(o *Curve) error {
	if c.Empty() || o.Empty() {
		return fmt.Errorf("pwl: cannot add empty curve")
	}
	cd, od := c.Domain(), o.Domain()
	if math.Abs(cd.Lo-od.Lo) > domTol || math.Abs(cd.Hi-od.Hi) > domTol {
		return fmt.Errorf("pwl: domain mismatch %v vs %v", cd, od)
	}
	xs := mergeAbscissae(c.xs, o.xs)
	ys := make([]float64, len(xs))
	for k, x := range xs {
		ys[k] = c.Eval(x) + o.Eval(x)
	}
	c.xs, c.ys = xs, ys
	return nil
}

// mergeAbscissae returns the sorted union of two increasing slices,
// collapsing entries closer than domTol.
func mergeAbscissae(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	i, j := 0, 0
	push := func(x float64) {
		if len(out) == 0 || x-out[len(out)-1] > domTol {
			out = append(out, x)
		}
	}
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			push(a[i])
			i++
		} else {
			push(b[j])
			j++
		}
	}
	for ; i < len(a); i++ {
		push(a[i])
	}
	for ; j < len(b); j++ {
		push(b[j])
	}
	// The last merged point must coincide with the shared domain end.
	if n := len(out); n >= 2 {
		end := math.Max(a[len(a)-1], b[len(b)-1])
		out[n-1] = end
	}
	return out
}

// Relu replaces the curve with max(0, curve) in place, inserting
// breakpoints at zero crossings. The result is exact except on
// abscissae coinciding within domTol, which round to the sound side:
// down keeps the minimum of coincident values (under-estimators), up
// keeps the maximum (over-estimators).
func (c *Curve) Relu(down bool) {
	if c.Empty() {
		return
	}
	xs := make([]float64, 0, len(c.xs)+4)
	ys := make([]float64, 0, len(c.xs)+4)
	push := func(x, y float64) {
		if n := len(xs); n > 0 && x-xs[n-1] <= domTol {
			if down {
				ys[n-1] = math.Min(ys[n-1], y)
			} else {
				ys[n-1] = math.Max(ys[n-1], y)
			}
			return
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	for k := 0; k < len(c.xs); k++ {
		if k > 0 {
			y0, y1 := c.ys[k-1], c.ys[k]
			if (y0 < 0 && y1 > 0) || (y0 > 0 && y1 < 0) {
				x0, x1 := c.xs[k-1], c.xs[k]
				xc := x0 + (0-y0)*(x1-x0)/(y1-y0)
				push(xc, 0)
			}
		}
		push(c.xs[k], math.Max(0, c.ys[k]))
	}
	if len(xs) < 2 {
		dom := c.Domain()
		xs = []float64{dom.Lo, dom.Hi}
		ys = []float64{math.Max(0, c.ys[0]), math.Max(0, c.ys[len(c.ys)-1])}
	}
	c.xs, c.ys = xs, ys
}

// Compress reduces the curve to at most maxPts breakpoints. Interior
// points are removed greedily by smallest chord error; whenever a removal
// would move the curve in the unsound direction, the whole curve is
// shifted by the removal error instead (down for under-estimators, up
// for over-estimators), so the result always remains a valid estimator.
func (c *Curve) Compress(maxPts int, down bool) {
	if c.Empty() || maxPts < 2 || len(c.xs) <= maxPts {
		return
	}
	offset := 0.0
	for len(c.xs) > maxPts {
		// Find the interior point with the smallest chord error.
		best, bestErr := -1, math.Inf(1)
		for k := 1; k < len(c.xs)-1; k++ {
			chord := chordAt(c.xs[k-1], c.ys[k-1], c.xs[k+1], c.ys[k+1], c.xs[k])
			e := math.Abs(chord - c.ys[k])
			if e < bestErr {
				best, bestErr = k, e
			}
		}
		chord := chordAt(c.xs[best-1], c.ys[best-1], c.xs[best+1], c.ys[best+1], c.xs[best])
		if down && chord > c.ys[best] {
			offset -= chord - c.ys[best]
		} else if !down && chord < c.ys[best] {
			offset += c.ys[best] - chord
		}
		c.xs = append(c.xs[:best], c.xs[best+1:]...)
		c.ys = append(c.ys[:best], c.ys[best+1:]...)
	}
	if offset != 0 {
		c.AddConst(offset)
	}
}

func chordAt(x0, y0, x1, y1, x float64) float64 {
	t := (x - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
}
