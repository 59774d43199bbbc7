package enclosure

import (
	"github.com/speakeasy-api/superpose"
)

// snapshot is the per-composition bound state: the under lower bound and
// over upper bound of every participating slot, with their sums. It is
// computed explicitly where needed and never cached on the variable.
type snapshot struct {
	idx []int
	lo  []float64 // under-estimator lower bound per slot
	hi  []float64 // over-estimator upper bound per slot

	sumLo float64
	sumHi float64
}

func takeSnapshot(v *Var) snapshot {
	deps := v.Deps()
	s := snapshot{
		idx: deps,
		lo:  make([]float64, len(deps)),
		hi:  make([]float64, len(deps)),
	}
	for k, i := range deps {
		e := v.slots[i]
		s.lo[k] = e.Under.Lb()
		s.hi[k] = e.Over.Ub()
		s.sumLo += s.lo[k]
		s.sumHi += s.hi[k]
	}
	return s
}

// orient returns [lo, hi], silently reorienting inversions within
// 1e2*compTol. Wider inversions indicate corrupted state.
func orient(lo, hi float64) (superpose.Interval, error) {
	if lo > hi {
		if lo-hi > 1e2*compTol {
			return superpose.Interval{}, errf(CodeInternal, "inverted bound [%g, %g]", lo, hi)
		}
		lo, hi = hi, lo
	}
	return superpose.Interval{Lo: lo, Hi: hi}, nil
}

// Bound returns the enclosure interval of the variable: the sum of the
// per-slot estimator ranges.
func (v *Var) Bound() (superpose.Interval, error) {
	if v.cst {
		return superpose.Point(v.cv), nil
	}
	s := takeSnapshot(v)
	if len(s.idx) == 0 {
		return superpose.Interval{}, errf(CodeInternal, "variable has no dependencies and no value")
	}
	return orient(s.sumLo, s.sumHi)
}

// Eval returns the enclosure of the variable at a point. point must hold
// one coordinate per model variable. When a shadow decomposition is
// live, its evaluation intersects the active one.
func (v *Var) Eval(point []float64) (superpose.Interval, error) {
	if v.cst {
		return superpose.Point(v.cv), nil
	}
	if len(point) != v.mod.nvar {
		return superpose.Interval{}, errf(CodeIndex, "point has %d coordinates, model has %d", len(point), v.mod.nvar)
	}
	var lo, hi float64
	for _, i := range v.Deps() {
		e := v.slots[i]
		lo += e.Under.Eval(point[i])
		hi += e.Over.Eval(point[i])
	}
	if v.shadow != nil {
		if v.shadow.underActive {
			var slo float64
			for _, i := range v.Deps() {
				if c := v.shadow.under[i]; !c.Empty() {
					slo += c.Eval(point[i])
				}
			}
			if slo > lo {
				lo = slo
			}
		}
		if v.shadow.overActive {
			var shi float64
			for _, i := range v.Deps() {
				if c := v.shadow.over[i]; !c.Empty() {
					shi += c.Eval(point[i])
				}
			}
			if shi < hi {
				hi = shi
			}
		}
	}
	return orient(lo, hi)
}
