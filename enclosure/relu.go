package enclosure

import (
	"math"

	"github.com/speakeasy-api/superpose/pwl"
)

// Relu returns the enclosure of max(0, x).
//
// Without shadow tracking: a nonnegative input passes through, a
// nonpositive input collapses to the constant 0, and otherwise the
// asymmetric remainder composition shifts every slot so the rectifier
// can be applied per slot while the sum stays a valid enclosure.
//
// With shadow tracking the composition additionally derives a secondary
// under-decomposition and keeps whichever of the active/shadow
// candidates dominates.
func Relu(x *Var) (*Var, error) {
	if x.cst {
		return x.constant(math.Max(x.cv, 0)), nil
	}
	b, err := x.Bound()
	if err != nil {
		return nil, err
	}
	if x.mod.options.UseShadow {
		if b.Hi < compTol {
			return x.mod.Constant(0), nil
		}
		out := x.clone()
		if out.shadow == nil {
			out.shadow = newShadowSet(x.mod.nvar)
		}
		reluWithShadow(out)
		out.compress()
		return out, nil
	}
	if b.Lo > -compTol {
		return x.clone(), nil
	}
	if b.Hi < compTol {
		return x.mod.Constant(0), nil
	}
	out := x.clone()
	asymRelu(out)
	out.compress()
	return out, nil
}

// shiftRelu returns relu(c + off) as a fresh curve. down is the
// rectifier's rounding side: true for under-estimators, false for
// over-estimators.
func shiftRelu(c *pwl.Curve, off float64, down bool) *pwl.Curve {
	out := c.Clone()
	out.AddConst(off)
	out.Relu(down)
	return out
}

// asymRelu rectifies every slot in place. Under-estimators are anchored
// at the total lower bound lambda; over-estimators receive a share of
// the total upper bound mu proportional to their reducible range.
func asymRelu(v *Var) {
	s := takeSnapshot(v)
	lambda, mu := s.sumLo, s.sumHi

	// Reducible over range per slot.
	r := make([]float64, len(s.idx))
	var sumR float64
	for k, i := range s.idx {
		r[k] = s.hi[k] - v.slots[i].Over.Lb()
		sumR += r[k]
	}
	v.mod.logger.Debugf("relu: lambda=%g mu=%g ndep=%d", lambda, mu, len(s.idx))

	for k, i := range s.idx {
		e := v.slots[i]
		e.Under.AddConst(-s.lo[k] + lambda)
		e.Under.Relu(true)

		theta := allocShare(r[k], sumR, len(s.idx))
		e.Over.AddConst(-s.hi[k] + theta*mu)
		e.Over.Relu(false)
	}
}

// allocShare returns the proportional slack share, falling back to a
// uniform split when the total reducible range vanishes.
func allocShare(r, sumR float64, ndep int) float64 {
	if sumR <= compTol {
		return 1 / float64(ndep)
	}
	return r / sumR
}
