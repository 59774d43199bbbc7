package enclosure

import (
	"math"

	"github.com/speakeasy-api/superpose/pwl"
)

// Addition of shadow-carrying superpositions: each side contributes its
// active decomposition and, when live, its shadow one. The sums of every
// cross-combination are themselves sound, so the aggregation scores all
// of them and installs the best as the new active decomposition with the
// runner-up as the new shadow.

// aggCandidate is one cross-combination of under (or over) curves,
// indexed by variable.
type aggCandidate struct {
	aFromShadow bool
	bFromShadow bool
	curves      []*pwl.Curve

	sumLb float64
	sumUb float64
}

// crossSum builds the candidate taking A's curves from aSha when
// aFromShadow (else aAct), same for B. Slots present on one side only
// copy that side's contribution.
func crossSum(nvar int, aAct, aSha, bAct, bSha []*pwl.Curve, aFromShadow, bFromShadow bool) (aggCandidate, error) {
	c := aggCandidate{
		aFromShadow: aFromShadow,
		bFromShadow: bFromShadow,
		curves:      make([]*pwl.Curve, nvar),
	}
	pick := func(act, sha []*pwl.Curve, fromShadow bool, i int) *pwl.Curve {
		if fromShadow {
			return sha[i]
		}
		return act[i]
	}
	for i := 0; i < nvar; i++ {
		a := pick(aAct, aSha, aFromShadow, i)
		b := pick(bAct, bSha, bFromShadow, i)
		switch {
		case !a.Empty() && !b.Empty():
			sum := a.Clone()
			if err := sum.AddCurve(b); err != nil {
				return c, errf(CodeInternal, "slot %d: %v", i, err)
			}
			c.curves[i] = sum
		case !a.Empty():
			c.curves[i] = a.Clone()
		case !b.Empty():
			c.curves[i] = b.Clone()
		}
		if cv := c.curves[i]; !cv.Empty() {
			c.sumLb += cv.Lb()
			c.sumUb += cv.Ub()
		}
	}
	return c, nil
}

// sideCurves returns one decomposition of v (active or shadow, under or
// over) as a per-variable curve slice.
func sideCurves(v *Var, over, shadow bool) []*pwl.Curve {
	out := make([]*pwl.Curve, v.mod.nvar)
	for i, e := range v.slots {
		if e == nil {
			continue
		}
		switch {
		case shadow && over:
			out[i] = v.shadow.over[i]
		case shadow:
			out[i] = v.shadow.under[i]
		case over:
			out[i] = e.Over
		default:
			out[i] = e.Under
		}
	}
	return out
}

// buildCandidates enumerates the live cross-combinations for one side
// (under or over). The plain active+active sum is always candidate 0.
func buildCandidates(x, y *Var, over bool) ([]aggCandidate, error) {
	xSha := over && x.shadow.any() && x.shadow.overActive || !over && x.shadow.any() && x.shadow.underActive
	ySha := over && y.shadow.any() && y.shadow.overActive || !over && y.shadow.any() && y.shadow.underActive

	aAct := sideCurves(x, over, false)
	bAct := sideCurves(y, over, false)
	var aShaC, bShaC []*pwl.Curve
	if xSha {
		aShaC = sideCurves(x, over, true)
	}
	if ySha {
		bShaC = sideCurves(y, over, true)
	}

	combos := [][2]bool{{false, false}}
	if xSha {
		combos = append(combos, [2]bool{true, false})
	}
	if ySha {
		combos = append(combos, [2]bool{false, true})
	}
	if xSha && ySha {
		combos = append(combos, [2]bool{true, true})
	}

	out := make([]aggCandidate, 0, len(combos))
	for _, cb := range combos {
		c, err := crossSum(x.mod.nvar, aAct, aShaC, bAct, bShaC, cb[0], cb[1])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// selectUnder picks the new active under decomposition (greatest summed
// minimum, ties broken by greater maximum) and the runner-up shadow
// (greatest summed maximum among the rest).
func selectUnder(cands []aggCandidate) (active, shadow int) {
	active = 0
	for i := 1; i < len(cands); i++ {
		switch {
		case cands[i].sumLb > cands[active].sumLb:
			active = i
		case cands[i].sumLb == cands[active].sumLb && cands[i].sumUb > cands[active].sumUb:
			active = i
		}
	}
	shadow = -1
	best := math.Inf(-1)
	for i := range cands {
		if i == active {
			continue
		}
		if cands[i].sumUb >= best {
			best = cands[i].sumUb
			shadow = i
		}
	}
	return active, shadow
}

// selectOver picks the new active over decomposition (least summed
// maximum, ties broken by lesser minimum) and the runner-up shadow
// (least summed minimum among the rest).
func selectOver(cands []aggCandidate) (active, shadow int) {
	active = 0
	for i := 1; i < len(cands); i++ {
		switch {
		case cands[i].sumUb < cands[active].sumUb:
			active = i
		case cands[i].sumUb == cands[active].sumUb && cands[i].sumLb < cands[active].sumLb:
			active = i
		}
	}
	shadow = -1
	best := math.Inf(1)
	for i := range cands {
		if i == active {
			continue
		}
		if cands[i].sumLb <= best {
			best = cands[i].sumLb
			shadow = i
		}
	}
	return active, shadow
}

// addAggregate adds two superpositions, aggregating their shadow
// decompositions. Called with at least one live shadow on either side.
func addAggregate(x, y *Var) (*Var, error) {
	mod := x.mod
	out := &Var{mod: mod, slots: make([]*pwl.Estimators, mod.nvar), shadow: newShadowSet(mod.nvar)}

	underLive := x.shadow.any() && x.shadow.underActive || y.shadow.any() && y.shadow.underActive
	overLive := x.shadow.any() && x.shadow.overActive || y.shadow.any() && y.shadow.overActive

	underCands, err := buildCandidates(x, y, false)
	if err != nil {
		return nil, err
	}
	overCands, err := buildCandidates(x, y, true)
	if err != nil {
		return nil, err
	}

	uAct, uSha := 0, -1
	if underLive {
		uAct, uSha = selectUnder(underCands)
	}
	oAct, oSha := 0, -1
	if overLive {
		oAct, oSha = selectOver(overCands)
	}
	mod.logger.Debugf("add/aggregate: under act=%d sha=%d over act=%d sha=%d", uAct, uSha, oAct, oSha)

	for i := 0; i < mod.nvar; i++ {
		u := underCands[uAct].curves[i]
		o := overCands[oAct].curves[i]
		if u.Empty() && o.Empty() {
			continue
		}
		if u.Empty() || o.Empty() {
			return nil, errf(CodeInternal, "slot %d: estimators out of step", i)
		}
		out.slots[i] = &pwl.Estimators{Under: u, Over: o}
		if uSha >= 0 {
			out.shadow.under[i] = underCands[uSha].curves[i]
		}
		if oSha >= 0 {
			out.shadow.over[i] = overCands[oSha].curves[i]
		}
	}
	out.shadow.underActive = uSha >= 0
	out.shadow.overActive = oSha >= 0
	out.compress()
	return out, nil
}
