package enclosure

import "math"

// The shadow-enhanced composition tracks a secondary sound
// under-decomposition next to the active one:
//
//	und = max{ sum(active_i), sum(shadow_i) }
//
// Rectifying a decomposition slot-wise needs the slot maxima sigma_i and
// their sum sigma_o: relu(sum z_i) >= sum relu(z_i - sigma_i + sigma_o)
// - (ndep-1)*sigma_o by monotonicity of the rectifier. The composition
// derives one rectified candidate from each decomposition and keeps the
// dominant pair.

// underSource tells which decomposition a rectified under-candidate is
// derived from.
type underSource int

const (
	fromActive underSource = iota
	fromShadow
)

// dominance is the outcome of the candidate comparison: which source
// feeds the new active under-estimator and which feeds the new shadow.
type dominance struct {
	active underSource
	shadow underSource
}

// chooseDominant picks the dominant pair among the four rectified
// candidates on a near-tie of the decomposition maxima. lbShaSha and
// lbActSha are the aggregate lower bounds of the shadow candidates
// derived from the shadow and active decompositions; ubActAct and
// ubShaAct are the aggregate upper bounds of the active candidates.
// The shadow slot goes to the greater lower bound, the active slot to
// the greater upper bound.
func chooseDominant(lbShaSha, lbActSha, ubActAct, ubShaAct float64) dominance {
	d := dominance{active: fromActive, shadow: fromActive}
	if lbShaSha >= lbActSha {
		d.shadow = fromShadow
	}
	if ubShaAct > ubActAct {
		d.active = fromShadow
	}
	return d
}

// shadowStats collects per-slot lower bounds and upper bounds of the
// under curves of one decomposition, with their sums.
type shadowStats struct {
	lb    []float64
	ub    []float64
	sumLb float64 // lambda of the decomposition
	sumUb float64 // sigma_o of the decomposition
}

func underStats(v *Var, src underSource) shadowStats {
	deps := v.Deps()
	st := shadowStats{
		lb: make([]float64, len(deps)),
		ub: make([]float64, len(deps)),
	}
	for k, i := range deps {
		c := v.slots[i].Under
		if src == fromShadow {
			c = v.shadow.under[i]
		}
		st.lb[k] = c.Lb()
		st.ub[k] = c.Ub()
		st.sumLb += st.lb[k]
		st.sumUb += st.ub[k]
	}
	return st
}

// globalOffset is the aggregate slack (ndep-1)/ndep * sigma_o the
// rectified shadow decomposition must give back, clamped at zero.
func globalOffset(sigmaO float64, ndep int) float64 {
	return math.Max((1-1/float64(ndep))*sigmaO, 0)
}

// candidateLb returns the aggregate lower bound of the rectified shadow
// candidate derived from a decomposition with the given per-slot stats.
func candidateLb(st shadowStats, ndep int) float64 {
	lb := -float64(ndep-1) * st.sumUb
	for k := range st.lb {
		lb += math.Max(0, st.lb[k]-st.ub[k]+st.sumUb)
	}
	return lb
}

// candidateUb returns the aggregate upper bound of the rectified active
// candidate derived from a decomposition with the given per-slot stats.
func candidateUb(st shadowStats, ndep int) float64 {
	var ub float64
	for k := range st.lb {
		ub += math.Max(0, st.ub[k]-st.lb[k]+st.sumLb)
	}
	return ub
}

// reluWithShadow rectifies v in place, maintaining the shadow
// decomposition. The caller has ruled out the collapse-to-zero case.
func reluWithShadow(v *Var) {
	deps := v.Deps()
	ndep := len(deps)
	sh := v.shadow
	log := v.mod.logger

	act := underStats(v, fromActive)
	lambda, mu := act.sumLb, 0.0
	hi := make([]float64, len(deps)) // over-estimator maxima, kept for the over update
	for k, i := range deps {
		hi[k] = v.slots[i].Over.Ub()
		mu += hi[k]
	}

	// Step 1: the rectifier passes the active decomposition through.
	if lambda > -compTol {
		if !sh.underActive {
			log.Debugf("relu/shadow: pass-through, no shadow")
			return
		}
		sha := underStats(v, fromShadow)
		if sha.sumLb > -compTol {
			log.Debugf("relu/shadow: pass-through, shadow also nonnegative")
			return
		}
		// The shadow is truncated: rectify it against itself.
		if sha.sumUb < compTol {
			for _, i := range deps {
				sh.under[i].SetZero()
			}
			sh.underActive = false
			log.Debugf("relu/shadow: shadow collapsed")
			return
		}
		off := globalOffset(sha.sumUb, ndep)
		for k, i := range deps {
			sh.under[i] = shiftRelu(sh.under[i], -sha.ub[k]+sha.sumUb, true)
			sh.under[i].AddConst(-off)
		}
		log.Debugf("relu/shadow: re-derived shadow, offset=%g", off)
		return
	}

	// Step 2: the active decomposition is truncated.
	sigmaO := act.sumUb

	if !sh.underActive {
		if sigmaO < 0 {
			for _, i := range deps {
				v.slots[i].Under.SetZero()
			}
		} else {
			off := globalOffset(sigmaO, ndep)
			for k, i := range deps {
				sh.under[i] = shiftRelu(v.slots[i].Under, -act.ub[k]+sigmaO, true)
				sh.under[i].AddConst(-off)
				v.slots[i].Under.AddConst(-act.lb[k] + lambda)
				v.slots[i].Under.Relu(true)
			}
			sh.underActive = true
			log.Debugf("relu/shadow: derived shadow, sigmaO=%g offset=%g", sigmaO, off)
		}
		updateOvers(v, hi, mu)
		return
	}

	sha := underStats(v, fromShadow)

	switch {
	case sigmaO <= 0:
		// The active under-estimator is fully truncated; only the
		// shadow-of-shadow candidate can survive.
		for _, i := range deps {
			v.slots[i].Under.SetZero()
		}
		if sha.sumUb <= 0 {
			for _, i := range deps {
				sh.under[i].SetZero()
			}
			sh.underActive = false
		} else {
			off := globalOffset(sha.sumUb, ndep)
			for k, i := range deps {
				sh.under[i] = shiftRelu(sh.under[i], -sha.ub[k]+sha.sumUb, true)
				sh.under[i].AddConst(-off)
			}
		}

	case sha.sumUb > sigmaO+compTol:
		// Shadow clearly reaches higher: active from active, shadow
		// re-derived from the shadow.
		rectifyUnder(v, dominance{active: fromActive, shadow: fromShadow}, act, sha)

	case sigmaO > sha.sumUb+compTol:
		// Active clearly reaches higher: both candidates from active.
		rectifyUnder(v, dominance{active: fromActive, shadow: fromActive}, act, sha)

	default:
		// Near-tie of the maxima: compare the rectified candidates.
		lbShaSha := candidateLb(sha, ndep)
		lbActSha := candidateLb(act, ndep)
		if lambda > sha.sumLb {
			// The active decomposition keeps the greatest minimum, so
			// the active slot stays with it.
			d := dominance{active: fromActive, shadow: fromActive}
			if lbShaSha >= lbActSha {
				d.shadow = fromShadow
			}
			rectifyUnder(v, d, act, sha)
		} else {
			ubActAct := candidateUb(act, ndep)
			ubShaAct := candidateUb(sha, ndep)
			d := chooseDominant(lbShaSha, lbActSha, ubActAct, ubShaAct)
			log.Debugf("relu/shadow: tie lbShaSha=%g lbActSha=%g ubActAct=%g ubShaAct=%g act=%d sha=%d",
				lbShaSha, lbActSha, ubActAct, ubShaAct, d.active, d.shadow)
			rectifyUnder(v, d, act, sha)
		}
	}

	updateOvers(v, hi, mu)
}

// rectifyUnder assembles the new active and shadow under-estimators from
// the chosen sources. Candidates are built value-first so a source can
// feed both slots.
func rectifyUnder(v *Var, d dominance, act, sha shadowStats) {
	deps := v.Deps()
	ndep := len(deps)

	srcStats := func(s underSource) shadowStats {
		if s == fromShadow {
			return sha
		}
		return act
	}
	aSt, sSt := srcStats(d.active), srcStats(d.shadow)
	off := globalOffset(sSt.sumUb, ndep)

	for k, i := range deps {
		aCurve := v.slots[i].Under
		if d.active == fromShadow {
			aCurve = v.shadow.under[i]
		}
		sCurve := v.slots[i].Under
		if d.shadow == fromShadow {
			sCurve = v.shadow.under[i]
		}
		newActive := shiftRelu(aCurve, -aSt.lb[k]+aSt.sumLb, true)
		newShadow := shiftRelu(sCurve, -sSt.ub[k]+sSt.sumUb, true)
		newShadow.AddConst(-off)
		v.slots[i].Under = newActive
		v.shadow.under[i] = newShadow
	}
}

// updateOvers rectifies the active over-estimators with a proportional
// slack allocation, and the shadow over-estimators when live. hi and mu
// are the pre-composition over maxima and their sum.
func updateOvers(v *Var, hi []float64, mu float64) {
	deps := v.Deps()
	ndep := len(deps)

	r := make([]float64, len(deps))
	var sumR float64
	for k, i := range deps {
		r[k] = hi[k] - v.slots[i].Over.Lb()
		sumR += r[k]
	}
	for k, i := range deps {
		theta := allocShare(r[k], sumR, ndep)
		v.slots[i].Over.AddConst(-hi[k] + theta*mu)
		v.slots[i].Over.Relu(false)
	}

	if v.shadow == nil || !v.shadow.overActive {
		return
	}
	shi := make([]float64, len(deps))
	var smu, sumRS float64
	rs := make([]float64, len(deps))
	for k, i := range deps {
		c := v.shadow.over[i]
		shi[k] = c.Ub()
		smu += shi[k]
		rs[k] = shi[k] - c.Lb()
		sumRS += rs[k]
	}
	for k, i := range deps {
		theta := allocShare(rs[k], sumRS, ndep)
		v.shadow.over[i] = shiftRelu(v.shadow.over[i], -shi[k]+theta*smu, false)
	}
}
