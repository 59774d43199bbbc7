package enclosure

import "math"

// Add returns the enclosure of x + y.
func Add(x, y *Var) (*Var, error) {
	if err := sameModel(x, y); err != nil {
		return nil, err
	}
	if x.cst && y.cst {
		out := x.constant(x.cv + y.cv)
		if out.mod == nil {
			out.mod = y.mod
		}
		return out, nil
	}
	if x.cst {
		return AddConst(y, x.cv)
	}
	if y.cst {
		return AddConst(x, y.cv)
	}
	if x.mod.options.UseShadow && (x.shadow.any() || y.shadow.any()) {
		return addAggregate(x, y)
	}
	out := x.clone()
	out.shadow = nil
	if x.mod.options.UseShadow {
		out.shadow = newShadowSet(x.mod.nvar)
	}
	for i, e := range y.slots {
		switch {
		case e == nil:
		case out.slots[i] == nil:
			out.slots[i] = e.Clone()
		default:
			if err := out.slots[i].Add(e); err != nil {
				return nil, errf(CodeInternal, "slot %d: %v", i, err)
			}
		}
	}
	out.compress()
	return out.collapseIfConstant(), nil
}

// AddConst returns the enclosure of x + c. The shift is spread evenly
// across the participating slots so the decomposition stays balanced.
func AddConst(x *Var, c float64) (*Var, error) {
	if x.cst {
		return x.constant(x.cv + c), nil
	}
	if c == 0 {
		return x.clone(), nil
	}
	out := x.clone()
	share := c / float64(out.NDep())
	for _, i := range out.Deps() {
		out.slots[i].AddConst(share)
		if out.shadow != nil {
			if cu := out.shadow.under[i]; !cu.Empty() {
				cu.AddConst(share)
			}
			if co := out.shadow.over[i]; !co.Empty() {
				co.AddConst(share)
			}
		}
	}
	return out, nil
}

// Sub returns the enclosure of x - y. With shadow tracking enabled,
// subtraction of two superpositions is not supported: the shadow
// aggregation heuristics are derived for addition only.
func Sub(x, y *Var) (*Var, error) {
	if err := sameModel(x, y); err != nil {
		return nil, err
	}
	if y.cst {
		return AddConst(x, -y.cv)
	}
	if !x.cst && x.mod.options.UseShadow {
		return nil, errf(CodeUnimplemented, "subtraction of superpositions with shadow tracking")
	}
	return Add(x, Neg(y))
}

// Neg returns the enclosure of -x, mirroring every estimator pair and
// swapping shadow roles.
func Neg(x *Var) *Var {
	if x.cst {
		return x.constant(-x.cv)
	}
	out := x.clone()
	for _, i := range out.Deps() {
		out.slots[i].Negate()
	}
	if out.shadow != nil {
		for _, c := range out.shadow.under {
			c.Scale(-1)
		}
		for _, c := range out.shadow.over {
			c.Scale(-1)
		}
		out.shadow.under, out.shadow.over = out.shadow.over, out.shadow.under
		out.shadow.underActive, out.shadow.overActive = out.shadow.overActive, out.shadow.underActive
	}
	return out
}

// MulConst returns the enclosure of c * x. A zero factor collapses to
// the constant 0; negative factors swap estimator and shadow roles.
func MulConst(x *Var, c float64) *Var {
	if x.cst {
		return x.constant(c * x.cv)
	}
	if c == 0 {
		return x.mod.Constant(0)
	}
	out := x.clone()
	for _, i := range out.Deps() {
		out.slots[i].Scale(c)
	}
	if out.shadow != nil {
		for _, cu := range out.shadow.under {
			cu.Scale(c)
		}
		for _, co := range out.shadow.over {
			co.Scale(c)
		}
		if c < 0 {
			out.shadow.under, out.shadow.over = out.shadow.over, out.shadow.under
			out.shadow.underActive, out.shadow.overActive = out.shadow.overActive, out.shadow.underActive
		}
	}
	return out
}

// DivConst returns the enclosure of x / c.
func DivConst(x *Var, c float64) (*Var, error) {
	if math.Abs(c) < compTol {
		return nil, errf(CodeDivision, "division by %g", c)
	}
	return MulConst(x, 1/c), nil
}
