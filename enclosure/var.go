package enclosure

import (
	"github.com/speakeasy-api/superpose"
	"github.com/speakeasy-api/superpose/pwl"
)

// Var is an enclosure variable: either a constant, or a superposition of
// univariate estimator pairs indexed by the model's variables. Vars are
// immutable from the caller's point of view; every operation returns a
// new Var.
type Var struct {
	mod *Model

	cst bool
	cv  float64

	// slots is indexed by variable; a nil entry means the variable does
	// not participate. len(slots) == mod.nvar for non-constant vars.
	slots []*pwl.Estimators

	// shadow carries the secondary decomposition when UseShadow is on.
	shadow *shadowSet
}

// shadowSet is a secondary sound decomposition tracked next to the
// active one. The active flags mark which side currently carries a live
// shadow candidate.
type shadowSet struct {
	under []*pwl.Curve
	over  []*pwl.Curve

	underActive bool
	overActive  bool
}

func newShadowSet(nvar int) *shadowSet {
	return &shadowSet{
		under: make([]*pwl.Curve, nvar),
		over:  make([]*pwl.Curve, nvar),
	}
}

func (s *shadowSet) clone() *shadowSet {
	if s == nil {
		return nil
	}
	c := &shadowSet{
		under:       make([]*pwl.Curve, len(s.under)),
		over:        make([]*pwl.Curve, len(s.over)),
		underActive: s.underActive,
		overActive:  s.overActive,
	}
	for i, u := range s.under {
		c.under[i] = u.Clone()
	}
	for i, o := range s.over {
		c.over[i] = o.Clone()
	}
	return c
}

func (s *shadowSet) any() bool {
	return s != nil && (s.underActive || s.overActive)
}

// Var registers variable i on the range dom and returns the exact
// enclosure of the coordinate function x_i. Point ranges degrade to
// constants.
func (m *Model) Var(i int, dom superpose.Interval) (*Var, error) {
	if err := m.register(i, dom); err != nil {
		return nil, err
	}
	if dom.IsPoint(compTol) {
		return m.Constant(dom.Mid()), nil
	}
	v := &Var{mod: m, slots: make([]*pwl.Estimators, m.nvar)}
	v.slots[i] = pwl.IdentityPair(dom)
	if m.options.UseShadow {
		v.shadow = newShadowSet(m.nvar)
	}
	return v, nil
}

// Constant returns the enclosure of the constant c.
func (m *Model) Constant(c float64) *Var {
	return &Var{mod: m, cst: true, cv: c}
}

// Constant returns a model-less constant enclosure. It combines with
// variables of any model; the result adopts that model.
func Constant(c float64) *Var {
	return &Var{cst: true, cv: c}
}

// constant returns a constant carrying v's model, which may be nil.
func (v *Var) constant(c float64) *Var {
	return &Var{mod: v.mod, cst: true, cv: c}
}

// Superposition attaches externally produced estimator pairs, one per
// participating variable index. This is the boundary used by outer
// evaluators that decompose a function themselves: the caller asserts
// soundness of each pair; indices and domains are validated here.
func (m *Model) Superposition(pairs map[int]*pwl.Estimators) (*Var, error) {
	if len(pairs) == 0 {
		return nil, errf(CodeIndex, "superposition needs at least one estimator pair")
	}
	v := &Var{mod: m, slots: make([]*pwl.Estimators, m.nvar)}
	for i, e := range pairs {
		if i < 0 || i >= m.nvar {
			return nil, errf(CodeIndex, "variable %d outside model of %d", i, m.nvar)
		}
		if e == nil || e.Under.Empty() || e.Over.Empty() {
			return nil, errf(CodeIndex, "variable %d has an empty estimator pair", i)
		}
		if m.defined[i] {
			if d := m.domains[i]; !d.Encloses(e.Domain(), 1e2*compTol) || !e.Domain().Encloses(d, 1e2*compTol) {
				return nil, errf(CodeModelMismatch, "variable %d estimator domain %v differs from registered %v", i, e.Domain(), d)
			}
		} else if err := m.register(i, e.Domain()); err != nil {
			return nil, err
		}
		v.slots[i] = e.Clone()
	}
	if m.options.UseShadow {
		v.shadow = newShadowSet(m.nvar)
	}
	return v, nil
}

// Model returns the model the variable belongs to, or nil for a
// model-less constant.
func (v *Var) Model() *Model {
	return v.mod
}

// ConstantValue reports whether the variable is a constant, and its value.
func (v *Var) ConstantValue() (float64, bool) {
	if v.cst {
		return v.cv, true
	}
	return 0, false
}

// Deps returns the participating variable indices in increasing order.
func (v *Var) Deps() []int {
	if v.cst {
		return nil
	}
	deps := make([]int, 0, len(v.slots))
	for i, e := range v.slots {
		if e != nil {
			deps = append(deps, i)
		}
	}
	return deps
}

// NDep returns the number of participating variables.
func (v *Var) NDep() int {
	return len(v.Deps())
}

// Estimators returns a copy of the estimator pair for variable i, or nil
// when i does not participate.
func (v *Var) Estimators(i int) *pwl.Estimators {
	if v.cst || i < 0 || i >= len(v.slots) {
		return nil
	}
	return v.slots[i].Clone()
}

// HasShadow reports whether a live shadow decomposition is attached.
func (v *Var) HasShadow() bool {
	return v.shadow.any()
}

// ShadowActive reports which sides of the shadow decomposition are
// live.
func (v *Var) ShadowActive() (under, over bool) {
	if v.cst || v.shadow == nil {
		return false, false
	}
	return v.shadow.underActive, v.shadow.overActive
}

// ShadowUnder returns a copy of the live shadow under-estimator for
// variable i, or nil when the shadow-under side is inactive or i does
// not participate. Breakpoints follow the same shape as Estimators.
func (v *Var) ShadowUnder(i int) *pwl.Curve {
	if v.cst || v.shadow == nil || !v.shadow.underActive || i < 0 || i >= len(v.shadow.under) {
		return nil
	}
	return v.shadow.under[i].Clone()
}

// ShadowOver is the over-estimator counterpart of ShadowUnder.
func (v *Var) ShadowOver(i int) *pwl.Curve {
	if v.cst || v.shadow == nil || !v.shadow.overActive || i < 0 || i >= len(v.shadow.over) {
		return nil
	}
	return v.shadow.over[i].Clone()
}

func (v *Var) clone() *Var {
	c := &Var{mod: v.mod, cst: v.cst, cv: v.cv, shadow: v.shadow.clone()}
	if v.slots != nil {
		c.slots = make([]*pwl.Estimators, len(v.slots))
		for i, e := range v.slots {
			c.slots[i] = e.Clone()
		}
	}
	return c
}

// compress applies the configured breakpoint cap to every slot.
func (v *Var) compress() {
	if v.cst {
		return
	}
	maxPts := v.mod.options.MaxBreakpoints
	if maxPts == 0 {
		return
	}
	for _, e := range v.slots {
		if e != nil {
			e.Compress(maxPts)
		}
	}
	if v.shadow != nil {
		for _, c := range v.shadow.under {
			c.Compress(maxPts, true)
		}
		for _, c := range v.shadow.over {
			c.Compress(maxPts, false)
		}
	}
}

// sameModel rejects combining superpositions of different models.
// Constants are exempt: a constant combines with anything and the
// result adopts the other operand's model.
func sameModel(a, b *Var) error {
	if a.cst || b.cst || a.mod == b.mod {
		return nil
	}
	return errf(CodeModelMismatch, "operands belong to different models")
}

// collapseIfConstant turns a superposition whose total range is a point
// into a constant var.
func (v *Var) collapseIfConstant() *Var {
	if v.cst {
		return v
	}
	b, err := v.Bound()
	if err != nil {
		return v
	}
	if b.IsPoint(1e2 * compTol) {
		return v.mod.Constant(b.Mid())
	}
	return v
}
