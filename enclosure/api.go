// Package enclosure propagates superposition enclosures through affine
// operations and rectifiers. A Model registers the independent variables
// and their ranges; Vars enclose intermediate results as sums of
// univariate piecewise-linear under/over estimator pairs, so the bound
// of any Var is the sum of its per-variable estimator ranges.
//
// Example:
//
//	mod, _ := enclosure.New(2)
//	x, _ := mod.Var(0, superpose.Span(-1, 1))
//	y, _ := mod.Var(1, superpose.Span(0, 2))
//	s, _ := enclosure.Add(x, y)
//	r, _ := enclosure.Relu(s)
//	bnd, _ := r.Bound()
//	fmt.Println(bnd)
package enclosure

// Affine returns the enclosure of sum(weights[k]*vars[k]) + bias. All
// vars must belong to the same model; len(weights) must equal len(vars).
func Affine(vars []*Var, weights []float64, bias float64) (*Var, error) {
	if len(vars) == 0 {
		return nil, errf(CodeIndex, "affine combination needs at least one operand")
	}
	if len(vars) != len(weights) {
		return nil, errf(CodeIndex, "affine combination has %d operands for %d weights", len(vars), len(weights))
	}
	acc := MulConst(vars[0], weights[0])
	for k := 1; k < len(vars); k++ {
		term := MulConst(vars[k], weights[k])
		var err error
		acc, err = Add(acc, term)
		if err != nil {
			return nil, err
		}
	}
	return AddConst(acc, bias)
}
