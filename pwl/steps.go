package pwl

// StepLower returns, for n equal-width cells of the curve domain, the
// minimum of the curve over each cell. The result is the tightest
// piecewise-constant minorant on that partition.
func (c *Curve) StepLower(n int) []float64 {
	return c.steps(n, true)
}

// StepUpper returns, for n equal-width cells of the curve domain, the
// maximum of the curve over each cell.
func (c *Curve) StepUpper(n int) []float64 {
	return c.steps(n, false)
}

func (c *Curve) steps(n int, lower bool) []float64 {
	if c.Empty() || n < 1 {
		return nil
	}
	dom := c.Domain()
	w := dom.Width() / float64(n)
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		a := dom.Lo + float64(j)*w
		b := a + w
		if j == n-1 {
			b = dom.Hi
		}
		v := c.extremum(a, b, lower)
		out[j] = v
	}
	return out
}

// extremum returns the min (or max) of the curve on [a, b]. Piecewise
// linearity puts candidates at the cell edges and interior breakpoints.
func (c *Curve) extremum(a, b float64, lower bool) float64 {
	v := c.Eval(a)
	if y := c.Eval(b); (lower && y < v) || (!lower && y > v) {
		v = y
	}
	for k, x := range c.xs {
		if x <= a || x >= b {
			continue
		}
		y := c.ys[k]
		if (lower && y < v) || (!lower && y > v) {
			v = y
		}
	}
	return v
}
