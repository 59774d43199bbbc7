package enclosure

import (
	"math"

	"github.com/speakeasy-api/superpose"
)

// StepMatrix is the piecewise-constant export of a superposition: one
// interval per participating variable and partition cell, suitable for
// polyhedral cut generators. Rows follow Deps(); Cells[k][j] is the
// enclosure contribution of variable Deps[k] on its j-th cell.
type StepMatrix struct {
	Deps  []int
	Cells [][]superpose.Interval
}

// Steps exports the superposition as a step matrix over n cells per
// variable (n <= 0 uses Options.Subdivisions). The per-variable
// reducible width is rebalanced so the cell sums reproduce the variable
// bound: each under step is lifted by the variable's share of the total
// minimum gap.
func (v *Var) Steps(n int) (StepMatrix, error) {
	if v.cst {
		return StepMatrix{}, errf(CodeModelMismatch, "constant has no superposition to export")
	}
	if n <= 0 {
		n = v.mod.options.Subdivisions
	}
	deps := v.Deps()
	if len(deps) == 0 {
		return StepMatrix{}, errf(CodeInternal, "variable has no dependencies")
	}

	under := make([][]float64, len(deps))
	over := make([][]float64, len(deps))
	gap := make([]float64, len(deps))
	var sumGap float64
	for k, i := range deps {
		e := v.slots[i]
		under[k] = e.Under.StepLower(n)
		over[k] = e.Over.StepUpper(n)
		g := over[k][0] - under[k][0]
		for j := 1; j < n; j++ {
			g = math.Min(g, over[k][j]-under[k][j])
		}
		gap[k] = g
		sumGap += g
	}
	if sumGap < -1e2*compTol {
		return StepMatrix{}, errf(CodeInternal, "negative aggregate step gap %g", sumGap)
	}
	share := sumGap / float64(len(deps))

	m := StepMatrix{Deps: deps, Cells: make([][]superpose.Interval, len(deps))}
	for k := range deps {
		m.Cells[k] = make([]superpose.Interval, n)
		for j := 0; j < n; j++ {
			lo := under[k][j] - gap[k] + share
			hi := over[k][j]
			cell, err := orient(lo, hi)
			if err != nil {
				return StepMatrix{}, err
			}
			m.Cells[k][j] = cell
		}
	}
	return m, nil
}
