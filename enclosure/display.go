package enclosure

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/speakeasy-api/superpose/pwl"
)

// Display writes a human-readable table of the superposition: one block
// per participating variable listing the estimator breakpoints.
func (v *Var) Display(w io.Writer) error {
	if v.cst {
		_, err := fmt.Fprintf(w, "constant %g\n", v.cv)
		return err
	}
	b, err := v.Bound()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "superposition over %d variable(s), bound %v\n", v.NDep(), b); err != nil {
		return err
	}
	for _, i := range v.Deps() {
		e := v.slots[i]
		if _, err := fmt.Fprintf(w, "variable %d on %v\n", i, e.Domain()); err != nil {
			return err
		}
		if err := displayCurve(w, "under", e.Under); err != nil {
			return err
		}
		if err := displayCurve(w, "over", e.Over); err != nil {
			return err
		}
		if v.shadow != nil {
			if v.shadow.underActive && !v.shadow.under[i].Empty() {
				if err := displayCurve(w, "sh-und", v.shadow.under[i]); err != nil {
					return err
				}
			}
			if v.shadow.overActive && !v.shadow.over[i].Empty() {
				if err := displayCurve(w, "sh-ove", v.shadow.over[i]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

const displayColWidth = 14

// pad right-aligns s in a fixed-width column, accounting for the
// rendered width of the runes.
func pad(s string) string {
	return runewidth.FillLeft(s, displayColWidth)
}

func displayCurve(w io.Writer, label string, c *pwl.Curve) error {
	xs, ys := c.Points()
	if _, err := fmt.Fprintf(w, "  %s:", runewidth.FillRight(label, 7)); err != nil {
		return err
	}
	for k := range xs {
		cell := "(" + strconv.FormatFloat(xs[k], 'g', 6, 64) + ", " + strconv.FormatFloat(ys[k], 'g', 6, 64) + ")"
		if _, err := io.WriteString(w, pad(cell)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// curveDump is the YAML shape of one estimator curve.
type curveDump struct {
	X []float64 `yaml:"x"`
	Y []float64 `yaml:"y"`
}

type slotDump struct {
	Var    int        `yaml:"var"`
	Domain [2]float64 `yaml:"domain,flow"`
	Under  curveDump  `yaml:"under"`
	Over   curveDump  `yaml:"over"`

	ShadowUnder *curveDump `yaml:"shadowUnder,omitempty"`
	ShadowOver  *curveDump `yaml:"shadowOver,omitempty"`
}

type varDump struct {
	Constant *float64   `yaml:"constant,omitempty"`
	Bound    [2]float64 `yaml:"bound,flow"`
	Slots    []slotDump `yaml:"slots,omitempty"`
}

func dumpCurve(c *pwl.Curve) curveDump {
	xs, ys := c.Points()
	return curveDump{X: xs, Y: ys}
}

// DumpYAML writes a stable YAML document describing the variable, for
// diffing and for downstream tooling.
func (v *Var) DumpYAML(w io.Writer) error {
	var d varDump
	if v.cst {
		c := v.cv
		d.Constant = &c
		d.Bound = [2]float64{c, c}
	} else {
		b, err := v.Bound()
		if err != nil {
			return err
		}
		d.Bound = [2]float64{b.Lo, b.Hi}
		for _, i := range v.Deps() {
			e := v.slots[i]
			dom := e.Domain()
			sd := slotDump{
				Var:    i,
				Domain: [2]float64{dom.Lo, dom.Hi},
				Under:  dumpCurve(e.Under),
				Over:   dumpCurve(e.Over),
			}
			if v.shadow != nil {
				if v.shadow.underActive && !v.shadow.under[i].Empty() {
					cd := dumpCurve(v.shadow.under[i])
					sd.ShadowUnder = &cd
				}
				if v.shadow.overActive && !v.shadow.over[i].Empty() {
					cd := dumpCurve(v.shadow.over[i])
					sd.ShadowOver = &cd
				}
			}
			d.Slots = append(d.Slots, sd)
		}
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(d)
}
