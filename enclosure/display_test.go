package enclosure

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDisplay_Constant(t *testing.T) {
	m := newTestModel(t, 1)
	var sb strings.Builder
	if err := m.Constant(2.5).Display(&sb); err != nil {
		t.Fatalf("Display failed: %v", err)
	}
	if got := sb.String(); got != "constant 2.5\n" {
		t.Errorf("Display = %q", got)
	}
}

func TestDisplay_Superposition(t *testing.T) {
	m := newTestModel(t, 2)
	x := newTestVar(t, m, 0, -1, 1)
	y := newTestVar(t, m, 1, 0, 2)
	s, err := Add(x, y)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	var sb strings.Builder
	if err := s.Display(&sb); err != nil {
		t.Fatalf("Display failed: %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		"superposition over 2 variable(s)",
		"variable 0 on [-1, 1]",
		"variable 1 on [0, 2]",
		"under",
		"over",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Display output missing %q:\n%s", want, out)
		}
	}
}

func TestDumpYAML_RoundTrip(t *testing.T) {
	m := newTestModel(t, 1)
	x := newTestVar(t, m, 0, -1, 1)
	r, err := Relu(x)
	if err != nil {
		t.Fatalf("Relu failed: %v", err)
	}

	var sb strings.Builder
	if err := r.DumpYAML(&sb); err != nil {
		t.Fatalf("DumpYAML failed: %v", err)
	}

	var d struct {
		Bound [2]float64 `yaml:"bound"`
		Slots []struct {
			Var    int        `yaml:"var"`
			Domain [2]float64 `yaml:"domain"`
			Under  struct {
				X []float64 `yaml:"x"`
				Y []float64 `yaml:"y"`
			} `yaml:"under"`
		} `yaml:"slots"`
	}
	if err := yaml.Unmarshal([]byte(sb.String()), &d); err != nil {
		t.Fatalf("dump is not valid YAML: %v\n%s", err, sb.String())
	}
	if d.Bound != [2]float64{0, 1} {
		t.Errorf("dumped bound = %v, want [0, 1]", d.Bound)
	}
	if len(d.Slots) != 1 || d.Slots[0].Var != 0 {
		t.Fatalf("dumped slots = %+v, want one slot for variable 0", d.Slots)
	}
	if d.Slots[0].Domain != [2]float64{-1, 1} {
		t.Errorf("dumped domain = %v, want [-1, 1]", d.Slots[0].Domain)
	}
	if len(d.Slots[0].Under.X) != len(d.Slots[0].Under.Y) {
		t.Errorf("dumped curve is ragged: %d abscissae, %d values",
			len(d.Slots[0].Under.X), len(d.Slots[0].Under.Y))
	}
}

func TestDumpYAML_ConstantShape(t *testing.T) {
	m := newTestModel(t, 1)
	var sb strings.Builder
	if err := m.Constant(-1).DumpYAML(&sb); err != nil {
		t.Fatalf("DumpYAML failed: %v", err)
	}
	var d struct {
		Constant *float64 `yaml:"constant"`
	}
	if err := yaml.Unmarshal([]byte(sb.String()), &d); err != nil {
		t.Fatalf("dump is not valid YAML: %v", err)
	}
	if d.Constant == nil || *d.Constant != -1 {
		t.Errorf("dumped constant = %v, want -1", d.Constant)
	}
}
