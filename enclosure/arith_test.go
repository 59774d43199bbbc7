package enclosure

import (
	"errors"
	"math"
	"testing"

	"github.com/speakeasy-api/superpose"
)

func TestAdd_Bounds(t *testing.T) {
	m := newTestModel(t, 2)
	x := newTestVar(t, m, 0, -1, 1)
	y := newTestVar(t, m, 1, 2, 4)

	s, err := Add(x, y)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	b, err := s.Bound()
	if err != nil {
		t.Fatalf("Bound failed: %v", err)
	}
	if b != (superpose.Interval{Lo: 1, Hi: 5}) {
		t.Errorf("Bound = %v, want [1, 5]", b)
	}
	if got := s.NDep(); got != 2 {
		t.Errorf("NDep = %d, want 2", got)
	}
}

func TestAdd_SharedVariableIsExact(t *testing.T) {
	// x + x tracks the dependency, so the bound is [-2, 2] and the
	// evaluation at any point is the point value doubled.
	m := newTestModel(t, 1)
	x := newTestVar(t, m, 0, -1, 1)

	s, err := Add(x, x)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	got, err := s.Eval([]float64{0.25})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if !got.Contains(0.5, 1e-12) || got.Width() > 1e-12 {
		t.Errorf("Eval(0.25) = %v, want the point 0.5", got)
	}
}

func TestAdd_Constants(t *testing.T) {
	m := newTestModel(t, 1)
	x := newTestVar(t, m, 0, 0, 1)
	c := m.Constant(2)

	s, err := Add(x, c)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	b, _ := s.Bound()
	if b != (superpose.Interval{Lo: 2, Hi: 3}) {
		t.Errorf("x + 2 bound = %v, want [2, 3]", b)
	}

	cc, err := Add(m.Constant(1), m.Constant(2))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if v, ok := cc.ConstantValue(); !ok || v != 3 {
		t.Errorf("1 + 2 = %v ok=%v, want constant 3", v, ok)
	}
}

func TestNeg(t *testing.T) {
	m := newTestModel(t, 1)
	x := newTestVar(t, m, 0, -1, 2)

	n := Neg(x)
	b, _ := n.Bound()
	if b != (superpose.Interval{Lo: -2, Hi: 1}) {
		t.Errorf("Neg bound = %v, want [-2, 1]", b)
	}
	got, err := n.Eval([]float64{0.5})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if !got.Contains(-0.5, 1e-12) {
		t.Errorf("Neg Eval(0.5) = %v, want -0.5", got)
	}
}

func TestSub(t *testing.T) {
	m := newTestModel(t, 2)
	x := newTestVar(t, m, 0, 0, 2)
	y := newTestVar(t, m, 1, 1, 3)

	d, err := Sub(x, y)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	b, _ := d.Bound()
	if b != (superpose.Interval{Lo: -3, Hi: 1}) {
		t.Errorf("Sub bound = %v, want [-3, 1]", b)
	}
}

func TestSub_ShadowUnimplemented(t *testing.T) {
	opts := DefaultOptions()
	opts.UseShadow = true
	m := newTestModel(t, 2, opts)
	x := newTestVar(t, m, 0, 0, 2)
	y := newTestVar(t, m, 1, 1, 3)

	if _, err := Sub(x, y); !errors.Is(err, &Error{Code: CodeUnimplemented}) {
		t.Errorf("shadow subtraction: got %v, want CodeUnimplemented", err)
	}
	// Subtracting a constant stays supported.
	if _, err := Sub(x, m.Constant(1)); err != nil {
		t.Errorf("Sub of constant failed: %v", err)
	}
}

func TestMulConst(t *testing.T) {
	m := newTestModel(t, 1)
	x := newTestVar(t, m, 0, -1, 2)

	cases := []struct {
		c    float64
		want superpose.Interval
	}{
		{2, superpose.Interval{Lo: -2, Hi: 4}},
		{-1, superpose.Interval{Lo: -2, Hi: 1}},
		{-0.5, superpose.Interval{Lo: -1, Hi: 0.5}},
	}
	for _, tc := range cases {
		b, err := MulConst(x, tc.c).Bound()
		if err != nil {
			t.Fatalf("Bound failed for c=%g: %v", tc.c, err)
		}
		if b != tc.want {
			t.Errorf("MulConst(%g) bound = %v, want %v", tc.c, b, tc.want)
		}
	}

	if v, ok := MulConst(x, 0).ConstantValue(); !ok || v != 0 {
		t.Errorf("MulConst(0) should collapse to constant 0, got %v ok=%v", v, ok)
	}
}

func TestDivConst(t *testing.T) {
	m := newTestModel(t, 1)
	x := newTestVar(t, m, 0, -2, 4)

	d, err := DivConst(x, 2)
	if err != nil {
		t.Fatalf("DivConst failed: %v", err)
	}
	b, _ := d.Bound()
	if b != (superpose.Interval{Lo: -1, Hi: 2}) {
		t.Errorf("DivConst(2) bound = %v, want [-1, 2]", b)
	}

	if _, err := DivConst(x, 0); !errors.Is(err, &Error{Code: CodeDivision}) {
		t.Errorf("division by zero: got %v, want CodeDivision", err)
	}
	if _, err := DivConst(x, 1e-16); !errors.Is(err, &Error{Code: CodeDivision}) {
		t.Errorf("division by 1e-16: got %v, want CodeDivision", err)
	}
}

func TestAddConst_SpreadsAcrossSlots(t *testing.T) {
	m := newTestModel(t, 2)
	x := newTestVar(t, m, 0, 0, 1)
	y := newTestVar(t, m, 1, 0, 1)
	s, err := Add(x, y)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	s, err = AddConst(s, 4)
	if err != nil {
		t.Fatalf("AddConst failed: %v", err)
	}
	// Each slot carries half the shift.
	for _, i := range s.Deps() {
		e := s.Estimators(i)
		if got := e.Under.Lb(); got != 2 {
			t.Errorf("slot %d under lower bound = %g, want 2", i, got)
		}
	}
	b, _ := s.Bound()
	if b != (superpose.Interval{Lo: 4, Hi: 6}) {
		t.Errorf("Bound = %v, want [4, 6]", b)
	}
}

func TestEval_WithinBound(t *testing.T) {
	m := newTestModel(t, 2)
	x := newTestVar(t, m, 0, -1, 1)
	y := newTestVar(t, m, 1, -2, 2)
	v, err := Affine([]*Var{x, y}, []float64{3, -2}, 1)
	if err != nil {
		t.Fatalf("Affine failed: %v", err)
	}
	bound, err := v.Bound()
	if err != nil {
		t.Fatalf("Bound failed: %v", err)
	}
	for _, p := range [][]float64{{-1, -2}, {-1, 2}, {0, 0}, {1, -2}, {1, 2}, {0.3, -1.7}} {
		got, err := v.Eval(p)
		if err != nil {
			t.Fatalf("Eval(%v) failed: %v", p, err)
		}
		want := 3*p[0] - 2*p[1] + 1
		if !got.Contains(want, 1e-9) {
			t.Errorf("Eval(%v) = %v does not contain %g", p, got, want)
		}
		if !bound.Encloses(got, 1e-9) {
			t.Errorf("Eval(%v) = %v escapes bound %v", p, got, bound)
		}
	}
	if math.Abs(bound.Lo-(-6)) > 1e-12 || math.Abs(bound.Hi-8) > 1e-12 {
		t.Errorf("Bound = %v, want [-6, 8]", bound)
	}
}
