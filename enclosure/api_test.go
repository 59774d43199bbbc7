package enclosure

import (
	"errors"
	"testing"

	"github.com/speakeasy-api/superpose"
	"github.com/speakeasy-api/superpose/pwl"
)

func newTestModel(t *testing.T, nvar int, opts ...Options) *Model {
	t.Helper()
	m, err := New(nvar, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

func newTestVar(t *testing.T, m *Model, i int, lo, hi float64) *Var {
	t.Helper()
	v, err := m.Var(i, superpose.Span(lo, hi))
	if err != nil {
		t.Fatalf("Var(%d) failed: %v", i, err)
	}
	return v
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Error("zero-variable model should be rejected")
	}
	bad := DefaultOptions()
	bad.Subdivisions = 0
	if _, err := New(1, bad); err == nil {
		t.Error("zero subdivisions should be rejected")
	}
	bad = DefaultOptions()
	bad.MaxBreakpoints = 1
	if _, err := New(1, bad); err == nil {
		t.Error("breakpoint cap of 1 should be rejected")
	}
}

func TestVar_IndexError(t *testing.T) {
	m := newTestModel(t, 2)
	_, err := m.Var(2, superpose.Span(0, 1))
	if !errors.Is(err, &Error{Code: CodeIndex}) {
		t.Errorf("out-of-range index: got %v, want CodeIndex", err)
	}
	_, err = m.Var(-1, superpose.Span(0, 1))
	if !errors.Is(err, &Error{Code: CodeIndex}) {
		t.Errorf("negative index: got %v, want CodeIndex", err)
	}
}

func TestVar_PointRangeBecomesConstant(t *testing.T) {
	m := newTestModel(t, 1)
	v, err := m.Var(0, superpose.Point(3))
	if err != nil {
		t.Fatalf("Var failed: %v", err)
	}
	if c, ok := v.ConstantValue(); !ok || c != 3 {
		t.Errorf("point-range variable should be the constant 3, got %v ok=%v", c, ok)
	}
}

func TestVar_BoundIsRange(t *testing.T) {
	m := newTestModel(t, 1)
	x := newTestVar(t, m, 0, -1, 2)
	b, err := x.Bound()
	if err != nil {
		t.Fatalf("Bound failed: %v", err)
	}
	if b != (superpose.Interval{Lo: -1, Hi: 2}) {
		t.Errorf("Bound = %v, want [-1, 2]", b)
	}
	if got := x.NDep(); got != 1 {
		t.Errorf("NDep = %d, want 1", got)
	}
}

func TestModelMismatch(t *testing.T) {
	m1 := newTestModel(t, 1)
	m2 := newTestModel(t, 1)
	x := newTestVar(t, m1, 0, 0, 1)
	y := newTestVar(t, m2, 0, 0, 1)
	_, err := Add(x, y)
	if !errors.Is(err, &Error{Code: CodeModelMismatch}) {
		t.Errorf("cross-model addition: got %v, want CodeModelMismatch", err)
	}
}

func TestConstant_CrossesModels(t *testing.T) {
	// Constants are plain scalars: a constant built on one model must
	// combine with another model's variables, the result adopting the
	// variable's model.
	m1 := newTestModel(t, 1)
	m2 := newTestModel(t, 1)
	c := m1.Constant(2)
	x := newTestVar(t, m2, 0, 0, 1)

	s, err := Add(c, x)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if s.Model() != m2 {
		t.Error("result should adopt the variable's model")
	}
	b, err := s.Bound()
	if err != nil {
		t.Fatalf("Bound failed: %v", err)
	}
	if b.Lo != 2 || b.Hi != 3 {
		t.Errorf("bound = %v, want [2, 3]", b)
	}
}

func TestConstant_ModelLess(t *testing.T) {
	c := Constant(2)
	if v, ok := c.ConstantValue(); !ok || v != 2 {
		t.Fatalf("ConstantValue = %v ok=%v, want 2", v, ok)
	}
	if c.Model() != nil {
		t.Error("model-less constant should carry no model")
	}

	// Constant-only arithmetic folds without a model.
	d, err := Add(Neg(c), MulConst(Constant(3), 2))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if v, ok := d.ConstantValue(); !ok || v != 4 {
		t.Errorf("folded constant = %v ok=%v, want 4", v, ok)
	}
	r, err := Relu(Constant(-3))
	if err != nil {
		t.Fatalf("Relu failed: %v", err)
	}
	if v, ok := r.ConstantValue(); !ok || v != 0 {
		t.Errorf("relu of -3 = %v ok=%v, want 0", v, ok)
	}

	// First combination with a variable promotes onto its model.
	m := newTestModel(t, 1)
	x := newTestVar(t, m, 0, 0, 1)
	s, err := Sub(x, c)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if s.Model() != m {
		t.Error("result should adopt the variable's model")
	}
	b, err := s.Bound()
	if err != nil {
		t.Fatalf("Bound failed: %v", err)
	}
	if b.Lo != -2 || b.Hi != -1 {
		t.Errorf("bound = %v, want [-2, -1]", b)
	}
}

func TestVar_ConflictingReRegistration(t *testing.T) {
	m := newTestModel(t, 1)
	x := newTestVar(t, m, 0, -1, 1)

	// A changed range would invalidate x; it must be rejected.
	_, err := m.Var(0, superpose.Span(0, 2))
	if !errors.Is(err, &Error{Code: CodeModelMismatch}) {
		t.Errorf("conflicting re-registration: got %v, want CodeModelMismatch", err)
	}

	// The same range is fine, and the vars still combine.
	y, err := m.Var(0, superpose.Span(-1, 1))
	if err != nil {
		t.Fatalf("re-registration on the same range failed: %v", err)
	}
	s, err := Add(x, y)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	b, err := s.Bound()
	if err != nil {
		t.Fatalf("Bound failed: %v", err)
	}
	if b.Lo != -2 || b.Hi != 2 {
		t.Errorf("bound = %v, want [-2, 2]", b)
	}
}

func TestEval_PointArity(t *testing.T) {
	m := newTestModel(t, 2)
	x := newTestVar(t, m, 0, 0, 1)
	_, err := x.Eval([]float64{0.5})
	if !errors.Is(err, &Error{Code: CodeIndex}) {
		t.Errorf("short point: got %v, want CodeIndex", err)
	}
}

func TestSuperposition_Validation(t *testing.T) {
	m := newTestModel(t, 2)

	if _, err := m.Superposition(nil); !errors.Is(err, &Error{Code: CodeIndex}) {
		t.Errorf("empty superposition: got %v, want CodeIndex", err)
	}

	pair := pwl.IdentityPair(superpose.Span(0, 1))
	if _, err := m.Superposition(map[int]*pwl.Estimators{5: pair}); !errors.Is(err, &Error{Code: CodeIndex}) {
		t.Errorf("out-of-range slot: got %v, want CodeIndex", err)
	}

	// Registering variable 0 on [0, 2] and then attaching a pair on
	// [0, 1] must be rejected.
	if _, err := m.Var(0, superpose.Span(0, 2)); err != nil {
		t.Fatalf("Var failed: %v", err)
	}
	if _, err := m.Superposition(map[int]*pwl.Estimators{0: pair}); !errors.Is(err, &Error{Code: CodeModelMismatch}) {
		t.Errorf("domain mismatch: got %v, want CodeModelMismatch", err)
	}
}

func TestSuperposition_Bound(t *testing.T) {
	m := newTestModel(t, 2)
	// f(x0, x1) = x0 + x1 attached directly as exact pairs.
	v, err := m.Superposition(map[int]*pwl.Estimators{
		0: pwl.IdentityPair(superpose.Span(-1, 1)),
		1: pwl.IdentityPair(superpose.Span(0, 2)),
	})
	if err != nil {
		t.Fatalf("Superposition failed: %v", err)
	}
	b, err := v.Bound()
	if err != nil {
		t.Fatalf("Bound failed: %v", err)
	}
	if b != (superpose.Interval{Lo: -1, Hi: 3}) {
		t.Errorf("Bound = %v, want [-1, 3]", b)
	}
}

func TestAffine(t *testing.T) {
	m := newTestModel(t, 2)
	x := newTestVar(t, m, 0, -1, 1)
	y := newTestVar(t, m, 1, 0, 2)

	// 2x - y + 3 on [-1,1] x [0,2] ranges over [-1, 5].
	v, err := Affine([]*Var{x, y}, []float64{2, -1}, 3)
	if err != nil {
		t.Fatalf("Affine failed: %v", err)
	}
	b, err := v.Bound()
	if err != nil {
		t.Fatalf("Bound failed: %v", err)
	}
	if b != (superpose.Interval{Lo: -1, Hi: 5}) {
		t.Errorf("Bound = %v, want [-1, 5]", b)
	}

	if _, err := Affine([]*Var{x}, []float64{1, 2}, 0); !errors.Is(err, &Error{Code: CodeIndex}) {
		t.Errorf("weight arity mismatch: got %v, want CodeIndex", err)
	}
}
