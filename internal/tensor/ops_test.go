package tensor_test

import (
	"math/cmplx"
	"testing"

	"github.com/pkg/errors"

	"github.com/quilt-ml/quilt/internal/sym"
	"github.com/quilt-ml/quilt/internal/tensor"
)

func TestTensordotMatchesDense(t *testing.T) {
	cfg := u1Config(t)
	l1 := u1Leg(map[int]int{-1: 2, 0: 3, 1: 2})
	l2 := u1Leg(map[int]int{0: 2, 1: 2})
	l3 := u1Leg(map[int]int{-1: 3, 0: 1})

	a := randn(t, cfg, tensor.Charge{0}, l1, l2.Conj())
	b := randn(t, cfg, tensor.Charge{0}, l2, l3.Conj())

	c, err := tensor.Tensordot(a, b, []int{1}, []int{0})
	if err != nil {
		t.Fatalf("Tensordot: %v", err)
	}

	da, sa := a.ToDense()
	db, sb := b.ToDense()
	want, ws := denseTensordot(da, sa, db, sb, []int{1}, []int{0})
	got, gs := c.ToDense()
	assertShape(t, ws, gs, "tensordot shape")
	assertDenseClose(t, want, got, "tensordot values")
}

func TestTensordotAssociativity(t *testing.T) {
	cfg := u1Config(t)
	l1 := u1Leg(map[int]int{-1: 2, 0: 2})
	l2 := u1Leg(map[int]int{0: 3, 1: 2})
	l3 := u1Leg(map[int]int{-1: 2, 0: 2, 1: 1})
	l4 := u1Leg(map[int]int{0: 2, 2: 1})

	a := randn(t, cfg, tensor.Charge{0}, l1, l2.Conj())
	b := randn(t, cfg, tensor.Charge{1}, l2, l3.Conj())
	c := randn(t, cfg, tensor.Charge{-1}, l3, l4.Conj())

	ab, err := tensor.Tensordot(a, b, []int{1}, []int{0})
	if err != nil {
		t.Fatalf("a*b: %v", err)
	}
	left, err := tensor.Tensordot(ab, c, []int{1}, []int{0})
	if err != nil {
		t.Fatalf("(a*b)*c: %v", err)
	}
	bc, err := tensor.Tensordot(b, c, []int{1}, []int{0})
	if err != nil {
		t.Fatalf("b*c: %v", err)
	}
	right, err := tensor.Tensordot(a, bc, []int{1}, []int{0})
	if err != nil {
		t.Fatalf("a*(b*c): %v", err)
	}
	assertTensorsClose(t, left, right, "associativity")
}

func TestTensordotMultiAxis(t *testing.T) {
	cfg := u1Config(t)
	l1 := u1Leg(map[int]int{0: 2, 1: 2})
	l2 := u1Leg(map[int]int{-1: 2, 0: 3})
	l3 := u1Leg(map[int]int{0: 2, 1: 1})

	a := randn(t, cfg, tensor.Charge{0}, l3, l1, l2.Conj())
	b := randn(t, cfg, tensor.Charge{0}, l1.Conj(), l2, l3.Conj())

	c, err := tensor.Tensordot(a, b, []int{1, 2}, []int{0, 1})
	if err != nil {
		t.Fatalf("Tensordot: %v", err)
	}
	da, sa := a.ToDense()
	db, sb := b.ToDense()
	want, ws := denseTensordot(da, sa, db, sb, []int{1, 2}, []int{0, 1})
	got, gs := c.ToDense()
	assertShape(t, ws, gs, "multi-axis shape")
	assertDenseClose(t, want, got, "multi-axis values")
}

func TestTensordotOuterProduct(t *testing.T) {
	cfg := u1Config(t)
	l1 := u1Leg(map[int]int{0: 2, 1: 1})
	l2 := u1Leg(map[int]int{-1: 1, 0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l1, l1.Conj())
	b := randn(t, cfg, tensor.Charge{0}, l2, l2.Conj())

	c, err := tensor.Tensordot(a, b, nil, nil)
	if err != nil {
		t.Fatalf("outer product: %v", err)
	}
	da, sa := a.ToDense()
	db, sb := b.ToDense()
	want, ws := denseTensordot(da, sa, db, sb, nil, nil)
	got, gs := c.ToDense()
	assertShape(t, ws, gs, "outer shape")
	assertDenseClose(t, want, got, "outer values")
}

func TestTensordotDimensionMismatch(t *testing.T) {
	cfg := u1Config(t)
	la := u1Leg(map[int]int{0: 3})
	lb := u1Leg(map[int]int{0: 4})
	free := u1Leg(map[int]int{0: 2})

	a := randn(t, cfg, tensor.Charge{0}, free, la.Conj())
	b := randn(t, cfg, tensor.Charge{0}, lb, free.Conj())

	_, err := tensor.Tensordot(a, b, []int{1}, []int{0})
	if !errors.Is(err, tensor.ErrDimensionMismatch) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestTensordotSignatureMismatch(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2, 1: 1})

	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	b := randn(t, cfg, tensor.Charge{0}, l, l.Conj())

	// Contracting leg 0 of both: same direction.
	_, err := tensor.Tensordot(a, b, []int{0}, []int{0})
	if !errors.Is(err, tensor.ErrStructuralMismatch) {
		t.Fatalf("got %v, want ErrStructuralMismatch", err)
	}
}

func TestTensordotMasked(t *testing.T) {
	cfg := u1Config(t)
	free := u1Leg(map[int]int{0: 2})
	key := tensor.SectionKey(tensor.Charge{0})

	// Hard-fused legs over the same nominal charge with diverging
	// histories: only the (0,0) section of size 3 is shared.
	fa := tensor.Leg{S: -1,
		Sectors: []tensor.Sector{{Charge: tensor.Charge{0}, Dim: 5}},
		Fusion: &tensor.Fusion{Kind: tensor.FusionHard, Sections: map[string][]tensor.Section{
			key: {{T: []int{-1, 1}, D: 2}, {T: []int{0, 0}, D: 3}},
		}},
	}
	fb := tensor.Leg{S: 1,
		Sectors: []tensor.Sector{{Charge: tensor.Charge{0}, Dim: 4}},
		Fusion: &tensor.Fusion{Kind: tensor.FusionHard, Sections: map[string][]tensor.Section{
			key: {{T: []int{0, 0}, D: 3}, {T: []int{1, -1}, D: 1}},
		}},
	}

	a := randn(t, cfg, tensor.Charge{0}, free, fa)
	b := randn(t, cfg, tensor.Charge{0}, fb, free.Conj())

	c, err := tensor.Tensordot(a, b, []int{1}, []int{0})
	if err != nil {
		t.Fatalf("masked tensordot: %v", err)
	}

	// Reference: contract the shared section only, columns 2..4 of a
	// against rows 0..2 of b.
	av, _ := a.BlockValues(tensor.Charge{0}, tensor.Charge{0})
	bv, _ := b.BlockValues(tensor.Charge{0}, tensor.Charge{0})
	want := make([]complex128, 4)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 3; k++ {
				want[i*2+j] += av[i*5+2+k] * bv[k*2+j]
			}
		}
	}
	got, ok := c.BlockValues(tensor.Charge{0}, tensor.Charge{0})
	if !ok {
		t.Fatal("masked result lost its block")
	}
	assertDenseClose(t, want, got, "masked contraction values")
}

func TestTensordotZeroOverlapAfterWarmPlans(t *testing.T) {
	cfg := u1Config(t)
	free := u1Leg(map[int]int{0: 2})
	pair := u1Leg(map[int]int{0: 2, 1: 2})
	vals := make([]float64, 8)
	for i := range vals {
		vals[i] = float64(i + 1)
	}

	build := func(n tensor.Charge, legs []tensor.Leg, charges []tensor.Charge) *tensor.Tensor {
		t.Helper()
		x, err := tensor.NewBuilder(cfg, n, legs...).Set(charges, vals).Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return x
	}
	legsA := []tensor.Leg{free, pair, pair}
	legsB := []tensor.Leg{pair.Conj(), pair.Conj(), free}

	// a and b hold single blocks whose contracted sub-tuples, (0,1) and
	// (1,0), fuse to the same effective charge but never overlap.
	a := build(tensor.Charge{1}, legsA, []tensor.Charge{{0}, {0}, {1}})
	b := build(tensor.Charge{-1}, legsB, []tensor.Charge{{1}, {0}, {0}})
	aMatch := build(tensor.Charge{1}, legsA, []tensor.Charge{{0}, {1}, {0}})
	bMatch := build(tensor.Charge{-1}, legsB, []tensor.Charge{{0}, {1}, {0}})

	// Warm the merge plans of both operands with fully-matching partners
	// so the zero-overlap contraction below runs against cached plans.
	if _, err := tensor.Tensordot(a, bMatch, []int{1, 2}, []int{0, 1}); err != nil {
		t.Fatalf("warm contraction of a: %v", err)
	}
	if _, err := tensor.Tensordot(aMatch, b, []int{1, 2}, []int{0, 1}); err != nil {
		t.Fatalf("warm contraction of b: %v", err)
	}

	c, err := tensor.Tensordot(a, b, []int{1, 2}, []int{0, 1})
	if err != nil {
		t.Fatalf("zero-overlap Tensordot: %v", err)
	}
	if c.NumBlocks() != 0 {
		t.Fatalf("got %d blocks, want an empty tensor", c.NumBlocks())
	}
	dc, sc := c.ToDense()
	assertShape(t, []int{2, 2}, sc, "zero-overlap shape")
	assertDenseClose(t, make([]complex128, 4), dc, "zero-overlap values")
}

func TestTraceMatchesDense(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{-1: 2, 0: 2, 1: 1})
	m := u1Leg(map[int]int{0: 2, 1: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, m, l.Conj(), m.Conj())

	tr, err := tensor.Trace(a, []int{0, 1}, []int{2, 3})
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if tr.Ndim() != 0 {
		t.Fatalf("full trace rank = %d", tr.Ndim())
	}
	da, sa := a.ToDense()
	want, _ := denseTrace(da, sa, []int{0, 1}, []int{2, 3})
	if cmplx.Abs(want[0]-tr.Item()) > tol {
		t.Fatalf("trace = %v, want %v", tr.Item(), want[0])
	}
}

func TestTracePairPermutationInvariance(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{-1: 2, 0: 2})
	m := u1Leg(map[int]int{0: 1, 1: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, m, m.Conj(), l.Conj())

	t1, err := tensor.Trace(a, []int{0, 1}, []int{3, 2})
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	t2, err := tensor.Trace(a, []int{1, 0}, []int{2, 3})
	if err != nil {
		t.Fatalf("Trace permuted: %v", err)
	}
	if cmplx.Abs(t1.Item()-t2.Item()) > tol {
		t.Fatalf("pair permutation changed the trace: %v vs %v", t1.Item(), t2.Item())
	}
}

func TestTracePartialMatchesDense(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2, 1: 2})
	m := u1Leg(map[int]int{-1: 1, 0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, m, l.Conj())

	tr, err := tensor.Trace(a, []int{0}, []int{2})
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	da, sa := a.ToDense()
	want, ws := denseTrace(da, sa, []int{0}, []int{2})
	got, gs := tr.ToDense()
	assertShape(t, ws, gs, "partial trace shape")
	assertDenseClose(t, want, got, "partial trace values")
}

func TestTraceOverlapFails(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2})
	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	_, err := tensor.Trace(a, []int{0}, []int{0})
	if !errors.Is(err, tensor.ErrLabeling) {
		t.Fatalf("got %v, want ErrLabeling", err)
	}
}

func TestVdotRealNonNegative(t *testing.T) {
	cfg := u1Config(t)
	cfg.DType = tensor.Complex128
	l := u1Leg(map[int]int{-1: 2, 0: 3, 1: 2})
	m := u1Leg(map[int]int{0: 2, 1: 1})

	a := randn(t, cfg, tensor.Charge{0}, l, m.Conj())
	v, err := tensor.Vdot(a, a)
	if err != nil {
		t.Fatalf("Vdot: %v", err)
	}
	if imag(v) > tol || imag(v) < -tol {
		t.Fatalf("vdot(a, a) has imaginary part %v", imag(v))
	}
	if real(v) < 0 {
		t.Fatalf("vdot(a, a) = %v is negative", real(v))
	}
	if real(v) == 0 {
		t.Fatal("vdot(a, a) of a random tensor is exactly zero")
	}
}

func TestVdotMatchesDense(t *testing.T) {
	cfg := u1Config(t)
	cfg.DType = tensor.Complex128
	l := u1Leg(map[int]int{0: 2, 1: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	b := randn(t, cfg, tensor.Charge{0}, l, l.Conj())

	v, err := tensor.Vdot(a, b)
	if err != nil {
		t.Fatalf("Vdot: %v", err)
	}
	da, _ := a.ToDense()
	db, _ := b.ToDense()
	var want complex128
	for i := range da {
		want += cmplx.Conj(da[i]) * db[i]
	}
	if cmplx.Abs(want-v) > tol {
		t.Fatalf("vdot = %v, want %v", v, want)
	}
}

func TestVdotConjBilinear(t *testing.T) {
	cfg := u1Config(t)
	cfg.DType = tensor.Complex128
	l := u1Leg(map[int]int{0: 2, 1: 2})
	m := u1Leg(map[int]int{0: 2, 1: 1})

	a := randn(t, cfg, tensor.Charge{1}, l, m.Conj())
	b := randn(t, cfg, tensor.Charge{-1}, l.Conj(), m)

	v, err := tensor.VdotConj(a, b)
	if err != nil {
		t.Fatalf("VdotConj: %v", err)
	}
	var want complex128
	for _, info := range a.BlockInfos() {
		av, _ := a.BlockValues(info.Charges...)
		bv, ok := b.BlockValues(info.Charges...)
		if !ok {
			continue
		}
		for i := range av {
			want += av[i] * bv[i]
		}
	}
	if cmplx.Abs(want-v) > tol {
		t.Fatalf("bilinear product = %v, want %v", v, want)
	}
}

func TestVdotSilentZeroOnChargeMismatch(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2, 1: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	b := randn(t, cfg, tensor.Charge{1}, l, l.Conj())

	v, err := tensor.Vdot(a, b)
	if err != nil {
		t.Fatalf("Vdot: %v", err)
	}
	if v != 0 {
		t.Fatalf("vdot across charges = %v, want the selection-rule zero", v)
	}
}

func TestScalarProductViaTensordot(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2, 1: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	b := randn(t, cfg, tensor.Charge{0}, l, l.Conj())

	full, err := tensor.TensordotConj(a, b, []int{0, 1}, []int{0, 1}, true, false)
	if err != nil {
		t.Fatalf("full contraction: %v", err)
	}
	v, err := tensor.Vdot(a, b)
	if err != nil {
		t.Fatalf("Vdot: %v", err)
	}
	if cmplx.Abs(full.Item()-v) > tol {
		t.Fatalf("tensordot scalar %v, vdot %v", full.Item(), v)
	}
}

func TestZ2Contraction(t *testing.T) {
	cfg := tensor.NewConfig(sym.Z2{}, u1Config(t).Backend)
	l := u1Leg(map[int]int{0: 2, 1: 3})

	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	b := randn(t, cfg, tensor.Charge{1}, l, l.Conj())

	c, err := tensor.Tensordot(a, b, []int{1}, []int{0})
	if err != nil {
		t.Fatalf("Tensordot: %v", err)
	}
	if !c.N().Equal(tensor.Charge{1}) {
		t.Fatalf("result charge %s, want (1)", c.N())
	}
	da, sa := a.ToDense()
	db, sb := b.ToDense()
	want, _ := denseTensordot(da, sa, db, sb, []int{1}, []int{0})
	got, _ := c.ToDense()
	assertDenseClose(t, want, got, "z2 contraction")
}
