package tensor_test

import (
	"math/cmplx"
	"testing"

	"github.com/pkg/errors"

	"github.com/quilt-ml/quilt/internal/tensor"
)

func TestNconMatrixProduct(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{-1: 2, 0: 3, 1: 2})
	m := u1Leg(map[int]int{0: 2, 1: 2})
	r := u1Leg(map[int]int{-1: 2, 0: 1})

	a := randn(t, cfg, tensor.Charge{0}, l, m.Conj())
	b := randn(t, cfg, tensor.Charge{0}, m, r.Conj())

	got, err := tensor.Ncon([]*tensor.Tensor{a, b}, [][]int{{0, 1}, {1, -1}}, nil)
	if err != nil {
		t.Fatalf("Ncon: %v", err)
	}
	want, err := tensor.Tensordot(a, b, []int{1}, []int{0})
	if err != nil {
		t.Fatalf("Tensordot: %v", err)
	}
	assertTensorsClose(t, want, got, "ncon matrix product")
}

func TestNconFinalTranspose(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2, 1: 2})
	m := u1Leg(map[int]int{0: 2, 1: 1})
	r := u1Leg(map[int]int{-1: 1, 0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, m.Conj())
	b := randn(t, cfg, tensor.Charge{0}, m, r.Conj())

	// Output labels reversed relative to the contraction result.
	got, err := tensor.Ncon([]*tensor.Tensor{a, b}, [][]int{{-1, 1}, {1, 0}}, nil)
	if err != nil {
		t.Fatalf("Ncon: %v", err)
	}
	ab, err := tensor.Tensordot(a, b, []int{1}, []int{0})
	if err != nil {
		t.Fatalf("Tensordot: %v", err)
	}
	want, err := ab.Transpose(1, 0)
	if err != nil {
		t.Fatalf("Transpose: %v", err)
	}
	assertTensorsClose(t, want, got, "ncon output ordering")
}

func TestNconChain(t *testing.T) {
	cfg := u1Config(t)
	l1 := u1Leg(map[int]int{0: 2, 1: 2})
	l2 := u1Leg(map[int]int{-1: 1, 0: 2})
	l3 := u1Leg(map[int]int{0: 2, 1: 1})
	l4 := u1Leg(map[int]int{0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l1, l2.Conj())
	b := randn(t, cfg, tensor.Charge{0}, l2, l3.Conj())
	c := randn(t, cfg, tensor.Charge{0}, l3, l4.Conj())

	got, err := tensor.Ncon([]*tensor.Tensor{a, b, c}, [][]int{{0, 1}, {1, 2}, {2, -1}}, nil)
	if err != nil {
		t.Fatalf("Ncon: %v", err)
	}
	ab, err := tensor.Tensordot(a, b, []int{1}, []int{0})
	if err != nil {
		t.Fatalf("a*b: %v", err)
	}
	want, err := tensor.Tensordot(ab, c, []int{1}, []int{0})
	if err != nil {
		t.Fatalf("ab*c: %v", err)
	}
	assertTensorsClose(t, want, got, "three-tensor chain")
}

func TestNconSelfTrace(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{-1: 2, 0: 2, 1: 1})

	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	got, err := tensor.Ncon([]*tensor.Tensor{a}, [][]int{{1, 1}}, nil)
	if err != nil {
		t.Fatalf("Ncon: %v", err)
	}
	want, err := tensor.Trace(a, []int{0}, []int{1})
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if cmplx.Abs(want.Item()-got.Item()) > tol {
		t.Fatalf("ncon trace = %v, want %v", got.Item(), want.Item())
	}
}

func TestNconOuterProduct(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2, 1: 1})
	m := u1Leg(map[int]int{-1: 1, 0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	b := randn(t, cfg, tensor.Charge{0}, m, m.Conj())

	got, err := tensor.Ncon([]*tensor.Tensor{a, b}, [][]int{{0, -1}, {-2, -3}}, nil)
	if err != nil {
		t.Fatalf("Ncon: %v", err)
	}
	want, err := tensor.Tensordot(a, b, nil, nil)
	if err != nil {
		t.Fatalf("outer product: %v", err)
	}
	assertTensorsClose(t, want, got, "disconnected network outer product")
}

func TestNconConjFlag(t *testing.T) {
	cfg := u1Config(t)
	cfg.DType = tensor.Complex128
	l := u1Leg(map[int]int{0: 2, 1: 2})
	m := u1Leg(map[int]int{0: 2, 1: 1})

	a := randn(t, cfg, tensor.Charge{0}, l, m)
	b := randn(t, cfg, tensor.Charge{0}, m, l.Conj())

	got, err := tensor.Ncon([]*tensor.Tensor{a, b}, [][]int{{0, 1}, {1, -1}}, []bool{true, false})
	if err != nil {
		t.Fatalf("Ncon: %v", err)
	}
	want, err := tensor.TensordotConj(a, b, []int{1}, []int{0}, true, false)
	if err != nil {
		t.Fatalf("TensordotConj: %v", err)
	}
	assertTensorsClose(t, want, got, "conjugated operand")
}

func TestNconTripleLabel(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	b := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	_, err := tensor.Ncon([]*tensor.Tensor{a, b}, [][]int{{1, 1}, {1, -1}}, nil)
	if !errors.Is(err, tensor.ErrLabeling) {
		t.Fatalf("got %v, want ErrLabeling", err)
	}
}

func TestNconRepeatedOutputLabel(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	b := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	_, err := tensor.Ncon([]*tensor.Tensor{a, b}, [][]int{{-1, 1}, {1, -1}}, nil)
	if !errors.Is(err, tensor.ErrLabeling) {
		t.Fatalf("got %v, want ErrLabeling", err)
	}
}

func TestNconIntermediateTrace(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj(), l)
	b := randn(t, cfg, tensor.Charge{0}, l.Conj(), l.Conj())
	c := randn(t, cfg, tensor.Charge{0}, l, l.Conj())

	// Label 1 dots a against b and label 2 dots that product against c,
	// leaving both legs of label 3 on the intermediate. The planner
	// rejects the layout instead of tracing an intermediate product.
	_, err := tensor.Ncon([]*tensor.Tensor{a, b, c},
		[][]int{{1, 2, 3}, {1, 3}, {2, 0}}, nil)
	if !errors.Is(err, tensor.ErrLabeling) {
		t.Fatalf("got %v, want ErrLabeling", err)
	}
}

func TestNconLabelCountMismatch(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	_, err := tensor.Ncon([]*tensor.Tensor{a}, [][]int{{1, 1, -1}}, nil)
	if !errors.Is(err, tensor.ErrLabeling) {
		t.Fatalf("got %v, want ErrLabeling", err)
	}
}

func TestEinsumMatrixProduct(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2, 1: 2})
	m := u1Leg(map[int]int{0: 2, 1: 1})
	r := u1Leg(map[int]int{-1: 1, 0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, m.Conj())
	b := randn(t, cfg, tensor.Charge{0}, m, r.Conj())

	got, err := tensor.Einsum("ij,jk->ik", a, b)
	if err != nil {
		t.Fatalf("Einsum: %v", err)
	}
	want, err := tensor.Tensordot(a, b, []int{1}, []int{0})
	if err != nil {
		t.Fatalf("Tensordot: %v", err)
	}
	assertTensorsClose(t, want, got, "einsum matrix product")
}

func TestEinsumConjPrefix(t *testing.T) {
	cfg := u1Config(t)
	cfg.DType = tensor.Complex128
	l := u1Leg(map[int]int{0: 2, 1: 2})
	m := u1Leg(map[int]int{0: 2, 1: 1})

	a := randn(t, cfg, tensor.Charge{0}, l, m)
	b := randn(t, cfg, tensor.Charge{0}, m, l.Conj())

	got, err := tensor.Einsum("*ij,jh->ih", a, b)
	if err != nil {
		t.Fatalf("Einsum: %v", err)
	}
	want, err := tensor.TensordotConj(a, b, []int{1}, []int{0}, true, false)
	if err != nil {
		t.Fatalf("TensordotConj: %v", err)
	}
	assertTensorsClose(t, want, got, "conjugated einsum operand")
}

func TestEinsumRequiresOutputClause(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	_, err := tensor.Einsum("ii", a)
	if !errors.Is(err, tensor.ErrLabeling) {
		t.Fatalf("got %v, want ErrLabeling", err)
	}
}

func TestEinsumUnknownOutputLetter(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, l.Conj())
	_, err := tensor.Einsum("ij->ik", a)
	if !errors.Is(err, tensor.ErrLabeling) {
		t.Fatalf("got %v, want ErrLabeling", err)
	}
}

func TestEinsumOrderEquivalence(t *testing.T) {
	cfg := u1Config(t)
	l1 := u1Leg(map[int]int{0: 2, 1: 2})
	l2 := u1Leg(map[int]int{-1: 1, 0: 2})
	l3 := u1Leg(map[int]int{0: 2, 1: 1})
	l4 := u1Leg(map[int]int{0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l1, l2.Conj())
	b := randn(t, cfg, tensor.Charge{0}, l2, l3.Conj())
	c := randn(t, cfg, tensor.Charge{0}, l3, l4.Conj())

	def, err := tensor.Einsum("ij,jk,kl->il", a, b, c)
	if err != nil {
		t.Fatalf("Einsum: %v", err)
	}
	rev, err := tensor.EinsumOrder("ij,jk,kl->il", "kj", a, b, c)
	if err != nil {
		t.Fatalf("EinsumOrder: %v", err)
	}
	assertTensorsClose(t, def, rev, "contraction order independence")
}

func TestEinsumOrderRejectsUnknownLetter(t *testing.T) {
	cfg := u1Config(t)
	l := u1Leg(map[int]int{0: 2})
	m := u1Leg(map[int]int{0: 2})

	a := randn(t, cfg, tensor.Charge{0}, l, m.Conj())
	b := randn(t, cfg, tensor.Charge{0}, m, l.Conj())
	_, err := tensor.EinsumOrder("ij,jk->ik", "x", a, b)
	if !errors.Is(err, tensor.ErrLabeling) {
		t.Fatalf("got %v, want ErrLabeling", err)
	}
}
