package tensor_test

import (
	"math/cmplx"
	"testing"

	"github.com/quilt-ml/quilt/internal/backend/cpu"
	"github.com/quilt-ml/quilt/internal/sym"
	"github.com/quilt-ml/quilt/internal/tensor"
)

// Dense reference implementations. Every contraction property is
// checked against a naive dense computation over ToDense exports.

const tol = 1e-10

func u1Config(t *testing.T) *tensor.Config {
	t.Helper()
	return tensor.NewConfig(sym.U1{}, cpu.New())
}

func u1Leg(dims map[int]int) tensor.Leg {
	secs := make([]tensor.Sector, 0, len(dims))
	for c, d := range dims {
		secs = append(secs, tensor.Sector{Charge: tensor.Charge{c}, Dim: d})
	}
	return tensor.NewLeg(1, secs...)
}

func randn(t *testing.T, cfg *tensor.Config, n tensor.Charge, legs ...tensor.Leg) *tensor.Tensor {
	t.Helper()
	a, err := tensor.Randn(cfg, n, legs...)
	if err != nil {
		t.Fatalf("Randn: %v", err)
	}
	return a
}

func multiIndex(lin int, shape []int) []int {
	idx := make([]int, len(shape))
	for i := len(shape) - 1; i >= 0; i-- {
		idx[i] = lin % shape[i]
		lin /= shape[i]
	}
	return idx
}

func linIndex(idx, shape []int) int {
	lin := 0
	for i, v := range idx {
		lin = lin*shape[i] + v
	}
	return lin
}

func gather(idx []int, axes []int) []int {
	out := make([]int, len(axes))
	for i, ax := range axes {
		out[i] = idx[ax]
	}
	return out
}

func complement(axes []int, ndim int) []int {
	in := make([]bool, ndim)
	for _, ax := range axes {
		in[ax] = true
	}
	out := make([]int, 0, ndim-len(axes))
	for ax := 0; ax < ndim; ax++ {
		if !in[ax] {
			out = append(out, ax)
		}
	}
	return out
}

// denseTensordot is the naive reference contraction of two dense
// arrays.
func denseTensordot(a []complex128, sa []int, b []complex128, sb []int, axA, axB []int) ([]complex128, []int) {
	outA := complement(axA, len(sa))
	outB := complement(axB, len(sb))
	sc := append(gather(sa, outA), gather(sb, outB)...)
	c := make([]complex128, prodInts(sc))
	for ia := range a {
		if a[ia] == 0 {
			continue
		}
		idxA := multiIndex(ia, sa)
		for ib := range b {
			idxB := multiIndex(ib, sb)
			match := true
			for k := range axA {
				if idxA[axA[k]] != idxB[axB[k]] {
					match = false
					break
				}
			}
			if !match {
				continue
			}
			idxC := append(gather(idxA, outA), gather(idxB, outB)...)
			c[linIndex(idxC, sc)] += a[ia] * b[ib]
		}
	}
	return c, sc
}

// denseTrace sums dense array entries where the paired axes agree.
func denseTrace(a []complex128, sa []int, ax1, ax2 []int) ([]complex128, []int) {
	traced := append(append([]int(nil), ax1...), ax2...)
	out := complement(traced, len(sa))
	sc := gather(sa, out)
	c := make([]complex128, prodInts(sc))
	for ia, v := range a {
		idx := multiIndex(ia, sa)
		keep := true
		for k := range ax1 {
			if idx[ax1[k]] != idx[ax2[k]] {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}
		c[linIndex(gather(idx, out), sc)] += v
	}
	return c, sc
}

func prodInts(d []int) int {
	p := 1
	for _, v := range d {
		p *= v
	}
	return p
}

func assertShape(t *testing.T, expected, actual []int, msg string) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("%s: shape %v, want %v", msg, actual, expected)
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Fatalf("%s: shape %v, want %v", msg, actual, expected)
		}
	}
}

func assertDenseClose(t *testing.T, expected, actual []complex128, msg string) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("%s: %d elements, want %d", msg, len(actual), len(expected))
	}
	for i := range expected {
		if cmplx.Abs(expected[i]-actual[i]) > tol {
			t.Fatalf("%s: element %d is %v, want %v", msg, i, actual[i], expected[i])
		}
	}
}

// assertTensorsClose compares two tensors through their dense exports.
func assertTensorsClose(t *testing.T, expected, actual *tensor.Tensor, msg string) {
	t.Helper()
	de, se := expected.ToDense()
	da, sa := actual.ToDense()
	assertShape(t, se, sa, msg)
	assertDenseClose(t, de, da, msg)
}
