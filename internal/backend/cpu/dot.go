package cpu

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/blas/cblas128"

	"github.com/quilt-ml/quilt/internal/tensor"
)

// Dot executes the batched per-sector matrix product C = A * B.
func (cpu *CPUBackend) Dot(a, b *tensor.RawBuffer, meta []tensor.DotMeta, size int) *tensor.RawBuffer {
	out := tensor.NewRawBuffer(size, a.DType())
	switch a.DType() {
	case tensor.Float64:
		av, bv, cv := a.AsFloat64(), b.AsFloat64(), out.AsFloat64()
		for _, m := range meta {
			gemmFloat64(cv, av, bv, m.COff, m.AOff, m.BOff, m.M, m.K, m.N)
		}
	case tensor.Complex128:
		av, bv, cv := a.AsComplex128(), b.AsComplex128(), out.AsComplex128()
		for _, m := range meta {
			gemmComplex128(cv, av, bv, m.COff, m.AOff, m.BOff, m.M, m.K, m.N)
		}
	}
	return out
}

// DotWithMask compresses the contracted dimension of both operands
// through the per-sector boolean selections before each multiply.
func (cpu *CPUBackend) DotWithMask(a, b *tensor.RawBuffer, meta []tensor.DotMeta, masks []tensor.DotMask, size int) *tensor.RawBuffer {
	out := tensor.NewRawBuffer(size, a.DType())
	switch a.DType() {
	case tensor.Float64:
		av, bv, cv := a.AsFloat64(), b.AsFloat64(), out.AsFloat64()
		for i, m := range meta {
			ac, bc, kc := maskedOperands(av, bv, m, masks[i])
			gemmFloat64(cv, ac, bc, m.COff, 0, 0, m.M, kc, m.N)
		}
	case tensor.Complex128:
		av, bv, cv := a.AsComplex128(), b.AsComplex128(), out.AsComplex128()
		for i, m := range meta {
			ac, bc, kc := maskedOperands(av, bv, m, masks[i])
			gemmComplex128(cv, ac, bc, m.COff, 0, 0, m.M, kc, m.N)
		}
	}
	return out
}

// maskedOperands gathers the selected columns of A and rows of B into
// compact scratch matrices sharing the compressed inner dimension.
func maskedOperands[T element](av, bv []T, m tensor.DotMeta, mask tensor.DotMask) (ac, bc []T, kc int) {
	for _, keep := range mask.A {
		if keep {
			kc++
		}
	}
	ac = make([]T, m.M*kc)
	p := 0
	for r := 0; r < m.M; r++ {
		row := av[m.AOff+r*m.K:]
		for k, keep := range mask.A {
			if keep {
				ac[p] = row[k]
				p++
			}
		}
	}
	bc = make([]T, kc*m.N)
	p = 0
	for k, keep := range mask.B {
		if keep {
			copy(bc[p*m.N:(p+1)*m.N], bv[m.BOff+k*m.N:m.BOff+(k+1)*m.N])
			p++
		}
	}
	return ac, bc, kc
}

func gemmFloat64(c, a, b []float64, cOff, aOff, bOff, m, k, n int) {
	if m == 0 || n == 0 || k == 0 {
		return
	}
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas64.General{Rows: m, Cols: k, Stride: k, Data: a[aOff : aOff+m*k]},
		blas64.General{Rows: k, Cols: n, Stride: n, Data: b[bOff : bOff+k*n]},
		0,
		blas64.General{Rows: m, Cols: n, Stride: n, Data: c[cOff : cOff+m*n]})
}

func gemmComplex128(c, a, b []complex128, cOff, aOff, bOff, m, k, n int) {
	if m == 0 || n == 0 || k == 0 {
		return
	}
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1,
		cblas128.General{Rows: m, Cols: k, Stride: k, Data: a[aOff : aOff+m*k]},
		cblas128.General{Rows: k, Cols: n, Stride: n, Data: b[bOff : bOff+k*n]},
		0,
		cblas128.General{Rows: m, Cols: n, Stride: n, Data: c[cOff : cOff+m*n]})
}
