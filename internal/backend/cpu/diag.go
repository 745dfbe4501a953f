package cpu

import (
	"github.com/quilt-ml/quilt/internal/tensor"
)

// DotDiag multiplies diagonal values elementwise into one axis of each
// listed target block.
func (cpu *CPUBackend) DotDiag(t, diag *tensor.RawBuffer, meta []tensor.DiagMeta, size int) *tensor.RawBuffer {
	out := tensor.NewRawBuffer(size, t.DType())
	switch t.DType() {
	case tensor.Float64:
		dotDiag(out.AsFloat64(), t.AsFloat64(), diag.AsFloat64(), meta)
	case tensor.Complex128:
		dotDiag(out.AsComplex128(), t.AsComplex128(), diag.AsComplex128(), meta)
	}
	return out
}

// MaskDiag keeps the target entries whose diagonal value is nonzero,
// truncating the masked axis of each block to its NewDim.
func (cpu *CPUBackend) MaskDiag(t, diag *tensor.RawBuffer, meta []tensor.DiagMeta, size int) *tensor.RawBuffer {
	out := tensor.NewRawBuffer(size, t.DType())
	switch t.DType() {
	case tensor.Float64:
		maskDiag(out.AsFloat64(), t.AsFloat64(), diag.AsFloat64(), meta)
	case tensor.Complex128:
		maskDiag(out.AsComplex128(), t.AsComplex128(), diag.AsComplex128(), meta)
	}
	return out
}

func dotDiag[T element](dst, src, diag []T, meta []tensor.DiagMeta) {
	for _, m := range meta {
		for p := 0; p < m.Pre; p++ {
			for i := 0; i < m.Dim; i++ {
				v := diag[m.DiagOff+i]
				base := (p*m.Dim + i) * m.Post
				for q := 0; q < m.Post; q++ {
					dst[m.DstOff+base+q] = src[m.SrcOff+base+q] * v
				}
			}
		}
	}
}

func maskDiag[T element](dst, src, diag []T, meta []tensor.DiagMeta) {
	for _, m := range meta {
		keep := make([]int, 0, m.NewDim)
		for i := 0; i < m.Dim; i++ {
			if diag[m.DiagOff+i] != 0 {
				keep = append(keep, i)
			}
		}
		for p := 0; p < m.Pre; p++ {
			for j, i := range keep {
				src0 := m.SrcOff + (p*m.Dim+i)*m.Post
				dst0 := m.DstOff + (p*m.NewDim+j)*m.Post
				copy(dst[dst0:dst0+m.Post], src[src0:src0+m.Post])
			}
		}
	}
}
