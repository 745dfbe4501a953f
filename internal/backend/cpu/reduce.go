package cpu

import (
	"gonum.org/v1/gonum/floats"

	"github.com/quilt-ml/quilt/internal/tensor"
)

// Trace sums the listed traced-index pairs of each contribution into
// the surviving elements.
func (cpu *CPUBackend) Trace(t *tensor.RawBuffer, meta []tensor.TraceMeta, size int) *tensor.RawBuffer {
	out := tensor.NewRawBuffer(size, t.DType())
	switch t.DType() {
	case tensor.Float64:
		traceBlocks(out.AsFloat64(), t.AsFloat64(), meta)
	case tensor.Complex128:
		traceBlocks(out.AsComplex128(), t.AsComplex128(), meta)
	}
	return out
}

// TraceWithMask runs the same gather kernel; the mask filtering is
// already folded into the traced-pair offsets.
func (cpu *CPUBackend) TraceWithMask(t *tensor.RawBuffer, meta []tensor.TraceMeta, size int) *tensor.RawBuffer {
	return cpu.Trace(t, meta, size)
}

func traceBlocks[T element](dst, src []T, meta []tensor.TraceMeta) {
	for _, m := range meta {
		for q, oq := range m.OffOut {
			var acc T
			for _, o12 := range m.Off12 {
				acc += src[m.SrcOff+o12+oq]
			}
			dst[m.DstOff+q] += acc
		}
	}
}

// SumElements reduces the whole buffer to a one-element buffer.
func (cpu *CPUBackend) SumElements(t *tensor.RawBuffer) *tensor.RawBuffer {
	out := tensor.NewRawBuffer(1, t.DType())
	switch t.DType() {
	case tensor.Float64:
		out.AsFloat64()[0] = floats.Sum(t.AsFloat64())
	case tensor.Complex128:
		var acc complex128
		for _, v := range t.AsComplex128() {
			acc += v
		}
		out.AsComplex128()[0] = acc
	}
	return out
}

// CountNonzero counts nonzero elements in [lo, hi).
func (cpu *CPUBackend) CountNonzero(t *tensor.RawBuffer, lo, hi int) int {
	n := 0
	switch t.DType() {
	case tensor.Float64:
		for _, v := range t.AsFloat64()[lo:hi] {
			if v != 0 {
				n++
			}
		}
	case tensor.Complex128:
		for _, v := range t.AsComplex128()[lo:hi] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// Vdot returns sum_i a_i*b_i over the full buffers.
func (cpu *CPUBackend) Vdot(a, b *tensor.RawBuffer) complex128 {
	switch a.DType() {
	case tensor.Float64:
		return complex(floats.Dot(a.AsFloat64(), b.AsFloat64()), 0)
	case tensor.Complex128:
		var acc complex128
		bv := b.AsComplex128()
		for i, v := range a.AsComplex128() {
			acc += v * bv[i]
		}
		return acc
	}
	return 0
}
