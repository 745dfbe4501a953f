package cpu

import (
	"github.com/quilt-ml/quilt/internal/tensor"
)

// TransposeAndMerge lays blocks out as two-sided sector matrices,
// permuting each block's legs into (row legs, column legs) order.
func (cpu *CPUBackend) TransposeAndMerge(t *tensor.RawBuffer, meta []tensor.MergeChunk, size int) *tensor.RawBuffer {
	out := tensor.NewRawBuffer(size, t.DType())
	switch t.DType() {
	case tensor.Float64:
		dst, src := out.AsFloat64(), t.AsFloat64()
		for _, m := range meta {
			mergeChunk(dst, src, m)
		}
	case tensor.Complex128:
		dst, src := out.AsComplex128(), t.AsComplex128()
		for _, m := range meta {
			mergeChunk(dst, src, m)
		}
	}
	return out
}

func mergeChunk[T element](dst, src []T, m tensor.MergeChunk) {
	ss := rowMajorStrides(m.SrcD)
	pd := make([]int, len(m.Axes))
	contrib := make([]int, len(m.Axes))
	for k, ax := range m.Axes {
		pd[k] = m.SrcD[ax]
		contrib[k] = ss[ax]
	}
	rd := prod(pd[:m.RowAxes])
	cd := prod(pd[m.RowAxes:])
	idx := make([]int, len(pd))
	srcOff := 0
	for r := 0; r < rd; r++ {
		base := m.DstOff + (m.RowOff+r)*m.DstStride + m.ColOff
		for c := 0; c < cd; c++ {
			dst[base+c] = src[m.SrcOff+srcOff]
			for k := len(idx) - 1; k >= 0; k-- {
				idx[k]++
				srcOff += contrib[k]
				if idx[k] < pd[k] {
					break
				}
				idx[k] = 0
				srcOff -= pd[k] * contrib[k]
			}
		}
	}
}

// Unmerge restores the multi-leg block layout: each (RowD x ColD)
// rectangle of a sector matrix becomes one contiguous block.
func (cpu *CPUBackend) Unmerge(t *tensor.RawBuffer, meta []tensor.UnmergeChunk, size int) *tensor.RawBuffer {
	out := tensor.NewRawBuffer(size, t.DType())
	switch t.DType() {
	case tensor.Float64:
		dst, src := out.AsFloat64(), t.AsFloat64()
		for _, m := range meta {
			unmergeChunk(dst, src, m)
		}
	case tensor.Complex128:
		dst, src := out.AsComplex128(), t.AsComplex128()
		for _, m := range meta {
			unmergeChunk(dst, src, m)
		}
	}
	return out
}

func unmergeChunk[T element](dst, src []T, m tensor.UnmergeChunk) {
	for r := 0; r < m.RowD; r++ {
		s0 := m.SrcOff + (m.RowOff+r)*m.SrcStride + m.ColOff
		d0 := m.DstOff + r*m.ColD
		copy(dst[d0:d0+m.ColD], src[s0:s0+m.ColD])
	}
}

// Transpose permutes the legs of each listed block.
func (cpu *CPUBackend) Transpose(t *tensor.RawBuffer, meta []tensor.TransposeChunk, size int) *tensor.RawBuffer {
	out := tensor.NewRawBuffer(size, t.DType())
	switch t.DType() {
	case tensor.Float64:
		dst, src := out.AsFloat64(), t.AsFloat64()
		for _, m := range meta {
			transposeChunk(dst, src, m)
		}
	case tensor.Complex128:
		dst, src := out.AsComplex128(), t.AsComplex128()
		for _, m := range meta {
			transposeChunk(dst, src, m)
		}
	}
	return out
}

func transposeChunk[T element](dst, src []T, m tensor.TransposeChunk) {
	ss := rowMajorStrides(m.D)
	pd := make([]int, len(m.Axes))
	contrib := make([]int, len(m.Axes))
	for k, ax := range m.Axes {
		pd[k] = m.D[ax]
		contrib[k] = ss[ax]
	}
	n := prod(pd)
	idx := make([]int, len(pd))
	srcOff := 0
	for lin := 0; lin < n; lin++ {
		dst[m.DstOff+lin] = src[m.SrcOff+srcOff]
		for k := len(idx) - 1; k >= 0; k-- {
			idx[k]++
			srcOff += contrib[k]
			if idx[k] < pd[k] {
				break
			}
			idx[k] = 0
			srcOff -= pd[k] * contrib[k]
		}
	}
}

// ApplySlice compacts element ranges into a fresh buffer.
func (cpu *CPUBackend) ApplySlice(t *tensor.RawBuffer, meta []tensor.SliceMeta, size int) *tensor.RawBuffer {
	out := tensor.NewRawBuffer(size, t.DType())
	switch t.DType() {
	case tensor.Float64:
		dst, src := out.AsFloat64(), t.AsFloat64()
		for _, m := range meta {
			copy(dst[m.DstOff:m.DstOff+m.Size], src[m.SrcOff:m.SrcOff+m.Size])
		}
	case tensor.Complex128:
		dst, src := out.AsComplex128(), t.AsComplex128()
		for _, m := range meta {
			copy(dst[m.DstOff:m.DstOff+m.Size], src[m.SrcOff:m.SrcOff+m.Size])
		}
	}
	return out
}

// Compress keeps the elements selected by mask, in order.
func (cpu *CPUBackend) Compress(t *tensor.RawBuffer, mask []bool) *tensor.RawBuffer {
	n := 0
	for _, keep := range mask {
		if keep {
			n++
		}
	}
	out := tensor.NewRawBuffer(n, t.DType())
	switch t.DType() {
	case tensor.Float64:
		dst, src := out.AsFloat64(), t.AsFloat64()
		p := 0
		for i, keep := range mask {
			if keep {
				dst[p] = src[i]
				p++
			}
		}
	case tensor.Complex128:
		dst, src := out.AsComplex128(), t.AsComplex128()
		p := 0
		for i, keep := range mask {
			if keep {
				dst[p] = src[i]
				p++
			}
		}
	}
	return out
}
