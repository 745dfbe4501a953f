package cpu

import (
	"math/cmplx"

	"gonum.org/v1/gonum/floats"

	"github.com/quilt-ml/quilt/internal/tensor"
)

// Conj returns the complex conjugate of the buffer; real buffers are
// copied unchanged.
func (cpu *CPUBackend) Conj(t *tensor.RawBuffer) *tensor.RawBuffer {
	if t.DType() == tensor.Float64 {
		return t.Clone()
	}
	out := tensor.NewRawBuffer(t.Len(), tensor.Complex128)
	dst := out.AsComplex128()
	for i, v := range t.AsComplex128() {
		dst[i] = cmplx.Conj(v)
	}
	return out
}

// Scale multiplies the buffer by alpha in place. Real buffers use the
// real part of alpha.
func (cpu *CPUBackend) Scale(t *tensor.RawBuffer, alpha complex128) {
	switch t.DType() {
	case tensor.Float64:
		floats.Scale(real(alpha), t.AsFloat64())
	case tensor.Complex128:
		v := t.AsComplex128()
		for i := range v {
			v[i] *= alpha
		}
	}
}

// Negate flips the sign of the listed element ranges in place.
func (cpu *CPUBackend) Negate(t *tensor.RawBuffer, slices [][2]int) {
	switch t.DType() {
	case tensor.Float64:
		v := t.AsFloat64()
		for _, s := range slices {
			for i := s[0]; i < s[1]; i++ {
				v[i] = -v[i]
			}
		}
	case tensor.Complex128:
		v := t.AsComplex128()
		for _, s := range slices {
			for i := s[0]; i < s[1]; i++ {
				v[i] = -v[i]
			}
		}
	}
}
