// Package cpu implements the reference CPU backend: pure Go kernels
// over flat buffers, with BLAS-backed matrix products via gonum.
package cpu

import (
	"github.com/quilt-ml/quilt/internal/tensor"
)

// CPUBackend executes batched block kernels on the host CPU.
type CPUBackend struct{}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Alloc returns a zeroed buffer for n elements.
func (cpu *CPUBackend) Alloc(n int, dtype tensor.DataType) *tensor.RawBuffer {
	return tensor.NewRawBuffer(n, dtype)
}

// element constrains the kernel helpers to the supported buffer types.
type element interface {
	~float64 | ~complex128
}

func rowMajorStrides(d []int) []int {
	s := make([]int, len(d))
	acc := 1
	for i := len(d) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= d[i]
	}
	return s
}

func prod(d []int) int {
	p := 1
	for _, v := range d {
		p *= v
	}
	return p
}
