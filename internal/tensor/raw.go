package tensor

import (
	"fmt"
	"unsafe"
)

// DataType is the element type of a tensor's flat buffer.
type DataType int

// Supported element types.
const (
	Float64 DataType = iota
	Complex128
)

// Size returns the element size in bytes.
func (d DataType) Size() int {
	switch d {
	case Float64:
		return 8
	case Complex128:
		return 16
	default:
		panic(fmt.Sprintf("unknown data type %d", int(d)))
	}
}

// String returns a human-readable type name.
func (d DataType) String() string {
	switch d {
	case Float64:
		return "float64"
	case Complex128:
		return "complex128"
	default:
		return "unknown"
	}
}

// RawBuffer is the flat storage behind a tensor: every block of the
// tensor lives in one contiguous allocation, addressed by element
// offsets recorded in the block table. The buffer carries its element
// type; typed views reinterpret the bytes without copying.
type RawBuffer struct {
	data  []byte
	dtype DataType
}

// NewRawBuffer allocates a zeroed buffer for n elements of dtype.
func NewRawBuffer(n int, dtype DataType) *RawBuffer {
	return &RawBuffer{
		data:  make([]byte, n*dtype.Size()),
		dtype: dtype,
	}
}

// DType returns the buffer's element type.
func (r *RawBuffer) DType() DataType {
	return r.dtype
}

// Len returns the number of elements.
func (r *RawBuffer) Len() int {
	return len(r.data) / r.dtype.Size()
}

// AsFloat64 interprets the data as []float64.
// Panics if the buffer's dtype is not Float64.
func (r *RawBuffer) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("buffer dtype is %s, not float64", r.dtype))
	}
	if len(r.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy views, bounds checked by Len()
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.data[0])), r.Len())
}

// AsComplex128 interprets the data as []complex128.
// Panics if the buffer's dtype is not Complex128.
func (r *RawBuffer) AsComplex128() []complex128 {
	if r.dtype != Complex128 {
		panic(fmt.Sprintf("buffer dtype is %s, not complex128", r.dtype))
	}
	if len(r.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy views, bounds checked by Len()
	return unsafe.Slice((*complex128)(unsafe.Pointer(&r.data[0])), r.Len())
}

// Clone returns a deep copy of the buffer.
func (r *RawBuffer) Clone() *RawBuffer {
	clone := &RawBuffer{
		data:  make([]byte, len(r.data)),
		dtype: r.dtype,
	}
	copy(clone.data, r.data)
	return clone
}
