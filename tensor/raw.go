// Copyright 2025 Quilt ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/quilt-ml/quilt/internal/tensor"
)

// RawBuffer is the flat element storage behind a tensor.
//
// RawBuffer provides:
//   - Element type information via DType() and Len()
//   - Zero-copy typed access via AsFloat64() and AsComplex128()
//   - Deep copies via Clone()
//
// Most users never touch buffers directly; they exist for backend
// implementations.
type RawBuffer = tensor.RawBuffer

// DataType is the element type of a buffer.
type DataType = tensor.DataType

// Element types.
const (
	Float64    DataType = tensor.Float64
	Complex128 DataType = tensor.Complex128
)

// NewRawBuffer allocates a zeroed buffer for n elements of dtype.
func NewRawBuffer(n int, dtype DataType) *RawBuffer {
	return tensor.NewRawBuffer(n, dtype)
}
