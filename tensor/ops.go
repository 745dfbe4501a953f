// Copyright 2025 Quilt ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/quilt-ml/quilt/internal/tensor"
)

// Tensordot contracts axesA of a against axesB of b, pairwise.
//
// Example:
//
//	// Matrix product over the shared middle leg.
//	c, err := tensor.Tensordot(a, b, []int{1}, []int{0})
func Tensordot(a, b *Tensor, axesA, axesB []int) (*Tensor, error) {
	return tensor.Tensordot(a, b, axesA, axesB)
}

// TensordotConj is Tensordot with per-operand conjugation flags.
func TensordotConj(a, b *Tensor, axesA, axesB []int, conjA, conjB bool) (*Tensor, error) {
	return tensor.TensordotConj(a, b, axesA, axesB, conjA, conjB)
}

// Trace contracts axes1[k] of a with axes2[k] of a.
func Trace(a *Tensor, axes1, axes2 []int) (*Tensor, error) {
	return tensor.Trace(a, axes1, axes2)
}

// Vdot returns the scalar product <a|b> with a conjugated. Operands
// whose net charges differ yield zero by charge conservation.
func Vdot(a, b *Tensor) (complex128, error) {
	return tensor.Vdot(a, b)
}

// VdotConj returns the bilinear product sum a*b without conjugation.
func VdotConj(a, b *Tensor) (complex128, error) {
	return tensor.VdotConj(a, b)
}

// Broadcast multiplies the diagonal tensor d elementwise into axis of t.
func Broadcast(d, t *Tensor, axis int) (*Tensor, error) {
	return tensor.Broadcast(d, t, axis)
}

// ApplyMask projects t along axis onto the nonzero support of the
// diagonal tensor d.
func ApplyMask(d, t *Tensor, axis int) (*Tensor, error) {
	return tensor.ApplyMask(d, t, axis)
}

// SwapGate applies fermionic swap gates between consecutive pairs of
// axis groups.
func SwapGate(a *Tensor, groups ...[]int) (*Tensor, error) {
	return tensor.SwapGate(a, groups...)
}

// Ncon contracts a labeled network of tensors.
//
// Example:
//
//	// trace(A * B) over both shared legs.
//	r, err := tensor.Ncon([]*tensor.Tensor{a, b}, [][]int{{1, 2}, {2, 1}}, nil)
func Ncon(ts []*Tensor, inds [][]int, conjs []bool) (*Tensor, error) {
	return tensor.Ncon(ts, inds, conjs)
}

// Einsum contracts tensors following letter subscripts, e.g.
// "ij,jk->ik". A leading '*' conjugates that operand.
func Einsum(subscripts string, ts ...*Tensor) (*Tensor, error) {
	return tensor.Einsum(subscripts, ts...)
}

// EinsumOrder is Einsum with an explicit contraction order for the
// repeated letters.
func EinsumOrder(subscripts, order string, ts ...*Tensor) (*Tensor, error) {
	return tensor.EinsumOrder(subscripts, order, ts...)
}
