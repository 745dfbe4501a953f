// Copyright 2025 Quilt ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides block-sparse tensors with abelian symmetries.
//
// # Overview
//
// A symmetric tensor stores only the blocks allowed by charge
// conservation: each leg carries a signature and a table of charge
// sectors, and a block exists only when the fused leg charges match the
// tensor's total charge. This package provides:
//   - Sector-aware contraction (Tensordot, Trace, Vdot)
//   - Diagonal-tensor broadcast and mask application
//   - Fermionic swap gates
//   - A label-driven network planner (Ncon, Einsum)
//
// # Basic Usage
//
//	import (
//	    "github.com/quilt-ml/quilt/backend/cpu"
//	    "github.com/quilt-ml/quilt/sym"
//	    "github.com/quilt-ml/quilt/tensor"
//	)
//
//	func main() {
//	    cfg := tensor.NewConfig(sym.U1{}, cpu.New())
//	    leg := tensor.NewLeg(1,
//	        tensor.Sector{Charge: tensor.Charge{0}, Dim: 2},
//	        tensor.Sector{Charge: tensor.Charge{1}, Dim: 3},
//	    )
//	    a, _ := tensor.Randn(cfg, tensor.Charge{0}, leg, leg.Conj())
//	    b, _ := tensor.Randn(cfg, tensor.Charge{0}, leg, leg.Conj())
//
//	    // Contract the second leg of a with the first leg of b.
//	    c, _ := tensor.Tensordot(a, b, []int{1}, []int{0})
//	    _ = c
//	}
//
// # Element Types
//
// Tensors hold float64 or complex128 elements; the element type is set
// on the Config and shared by every tensor created under it.
//
// # Mutation Model
//
// Operations never mutate their inputs. The two documented exceptions
// are Scale and the sign flips applied by SwapGate, which work on a
// fresh clone.
package tensor
