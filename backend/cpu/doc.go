// Copyright 2025 Quilt ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU backend for symmetric tensor kernels.
//
// # Overview
//
// This package implements the tensor.Backend contract with:
//   - BLAS-backed sector matrix products (gonum blas64/cblas128)
//   - Pure Go gather/scatter kernels for merge, unmerge and trace
//   - Float64 and Complex128 support
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
//	    _ = cfg
//	}
//
// # Thread Safety
//
// The backend holds no mutable state; every call works on the buffers
// and metadata it is handed, so concurrent use is safe.
package cpu
