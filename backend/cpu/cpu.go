// Copyright 2025 Quilt ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/quilt-ml/quilt/internal/backend/cpu"
	"github.com/quilt-ml/quilt/tensor"
)

// Backend represents the CPU backend implementation.
//
// It executes every block kernel in pure Go, with BLAS-backed matrix
// products via gonum.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
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
func New() *Backend {
	return internalcpu.New()
}
