// Copyright 2025 Quilt ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sym provides the built-in abelian symmetry groups: U1, Z2
// and the product group U1xU1. Any type satisfying tensor.Symmetry can
// serve in their place.
package sym

import (
	internalsym "github.com/quilt-ml/quilt/internal/sym"
	"github.com/quilt-ml/quilt/tensor"
)

// U1 is the group of integer charges under addition.
type U1 = internalsym.U1

// Z2 is the two-element parity group.
type Z2 = internalsym.Z2

// U1xU1 carries two independent U(1) charges.
type U1xU1 = internalsym.U1xU1

// Compile-time checks that the groups satisfy tensor.Symmetry.
var (
	_ tensor.Symmetry = U1{}
	_ tensor.Symmetry = Z2{}
	_ tensor.Symmetry = U1xU1{}
)
