// Copyright 2025 Quilt ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/quilt-ml/quilt/internal/tensor"
)

// Type aliases for the public API.

// Charge is the conserved quantum number carried by a sector, one int
// per symmetry generator.
type Charge = tensor.Charge

// Sector is one charge sector of a leg with its dense dimension.
type Sector = tensor.Sector

// Section is one slice of a hard-fused leg's sector, recording the
// native charge combination it came from.
type Section = tensor.Section

// Fusion records a leg's fusion history.
type Fusion = tensor.Fusion

// FusionKind classifies a leg's fusion history.
type FusionKind = tensor.FusionKind

// Fusion kinds.
const (
	FusionTrivial FusionKind = tensor.FusionTrivial
	FusionMeta    FusionKind = tensor.FusionMeta
	FusionHard    FusionKind = tensor.FusionHard
)

// SectionKey serializes a charge for use as a Fusion.Sections map key.
func SectionKey(c Charge) string {
	return tensor.SectionKey(c)
}

// Leg is one tensor leg: a signature and its charge sector table.
type Leg = tensor.Leg

// NewLeg builds a leg with signature s and the given sectors.
func NewLeg(s int, sectors ...Sector) Leg {
	return tensor.NewLeg(s, sectors...)
}

// Symmetry is the abelian group consulted whenever charges combine.
type Symmetry = tensor.Symmetry

// Config bundles the symmetry, backend, fermionic flags, element type
// and logger shared by a family of tensors.
type Config = tensor.Config

// NewConfig builds a config with Float64 elements and a no-op logger.
func NewConfig(sym Symmetry, backend Backend) *Config {
	return tensor.NewConfig(sym, backend)
}

// Tensor is a block-sparse symmetric tensor.
type Tensor = tensor.Tensor

// BlockInfo describes one stored block: its charges and dimensions.
type BlockInfo = tensor.BlockInfo

// Builder assembles a tensor block by block.
type Builder = tensor.Builder

// NewBuilder starts a tensor with total charge n and the given legs.
func NewBuilder(cfg *Config, n Charge, legs ...Leg) *Builder {
	return tensor.NewBuilder(cfg, n, legs...)
}

// NewDiagBuilder starts a diagonal tensor on leg and its conjugate.
func NewDiagBuilder(cfg *Config, leg Leg) *Builder {
	return tensor.NewDiagBuilder(cfg, leg)
}

// Zeros creates a tensor with every charge-allowed block zero-filled.
func Zeros(cfg *Config, n Charge, legs ...Leg) (*Tensor, error) {
	return tensor.Zeros(cfg, n, legs...)
}

// Randn creates a tensor with normally distributed elements in every
// charge-allowed block.
func Randn(cfg *Config, n Charge, legs ...Leg) (*Tensor, error) {
	return tensor.Randn(cfg, n, legs...)
}

// Eye creates the identity as a diagonal tensor on leg.
func Eye(cfg *Config, leg Leg) (*Tensor, error) {
	return tensor.Eye(cfg, leg)
}

// RandnDiag creates a diagonal tensor with normally distributed
// diagonal values.
func RandnDiag(cfg *Config, leg Leg) (*Tensor, error) {
	return tensor.RandnDiag(cfg, leg)
}

// Error sentinels. Wrap-aware: test with errors.Is.
var (
	// ErrStructuralMismatch reports incompatible symmetries, signatures
	// or configs between operands.
	ErrStructuralMismatch = tensor.ErrStructuralMismatch

	// ErrDimensionMismatch reports matched sectors that disagree in
	// size with no resolving mask.
	ErrDimensionMismatch = tensor.ErrDimensionMismatch

	// ErrFusionInconsistency reports fusion histories that cannot be
	// reconciled, or an operation requiring a trivially fused leg.
	ErrFusionInconsistency = tensor.ErrFusionInconsistency

	// ErrLabeling reports malformed contraction labeling.
	ErrLabeling = tensor.ErrLabeling
)
