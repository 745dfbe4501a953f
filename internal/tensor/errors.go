package tensor

import "github.com/pkg/errors"

// Error taxonomy of the engine. Every operator failure wraps exactly one
// of these sentinels, so callers can classify with errors.Is. All failures
// are synchronous contract violations and leave the operands unmodified.
var (
	// ErrStructuralMismatch reports operands that cannot be combined:
	// different symmetry groups, element types, or incompatible leg
	// signatures on contracted axes.
	ErrStructuralMismatch = errors.New("structural mismatch")

	// ErrDimensionMismatch reports sectors that match by charge but
	// disagree in size, with no fusion-history mask able to resolve it.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrFusionInconsistency reports an operation that requires a
	// trivially fused leg (broadcast, apply_mask) applied to a fused one,
	// or fusion descriptors that cannot be reconciled.
	ErrFusionInconsistency = errors.New("fusion inconsistency")

	// ErrLabeling reports malformed contraction labeling given to
	// the planner (ncon/einsum) or malformed axis groupings.
	ErrLabeling = errors.New("labeling error")
)
