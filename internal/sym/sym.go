// Package sym implements the abelian symmetry groups consumed by the
// tensor engine: U(1), Z2 and the product group U(1)xU(1). Each group
// fuses flattened charge rows under per-leg signatures and normalizes
// the result to its canonical representative.
package sym

// U1 is the group of integer charges under addition.
type U1 struct{}

// NSym returns 1.
func (U1) NSym() int { return 1 }

// Name returns "U1".
func (U1) Name() string { return "U1" }

// Fuse returns dir * sum_i signs[i]*charges[i].
func (U1) Fuse(charges []int, signs []int, dir int) []int {
	return []int{weightedSum(charges, signs, dir, 1, 0)}
}

// Z2 is the two-element parity group; charges are normalized to {0, 1}.
type Z2 struct{}

// NSym returns 1.
func (Z2) NSym() int { return 1 }

// Name returns "Z2".
func (Z2) Name() string { return "Z2" }

// Fuse returns dir * sum_i signs[i]*charges[i] mod 2.
func (Z2) Fuse(charges []int, signs []int, dir int) []int {
	return []int{mod2(weightedSum(charges, signs, dir, 1, 0))}
}

// U1xU1 carries two independent U(1) charges.
type U1xU1 struct{}

// NSym returns 2.
func (U1xU1) NSym() int { return 2 }

// Name returns "U1xU1".
func (U1xU1) Name() string { return "U1xU1" }

// Fuse sums each charge component independently.
func (U1xU1) Fuse(charges []int, signs []int, dir int) []int {
	return []int{
		weightedSum(charges, signs, dir, 2, 0),
		weightedSum(charges, signs, dir, 2, 1),
	}
}

// weightedSum accumulates component k of every charge in a flattened
// row of nsym-wide charges. An empty row fuses to zero.
func weightedSum(charges []int, signs []int, dir, nsym, k int) int {
	s := 0
	for i, sign := range signs {
		s += sign * charges[i*nsym+k]
	}
	return dir * s
}

func mod2(v int) int {
	v %= 2
	if v < 0 {
		v += 2
	}
	return v
}
