package tensor

// Symmetry is the abelian group consulted whenever charges combine.
// Implementations live outside the engine (see the sym package).
type Symmetry interface {
	// NSym is the number of independent generators, i.e. the length of
	// every Charge handled under this symmetry.
	NSym() int

	// Fuse combines len(signs) charges, given as a flattened row of
	// len(signs)*NSym ints, into a single charge: the normalized value
	// of dir * sum_i signs[i]*c_i. dir is +1 or -1.
	Fuse(charges []int, signs []int, dir int) []int

	// Name identifies the group; tensors under different names can
	// never be combined.
	Name() string
}

// fuseRow fuses the charges of the given native axes of a block row
// using the per-leg signatures of legs, in direction dir.
func fuseRow(sym Symmetry, row []int, legs []Leg, axes []int, dir int) []int {
	nsym := sym.NSym()
	charges := make([]int, 0, len(axes)*nsym)
	signs := make([]int, 0, len(axes))
	for _, ax := range axes {
		charges = append(charges, row[ax*nsym:(ax+1)*nsym]...)
		signs = append(signs, legs[ax].S)
	}
	return sym.Fuse(charges, signs, dir)
}

// fuseCharges fuses a list of whole charges with unit signatures.
func fuseCharges(sym Symmetry, dir int, cs ...Charge) Charge {
	row := make([]int, 0, len(cs)*sym.NSym())
	signs := make([]int, 0, len(cs))
	for _, c := range cs {
		row = append(row, c...)
		signs = append(signs, 1)
	}
	return sym.Fuse(row, signs, dir)
}

// negateCharge maps n to -n under the group's normalization.
func negateCharge(sym Symmetry, c Charge) Charge {
	return sym.Fuse(c, []int{-1}, 1)
}
