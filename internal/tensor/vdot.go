package tensor

import (
	"github.com/pkg/errors"
)

// Vdot returns the scalar product <a|b> = sum conj(a) * b over all
// matching blocks. When the operands carry different net charges the
// product is zero by charge conservation and a typed zero is returned.
func Vdot(a, b *Tensor) (complex128, error) {
	return vdotCommon(a.Conj(), b)
}

// VdotConj returns the bilinear product sum a * b without conjugation.
// The operands must carry opposite signatures.
func VdotConj(a, b *Tensor) (complex128, error) {
	return vdotCommon(a, b)
}

func vdotCommon(ac, b *Tensor) (complex128, error) {
	if err := compatibleConfigs(ac.cfg, b.cfg); err != nil {
		return 0, err
	}
	if ac.diag != b.diag || ac.NdimN() != b.NdimN() {
		return 0, errors.Wrapf(ErrStructuralMismatch,
			"scalar product needs operands of equal rank (%d vs %d)", ac.NdimN(), b.NdimN())
	}
	ga, gb := ac.metaGroups(), b.metaGroups()
	if len(ga) != len(gb) {
		return 0, errors.Wrap(ErrFusionInconsistency, "operands disagree in logical rank")
	}
	for i := range ga {
		if ga[i] != gb[i] {
			return 0, errors.Wrapf(ErrFusionInconsistency, "logical leg %d groups different native legs", i)
		}
	}
	needsMask := false
	for i := range ac.legs {
		la, lb := ac.legs[i], b.legs[i]
		if la.S != -lb.S {
			return 0, errors.Wrapf(ErrStructuralMismatch, "leg %d signatures do not match", i)
		}
		switch {
		case la.kind() == FusionHard && lb.kind() == FusionHard:
			if !fusionEqual(la.Fusion, lb.Fusion) {
				needsMask = true
			}
		case la.kind() == FusionHard || lb.kind() == FusionHard:
			return 0, errors.Wrapf(ErrFusionInconsistency,
				"leg %d mixes a hard-fused leg with an unfused one", i)
		}
	}
	if !fuseCharges(ac.cfg.Sym, 1, ac.n, b.n).IsZero() {
		ac.cfg.Logger.Debug().
			Str("op", "vdot").
			Str("na", ac.n.String()).
			Str("nb", b.n.String()).
			Msg("net charges do not cancel; scalar product is zero by charge conservation")
		return 0, nil
	}

	if needsMask {
		if ac.diag {
			return 0, errors.Wrap(ErrFusionInconsistency, "diagonal tensors cannot carry diverging fusion histories")
		}
		return vdotMasked(ac, b)
	}

	// Both block tables are charge-sorted; intersect with a merge-join
	// and compact each side to its matched elements.
	var sa, sb []SliceMeta
	i, j, size := 0, 0, 0
	for i < len(ac.blocks) && j < len(b.blocks) {
		ba, bb := &ac.blocks[i], &b.blocks[j]
		switch c := compareRows(ba.t, bb.t); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			if !equalRows(ba.D, bb.D) {
				return 0, errors.Wrapf(ErrDimensionMismatch,
					"block %v dimensions disagree (%v vs %v)", ba.t, ba.D, bb.D)
			}
			sa = append(sa, SliceMeta{DstOff: size, SrcOff: ba.off, Size: ba.size})
			sb = append(sb, SliceMeta{DstOff: size, SrcOff: bb.off, Size: bb.size})
			size += ba.size
			i++
			j++
		}
	}
	if size == 0 {
		return 0, nil
	}
	va := ac.cfg.Backend.ApplySlice(ac.data, sa, size)
	vb := b.cfg.Backend.ApplySlice(b.data, sb, size)
	return ac.cfg.Backend.Vdot(va, vb), nil
}

// vdotMasked intersects the block tables elementwise through the
// fusion-history masks of each leg, compressing both buffers to the
// shared element set.
func vdotMasked(ac, b *Tensor) (complex128, error) {
	nsym := ac.nsym()
	maskA := make([]bool, ac.NumElements())
	maskB := make([]bool, b.NumElements())
	i, j, matched := 0, 0, false
	for i < len(ac.blocks) && j < len(b.blocks) {
		ba, bb := &ac.blocks[i], &b.blocks[j]
		switch c := compareRows(ba.t, bb.t); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			legMasksA := make([][]bool, len(ac.legs))
			legMasksB := make([][]bool, len(ac.legs))
			for k := range ac.legs {
				c := ba.t[k*nsym : (k+1)*nsym]
				m1, m2, err := legMaskPair(ac.legs[k], b.legs[k], c)
				if err != nil {
					return 0, err
				}
				legMasksA[k], legMasksB[k] = m1, m2
			}
			copy(maskA[ba.off:ba.off+ba.size], kronMasks(legMasksA))
			copy(maskB[bb.off:bb.off+bb.size], kronMasks(legMasksB))
			matched = true
			i++
			j++
		}
	}
	if !matched {
		return 0, nil
	}
	va := ac.cfg.Backend.Compress(ac.data, maskA)
	vb := b.cfg.Backend.Compress(b.data, maskB)
	return ac.cfg.Backend.Vdot(va, vb), nil
}
