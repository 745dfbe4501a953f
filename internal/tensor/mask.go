package tensor

import "github.com/pkg/errors"

// Mask derivation. When two operands carry the same nominal charge on a
// contracted leg but disagree about its dimension because the legs were
// hard-fused from different histories, the overlap of their fusion
// sections defines boolean masks selecting the sub-ranges present on
// both sides. The masks always keep the same number of entries on
// either side, so masked sectors become contractible again.

func allTrue(n int) []bool {
	m := make([]bool, n)
	for i := range m {
		m[i] = true
	}
	return m
}

func sectionSum(secs []Section) int {
	d := 0
	for _, s := range secs {
		d += s.D
	}
	return d
}

// legMaskPair computes the masks for one nominal charge shared by two
// legs. Equal histories yield identity masks (dims must agree exactly);
// diverging hard fusions yield the section-intersection masks.
func legMaskPair(la, lb Leg, c []int) (ma, mb []bool, err error) {
	da, okA := la.DimOf(c)
	db, okB := lb.DimOf(c)
	if !okA || !okB {
		return nil, nil, errors.Wrapf(ErrStructuralMismatch, "charge %s missing from a contracted leg", Charge(c))
	}
	if fusionEqual(la.Fusion, lb.Fusion) {
		if da != db {
			return nil, nil, errors.Wrapf(ErrDimensionMismatch,
				"charge %s has dimension %d on one side and %d on the other", Charge(c), da, db)
		}
		return allTrue(da), allTrue(db), nil
	}
	sa, sb := la.sections(c), lb.sections(c)
	if sa == nil || sb == nil {
		return nil, nil, errors.Wrapf(ErrFusionInconsistency,
			"charge %s lacks fusion sections on a hard-fused leg", Charge(c))
	}
	if sectionSum(sa) != da || sectionSum(sb) != db {
		return nil, nil, errors.Wrapf(ErrFusionInconsistency,
			"fusion sections of charge %s do not cover the sector", Charge(c))
	}
	ma = make([]bool, da)
	mb = make([]bool, db)
	i, j, offA, offB := 0, 0, 0, 0
	for i < len(sa) && j < len(sb) {
		cmp := compareRows(sa[i].T, sb[j].T)
		if cmp == 0 {
			switch {
			case sa[i].D == sb[j].D:
				for k := 0; k < sa[i].D; k++ {
					ma[offA+k] = true
					mb[offB+k] = true
				}
				offA += sa[i].D
				i++
				offB += sb[j].D
				j++
			case sa[i].D < sb[j].D:
				offA += sa[i].D
				i++
			default:
				offB += sb[j].D
				j++
			}
			continue
		}
		if cmp < 0 {
			offA += sa[i].D
			i++
		} else {
			offB += sb[j].D
			j++
		}
	}
	return ma, mb, nil
}

// kronMasks flattens per-leg masks into the row-major mask over the
// combined index of those legs.
func kronMasks(masks [][]bool) []bool {
	out := []bool{true}
	for _, m := range masks {
		next := make([]bool, 0, len(out)*len(m))
		for _, a := range out {
			for _, b := range m {
				next = append(next, a && b)
			}
		}
		out = next
	}
	return out
}

// contractedMasks builds, for one contracted sub-tuple tc (one charge
// per contracted native leg), the combined masks over the two operands'
// contracted multi-indices.
func contractedMasks(a, b *Tensor, nA, nB []int, tc []int) (ma, mb []bool, err error) {
	nsym := a.nsym()
	masksA := make([][]bool, len(nA))
	masksB := make([][]bool, len(nB))
	for k := range nA {
		c := tc[k*nsym : (k+1)*nsym]
		masksA[k], masksB[k], err = legMaskPair(a.legs[nA[k]], b.legs[nB[k]], c)
		if err != nil {
			return nil, nil, err
		}
	}
	return kronMasks(masksA), kronMasks(masksB), nil
}

func countTrue(m []bool) int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// truePositions lists the indices selected by a mask.
func truePositions(m []bool) []int {
	out := make([]int, 0, countTrue(m))
	for i, v := range m {
		if v {
			out = append(out, i)
		}
	}
	return out
}
