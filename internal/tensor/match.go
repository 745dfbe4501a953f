package tensor

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// matchIndices is the Sector Matcher's result: the block indices of
// each operand whose contracted-charge sub-tuple also occurs on the
// other side. A nil slice is the "no filtering needed" sentinel, the
// common fast path.
type matchIndices struct {
	IA, IB []int
}

// axesMatch validates that the contracted logical axes of two tensors
// are structurally compatible and unpacks them to native axes. It
// reports whether fusion histories diverge so that masks will be
// needed. Contracted legs must point in opposite directions.
func axesMatch(a, b *Tensor, axA, axB []int) (needsMask bool, nA, nB []int, err error) {
	if len(axA) != len(axB) {
		return false, nil, nil, errors.Wrapf(ErrLabeling,
			"contracted axis lists differ in length: %d vs %d", len(axA), len(axB))
	}
	if err := validAxes(axA, a.Ndim()); err != nil {
		return false, nil, nil, err
	}
	if err := validAxes(axB, b.Ndim()); err != nil {
		return false, nil, nil, err
	}
	groupsA, groupsB := a.metaGroups(), b.metaGroups()
	for i := range axA {
		if groupsA[axA[i]] != groupsB[axB[i]] {
			return false, nil, nil, errors.Wrapf(ErrFusionInconsistency,
				"meta-fused groups of contracted legs differ: %d vs %d native legs",
				groupsA[axA[i]], groupsB[axB[i]])
		}
	}
	nA = a.nativeAxes(axA)
	nB = b.nativeAxes(axB)
	for i := range nA {
		la, lb := a.legs[nA[i]], b.legs[nB[i]]
		if la.S != -lb.S {
			return false, nil, nil, errors.Wrapf(ErrStructuralMismatch,
				"contracted legs %d and %d have matching directions", nA[i], nB[i])
		}
		if !fusionEqual(la.Fusion, lb.Fusion) {
			if la.kind() == FusionHard && lb.kind() == FusionHard {
				needsMask = true
			} else {
				return false, nil, nil, errors.Wrapf(ErrFusionInconsistency,
					"contracted legs %d and %d carry irreconcilable fusion descriptors", nA[i], nB[i])
			}
		}
	}
	return needsMask, nA, nB, nil
}

func validAxes(axes []int, ndim int) error {
	seen := make(map[int]bool, len(axes))
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			return errors.Wrapf(ErrLabeling, "axis %d out of range for %d legs", ax, ndim)
		}
		if seen[ax] {
			return errors.Wrapf(ErrLabeling, "axis %d listed twice", ax)
		}
		seen[ax] = true
	}
	return nil
}

// commonIndices intersects the projections of both block tables onto
// the contracted native axes: a block survives iff its contracted
// sub-tuple occurs on the other side. Runs as a sorted merge-join over
// the distinct sub-tuples; memoized by structural signature.
func commonIndices(a, b *Tensor, nA, nB []int) matchIndices {
	var sb strings.Builder
	sb.WriteString("m|")
	sb.WriteString(a.structSig())
	sb.Write(appendRowKey(nil, nA))
	sb.WriteString(b.structSig())
	sb.Write(appendRowKey(nil, nB))
	key := sb.String()
	if cached, ok := matchCache.get(key); ok {
		return cached
	}

	nsym := a.nsym()
	projA := make([][]int, len(a.blocks))
	for i := range a.blocks {
		projA[i] = project(a.blocks[i].t, nA, nsym)
	}
	projB := make([][]int, len(b.blocks))
	for i := range b.blocks {
		projB[i] = project(b.blocks[i].t, nB, nsym)
	}

	ordA := sortedByRow(projA)
	ordB := sortedByRow(projB)

	keepA := make([]bool, len(projA))
	keepB := make([]bool, len(projB))
	ia, ib := 0, 0
	for ia < len(ordA) && ib < len(ordB) {
		switch compareRows(projA[ordA[ia]], projB[ordB[ib]]) {
		case -1:
			ia++
		case 1:
			ib++
		default:
			// Consume the full runs of this sub-tuple on both sides.
			run := projA[ordA[ia]]
			for ia < len(ordA) && compareRows(projA[ordA[ia]], run) == 0 {
				keepA[ordA[ia]] = true
				ia++
			}
			for ib < len(ordB) && compareRows(projB[ordB[ib]], run) == 0 {
				keepB[ordB[ib]] = true
				ib++
			}
		}
	}

	res := matchIndices{IA: keptIndices(keepA), IB: keptIndices(keepB)}
	matchCache.put(key, res)
	return res
}

func sortedByRow(rows [][]int) []int {
	ord := make([]int, len(rows))
	for i := range ord {
		ord[i] = i
	}
	sort.Slice(ord, func(i, j int) bool { return compareRows(rows[ord[i]], rows[ord[j]]) < 0 })
	return ord
}

// keptIndices converts a keep mask to the sentinel form: nil when every
// block survived.
func keptIndices(keep []bool) []int {
	n := 0
	for _, k := range keep {
		if k {
			n++
		}
	}
	if n == len(keep) {
		return nil
	}
	out := make([]int, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, i)
		}
	}
	return out
}
