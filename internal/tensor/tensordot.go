package tensor

import (
	"sort"

	"github.com/pkg/errors"
)

// Tensordot contracts axesA of a against axesB of b. The result's legs
// are a's uncontracted legs in their original order followed by b's,
// and its global charge is the fusion of the operands' charges.
func Tensordot(a, b *Tensor, axesA, axesB []int) (*Tensor, error) {
	return TensordotConj(a, b, axesA, axesB, false, false)
}

// TensordotConj is Tensordot with per-operand conjugation flags.
func TensordotConj(a, b *Tensor, axesA, axesB []int, conjA, conjB bool) (*Tensor, error) {
	if conjA {
		a = a.Conj()
	}
	if conjB {
		b = b.Conj()
	}
	if err := compatibleConfigs(a.cfg, b.cfg); err != nil {
		return nil, err
	}
	needsMask, nA, nB, err := axesMatch(a, b, axesA, axesB)
	if err != nil {
		return nil, err
	}

	// Contracting a diagonal tensor is never a true matrix product:
	// scale the partner and reshuffle instead.
	if a.diag {
		return tensordotDiag(a, b, axesB, 0)
	}
	if b.diag {
		return tensordotDiag(b, a, axesA, -1)
	}

	outA := complementAxes(nA, a.NdimN())
	outB := complementAxes(nB, b.NdimN())

	matched := commonIndices(a, b, nA, nB)
	planA := mergeToMatrix(a, outA, nA, matched.IA, true)
	planB := mergeToMatrix(b, nB, outB, matched.IB, false)

	// Merge-join the left plan's column charges against the right
	// plan's row charges. Effective charges determine sectors uniquely,
	// so the join is one-to-one.
	type pairing struct {
		sa, sb *matSector
		cOff   int
	}
	var (
		pairs  []pairing
		meta   []DotMeta
		masks  []DotMask
		cTotal int
	)
	ia, ib := 0, 0
	for ia < len(planA.sectors) && ib < len(planB.sectors) {
		sa, sb := &planA.sectors[ia], &planB.sectors[ib]
		switch {
		case sa.key < sb.key:
			ia++
		case sa.key > sb.key:
			ib++
		default:
			m, n := sa.rowD, sb.colD
			if needsMask {
				mA, mB, err := sectorMasks(a, b, nA, nB, sa.colMembers, sb.rowMembers)
				if err != nil {
					return nil, err
				}
				masks = append(masks, DotMask{A: mA, B: mB})
			} else if !membersAgree(sa.colMembers, sb.rowMembers) {
				return nil, errors.Wrap(ErrDimensionMismatch,
					"contracted sectors disagree in size and no fusion mask applies")
			}
			meta = append(meta, DotMeta{
				COff: cTotal, AOff: sa.off, BOff: sb.off,
				M: m, K: sa.colD, N: n,
			})
			pairs = append(pairs, pairing{sa: sa, sb: sb, cOff: cTotal})
			cTotal += m * n
			ia++
			ib++
		}
	}

	dataA := a.cfg.Backend.TransposeAndMerge(a.data, planA.chunks, planA.size)
	dataB := b.cfg.Backend.TransposeAndMerge(b.data, planB.chunks, planB.size)
	var product *RawBuffer
	if needsMask {
		product = a.cfg.Backend.DotWithMask(dataA, dataB, meta, masks, cTotal)
	} else {
		product = a.cfg.Backend.Dot(dataA, dataB, meta, cTotal)
	}

	out := &Tensor{
		cfg:  a.cfg,
		legs: gatherLegs(a.legs, outA, b.legs, outB),
		n:    fuseCharges(a.cfg.Sym, 1, a.n, b.n),
		meta: joinMeta(a, axesA, b, axesB),
	}

	// Every (row member, column member) pair of a matched sector is one
	// output block.
	type outBlock struct {
		row   []int
		dims  []int
		chunk UnmergeChunk
	}
	var obs []outBlock
	for _, p := range pairs {
		for _, rm := range p.sa.rowMembers {
			for _, cm := range p.sb.colMembers {
				row := append(append([]int(nil), rm.t...), cm.t...)
				dims := append(append([]int(nil), rm.d...), cm.d...)
				obs = append(obs, outBlock{
					row:  row,
					dims: dims,
					chunk: UnmergeChunk{
						SrcOff:    p.cOff,
						SrcStride: p.sb.colD,
						RowOff:    rm.off,
						ColOff:    cm.off,
						RowD:      rm.dp,
						ColD:      cm.dp,
					},
				})
			}
		}
	}
	sort.Slice(obs, func(i, j int) bool { return compareRows(obs[i].row, obs[j].row) < 0 })
	chunks := make([]UnmergeChunk, len(obs))
	total := 0
	for i, ob := range obs {
		size := ob.chunk.RowD * ob.chunk.ColD
		out.blocks = append(out.blocks, Block{t: ob.row, D: ob.dims, off: total, size: size})
		ob.chunk.DstOff = total
		chunks[i] = ob.chunk
		total += size
	}
	out.data = a.cfg.Backend.Unmerge(product, chunks, total)
	return out, nil
}

// sectorMasks concatenates per-member fusion masks over one matched
// sector. Member lists are aligned by construction.
func sectorMasks(a, b *Tensor, nA, nB []int, colA, rowB []mergedMember) ([]bool, []bool, error) {
	if len(colA) != len(rowB) {
		return nil, nil, errors.Wrap(ErrDimensionMismatch,
			"contracted sectors disagree in member count")
	}
	var mA, mB []bool
	for i := range colA {
		if !equalRows(colA[i].t, rowB[i].t) {
			return nil, nil, errors.Wrap(ErrDimensionMismatch,
				"contracted sectors disagree in charge content")
		}
		ma, mb, err := contractedMasks(a, b, nA, nB, colA[i].t)
		if err != nil {
			return nil, nil, err
		}
		mA = append(mA, ma...)
		mB = append(mB, mb...)
	}
	return mA, mB, nil
}

// tensordotDiag reduces contraction with a diagonal operand to a
// broadcast followed by a transpose or a trace. dest is the logical
// position the scaled leg takes in the result: 0 when the diagonal
// operand came first, -1 when it came second.
func tensordotDiag(d, t *Tensor, axes []int, dest int) (*Tensor, error) {
	switch len(axes) {
	case 1:
		c, err := Broadcast(d, t, axes[0])
		if err != nil {
			return nil, err
		}
		return c.MoveAxis([]int{axes[0]}, []int{dest})
	case 2:
		c, err := Broadcast(d, t, axes[0])
		if err != nil {
			return nil, err
		}
		return Trace(c, []int{axes[0]}, []int{axes[1]})
	default:
		return nil, errors.Wrap(ErrLabeling,
			"outer product with a diagonal tensor is not supported; densify it first")
	}
}

func complementAxes(in []int, ndim int) []int {
	inSet := make([]bool, ndim)
	for _, ax := range in {
		inSet[ax] = true
	}
	out := make([]int, 0, ndim-len(in))
	for ax := 0; ax < ndim; ax++ {
		if !inSet[ax] {
			out = append(out, ax)
		}
	}
	return out
}

func gatherLegs(legsA []Leg, outA []int, legsB []Leg, outB []int) []Leg {
	legs := make([]Leg, 0, len(outA)+len(outB))
	for _, ax := range outA {
		legs = append(legs, legsA[ax])
	}
	for _, ax := range outB {
		legs = append(legs, legsB[ax])
	}
	return legs
}

// joinMeta concatenates the uncontracted logical groups of both
// operands, or nil when the result is trivially grouped.
func joinMeta(a *Tensor, axesA []int, b *Tensor, axesB []int) []int {
	groups := make([]int, 0, a.Ndim()+b.Ndim()-len(axesA)-len(axesB))
	nontrivial := false
	for _, t := range []struct {
		tn   *Tensor
		axes []int
	}{{a, axesA}, {b, axesB}} {
		skip := make(map[int]bool, len(t.axes))
		for _, ax := range t.axes {
			skip[ax] = true
		}
		for i, g := range t.tn.metaGroups() {
			if skip[i] {
				continue
			}
			groups = append(groups, g)
			if g != 1 {
				nontrivial = true
			}
		}
	}
	if !nontrivial {
		return nil
	}
	return groups
}
