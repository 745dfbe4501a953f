package tensor

import (
	"sort"
	"strconv"
	"strings"
)

// Matrix merger. A split of the native legs into a row group and a
// column group folds the tensor into two-sided sector matrices, one per
// pair of effective (row, column) charges obtained by fusing each
// group's charges with its signatures. Blocks sharing effective charges
// become sub-rectangles of one matrix, so the whole contraction over a
// sector is a single dense product. The plan records enough member
// metadata to invert the merge afterwards.

// mergedMember is one distinct charge sub-tuple inside a merged group:
// its flattened charges, per-leg dims, flattened dimension and offset
// inside the merged dimension.
type mergedMember struct {
	t   []int
	d   []int
	dp  int
	off int
}

// matSector is one (row charge, column charge) matrix of the merged
// layout.
type matSector struct {
	rowEff, colEff         []int
	rowMembers, colMembers []mergedMember
	rowD, colD             int
	off                    int
	key                    string // sort/match key: colEff or rowEff
}

// mergePlan is the memoized output of the merger: sector layout plus
// the data-movement chunks for the backend.
type mergePlan struct {
	sectors []matSector
	chunks  []MergeChunk
	size    int
}

// mergeToMatrix plans the fold of t into (rows, cols) matrix form over
// the kept blocks (nil keep means all, the matcher's sentinel). When
// sortByCol is set, sectors are ordered by column charge; otherwise by
// row charge. A tensordot merge-joins the left operand's column order
// against the right operand's row order.
func mergeToMatrix(t *Tensor, rows, cols []int, keep []int, sortByCol bool) *mergePlan {
	var sb strings.Builder
	sb.WriteString("g|")
	sb.WriteString(t.structSig())
	sb.Write(appendRowKey(nil, rows))
	sb.Write(appendRowKey(nil, cols))
	if keep == nil {
		// The all-blocks sentinel must not collide with an empty keep
		// list, which means every block was filtered out.
		sb.WriteByte('*')
	} else {
		sb.Write(appendRowKey(nil, keep))
	}
	if sortByCol {
		sb.WriteByte('c')
	}
	key := sb.String()
	if cached, ok := mergeCache.get(key); ok {
		return cached
	}

	nsym := t.nsym()
	sym := t.cfg.Sym

	blockIdx := keep
	if blockIdx == nil {
		blockIdx = make([]int, len(t.blocks))
		for i := range blockIdx {
			blockIdx[i] = i
		}
	}

	type blockSlot struct {
		block   int
		sector  int
		rowT    []int
		colT    []int
	}
	sectorByKey := make(map[string]int)
	var sectors []matSector
	slots := make([]blockSlot, 0, len(blockIdx))
	for _, bi := range blockIdx {
		blk := t.blocks[bi]
		rowT := project(blk.t, rows, nsym)
		colT := project(blk.t, cols, nsym)
		rowEff := fuseRow(sym, blk.t, t.legs, rows, 1)
		colEff := fuseRow(sym, blk.t, t.legs, cols, -1)
		pairKey := rowKey(rowEff) + rowKey(colEff)
		si, ok := sectorByKey[pairKey]
		if !ok {
			si = len(sectors)
			sectorByKey[pairKey] = si
			mk := rowKey(rowEff)
			if sortByCol {
				mk = rowKey(colEff)
			}
			sectors = append(sectors, matSector{rowEff: rowEff, colEff: colEff, key: mk})
		}
		slots = append(slots, blockSlot{block: bi, sector: si, rowT: rowT, colT: colT})

		sec := &sectors[si]
		addMember(&sec.rowMembers, rowT, project(blk.D, rows, 1))
		addMember(&sec.colMembers, colT, project(blk.D, cols, 1))
	}

	// Order sectors by their match key and lay out members and offsets.
	order := make([]int, len(sectors))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return sectors[order[i]].key < sectors[order[j]].key })
	newIndex := make([]int, len(sectors))
	plan := &mergePlan{sectors: make([]matSector, len(sectors))}
	total := 0
	for rank, si := range order {
		sec := sectors[si]
		sec.rowD = layoutMembers(sec.rowMembers)
		sec.colD = layoutMembers(sec.colMembers)
		sec.off = total
		total += sec.rowD * sec.colD
		plan.sectors[rank] = sec
		newIndex[si] = rank
	}
	plan.size = total

	axes := append(append([]int(nil), rows...), cols...)
	for _, slot := range slots {
		blk := t.blocks[slot.block]
		sec := &plan.sectors[newIndex[slot.sector]]
		rm := findMember(sec.rowMembers, slot.rowT)
		cm := findMember(sec.colMembers, slot.colT)
		plan.chunks = append(plan.chunks, MergeChunk{
			SrcOff:    blk.off,
			SrcD:      blk.D,
			Axes:      axes,
			RowAxes:   len(rows),
			DstOff:    sec.off,
			DstStride: sec.colD,
			RowOff:    rm.off,
			ColOff:    cm.off,
		})
	}

	mergeCache.put(key, plan)
	return plan
}

// addMember inserts a sub-tuple into a member list if absent.
func addMember(members *[]mergedMember, t []int, d []int) {
	for i := range *members {
		if equalRows((*members)[i].t, t) {
			return
		}
	}
	*members = append(*members, mergedMember{t: t, d: d, dp: prod(d)})
}

// layoutMembers sorts members by sub-tuple and assigns offsets,
// returning the total merged dimension.
func layoutMembers(members []mergedMember) int {
	sort.Slice(members, func(i, j int) bool { return compareRows(members[i].t, members[j].t) < 0 })
	off := 0
	for i := range members {
		members[i].off = off
		off += members[i].dp
	}
	return off
}

func findMember(members []mergedMember, t []int) *mergedMember {
	for i := range members {
		if equalRows(members[i].t, t) {
			return &members[i]
		}
	}
	panic("merge plan lost a member " + strconv.Quote(rowKey(t)))
}

// membersAgree reports whether two member lists describe identical
// sub-tuples with identical dimensions; when they differ only in
// dimension the contraction needs masks (or fails).
func membersAgree(a, b []mergedMember) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalRows(a[i].t, b[i].t) || a[i].dp != b[i].dp {
			return false
		}
	}
	return true
}
