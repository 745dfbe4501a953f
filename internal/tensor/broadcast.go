package tensor

import (
	"github.com/pkg/errors"
)

// Broadcast multiplies the diagonal tensor d elementwise into axis of t.
// Sectors of t whose charge on that axis has no diagonal counterpart are
// dropped from the result. The axis must be a plain unfused leg.
func Broadcast(d, t *Tensor, axis int) (*Tensor, error) {
	metas, blocks, size, _, err := diagAction(d, t, axis, false)
	if err != nil {
		return nil, err
	}
	out := &Tensor{
		cfg:    t.cfg,
		legs:   append([]Leg(nil), t.legs...),
		n:      t.n.Clone(),
		meta:   t.meta,
		blocks: blocks,
		diag:   t.diag,
	}
	out.data = t.cfg.Backend.DotDiag(t.data, d.data, metas, size)
	return out, nil
}

// ApplyMask projects t along axis onto the support of the diagonal
// tensor d, keeping only the entries where the diagonal is nonzero. The
// masked leg shrinks to the surviving dimensions and sectors with empty
// support disappear.
func ApplyMask(d, t *Tensor, axis int) (*Tensor, error) {
	metas, blocks, size, na, err := diagAction(d, t, axis, true)
	if err != nil {
		return nil, err
	}

	newDims := make(map[string]int, len(metas))
	nsym := t.nsym()
	for i, m := range metas {
		c := blocks[i].t[na*nsym : (na+1)*nsym]
		newDims[rowKey(c)] = m.NewDim
	}
	legs := append([]Leg(nil), t.legs...)
	masked := Leg{S: t.legs[na].S}
	for _, sec := range t.legs[na].Sectors {
		if nd, ok := newDims[rowKey(sec.Charge)]; ok {
			masked.Sectors = append(masked.Sectors, Sector{Charge: sec.Charge.Clone(), Dim: nd})
		}
	}
	legs[na] = masked
	if t.diag {
		// Both legs of a diagonal tensor shrink together.
		other := 1 - na
		legs[other] = Leg{S: t.legs[other].S, Sectors: masked.Sectors}
	}

	out := &Tensor{
		cfg:    t.cfg,
		legs:   legs,
		n:      t.n.Clone(),
		meta:   t.meta,
		blocks: blocks,
		diag:   t.diag,
	}
	out.data = t.cfg.Backend.MaskDiag(t.data, d.data, metas, size)
	return out, nil
}

// diagAction validates a diagonal-times-axis operation and lays out the
// intersected block table. For mask application the block dimensions
// along the axis shrink to the diagonal's nonzero counts and empty
// sectors are dropped.
func diagAction(d, t *Tensor, axis int, mask bool) ([]DiagMeta, []Block, int, int, error) {
	if !d.diag {
		return nil, nil, 0, 0, errors.Wrap(ErrStructuralMismatch, "first operand must be diagonal")
	}
	if err := compatibleConfigs(d.cfg, t.cfg); err != nil {
		return nil, nil, 0, 0, err
	}
	groups := t.metaGroups()
	if axis < 0 || axis >= len(groups) {
		return nil, nil, 0, 0, errors.Wrapf(ErrLabeling, "axis %d out of range for rank %d", axis, len(groups))
	}
	if groups[axis] != 1 {
		return nil, nil, 0, 0, errors.Wrapf(ErrFusionInconsistency,
			"axis %d groups %d native legs; unfuse it before applying a diagonal", axis, groups[axis])
	}
	na := t.nativeAxes([]int{axis})[0]
	if t.legs[na].kind() == FusionHard {
		return nil, nil, 0, 0, errors.Wrapf(ErrFusionInconsistency,
			"axis %d carries a hard fusion history; unfuse it before applying a diagonal", axis)
	}

	nsym := t.nsym()
	diagAt := make(map[string]*Block, len(d.blocks))
	for i := range d.blocks {
		blk := &d.blocks[i]
		diagAt[rowKey(blk.t[:nsym])] = blk
	}

	var metas []DiagMeta
	var blocks []Block
	size := 0
	for _, blk := range t.blocks {
		c := blk.t[na*nsym : (na+1)*nsym]
		db, ok := diagAt[rowKey(c)]
		if !ok {
			continue
		}
		pre, dim, post := 1, blk.D[na], 1
		if t.diag {
			dim = blk.D[0]
		} else {
			for _, dd := range blk.D[:na] {
				pre *= dd
			}
			for _, dd := range blk.D[na+1:] {
				post *= dd
			}
		}
		if db.D[0] != dim {
			return nil, nil, 0, 0, errors.Wrapf(ErrDimensionMismatch,
				"diagonal sector %v has size %d but the target axis has size %d", c, db.D[0], dim)
		}
		meta := DiagMeta{
			SrcOff:  blk.off,
			Pre:     pre,
			Dim:     dim,
			Post:    post,
			DiagOff: db.off,
		}
		nb := Block{t: append([]int(nil), blk.t...), D: append([]int(nil), blk.D...)}
		if mask {
			nd := t.cfg.Backend.CountNonzero(d.data, db.off, db.off+dim)
			if nd == 0 {
				continue
			}
			meta.NewDim = nd
			if t.diag {
				nb.D[0], nb.D[1] = nd, nd
				nb.size = nd
			} else {
				nb.D[na] = nd
				nb.size = prod(nb.D)
			}
		} else {
			nb.size = blk.size
		}
		meta.DstOff = size
		nb.off = size
		size += nb.size
		metas = append(metas, meta)
		blocks = append(blocks, nb)
	}
	return metas, blocks, size, na, nil
}
