package tensor

import (
	"sort"

	"github.com/pkg/errors"
)

// Transpose permutes the logical legs: leg k of the result is leg
// axes[k] of the input (numpy convention). Diagonal tensors only admit
// the identity and the swap.
func (t *Tensor) Transpose(axes ...int) (*Tensor, error) {
	if len(axes) != t.Ndim() {
		return nil, errors.Wrapf(ErrLabeling, "transpose needs %d axes, got %d", t.Ndim(), len(axes))
	}
	seen := make([]bool, len(axes))
	identity := true
	for i, ax := range axes {
		if ax < 0 || ax >= len(axes) || seen[ax] {
			return nil, errors.Wrapf(ErrLabeling, "transpose axes %v are not a permutation", axes)
		}
		seen[ax] = true
		if ax != i {
			identity = false
		}
	}
	if identity {
		return t.Clone(), nil
	}
	if t.diag {
		c := t.Clone()
		c.legs[0], c.legs[1] = t.legs[1], t.legs[0]
		return c, nil
	}

	groups := t.metaGroups()
	perm := t.nativeAxes(axes)
	nsym := t.nsym()

	legs := make([]Leg, len(t.legs))
	for k, ax := range perm {
		legs[k] = t.legs[ax]
	}
	var meta []int
	if t.meta != nil {
		meta = make([]int, len(axes))
		for k, ax := range axes {
			meta[k] = groups[ax]
		}
	}

	type moved struct {
		row  []int
		dims []int
		src  int
	}
	ms := make([]moved, len(t.blocks))
	for i, blk := range t.blocks {
		row := make([]int, 0, len(blk.t))
		dims := make([]int, len(perm))
		for k, ax := range perm {
			row = append(row, blk.t[ax*nsym:(ax+1)*nsym]...)
			dims[k] = blk.D[ax]
		}
		ms[i] = moved{row: row, dims: dims, src: i}
	}
	sort.Slice(ms, func(i, j int) bool { return compareRows(ms[i].row, ms[j].row) < 0 })

	out := &Tensor{cfg: t.cfg, legs: legs, n: t.n.Clone(), meta: meta}
	chunks := make([]TransposeChunk, len(ms))
	total := 0
	for i, m := range ms {
		src := t.blocks[m.src]
		out.blocks = append(out.blocks, Block{t: m.row, D: m.dims, off: total, size: src.size})
		chunks[i] = TransposeChunk{SrcOff: src.off, DstOff: total, D: src.D, Axes: perm}
		total += src.size
	}
	out.data = t.cfg.Backend.Transpose(t.data, chunks, total)
	return out, nil
}

// MoveAxis moves the listed logical legs to new positions, keeping the
// relative order of the others (numpy moveaxis semantics; negative
// destinations count from the end).
func (t *Tensor) MoveAxis(src, dst []int) (*Tensor, error) {
	if len(src) != len(dst) {
		return nil, errors.Wrap(ErrLabeling, "moveaxis needs matching source and destination lists")
	}
	ndim := t.Ndim()
	norm := func(ax int) (int, error) {
		if ax < 0 {
			ax += ndim
		}
		if ax < 0 || ax >= ndim {
			return 0, errors.Wrapf(ErrLabeling, "axis %d out of range for %d legs", ax, ndim)
		}
		return ax, nil
	}
	type move struct{ from, to int }
	moves := make([]move, len(src))
	taken := make([]bool, ndim)
	for i := range src {
		s, err := norm(src[i])
		if err != nil {
			return nil, err
		}
		d, err := norm(dst[i])
		if err != nil {
			return nil, err
		}
		if taken[s] {
			return nil, errors.Wrapf(ErrLabeling, "axis %d moved twice", s)
		}
		taken[s] = true
		moves[i] = move{from: s, to: d}
	}
	order := make([]int, 0, ndim)
	for ax := 0; ax < ndim; ax++ {
		if !taken[ax] {
			order = append(order, ax)
		}
	}
	sort.SliceStable(moves, func(i, j int) bool { return moves[i].to < moves[j].to })
	for _, m := range moves {
		order = append(order, 0)
		copy(order[m.to+1:], order[m.to:])
		order[m.to] = m.from
	}
	return t.Transpose(order...)
}

// MatMul contracts the last leg of t with the first leg of other, the
// usual matrix product when both are matrices.
func (t *Tensor) MatMul(other *Tensor) (*Tensor, error) {
	return Tensordot(t, other, []int{t.Ndim() - 1}, []int{0})
}

// ToDense materializes the tensor as a dense row-major array over the
// native legs (zero wherever no block exists), together with its dense
// shape. Intended for export, inspection and tests; forbidden blocks
// are materialized as explicit zeros, so the result loses sparsity.
func (t *Tensor) ToDense() ([]complex128, []int) {
	nsym := t.nsym()
	offsets := make([]map[string]int, len(t.legs))
	shape := make([]int, len(t.legs))
	for j, l := range t.legs {
		offsets[j] = make(map[string]int, len(l.Sectors))
		off := 0
		for _, sec := range l.Sectors {
			offsets[j][rowKey(sec.Charge)] = off
			off += sec.Dim
		}
		shape[j] = off
	}
	strides := rowMajorStrides(shape)
	dense := make([]complex128, prod(shape))

	at := func(off int) complex128 {
		if t.data.dtype == Complex128 {
			return t.data.AsComplex128()[off]
		}
		return complex(t.data.AsFloat64()[off], 0)
	}

	for _, blk := range t.blocks {
		base := 0
		for j := range t.legs {
			base += offsets[j][rowKey(blk.t[j*nsym:(j+1)*nsym])] * strides[j]
		}
		if t.diag {
			for i := 0; i < blk.D[0]; i++ {
				dense[base+i*strides[0]+i*strides[1]] = at(blk.off + i)
			}
			continue
		}
		idx := make([]int, len(blk.D))
		pos := base
		for k := 0; k < blk.size; k++ {
			dense[pos] = at(blk.off + k)
			for ax := len(blk.D) - 1; ax >= 0; ax-- {
				idx[ax]++
				pos += strides[ax]
				if idx[ax] < blk.D[ax] {
					break
				}
				idx[ax] = 0
				pos -= blk.D[ax] * strides[ax]
			}
		}
	}
	return dense, shape
}
