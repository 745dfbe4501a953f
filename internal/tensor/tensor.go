package tensor

import (
	"strconv"
	"strings"
)

// Block records one dense payload: the flattened per-leg charges it is
// indexed by, its per-leg dimensions, and its element range in the
// tensor's flat buffer. For diagonal tensors only the diagonal is
// stored, so size is D[0] rather than D[0]*D[1].
type Block struct {
	t    []int
	D    []int
	off  int
	size int
}

// Tensor is a symmetric block-sparse tensor: an ordered list of legs, a
// global charge n that every block's leg charges fuse to, and a
// charge-sorted, duplicate-free block table over one flat buffer.
//
// Tensors are value objects. Every operator produces a new tensor; the
// only in-place mutations are Scale and the swap-gate sign flips.
type Tensor struct {
	cfg    *Config
	legs   []Leg
	n      Charge
	meta   []int // native legs per logical leg, nil when all trivial
	blocks []Block
	data   *RawBuffer
	diag   bool
}

// Config returns the configuration the tensor was built under.
func (t *Tensor) Config() *Config { return t.cfg }

// N returns the tensor's global charge.
func (t *Tensor) N() Charge { return t.n.Clone() }

// IsDiag reports whether the tensor stores only its diagonal.
func (t *Tensor) IsDiag() bool { return t.diag }

// DType returns the element type.
func (t *Tensor) DType() DataType { return t.data.dtype }

// NdimN is the number of native (physical) legs.
func (t *Tensor) NdimN() int { return len(t.legs) }

// Ndim is the number of logical legs, counting each meta-fused group
// of native legs once.
func (t *Tensor) Ndim() int {
	if t.meta == nil {
		return len(t.legs)
	}
	return len(t.meta)
}

// Legs returns a copy of the native leg list.
func (t *Tensor) Legs() []Leg {
	legs := make([]Leg, len(t.legs))
	copy(legs, t.legs)
	return legs
}

// NumElements is the number of stored elements.
func (t *Tensor) NumElements() int { return t.data.Len() }

// NumBlocks is the number of stored blocks.
func (t *Tensor) NumBlocks() int { return len(t.blocks) }

// metaGroups returns the logical-to-native group sizes, materializing
// the trivial grouping when meta is nil.
func (t *Tensor) metaGroups() []int {
	if t.meta != nil {
		return t.meta
	}
	groups := make([]int, len(t.legs))
	for i := range groups {
		groups[i] = 1
	}
	return groups
}

// nativeAxes unpacks logical axes into native axes.
func (t *Tensor) nativeAxes(logical []int) []int {
	groups := t.metaGroups()
	starts := make([]int, len(groups))
	s := 0
	for i, g := range groups {
		starts[i] = s
		s += g
	}
	native := make([]int, 0, len(logical))
	for _, ax := range logical {
		for k := 0; k < groups[ax]; k++ {
			native = append(native, starts[ax]+k)
		}
	}
	return native
}

// nsym is a shorthand for the symmetry rank.
func (t *Tensor) nsym() int { return t.cfg.Sym.NSym() }


// structSig serializes the tensor's structural identity: everything a
// metadata plan depends on, and nothing the data depends on. Used as
// the cache key for memoized plans.
func (t *Tensor) structSig() string {
	var b strings.Builder
	b.Grow(64 + len(t.blocks)*8*(len(t.legs)+1))
	b.WriteString(t.cfg.Sym.Name())
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(t.nsym()))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(int(t.data.dtype)))
	b.WriteByte('|')
	if t.diag {
		b.WriteByte('d')
	}
	b.WriteByte('|')
	buf := appendRowKey(nil, t.n)
	for _, g := range t.metaGroups() {
		buf = strconv.AppendInt(buf, int64(g), 10)
		buf = append(buf, ',')
	}
	buf = append(buf, '|')
	for _, l := range t.legs {
		buf = strconv.AppendInt(buf, int64(l.S), 10)
		buf = append(buf, ',')
	}
	buf = append(buf, '|')
	for _, blk := range t.blocks {
		buf = appendRowKey(buf, blk.t)
		buf = appendRowKey(buf, blk.D)
	}
	b.Write(buf)
	return b.String()
}

// Clone returns a deep copy sharing nothing with the original.
func (t *Tensor) Clone() *Tensor {
	blocks := make([]Block, len(t.blocks))
	copy(blocks, t.blocks)
	legs := make([]Leg, len(t.legs))
	copy(legs, t.legs)
	var meta []int
	if t.meta != nil {
		meta = append([]int(nil), t.meta...)
	}
	return &Tensor{
		cfg:    t.cfg,
		legs:   legs,
		n:      t.n.Clone(),
		meta:   meta,
		blocks: blocks,
		data:   t.data.Clone(),
		diag:   t.diag,
	}
}

// Conj returns the complex conjugate: all leg directions and the global
// charge are flipped and the data is conjugated. Block charges are
// unchanged, so the block order is preserved.
func (t *Tensor) Conj() *Tensor {
	legs := make([]Leg, len(t.legs))
	for i, l := range t.legs {
		legs[i] = l.Conj()
	}
	c := t.Clone()
	c.legs = legs
	c.n = negateCharge(t.cfg.Sym, t.n)
	c.data = t.cfg.Backend.Conj(t.data)
	return c
}

// Scale multiplies the tensor by alpha in place. This is one of the two
// documented in-place mutations.
func (t *Tensor) Scale(alpha complex128) *Tensor {
	t.cfg.Backend.Scale(t.data, alpha)
	return t
}

// Item returns the value of a zero-leg (scalar) tensor. A scalar with
// no stored block is zero.
func (t *Tensor) Item() complex128 {
	if len(t.blocks) == 0 || t.data.Len() == 0 {
		return 0
	}
	if t.data.dtype == Complex128 {
		return t.data.AsComplex128()[t.blocks[0].off]
	}
	return complex(t.data.AsFloat64()[t.blocks[0].off], 0)
}

// BlockInfo describes one stored block for inspection.
type BlockInfo struct {
	Charges []Charge
	Dims    []int
}

// BlockInfos lists the stored blocks in charge order.
func (t *Tensor) BlockInfos() []BlockInfo {
	nsym := t.nsym()
	infos := make([]BlockInfo, len(t.blocks))
	for i, blk := range t.blocks {
		charges := make([]Charge, len(t.legs))
		for j := range t.legs {
			charges[j] = Charge(blk.t[j*nsym : (j+1)*nsym]).Clone()
		}
		infos[i] = BlockInfo{Charges: charges, Dims: append([]int(nil), blk.D...)}
	}
	return infos
}

// findBlock locates the block with the given flattened charge row.
func (t *Tensor) findBlock(row []int) (int, bool) {
	lo, hi := 0, len(t.blocks)
	for lo < hi {
		mid := (lo + hi) / 2
		if compareRows(t.blocks[mid].t, row) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(t.blocks) && equalRows(t.blocks[lo].t, row) {
		return lo, true
	}
	return 0, false
}

// BlockValues returns a copy of one block's elements (as complex128
// regardless of the stored element type), given one charge per native
// leg. For diagonal tensors a single charge selects a sector and the
// stored diagonal is returned.
func (t *Tensor) BlockValues(charges ...Charge) ([]complex128, bool) {
	if t.diag && len(charges) == 1 {
		charges = []Charge{charges[0], charges[0]}
	}
	row := make([]int, 0, len(charges)*t.nsym())
	for _, c := range charges {
		row = append(row, c...)
	}
	i, ok := t.findBlock(row)
	if !ok {
		return nil, false
	}
	blk := t.blocks[i]
	out := make([]complex128, blk.size)
	if t.data.dtype == Complex128 {
		copy(out, t.data.AsComplex128()[blk.off:blk.off+blk.size])
	} else {
		src := t.data.AsFloat64()[blk.off : blk.off+blk.size]
		for k, v := range src {
			out[k] = complex(v, 0)
		}
	}
	return out, true
}
