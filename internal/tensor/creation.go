package tensor

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"
)

type builderEntry struct {
	row    []int
	dims   []int
	values []complex128
}

// Builder accumulates blocks and assembles a tensor. Blocks may be set
// in any order; Build sorts them by charge, validates the conservation
// law and packs the flat buffer.
type Builder struct {
	cfg     *Config
	n       Charge
	legs    []Leg
	meta    []int
	diag    bool
	entries []builderEntry
	err     error
}

// NewBuilder starts a tensor with the given global charge and legs.
func NewBuilder(cfg *Config, n Charge, legs ...Leg) *Builder {
	return &Builder{cfg: cfg, n: n.Clone(), legs: legs}
}

// NewDiagBuilder starts a diagonal tensor over the given leg and its
// conjugate. Diagonal tensors carry zero global charge.
func NewDiagBuilder(cfg *Config, leg Leg) *Builder {
	return &Builder{
		cfg:  cfg,
		n:    cfg.zeroCharge(),
		legs: []Leg{leg, leg.Conj()},
		diag: true,
	}
}

// WithMeta declares logical leg groups: groups[i] native legs form
// logical leg i (meta fusion, no data movement).
func (b *Builder) WithMeta(groups ...int) *Builder {
	total := 0
	for _, g := range groups {
		if g < 1 {
			b.fail(errors.Wrap(ErrFusionInconsistency, "meta group sizes must be positive"))
			return b
		}
		total += g
	}
	if total != len(b.legs) {
		b.fail(errors.Wrapf(ErrFusionInconsistency,
			"meta groups cover %d native legs, tensor has %d", total, len(b.legs)))
		return b
	}
	b.meta = append([]int(nil), groups...)
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Set stores one block given one charge per native leg (a single charge
// for diagonal tensors) and its row-major elements.
func (b *Builder) Set(charges []Charge, values []float64) *Builder {
	cx := make([]complex128, len(values))
	for i, v := range values {
		cx[i] = complex(v, 0)
	}
	return b.SetComplex(charges, cx)
}

// SetComplex is Set for complex elements.
func (b *Builder) SetComplex(charges []Charge, values []complex128) *Builder {
	if b.err != nil {
		return b
	}
	nsym := b.cfg.Sym.NSym()
	if b.diag {
		if len(charges) != 1 {
			b.fail(errors.Wrap(ErrStructuralMismatch, "diagonal blocks take a single charge"))
			return b
		}
		c := charges[0]
		d, ok := b.legs[0].DimOf(c)
		if !ok {
			b.fail(errors.Wrapf(ErrStructuralMismatch, "charge %s not on leg", c))
			return b
		}
		if len(values) != d {
			b.fail(errors.Wrapf(ErrDimensionMismatch, "diagonal of charge %s needs %d values, got %d", c, d, len(values)))
			return b
		}
		row := make([]int, 0, 2*nsym)
		row = append(row, c...)
		row = append(row, c...)
		b.entries = append(b.entries, builderEntry{row: row, dims: []int{d, d}, values: values})
		return b
	}

	if len(charges) != len(b.legs) {
		b.fail(errors.Wrapf(ErrStructuralMismatch, "block needs %d charges, got %d", len(b.legs), len(charges)))
		return b
	}
	row := make([]int, 0, len(b.legs)*nsym)
	dims := make([]int, len(b.legs))
	for i, c := range charges {
		if len(c) != nsym {
			b.fail(errors.Wrapf(ErrStructuralMismatch, "charge %s has wrong rank", c))
			return b
		}
		d, ok := b.legs[i].DimOf(c)
		if !ok {
			b.fail(errors.Wrapf(ErrStructuralMismatch, "charge %s not on leg %d", c, i))
			return b
		}
		dims[i] = d
		row = append(row, c...)
	}
	if prod(dims) != len(values) {
		b.fail(errors.Wrapf(ErrDimensionMismatch, "block needs %d values, got %d", prod(dims), len(values)))
		return b
	}
	b.entries = append(b.entries, builderEntry{row: row, dims: dims, values: values})
	return b
}

// Build validates and assembles the tensor.
func (b *Builder) Build() (*Tensor, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.cfg.validate(); err != nil {
		return nil, err
	}
	nsym := b.cfg.Sym.NSym()
	if len(b.n) != nsym {
		return nil, errors.Wrapf(ErrStructuralMismatch, "global charge %s has wrong rank", b.n)
	}
	for i, l := range b.legs {
		if err := l.Validate(); err != nil {
			return nil, errors.Wrapf(err, "leg %d", i)
		}
	}

	signs := make([]int, len(b.legs))
	for i, l := range b.legs {
		signs[i] = l.S
	}
	for _, e := range b.entries {
		if b.diag {
			continue // zero net charge holds by construction
		}
		fused := b.cfg.Sym.Fuse(e.row, signs, 1)
		if !equalRows(fused, b.n) {
			return nil, errors.Wrapf(ErrStructuralMismatch,
				"block charges fuse to %s, tensor charge is %s", Charge(fused), b.n)
		}
	}

	sort.Slice(b.entries, func(i, j int) bool {
		return compareRows(b.entries[i].row, b.entries[j].row) < 0
	})
	for i := 1; i < len(b.entries); i++ {
		if equalRows(b.entries[i-1].row, b.entries[i].row) {
			return nil, errors.Wrap(ErrStructuralMismatch, "duplicate block charge tuple")
		}
	}

	t := &Tensor{
		cfg:  b.cfg,
		legs: append([]Leg(nil), b.legs...),
		n:    b.n,
		meta: b.meta,
		diag: b.diag,
	}
	total := 0
	for _, e := range b.entries {
		size := prod(e.dims)
		if b.diag {
			size = e.dims[0]
		}
		t.blocks = append(t.blocks, Block{t: e.row, D: e.dims, off: total, size: size})
		total += size
	}
	t.data = NewRawBuffer(total, b.cfg.DType)
	if b.cfg.DType == Complex128 {
		dst := t.data.AsComplex128()
		for i, e := range b.entries {
			copy(dst[t.blocks[i].off:], e.values)
		}
	} else {
		dst := t.data.AsFloat64()
		for i, e := range b.entries {
			for k, v := range e.values {
				if imag(v) != 0 {
					return nil, errors.Wrap(ErrStructuralMismatch, "complex values in a float64 tensor")
				}
				dst[t.blocks[i].off+k] = real(v)
			}
		}
	}
	return t, nil
}

// enumerateRows lists every combination of one sector per leg whose
// charges fuse to n, in sorted row order.
func enumerateRows(cfg *Config, n Charge, legs []Leg) ([][]int, [][]int) {
	nsym := cfg.Sym.NSym()
	signs := make([]int, len(legs))
	for i, l := range legs {
		signs[i] = l.S
	}
	var rows [][]int
	var dims [][]int
	row := make([]int, len(legs)*nsym)
	dim := make([]int, len(legs))
	var walk func(i int)
	walk = func(i int) {
		if i == len(legs) {
			fused := cfg.Sym.Fuse(row, signs, 1)
			if equalRows(fused, n) {
				rows = append(rows, append([]int(nil), row...))
				dims = append(dims, append([]int(nil), dim...))
			}
			return
		}
		for _, sec := range legs[i].Sectors {
			copy(row[i*nsym:], sec.Charge)
			dim[i] = sec.Dim
			walk(i + 1)
		}
	}
	walk(0)
	return rows, dims
}

// Zeros creates a tensor holding every symmetry-allowed block, zeroed.
func Zeros(cfg *Config, n Charge, legs ...Leg) (*Tensor, error) {
	b := NewBuilder(cfg, n, legs...)
	rows, dims := enumerateRows(cfg, n, legs)
	nsym := cfg.Sym.NSym()
	for i, row := range rows {
		charges := make([]Charge, len(legs))
		for j := range legs {
			charges[j] = Charge(row[j*nsym : (j+1)*nsym])
		}
		b.Set(charges, make([]float64, prod(dims[i])))
	}
	return b.Build()
}

// Randn creates a tensor holding every symmetry-allowed block, filled
// with standard normal values (independent real and imaginary parts for
// complex tensors).
func Randn(cfg *Config, n Charge, legs ...Leg) (*Tensor, error) {
	b := NewBuilder(cfg, n, legs...)
	rows, dims := enumerateRows(cfg, n, legs)
	nsym := cfg.Sym.NSym()
	for i, row := range rows {
		charges := make([]Charge, len(legs))
		for j := range legs {
			charges[j] = Charge(row[j*nsym : (j+1)*nsym])
		}
		size := prod(dims[i])
		vals := make([]complex128, size)
		for k := range vals {
			if cfg.DType == Complex128 {
				vals[k] = complex(rand.NormFloat64(), rand.NormFloat64())
			} else {
				vals[k] = complex(rand.NormFloat64(), 0)
			}
		}
		b.SetComplex(charges, vals)
	}
	return b.Build()
}

// Eye creates the identity diagonal tensor over a leg.
func Eye(cfg *Config, leg Leg) (*Tensor, error) {
	b := NewDiagBuilder(cfg, leg)
	for _, sec := range leg.Sectors {
		ones := make([]float64, sec.Dim)
		for i := range ones {
			ones[i] = 1
		}
		b.Set([]Charge{sec.Charge}, ones)
	}
	return b.Build()
}

// RandnDiag creates a diagonal tensor with standard normal entries.
func RandnDiag(cfg *Config, leg Leg) (*Tensor, error) {
	b := NewDiagBuilder(cfg, leg)
	for _, sec := range leg.Sectors {
		vals := make([]complex128, sec.Dim)
		for i := range vals {
			if cfg.DType == Complex128 {
				vals[i] = complex(rand.NormFloat64(), rand.NormFloat64())
			} else {
				vals[i] = complex(rand.NormFloat64(), 0)
			}
		}
		b.SetComplex([]Charge{sec.Charge}, vals)
	}
	return b.Build()
}
