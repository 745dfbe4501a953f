package tensor

import (
	"strings"

	"github.com/pkg/errors"
)

// SwapGate applies fermionic swap gates between consecutive pairs of
// axis groups: blocks whose charges carry odd parity on both sides of a
// pair change sign. With no fermionic charge channels configured this
// is the identity.
func SwapGate(a *Tensor, groups ...[]int) (*Tensor, error) {
	if len(groups)%2 != 0 {
		return nil, errors.Wrapf(ErrLabeling, "swap gate needs an even number of axis groups, got %d", len(groups))
	}
	for i := 0; i < len(groups); i += 2 {
		for _, x := range groups[i] {
			for _, y := range groups[i+1] {
				if x == y {
					return nil, errors.Wrapf(ErrLabeling, "axis %d cannot be swapped with itself", x)
				}
			}
		}
	}
	if !a.cfg.fermionic() || len(groups) == 0 {
		return a.Clone(), nil
	}
	ferm := a.cfg.Fermionic

	var sb strings.Builder
	sb.WriteString("s|")
	sb.WriteString(a.structSig())
	for _, f := range ferm {
		if f {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	for _, g := range groups {
		sb.WriteByte('/')
		sb.Write(appendRowKey(nil, g))
	}
	key := sb.String()

	negate, ok := swapCache.get(key)
	if !ok {
		negate = make([]bool, len(a.blocks))
		for i := 0; i < len(groups); i += 2 {
			n1 := a.nativeAxes(groups[i])
			n2 := a.nativeAxes(groups[i+1])
			for j := range a.blocks {
				if blockParity(a, &a.blocks[j], n1, ferm) == 1 &&
					blockParity(a, &a.blocks[j], n2, ferm) == 1 {
					negate[j] = !negate[j]
				}
			}
		}
		swapCache.put(key, negate)
	}

	out := a.Clone()
	var slices [][2]int
	for i, neg := range negate {
		if neg {
			blk := &out.blocks[i]
			slices = append(slices, [2]int{blk.off, blk.off + blk.size})
		}
	}
	if len(slices) > 0 {
		out.cfg.Backend.Negate(out.data, slices)
	}
	return out, nil
}

// blockParity is the summed parity of the block's charges on the given
// native axes, restricted to the fermionic channels, modulo 2.
func blockParity(t *Tensor, blk *Block, axes []int, ferm []bool) int {
	nsym := t.nsym()
	p := 0
	for _, ax := range axes {
		c := blk.t[ax*nsym : (ax+1)*nsym]
		for k, f := range ferm {
			if f {
				p += c[k]
			}
		}
	}
	p %= 2
	if p < 0 {
		p += 2
	}
	return p
}
