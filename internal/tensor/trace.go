package tensor

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Trace contracts two equal-length, disjoint groups of the tensor's own
// legs against each other: axes1[k] is traced with axes2[k].
func Trace(a *Tensor, axes1, axes2 []int) (*Tensor, error) {
	for _, x := range axes1 {
		for _, y := range axes2 {
			if x == y {
				return nil, errors.Wrapf(ErrLabeling, "axis %d appears in both traced groups", x)
			}
		}
	}
	needsMask, in1, in2, err := axesMatch(a, a, axes1, axes2)
	if err != nil {
		return nil, err
	}
	if len(in1) == 0 {
		return a.Clone(), nil
	}

	outMeta := remainingGroups(a, append(append([]int(nil), axes1...), axes2...))

	if a.diag {
		// The only legal trace of a diagonal tensor closes its two
		// legs: the result is the scalar sum of the stored diagonal.
		out := &Tensor{cfg: a.cfg, n: a.n.Clone()}
		out.blocks = []Block{{t: []int{}, D: []int{}, off: 0, size: 1}}
		out.data = a.cfg.Backend.SumElements(a.data)
		return out, nil
	}

	traced := append(append([]int(nil), in1...), in2...)
	outAx := complementAxes(traced, a.NdimN())

	plan, err := traceMeta(a, in1, in2, outAx, needsMask)
	if err != nil {
		return nil, err
	}

	out := &Tensor{
		cfg:    a.cfg,
		legs:   gatherLegs(a.legs, outAx, nil, nil),
		n:      a.n.Clone(),
		meta:   outMeta,
		blocks: plan.blocks,
	}
	if needsMask {
		out.data = a.cfg.Backend.TraceWithMask(a.data, plan.metas, plan.size)
	} else {
		out.data = a.cfg.Backend.Trace(a.data, plan.metas, plan.size)
	}
	return out, nil
}

// traceMetaPlan is the memoized structural plan of a partial trace.
type traceMetaPlan struct {
	metas  []TraceMeta
	blocks []Block
	size   int
}

func traceMeta(a *Tensor, in1, in2, outAx []int, needsMask bool) (*traceMetaPlan, error) {
	var key string
	if !needsMask {
		// Masked plans depend on fusion descriptors, which the
		// structural signature does not serialize; only the unmasked
		// family is memoized.
		var sb strings.Builder
		sb.WriteString("t|")
		sb.WriteString(a.structSig())
		sb.Write(appendRowKey(nil, in1))
		sb.Write(appendRowKey(nil, in2))
		key = sb.String()
		if cached, ok := traceCache.get(key); ok {
			return cached, nil
		}
	}

	nsym := a.nsym()
	type contrib struct {
		tn   []int
		dn   []int
		meta TraceMeta
	}
	var contribs []contrib
	for _, blk := range a.blocks {
		t1 := project(blk.t, in1, nsym)
		t2 := project(blk.t, in2, nsym)
		if !equalRows(t1, t2) {
			continue
		}
		strides := rowMajorStrides(blk.D)

		// Per traced leg pair, the admissible (i, j) index pairs as
		// combined stride offsets; masks fold the fusion-history
		// filtering in here.
		choices := make([][]int, len(in1))
		for k := range in1 {
			if !needsMask {
				s12 := strides[in1[k]] + strides[in2[k]]
				if blk.D[in1[k]] != blk.D[in2[k]] {
					return nil, errors.Wrapf(ErrDimensionMismatch,
						"traced legs %d and %d disagree in size (%d vs %d) with no fusion mask",
						in1[k], in2[k], blk.D[in1[k]], blk.D[in2[k]])
				}
				ch := make([]int, blk.D[in1[k]])
				for i := range ch {
					ch[i] = i * s12
				}
				choices[k] = ch
				continue
			}
			c := t1[k*nsym : (k+1)*nsym]
			m1, m2, err := legMaskPair(a.legs[in1[k]], a.legs[in2[k]], c)
			if err != nil {
				return nil, err
			}
			p1, p2 := truePositions(m1), truePositions(m2)
			ch := make([]int, len(p1))
			for i := range p1 {
				ch[i] = p1[i]*strides[in1[k]] + p2[i]*strides[in2[k]]
			}
			choices[k] = ch
		}
		off12 := cartesianSums(choices)

		outChoices := make([][]int, len(outAx))
		dn := make([]int, len(outAx))
		for k, ax := range outAx {
			dn[k] = blk.D[ax]
			ch := make([]int, blk.D[ax])
			for i := range ch {
				ch[i] = i * strides[ax]
			}
			outChoices[k] = ch
		}
		contribs = append(contribs, contrib{
			tn: project(blk.t, outAx, nsym),
			dn: dn,
			meta: TraceMeta{
				SrcOff: blk.off,
				Off12:  off12,
				OffOut: cartesianSums(outChoices),
			},
		})
	}

	sort.SliceStable(contribs, func(i, j int) bool { return compareRows(contribs[i].tn, contribs[j].tn) < 0 })
	plan := &traceMetaPlan{}
	total := 0
	for i := range contribs {
		c := &contribs[i]
		if i == 0 || !equalRows(plan.blocks[len(plan.blocks)-1].t, c.tn) {
			size := prod(c.dn)
			plan.blocks = append(plan.blocks, Block{t: c.tn, D: c.dn, off: total, size: size})
			total += size
		}
		dst := plan.blocks[len(plan.blocks)-1]
		c.meta.DstOff = dst.off
		c.meta.DstSize = dst.size
		plan.metas = append(plan.metas, c.meta)
	}
	plan.size = total

	if !needsMask {
		traceCache.put(key, plan)
	}
	return plan, nil
}

// cartesianSums returns all sums picking one element per choice list,
// in row-major order. An empty input yields the single sum zero.
func cartesianSums(choices [][]int) []int {
	out := []int{0}
	for _, ch := range choices {
		next := make([]int, 0, len(out)*len(ch))
		for _, base := range out {
			for _, c := range ch {
				next = append(next, base+c)
			}
		}
		out = next
	}
	return out
}

// remainingGroups keeps the logical groups not listed in axes, or nil
// when all remaining groups are trivial.
func remainingGroups(t *Tensor, axes []int) []int {
	skip := make(map[int]bool, len(axes))
	for _, ax := range axes {
		skip[ax] = true
	}
	var groups []int
	nontrivial := false
	for i, g := range t.metaGroups() {
		if skip[i] {
			continue
		}
		groups = append(groups, g)
		if g != 1 {
			nontrivial = true
		}
	}
	if !nontrivial {
		return nil
	}
	return groups
}
