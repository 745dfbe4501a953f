package tensor

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Label bounds of the planner. Positive labels mark contracted leg
// pairs; non-positive labels mark result legs and are remapped above
// outLabelBase so they survive every pop.
const (
	maxLabel     = 256
	outLabelBase = 1024
)

// Ncon contracts a network of tensors described by per-leg integer
// labels. A positive label names a contracted pair and must occur on
// exactly two legs across the network; a non-positive label names a leg
// of the result, ordered by descending label (0, -1, -2, ...). conjs
// flags operands to conjugate first; nil means none.
func Ncon(ts []*Tensor, inds [][]int, conjs []bool) (*Tensor, error) {
	if len(ts) == 0 || len(ts) != len(inds) {
		return nil, errors.Wrapf(ErrLabeling, "got %d tensors and %d label lists", len(ts), len(inds))
	}
	if conjs != nil && len(conjs) != len(ts) {
		return nil, errors.Wrapf(ErrLabeling, "got %d tensors and %d conjugation flags", len(ts), len(conjs))
	}
	for i, t := range ts {
		if len(inds[i]) != t.Ndim() {
			return nil, errors.Wrapf(ErrLabeling,
				"tensor %d has %d legs but %d labels", i, t.Ndim(), len(inds[i]))
		}
	}

	plan, err := nconMeta(inds)
	if err != nil {
		return nil, err
	}

	slots := make([]*Tensor, len(ts))
	for i, t := range ts {
		if conjs != nil && conjs[i] {
			slots[i] = t.Conj()
		} else {
			slots[i] = t
		}
	}
	for _, cmd := range plan.cmds {
		switch cmd.op {
		case opTrace:
			slots[cmd.a], err = Trace(slots[cmd.a], cmd.axA, cmd.axB)
		case opDot:
			slots[cmd.a], err = Tensordot(slots[cmd.a], slots[cmd.b], cmd.axA, cmd.axB)
			slots[cmd.b] = nil
		}
		if err != nil {
			return nil, err
		}
	}
	out := slots[plan.result]
	if plan.transpose != nil {
		return out.Transpose(plan.transpose...)
	}
	if out == ts[plan.result] {
		return out.Clone(), nil
	}
	return out, nil
}

const (
	opTrace = iota
	opDot
)

type nconCmd struct {
	op       int
	a, b     int
	axA, axB []int
}

// nconPlan is the memoized command sequence for one label layout.
type nconPlan struct {
	cmds      []nconCmd
	result    int
	transpose []int
}

func nconMeta(inds [][]int) (*nconPlan, error) {
	var sb strings.Builder
	sb.WriteString("n|")
	for _, ind := range inds {
		sb.Write(appendRowKey(nil, ind))
		sb.WriteByte('/')
	}
	key := sb.String()
	if cached, ok := nconCache.get(key); ok {
		return cached, nil
	}

	counts := make(map[int]int)
	labels := make([][]int, len(inds))
	for i, ind := range inds {
		labels[i] = make([]int, len(ind))
		for j, v := range ind {
			if v >= maxLabel || -v >= maxLabel {
				return nil, errors.Wrapf(ErrLabeling, "label %d out of range", v)
			}
			counts[v]++
			if v > 0 {
				labels[i][j] = v
			} else {
				labels[i][j] = outLabelBase - v
			}
		}
	}
	var order []int
	for v, c := range counts {
		switch {
		case v > 0 && c != 2:
			return nil, errors.Wrapf(ErrLabeling, "contracted label %d occurs %d times, want 2", v, c)
		case v <= 0 && c != 1:
			return nil, errors.Wrapf(ErrLabeling, "result label %d occurs %d times, want 1", v, c)
		case v > 0:
			order = append(order, v)
		}
	}
	sort.Ints(order)

	plan := &nconPlan{}
	alive := make([]bool, len(inds))
	fromDot := make([]bool, len(inds))
	for i := range alive {
		alive[i] = true
	}

	find := func(v int) (s1, p1, s2, p2 int) {
		s1 = -1
		for s, lab := range labels {
			if !alive[s] {
				continue
			}
			for p, l := range lab {
				if l != v {
					continue
				}
				if s1 < 0 {
					s1, p1 = s, p
				} else {
					s2, p2 = s, p
				}
			}
		}
		return s1, p1, s2, p2
	}
	remove := func(s int, axes []int) {
		drop := make(map[int]bool, len(axes))
		for _, ax := range axes {
			drop[ax] = true
		}
		kept := labels[s][:0]
		for p, l := range labels[s] {
			if !drop[p] {
				kept = append(kept, l)
			}
		}
		labels[s] = kept
	}

	for i := 0; i < len(order); {
		s1, p1, s2, p2 := find(order[i])
		if s1 == s2 {
			if fromDot[s1] {
				return nil, errors.Wrapf(ErrLabeling,
					"label %d pairs legs of an intermediate product; reorder the contraction so same-pair labels are adjacent",
					order[i])
			}
			ax1, ax2 := []int{p1}, []int{p2}
			j := i + 1
			for ; j < len(order); j++ {
				t1, q1, t2, q2 := find(order[j])
				if t1 != s1 || t2 != s1 {
					break
				}
				ax1 = append(ax1, q1)
				ax2 = append(ax2, q2)
			}
			plan.cmds = append(plan.cmds, nconCmd{op: opTrace, a: s1, axA: ax1, axB: ax2})
			remove(s1, append(append([]int(nil), ax1...), ax2...))
			i = j
			continue
		}
		axA, axB := []int{p1}, []int{p2}
		j := i + 1
		for ; j < len(order); j++ {
			t1, q1, t2, q2 := find(order[j])
			if t1 != s1 || t2 != s2 {
				break
			}
			axA = append(axA, q1)
			axB = append(axB, q2)
		}
		plan.cmds = append(plan.cmds, nconCmd{op: opDot, a: s1, b: s2, axA: axA, axB: axB})
		remove(s1, axA)
		remove(s2, axB)
		labels[s1] = append(labels[s1], labels[s2]...)
		alive[s2] = false
		fromDot[s1] = true
		i = j
	}

	// Outer products join whatever the label graph left disconnected.
	first := -1
	for s := range alive {
		if !alive[s] {
			continue
		}
		if first < 0 {
			first = s
			continue
		}
		plan.cmds = append(plan.cmds, nconCmd{op: opDot, a: first, b: s, axA: nil, axB: nil})
		labels[first] = append(labels[first], labels[s]...)
		alive[s] = false
	}
	plan.result = first

	out := labels[first]
	perm := make([]int, len(out))
	target := append([]int(nil), out...)
	sort.Ints(target)
	identity := true
	for k, v := range target {
		for p, l := range out {
			if l == v {
				perm[k] = p
				break
			}
		}
		if perm[k] != k {
			identity = false
		}
	}
	if !identity {
		plan.transpose = perm
	}

	nconCache.put(key, plan)
	return plan, nil
}
