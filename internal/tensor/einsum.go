package tensor

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Einsum contracts tensors following letter subscripts with an explicit
// output clause, e.g. "ij,jk->ik". A leading '*' conjugates that
// operand. Repeated letters contract in ascending alphabetic order.
func Einsum(subscripts string, ts ...*Tensor) (*Tensor, error) {
	return einsum(subscripts, "", ts)
}

// EinsumOrder is Einsum with an explicit contraction order: order lists
// every repeated letter once, in the order the pairs should contract.
func EinsumOrder(subscripts, order string, ts ...*Tensor) (*Tensor, error) {
	return einsum(subscripts, order, ts)
}

func einsum(subscripts, order string, ts []*Tensor) (*Tensor, error) {
	subscripts = strings.ReplaceAll(subscripts, " ", "")
	lhs, rhs, found := strings.Cut(subscripts, "->")
	if !found {
		return nil, errors.Wrap(ErrLabeling, "subscripts need an explicit '->' output clause")
	}
	operands := strings.Split(lhs, ",")
	if len(operands) != len(ts) {
		return nil, errors.Wrapf(ErrLabeling, "%d subscript groups for %d tensors", len(operands), len(ts))
	}

	conjs := make([]bool, len(ts))
	letters := make([][]rune, len(ts))
	contracted := make(map[rune]int)
	for i, op := range operands {
		if strings.HasPrefix(op, "*") {
			conjs[i] = true
			op = op[1:]
		}
		for _, r := range op {
			if !isSubscriptLetter(r) {
				return nil, errors.Wrapf(ErrLabeling, "invalid subscript character %q", r)
			}
			letters[i] = append(letters[i], r)
			contracted[r]++
		}
	}

	dout := make(map[rune]int, len(rhs))
	for i, r := range rhs {
		if !isSubscriptLetter(r) {
			return nil, errors.Wrapf(ErrLabeling, "invalid output character %q", r)
		}
		if _, ok := dout[r]; ok {
			return nil, errors.Wrapf(ErrLabeling, "output letter %q repeats", r)
		}
		if contracted[r] == 0 {
			return nil, errors.Wrapf(ErrLabeling, "output letter %q does not appear in the operands", r)
		}
		dout[r] = -i
		delete(contracted, r)
	}

	var pairs []rune
	for r := range contracted {
		pairs = append(pairs, r)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i] < pairs[j] })
	din := make(map[rune]int, len(pairs))
	if order == "" {
		for i, r := range pairs {
			din[r] = i + 1
		}
	} else {
		seen := make(map[rune]bool, len(order))
		i := 0
		for _, r := range order {
			if seen[r] {
				return nil, errors.Wrapf(ErrLabeling, "contraction order repeats letter %q", r)
			}
			seen[r] = true
			if _, ok := contracted[r]; !ok {
				return nil, errors.Wrapf(ErrLabeling, "contraction order names %q, which is not a repeated letter", r)
			}
			i++
			din[r] = i
		}
		if len(din) != len(pairs) {
			return nil, errors.Wrapf(ErrLabeling, "contraction order covers %d of %d repeated letters", len(din), len(pairs))
		}
	}

	inds := make([][]int, len(ts))
	for i, ls := range letters {
		inds[i] = make([]int, len(ls))
		for j, r := range ls {
			if v, ok := din[r]; ok {
				inds[i][j] = v
			} else {
				inds[i][j] = dout[r]
			}
		}
	}
	return Ncon(ts, inds, conjs)
}

func isSubscriptLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
