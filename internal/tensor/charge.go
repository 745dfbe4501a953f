package tensor

import "strconv"

// Charge is the value of the conserved quantity carried by a sector:
// a fixed-length integer vector with one component per independent
// symmetry generator. Charges are compared lexicographically.
type Charge []int

// Equal reports whether two charges are identical.
func (c Charge) Equal(other Charge) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the charge.
func (c Charge) Clone() Charge {
	clone := make(Charge, len(c))
	copy(clone, c)
	return clone
}

// IsZero reports whether every component is zero.
func (c Charge) IsZero() bool {
	for _, v := range c {
		if v != 0 {
			return false
		}
	}
	return true
}

// String renders the charge as "(a b c)".
func (c Charge) String() string {
	buf := make([]byte, 0, 2+4*len(c))
	buf = append(buf, '(')
	for i, v := range c {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, int64(v), 10)
	}
	buf = append(buf, ')')
	return string(buf)
}

// compareRows orders two equal-length integer rows lexicographically.
// Block charge tuples are kept sorted under this order so that sector
// matching can run as a merge-join.
func compareRows(a, b []int) int {
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

func equalRows(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	return compareRows(a, b) == 0
}

// appendRowKey serializes an integer row into buf as a cache-key
// fragment. The encoding is unambiguous for any row content.
func appendRowKey(buf []byte, row []int) []byte {
	for _, v := range row {
		buf = strconv.AppendInt(buf, int64(v), 10)
		buf = append(buf, ',')
	}
	buf = append(buf, ';')
	return buf
}

func rowKey(row []int) string {
	return string(appendRowKey(nil, row))
}

// project copies the charge components of the given axes out of a
// flattened block row (ndim*nsym ints, nsym per leg).
func project(row []int, axes []int, nsym int) []int {
	out := make([]int, 0, len(axes)*nsym)
	for _, ax := range axes {
		out = append(out, row[ax*nsym:(ax+1)*nsym]...)
	}
	return out
}

func prod(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}

// rowMajorStrides computes row-major strides for dims, the same layout
// convention every dense block uses.
func rowMajorStrides(dims []int) []int {
	strides := make([]int, len(dims))
	if len(dims) == 0 {
		return strides
	}
	strides[len(dims)-1] = 1
	for i := len(dims) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * dims[i+1]
	}
	return strides
}
