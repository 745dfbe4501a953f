package tensor

import (
	"sort"

	"github.com/pkg/errors"
)

// FusionKind classifies how a physical leg was assembled from logical
// legs. The fusion-tree subsystem that performs the assembly is external;
// the engine only reads descriptors to decide whether masks and
// broadcast preconditions apply.
type FusionKind int

const (
	// FusionTrivial marks a plain physical leg.
	FusionTrivial FusionKind = iota
	// FusionMeta marks several logical legs sharing one physical leg
	// without any data reshaping. Carried on the tensor as logical leg
	// groups, not on the Leg itself.
	FusionMeta
	// FusionHard marks logical legs combined into one physical leg with
	// actual data concatenation or truncation.
	FusionHard
)

// Section is one contribution to a hard-fused sector: the flattened
// sub-charges it came from and its dimension. The fusion subsystem
// supplies sections in charge-sorted order; the engine relies on that
// order when intersecting two fusion histories.
type Section struct {
	T []int
	D int
}

// Fusion is the read-only fusion descriptor of a hard-fused leg:
// for each nominal charge (keyed by its serialized row), the ordered
// contributions whose dimensions sum to the sector dimension.
type Fusion struct {
	Kind     FusionKind
	Sections map[string][]Section
}

// SectionKey serializes a charge for use as a Fusion.Sections map key.
func SectionKey(c Charge) string {
	return rowKey(c)
}

// Sector declares that a charge exists on a leg with the given dimension.
type Sector struct {
	Charge Charge
	Dim    int
}

// Leg is one tensor index: a direction (signature +1 or -1) and an
// ordered, duplicate-free table of sectors. A nil Fusion means the leg
// is trivially fused.
type Leg struct {
	S       int
	Sectors []Sector
	Fusion  *Fusion
}

// NewLeg builds a leg with the sectors sorted by charge.
func NewLeg(s int, sectors ...Sector) Leg {
	sorted := make([]Sector, len(sectors))
	copy(sorted, sectors)
	sort.Slice(sorted, func(i, j int) bool {
		return compareRows(sorted[i].Charge, sorted[j].Charge) < 0
	})
	return Leg{S: s, Sectors: sorted}
}

// Validate checks signatures, ordering, duplicates and dimensions.
func (l Leg) Validate() error {
	if l.S != 1 && l.S != -1 {
		return errors.Wrapf(ErrStructuralMismatch, "leg signature must be +1 or -1, got %d", l.S)
	}
	for i, sec := range l.Sectors {
		if sec.Dim <= 0 {
			return errors.Wrapf(ErrStructuralMismatch, "sector %s has non-positive dimension %d", sec.Charge, sec.Dim)
		}
		if i > 0 {
			switch compareRows(l.Sectors[i-1].Charge, sec.Charge) {
			case 0:
				return errors.Wrapf(ErrStructuralMismatch, "duplicate sector charge %s", sec.Charge)
			case 1:
				return errors.Wrapf(ErrStructuralMismatch, "sector table not sorted at %s", sec.Charge)
			}
		}
	}
	return nil
}

// Conj flips the leg direction. Sector content is unchanged.
func (l Leg) Conj() Leg {
	return Leg{S: -l.S, Sectors: l.Sectors, Fusion: l.Fusion}
}

// DimOf returns the dimension of the sector carrying the given charge.
func (l Leg) DimOf(c []int) (int, bool) {
	i := sort.Search(len(l.Sectors), func(i int) bool {
		return compareRows(l.Sectors[i].Charge, c) >= 0
	})
	if i < len(l.Sectors) && equalRows(l.Sectors[i].Charge, c) {
		return l.Sectors[i].Dim, true
	}
	return 0, false
}

// TotalDim is the summed dimension over all sectors.
func (l Leg) TotalDim() int {
	d := 0
	for _, sec := range l.Sectors {
		d += sec.Dim
	}
	return d
}

// kind reports the fusion kind, treating a nil descriptor as trivial.
func (l Leg) kind() FusionKind {
	if l.Fusion == nil {
		return FusionTrivial
	}
	return l.Fusion.Kind
}

// sections returns the hard-fusion contributions for a charge, or nil
// for a trivially fused leg.
func (l Leg) sections(c []int) []Section {
	if l.kind() != FusionHard {
		return nil
	}
	return l.Fusion.Sections[rowKey(c)]
}

func sectionsEqual(a, b []Section) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].D != b[i].D || !equalRows(a[i].T, b[i].T) {
			return false
		}
	}
	return true
}

// fusionEqual reports whether two descriptors record the same history.
func fusionEqual(a, b *Fusion) bool {
	ka, kb := FusionTrivial, FusionTrivial
	if a != nil {
		ka = a.Kind
	}
	if b != nil {
		kb = b.Kind
	}
	if ka != kb {
		return false
	}
	if ka != FusionHard {
		return true
	}
	if len(a.Sections) != len(b.Sections) {
		return false
	}
	for k, sa := range a.Sections {
		if !sectionsEqual(sa, b.Sections[k]) {
			return false
		}
	}
	return true
}
