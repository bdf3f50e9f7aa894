package gtarray

import (
	"fmt"
	"sort"
	"strings"
)

// Genotype is one sample's call at a Variant: a canonical (sorted ascending)
// tuple of allele indices whose length equals the variant's ploidy, plus an
// optional quality score. Genotypes are immutable once constructed; build
// them through the Variant factory methods.
type Genotype struct {
	Variant    *Variant
	AlleleIdxs []uint8
	Score      uint8 // 0-254; MissingIdx when unset
}

// newGenotype sorts and validates the allele indices against the variant.
func newGenotype(variant *Variant, alleleIdxs []uint8, score uint8) (*Genotype, error) {
	if len(alleleIdxs) != int(variant.Ploidy) {
		return nil, fmt.Errorf("%w: genotype has %d alleles for a %dn variant",
			ErrInvalidAlleleIndex, len(alleleIdxs), variant.Ploidy)
	}
	for _, idx := range alleleIdxs {
		if !variant.IsValidAlleleIdx(idx) {
			return nil, fmt.Errorf("%w: %d for %s", ErrInvalidAlleleIndex, idx, variant)
		}
	}
	sorted := make([]uint8, len(alleleIdxs))
	copy(sorted, alleleIdxs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return &Genotype{Variant: variant, AlleleIdxs: sorted, Score: score}, nil
}

// IsMissing reports whether every allele of the call is missing.
func (g *Genotype) IsMissing() bool {
	for _, idx := range g.AlleleIdxs {
		if idx != MissingIdx {
			return false
		}
	}
	return true
}

// HasScore reports whether the call carries a quality score.
func (g *Genotype) HasScore() bool {
	return g.Score != MissingIdx
}

// String renders the allele strings joined by "/", with "." for a missing
// allele. A fully missing call renders as a single ".".
func (g *Genotype) String() string {
	if g.IsMissing() {
		return "."
	}
	parts := make([]string, len(g.AlleleIdxs))
	for i, idx := range g.AlleleIdxs {
		// Indices were validated at construction
		parts[i], _ = g.Variant.GetAlleleFromIdx(idx)
	}
	return strings.Join(parts, "/")
}

// Cmp compares two genotypes of the same variant lexicographically on their
// canonical allele index tuples, returning -1, 0, or +1. Comparing genotypes
// bound to different variants fails with ErrIncompatibleVariant.
func (g *Genotype) Cmp(other *Genotype) (int, error) {
	if other == nil || !g.Variant.Equal(other.Variant) {
		return 0, fmt.Errorf("%w: can't compare genotypes of different variants", ErrIncompatibleVariant)
	}
	for i := range g.AlleleIdxs {
		if g.AlleleIdxs[i] < other.AlleleIdxs[i] {
			return -1, nil
		}
		if g.AlleleIdxs[i] > other.AlleleIdxs[i] {
			return 1, nil
		}
	}
	return 0, nil
}

// Equal reports whether two genotypes of the same variant carry the same
// canonical allele tuple. Scores are not part of genotype identity.
func (g *Genotype) Equal(other *Genotype) (bool, error) {
	c, err := g.Cmp(other)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

// Less reports whether g sorts before other.
func (g *Genotype) Less(other *Genotype) (bool, error) {
	c, err := g.Cmp(other)
	if err != nil {
		return false, err
	}
	return c < 0, nil
}
