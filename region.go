package gtarray

import "fmt"

// Region is a half-open genomic interval [Start, End) with a 1-based start.
type Region struct {
	Chromosome string
	Start      uint32
	End        uint32
}

// NewRegion validates that Start is at least 1 and strictly before End.
func NewRegion(chromosome string, start, end uint32) (*Region, error) {
	if start < 1 {
		return nil, fmt.Errorf("region start must be at least 1, got %d", start)
	}
	if start >= end {
		return nil, fmt.Errorf("region start (%d) must be before its end (%d)", start, end)
	}
	return &Region{Chromosome: chromosome, Start: start, End: end}, nil
}

// ContainsVariant reports whether the variant's position falls inside the
// region on the same chromosome.
func (r *Region) ContainsVariant(v *Variant) bool {
	return v != nil &&
		r.Chromosome == v.Chromosome &&
		v.Position >= r.Start &&
		v.Position < r.End
}

func (r *Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chromosome, r.Start, r.End)
}
