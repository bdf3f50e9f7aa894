package gtarray

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// MissingIdx is the sentinel allele index (and quality score) indicating a
// missing value. Because it is reserved, a variant may hold at most 254
// alleles.
const MissingIdx uint8 = 255

const (
	maxAlleles  = 254
	maxPosition = 1<<31 - 2
)

// Variant describes one genomic site: its identity plus the ordered list of
// alleles known for it. The reference allele is always at index 0. The allele
// list is append-only; the only reorder ever applied to it is the explicit
// reference swap performed by GenotypeArray.SetReference.
type Variant struct {
	Chromosome string
	Position   uint32
	ID         string
	Ploidy     uint8
	Score      uint8 // quality 0-254; MissingIdx when unset

	alleles []string
}

// NewVariant creates a diploid variant with no quality score. An empty ref is
// recorded as "N"; an empty id is replaced with a generated unique id.
func NewVariant(chromosome string, position uint32, id, ref string, alt ...string) (*Variant, error) {
	return NewVariantPloidy(2, chromosome, position, id, ref, alt...)
}

// NewVariantPloidy creates a variant with the given ploidy (number of allele
// copies per genotype call, at least 1).
func NewVariantPloidy(ploidy uint8, chromosome string, position uint32, id, ref string, alt ...string) (*Variant, error) {
	if ploidy < 1 {
		return nil, fmt.Errorf("%w: ploidy must be at least 1", ErrUnsupportedPloidy)
	}
	if position > maxPosition {
		return nil, fmt.Errorf("the position value may not exceed 2^31-2, %d was specified", position)
	}
	if strings.ContainsAny(chromosome, ";,") {
		return nil, fmt.Errorf("the chromosome cannot contain ';' or ',': %q", chromosome)
	}
	if strings.ContainsAny(id, ";,") {
		return nil, fmt.Errorf("the variant id cannot contain ';' or ',': %q", id)
	}
	if id == "" {
		id = uuid.New().String()
	}
	if ref == "" {
		ref = "N"
	}
	if len(alt) > maxAlleles-1 {
		return nil, fmt.Errorf("%w: %d alternate alleles", ErrTooManyAlleles, len(alt))
	}

	v := &Variant{
		Chromosome: chromosome,
		Position:   position,
		ID:         id,
		Ploidy:     ploidy,
		Score:      MissingIdx,
		alleles:    make([]string, 0, 1+len(alt)),
	}
	v.alleles = append(v.alleles, ref)
	for _, a := range alt {
		if err := v.addAllele(a); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// Alleles returns the ordered allele list with the reference allele first.
// The returned slice must not be modified.
func (v *Variant) Alleles() []string {
	return v.alleles
}

// Ref returns the reference allele.
func (v *Variant) Ref() string {
	return v.alleles[0]
}

// Alt returns the alternate alleles (everything but the reference).
func (v *Variant) Alt() []string {
	return v.alleles[1:]
}

// NumAlleles returns the number of alleles known for this variant.
func (v *Variant) NumAlleles() int {
	return len(v.alleles)
}

// HasScore reports whether the variant carries a quality score.
func (v *Variant) HasScore() bool {
	return v.Score != MissingIdx
}

// addAllele is the single point where new alleles enter the list.
func (v *Variant) addAllele(allele string) error {
	if len(v.alleles) >= maxAlleles {
		return fmt.Errorf("%w: couldn't add allele to %s, %d alleles max", ErrTooManyAlleles, v, maxAlleles)
	}
	for _, existing := range v.alleles {
		if existing == allele {
			return fmt.Errorf("allele %q is already listed for %s", allele, v)
		}
	}
	v.alleles = append(v.alleles, allele)
	return nil
}

// GetIdxFromAllele returns the index of an allele string within this variant.
// An empty string or "." means missing. If add is true, an unknown allele is
// appended to the allele list; otherwise ErrUnknownAllele is returned.
func (v *Variant) GetIdxFromAllele(allele string, add bool) (uint8, error) {
	if allele == "" || allele == "." {
		return MissingIdx, nil
	}
	for i, a := range v.alleles {
		if a == allele {
			return uint8(i), nil
		}
	}
	if !add {
		return 0, fmt.Errorf("%w: %q is not an allele in %s", ErrUnknownAllele, allele, v)
	}
	if err := v.addAllele(allele); err != nil {
		return 0, err
	}
	return uint8(len(v.alleles) - 1), nil
}

// GetAlleleFromIdx is the inverse of GetIdxFromAllele. MissingIdx maps to ".".
func (v *Variant) GetAlleleFromIdx(idx uint8) (string, error) {
	if idx == MissingIdx {
		return ".", nil
	}
	if int(idx) >= len(v.alleles) {
		return "", fmt.Errorf("%w: %d (the variant has %d alleles)", ErrInvalidAlleleIndex, idx, len(v.alleles))
	}
	return v.alleles[idx], nil
}

// IsValidAlleleIdx reports whether idx is MissingIdx or indexes an existing
// allele.
func (v *Variant) IsValidAlleleIdx(idx uint8) bool {
	return idx == MissingIdx || int(idx) < len(v.alleles)
}

// IsSamePosition reports whether two variants describe the same site for the
// purpose of merging: id, chromosome, position, reference allele, and ploidy
// all match. The alternate allele lists may differ.
func (v *Variant) IsSamePosition(other *Variant) bool {
	if other == nil {
		return false
	}
	return v.ID == other.ID &&
		v.Chromosome == other.Chromosome &&
		v.Position == other.Position &&
		v.alleles[0] == other.alleles[0] &&
		v.Ploidy == other.Ploidy
}

// Equal reports full structural equality, including the complete allele list
// and quality score.
func (v *Variant) Equal(other *Variant) bool {
	if other == nil {
		return false
	}
	if !v.IsSamePosition(other) || v.Score != other.Score || len(v.alleles) != len(other.alleles) {
		return false
	}
	for i := range v.alleles {
		if v.alleles[i] != other.alleles[i] {
			return false
		}
	}
	return true
}

// clone returns a deep copy, used for copy-on-write before palette mutation.
func (v *Variant) clone() *Variant {
	dup := *v
	dup.alleles = make([]string, len(v.alleles))
	copy(dup.alleles, v.alleles)
	return &dup
}

func (v *Variant) String() string {
	return fmt.Sprintf("%s[chr=%s;pos=%d;ref=%s;alt=%s]",
		v.ID, v.Chromosome, v.Position, v.Ref(), strings.Join(v.Alt(), ","))
}

// TypeString renders the variant in the column-type grammar
// genotype(<ploidy>n)[<chromosome>; <position>; <id>; <ref>; <alt,...>],
// optionally suffixed with Q<score>. ParseVariantType inverts it.
func (v *Variant) TypeString() string {
	s := fmt.Sprintf("genotype(%dn)[%s; %d; %s; %s; %s]",
		v.Ploidy, v.Chromosome, v.Position, v.ID, v.Ref(), strings.Join(v.Alt(), ","))
	if v.HasScore() {
		s += fmt.Sprintf("Q%d", v.Score)
	}
	return s
}

var variantTypeRE = regexp.MustCompile(
	`^genotype\(([0-9]+)n\)\[([^;\]]*); ([0-9]+); ([^;\]]*); ([^;\]]*); ([^\]]*)\](?:Q([0-9]+))?$`)

// ParseVariantType parses the grammar emitted by TypeString back into an
// identical Variant.
func ParseVariantType(s string) (*Variant, error) {
	m := variantTypeRE.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("cannot parse %q as a genotype column type", s)
	}
	ploidy, err := strconv.ParseUint(m[1], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("bad ploidy in %q: %w", s, err)
	}
	position, err := strconv.ParseUint(m[3], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("bad position in %q: %w", s, err)
	}
	var alt []string
	if m[6] != "" {
		alt = strings.Split(m[6], ",")
	}
	v, err := NewVariantPloidy(uint8(ploidy), m[2], uint32(position), m[4], m[5], alt...)
	if err != nil {
		return nil, err
	}
	if m[7] != "" {
		score, err := strconv.ParseUint(m[7], 10, 8)
		if err != nil || score >= uint64(MissingIdx) {
			return nil, fmt.Errorf("bad score in %q", s)
		}
		v.Score = uint8(score)
	}
	return v, nil
}

// MakeGenotype creates a Genotype bound to this variant from allele strings.
// Unspecified trailing alleles are treated as missing, up to the ploidy. If
// add is true, unknown alleles are appended to the variant's allele list.
func (v *Variant) MakeGenotype(alleles []string, add bool) (*Genotype, error) {
	if len(alleles) > int(v.Ploidy) {
		return nil, fmt.Errorf("%w: %d alleles for a %dn genotype", ErrTooManyAlleles, len(alleles), v.Ploidy)
	}
	idxs := make([]uint8, v.Ploidy)
	for i := range idxs {
		idxs[i] = MissingIdx
	}
	for i, a := range alleles {
		idx, err := v.GetIdxFromAllele(a, add)
		if err != nil {
			return nil, err
		}
		idxs[i] = idx
	}
	return newGenotype(v, idxs, MissingIdx)
}

// MakeGenotypeFromStr creates a Genotype from a delimited allele string such
// as "A/C". An empty string produces a fully missing genotype; fewer tokens
// than the ploidy leave the remaining alleles missing.
func (v *Variant) MakeGenotypeFromStr(gt string, sep string, add bool) (*Genotype, error) {
	if gt == "" || gt == "." {
		return v.MakeGenotype(nil, false)
	}
	return v.MakeGenotype(strings.Split(gt, sep), add)
}

// MakeGenotypeFromPlinkBits creates a Genotype from a PLINK BED 2-bit code
// rendered as a string. Only valid for biallelic, diploid variants.
func (v *Variant) MakeGenotypeFromPlinkBits(plinkBits string) (*Genotype, error) {
	if len(v.alleles) != 2 {
		return nil, fmt.Errorf("%w: plink bitcodes require exactly two alleles", ErrUnsupportedMultiAllelic)
	}
	if v.Ploidy != 2 {
		return nil, fmt.Errorf("%w: plink bitcodes require diploid variants", ErrUnsupportedPloidy)
	}
	var idxs []uint8
	switch plinkBits {
	case "00":
		idxs = []uint8{0, 0}
	case "01":
		idxs = []uint8{MissingIdx, MissingIdx}
	case "10":
		idxs = []uint8{0, 1}
	case "11":
		idxs = []uint8{1, 1}
	default:
		return nil, fmt.Errorf("invalid plink bits: %q", plinkBits)
	}
	return newGenotype(v, idxs, MissingIdx)
}

// MakeGenotypeFromVCF creates a Genotype from raw per-sample allele indices
// as delivered by a VCF reader, where -1 denotes a missing allele.
func (v *Variant) MakeGenotypeFromVCF(alleleIdxs []int) (*Genotype, error) {
	if len(alleleIdxs) > int(v.Ploidy) {
		return nil, fmt.Errorf("%w: %d alleles for a %dn genotype", ErrTooManyAlleles, len(alleleIdxs), v.Ploidy)
	}
	idxs := make([]uint8, v.Ploidy)
	for i := range idxs {
		idxs[i] = MissingIdx
	}
	for i, a := range alleleIdxs {
		if a == -1 {
			continue
		}
		if a < 0 || a > int(MissingIdx) || !v.IsValidAlleleIdx(uint8(a)) {
			return nil, fmt.Errorf("%w: %d for %s", ErrInvalidAlleleIndex, a, v)
		}
		idxs[i] = uint8(a)
	}
	return newGenotype(v, idxs, MissingIdx)
}
