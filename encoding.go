package gtarray

import (
	"fmt"
	"math"
)

// Codominant is one level of the three-level codominant encoding, ordered
// Ref < Het < Hom.
type Codominant uint8

const (
	CodominantRef Codominant = iota
	CodominantHet
	CodominantHom

	// CodominantMissing marks rows with any missing allele.
	CodominantMissing Codominant = 255
)

func (c Codominant) String() string {
	switch c {
	case CodominantRef:
		return "Ref"
	case CodominantHet:
		return "Het"
	case CodominantHom:
		return "Hom"
	default:
		return "."
	}
}

// requireOneAlt guards the single-alt encodings: the variant must have
// exactly one reference and one alternate allele.
func (ga *GenotypeArray) requireOneAlt() error {
	if ga.variant.NumAlleles() != 2 {
		return fmt.Errorf("%w: encoding requires exactly one alternate allele, the variant has %d alleles",
			ErrUnsupportedMultiAllelic, ga.variant.NumAlleles())
	}
	return nil
}

// EncodeAdditive returns the number of non-reference allele copies per row
// (0 to ploidy), NaN where any allele of the row is missing. The variant
// must have exactly one alternate allele.
func (ga *GenotypeArray) EncodeAdditive() ([]float64, error) {
	if err := ga.requireOneAlt(); err != nil {
		return nil, err
	}
	out := make([]float64, ga.Len())
	for i := range out {
		if ga.rowAnyMissing(i) {
			out[i] = math.NaN()
			continue
		}
		n := 0
		for _, idx := range ga.rowIdxs(i) {
			if idx != 0 {
				n++
			}
		}
		out[i] = float64(n)
	}
	return out, nil
}

// EncodeDominant returns 1 where any non-reference allele is present, else
// 0; NaN where any allele of the row is missing.
func (ga *GenotypeArray) EncodeDominant() ([]float64, error) {
	if err := ga.requireOneAlt(); err != nil {
		return nil, err
	}
	out := make([]float64, ga.Len())
	for i := range out {
		if ga.rowAnyMissing(i) {
			out[i] = math.NaN()
			continue
		}
		for _, idx := range ga.rowIdxs(i) {
			if idx != 0 {
				out[i] = 1
				break
			}
		}
	}
	return out, nil
}

// EncodeRecessive returns 1 where every allele of the row is non-reference,
// else 0; NaN where any allele of the row is missing.
func (ga *GenotypeArray) EncodeRecessive() ([]float64, error) {
	if err := ga.requireOneAlt(); err != nil {
		return nil, err
	}
	out := make([]float64, ga.Len())
	for i := range out {
		if ga.rowAnyMissing(i) {
			out[i] = math.NaN()
			continue
		}
		allAlt := true
		for _, idx := range ga.rowIdxs(i) {
			if idx == 0 {
				allAlt = false
				break
			}
		}
		if allAlt {
			out[i] = 1
		}
	}
	return out, nil
}

// EncodeCodominant returns the three-level categorical encoding derived from
// the count of non-reference alleles, with CodominantMissing for rows with
// any missing allele. Only defined for diploid variants with exactly one
// alternate allele.
func (ga *GenotypeArray) EncodeCodominant() ([]Codominant, error) {
	if ga.variant.Ploidy != 2 {
		return nil, fmt.Errorf("%w: codominant encoding can only be used with diploid genotypes", ErrUnsupportedPloidy)
	}
	if err := ga.requireOneAlt(); err != nil {
		return nil, err
	}
	out := make([]Codominant, ga.Len())
	for i := range out {
		if ga.rowAnyMissing(i) {
			out[i] = CodominantMissing
			continue
		}
		n := 0
		for _, idx := range ga.rowIdxs(i) {
			if idx != 0 {
				n++
			}
		}
		out[i] = Codominant(n)
	}
	return out, nil
}

// EncodeWeighted performs weighted (EDGE) encoding keyed to an explicit
// ref/alt allele pair: homozygous-ref rows become 0, homozygous-alt rows
// become 1, the unordered heterozygous {ref, alt} pair becomes alphaValue,
// and every other row (including rows touching other alleles or missing
// values) becomes NaN. Both alleles must exist in the variant.
//
// The alpha is estimated externally (by regressing the codominant encoding
// against an outcome), together with the ref/alt assignment and minor
// allele frequency it was computed under; minorAlleleFreq is carried for
// provenance and not validated here.
func (ga *GenotypeArray) EncodeWeighted(alphaValue float64, refAllele, altAllele string, minorAlleleFreq float64) ([]float64, error) {
	refIdx, err := ga.variant.GetIdxFromAllele(refAllele, false)
	if err != nil {
		return nil, err
	}
	altIdx, err := ga.variant.GetIdxFromAllele(altAllele, false)
	if err != nil {
		return nil, err
	}
	if refIdx == MissingIdx || altIdx == MissingIdx {
		return nil, fmt.Errorf("%w: weighted encoding requires concrete ref and alt alleles", ErrUnknownAllele)
	}
	_ = minorAlleleFreq

	// The heterozygous pattern in canonical (sorted) row order
	hetLo, hetHi := refIdx, altIdx
	if hetLo > hetHi {
		hetLo, hetHi = hetHi, hetLo
	}

	out := make([]float64, ga.Len())
	for i := range out {
		row := ga.rowIdxs(i)
		switch {
		case allEqual(row, refIdx):
			out[i] = 0.0
		case allEqual(row, altIdx):
			out[i] = 1.0
		case len(row) == 2 && row[0] == hetLo && row[1] == hetHi:
			out[i] = alphaValue
		default:
			out[i] = math.NaN()
		}
	}
	return out, nil
}

func allEqual(row []uint8, idx uint8) bool {
	for _, a := range row {
		if a != idx {
			return false
		}
	}
	return true
}
