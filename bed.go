package gtarray

import (
	"fmt"

	"github.com/carbocation/pfx"
)

// bedMagic is required at the start of every .bed file. The third byte
// marks the file as variant-major.
var bedMagic = [3]byte{0x6c, 0x1b, 0x01}

// bedRecordSize is the number of bytes one variant record occupies: four
// samples per byte, 2 bits each.
func bedRecordSize(numSamples int) int {
	return (numSamples + 3) / 4
}

// Per-sample 2-bit codes. The first sample of each byte occupies the lowest
// bit pair.
const (
	bedHomRef  = 0b00 // homozygous allele2 (reference)
	bedMissing = 0b01
	bedHet     = 0b10
	bedHomAlt  = 0b11 // homozygous allele1 (alternate)
)

// unpackBEDRecord decodes one variant-major record into a GenotypeArray of
// numSamples diploid genotypes for variant. Padding bits past the final
// sample are ignored.
func unpackBEDRecord(variant *Variant, record []byte, numSamples int) (*GenotypeArray, error) {
	if want := bedRecordSize(numSamples); len(record) != want {
		return nil, pfx.Err(fmt.Errorf("record is %d bytes, expected %d: %w", len(record), want, ErrCorruptFile))
	}

	data := make([]byte, 0, numSamples*3)
	for s := 0; s < numSamples; s++ {
		code := (record[s/4] >> (2 * (s % 4))) & 0b11
		switch code {
		case bedHomRef:
			data = append(data, 0, 0, MissingIdx)
		case bedMissing:
			data = append(data, MissingIdx, MissingIdx, MissingIdx)
		case bedHet:
			data = append(data, 0, 1, MissingIdx)
		case bedHomAlt:
			data = append(data, 1, 1, MissingIdx)
		}
	}

	return NewGenotypeArray(variant, data)
}

// packBEDRecord encodes a diploid GenotypeArray as one variant-major
// record. A genotype with any missing allele is coded missing; padding
// bits are zero-filled.
func packBEDRecord(ga *GenotypeArray) ([]byte, error) {
	if ga.variant.Ploidy != 2 {
		return nil, pfx.Err(fmt.Errorf("ploidy %d: %w", ga.variant.Ploidy, ErrUnsupportedPloidy))
	}
	if ga.variant.NumAlleles() > 2 {
		return nil, pfx.Err(fmt.Errorf("%d alleles: %w", ga.variant.NumAlleles(), ErrUnsupportedMultiAllelic))
	}

	record := make([]byte, bedRecordSize(ga.Len()))
	for s := 0; s < ga.Len(); s++ {
		row := ga.rowIdxs(s)

		var code byte
		switch {
		case row[0] == MissingIdx || row[1] == MissingIdx:
			code = bedMissing
		case row[0] == 0 && row[1] == 0:
			code = bedHomRef
		case row[0] == 0 && row[1] == 1:
			code = bedHet
		default:
			code = bedHomAlt
		}

		record[s/4] |= code << (2 * (s % 4))
	}

	return record, nil
}
