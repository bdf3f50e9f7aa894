package gtarray

import (
	"bytes"
	"fmt"
	"math"
	"sort"
)

// GenotypeArray is a column of genotype calls for many samples at one
// variant. Rows are stored as packed fixed-size records of ploidy allele
// index bytes followed by one score byte, so a column of N diploid samples
// occupies exactly 3N bytes and concatenation is byte concatenation.
//
// Slicing produces views that share the backing records and the Variant.
// The array's length is fixed after construction.
type GenotypeArray struct {
	variant *Variant
	data    []byte
}

// NewGenotypeArray wraps an existing packed record buffer without copying.
// Each record is variant.Ploidy allele index bytes followed by a score byte.
// Allele indices are validated against the variant and each row is
// canonicalized (sorted ascending) in place.
func NewGenotypeArray(variant *Variant, records []byte) (*GenotypeArray, error) {
	if variant == nil {
		return nil, fmt.Errorf("%w: a genotype array requires a variant", ErrIncompatibleVariant)
	}
	stride := int(variant.Ploidy) + 1
	if len(records)%stride != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of %d-byte records",
			ErrCorruptFile, len(records), stride)
	}
	ga := &GenotypeArray{variant: variant, data: records}
	for i := 0; i < ga.Len(); i++ {
		row := ga.rowIdxs(i)
		for _, idx := range row {
			if !variant.IsValidAlleleIdx(idx) {
				return nil, fmt.Errorf("%w: %d in record %d for %s", ErrInvalidAlleleIndex, idx, i, variant)
			}
		}
		sort.Slice(row, func(a, b int) bool { return row[a] < row[b] })
	}
	return ga, nil
}

// GenotypeArrayFromGenotypes builds a column from a sequence of Genotype
// values. If variant is nil, the first genotype's variant is used. Every
// genotype must be bound to the same position (IsSamePosition) and carry the
// same variant score; otherwise ErrIncompatibleVariant is returned.
func GenotypeArrayFromGenotypes(variant *Variant, genotypes []*Genotype) (*GenotypeArray, error) {
	if variant == nil {
		if len(genotypes) == 0 {
			return nil, fmt.Errorf("%w: cannot infer a variant from an empty sequence", ErrIncompatibleVariant)
		}
		variant = genotypes[0].Variant
	}
	stride := int(variant.Ploidy) + 1
	data := make([]byte, 0, stride*len(genotypes))
	for i, gt := range genotypes {
		if !variant.IsSamePosition(gt.Variant) {
			return nil, fmt.Errorf("%w: variant for genotype %d of %d (%s) does not match %s",
				ErrIncompatibleVariant, i, len(genotypes), gt.Variant, variant)
		}
		if variant.Score != gt.Variant.Score {
			return nil, fmt.Errorf("%w: variant for genotype %d of %d is compatible but has a different score",
				ErrIncompatibleVariant, i, len(genotypes))
		}
		data = append(data, gt.AlleleIdxs...)
		data = append(data, gt.Score)
	}
	return &GenotypeArray{variant: variant, data: data}, nil
}

// GenotypeArrayFromStrings builds a column from genotype strings such as
// "A/C", interpreted against the given variant with the default "/"
// separator. Unknown alleles are not added.
func GenotypeArrayFromStrings(variant *Variant, genotypeStrings []string) (*GenotypeArray, error) {
	if variant == nil {
		return nil, fmt.Errorf("%w: a variant is required to interpret genotype strings", ErrIncompatibleVariant)
	}
	genotypes := make([]*Genotype, len(genotypeStrings))
	for i, s := range genotypeStrings {
		gt, err := variant.MakeGenotypeFromStr(s, "/", false)
		if err != nil {
			return nil, err
		}
		genotypes[i] = gt
	}
	return GenotypeArrayFromGenotypes(variant, genotypes)
}

func (ga *GenotypeArray) stride() int {
	return int(ga.variant.Ploidy) + 1
}

// Len returns the number of samples in the column.
func (ga *GenotypeArray) Len() int {
	return len(ga.data) / ga.stride()
}

// Variant returns the variant shared by every row of the column.
func (ga *GenotypeArray) Variant() *Variant {
	return ga.variant
}

// Records exposes the packed backing buffer. It must not be modified.
func (ga *GenotypeArray) Records() []byte {
	return ga.data
}

// rowIdxs returns the allele indices of row i, aliasing the backing buffer.
func (ga *GenotypeArray) rowIdxs(i int) []uint8 {
	off := i * ga.stride()
	return ga.data[off : off+int(ga.variant.Ploidy)]
}

func (ga *GenotypeArray) rowScore(i int) uint8 {
	return ga.data[i*ga.stride()+int(ga.variant.Ploidy)]
}

func (ga *GenotypeArray) rowMissing(i int) bool {
	for _, idx := range ga.rowIdxs(i) {
		if idx != MissingIdx {
			return false
		}
	}
	return true
}

func (ga *GenotypeArray) rowAnyMissing(i int) bool {
	for _, idx := range ga.rowIdxs(i) {
		if idx == MissingIdx {
			return true
		}
	}
	return false
}

// missingRecord returns one fully missing packed record.
func (ga *GenotypeArray) missingRecord() []byte {
	rec := make([]byte, ga.stride())
	for i := range rec {
		rec[i] = MissingIdx
	}
	return rec
}

// At returns row i as a Genotype sharing this column's Variant.
func (ga *GenotypeArray) At(i int) (*Genotype, error) {
	if i < 0 || i >= ga.Len() {
		return nil, fmt.Errorf("%w: %d with length %d", ErrIndexOutOfBounds, i, ga.Len())
	}
	idxs := make([]uint8, ga.variant.Ploidy)
	copy(idxs, ga.rowIdxs(i))
	return &Genotype{Variant: ga.variant, AlleleIdxs: idxs, Score: ga.rowScore(i)}, nil
}

// Slice returns the rows [start, stop) as a view sharing the same Variant
// and backing records.
func (ga *GenotypeArray) Slice(start, stop int) (*GenotypeArray, error) {
	if start < 0 || stop < start || stop > ga.Len() {
		return nil, fmt.Errorf("%w: [%d:%d] with length %d", ErrIndexOutOfBounds, start, stop, ga.Len())
	}
	return &GenotypeArray{
		variant: ga.variant,
		data:    ga.data[start*ga.stride() : stop*ga.stride()],
	}, nil
}

// Filter returns a new column holding the rows where mask is true. The mask
// must have one entry per row.
func (ga *GenotypeArray) Filter(mask []bool) (*GenotypeArray, error) {
	if len(mask) != ga.Len() {
		return nil, fmt.Errorf("%w: mask length %d for array length %d", ErrIndexOutOfBounds, len(mask), ga.Len())
	}
	stride := ga.stride()
	out := make([]byte, 0, len(ga.data))
	for i := 0; i < ga.Len(); i++ {
		if mask[i] {
			out = append(out, ga.data[i*stride:(i+1)*stride]...)
		}
	}
	return &GenotypeArray{variant: ga.variant, data: out}, nil
}

// Take gathers the given row indices into a new column. With allowFill, an
// index of -1 substitutes a fully missing row; indices below -1 or past the
// end fail with ErrIndexOutOfBounds.
func (ga *GenotypeArray) Take(indices []int, allowFill bool) (*GenotypeArray, error) {
	stride := ga.stride()
	out := make([]byte, 0, stride*len(indices))
	for _, loc := range indices {
		if loc == -1 && allowFill {
			out = append(out, ga.missingRecord()...)
			continue
		}
		if loc < 0 || loc >= ga.Len() {
			return nil, fmt.Errorf("%w: take index %d with length %d", ErrIndexOutOfBounds, loc, ga.Len())
		}
		out = append(out, ga.data[loc*stride:(loc+1)*stride]...)
	}
	return &GenotypeArray{variant: ga.variant, data: out}, nil
}

// Copy returns a deep copy with a private Variant and record buffer.
func (ga *GenotypeArray) Copy() *GenotypeArray {
	data := make([]byte, len(ga.data))
	copy(data, ga.data)
	return &GenotypeArray{variant: ga.variant.clone(), data: data}
}

// IsNA returns one boolean per row, true iff every allele index of the row
// is missing.
func (ga *GenotypeArray) IsNA() []bool {
	out := make([]bool, ga.Len())
	for i := range out {
		out[i] = ga.rowMissing(i)
	}
	return out
}

// Scores returns the per-row quality scores as floats, NaN where missing.
func (ga *GenotypeArray) Scores() []float64 {
	out := make([]float64, ga.Len())
	for i := range out {
		if s := ga.rowScore(i); s == MissingIdx {
			out[i] = math.NaN()
		} else {
			out[i] = float64(s)
		}
	}
	return out
}

// Strings renders each row the way Genotype.String does.
func (ga *GenotypeArray) Strings() []string {
	out := make([]string, ga.Len())
	for i := range out {
		gt, _ := ga.At(i)
		out[i] = gt.String()
	}
	return out
}

// patternKey identifies a row by its allele indices only; scores are not
// part of row identity.
func (ga *GenotypeArray) patternKey(i int) string {
	return string(ga.rowIdxs(i))
}

// Factorize returns one integer code per row, grouping rows by allele index
// pattern in first-seen order, along with the unique patterns as a new
// column. Missing rows receive the code -1 and are excluded from the
// uniques.
func (ga *GenotypeArray) Factorize() ([]int, *GenotypeArray) {
	stride := ga.stride()
	codes := make([]int, ga.Len())
	seen := make(map[string]int)
	uniques := make([]byte, 0, stride*4)
	for i := 0; i < ga.Len(); i++ {
		if ga.rowMissing(i) {
			codes[i] = -1
			continue
		}
		key := ga.patternKey(i)
		code, ok := seen[key]
		if !ok {
			code = len(seen)
			seen[key] = code
			uniques = append(uniques, ga.data[i*stride:(i+1)*stride]...)
		}
		codes[i] = code
	}
	return codes, &GenotypeArray{variant: ga.variant, data: uniques}
}

// Unique returns the distinct allele index patterns in first-seen order,
// including the fully missing pattern if present.
func (ga *GenotypeArray) Unique() *GenotypeArray {
	stride := ga.stride()
	seen := make(map[string]struct{})
	uniques := make([]byte, 0, stride*4)
	for i := 0; i < ga.Len(); i++ {
		key := ga.patternKey(i)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		uniques = append(uniques, ga.data[i*stride:(i+1)*stride]...)
	}
	return &GenotypeArray{variant: ga.variant, data: uniques}
}

// ValueCounts returns the distinct allele index patterns in first-seen order
// together with the number of rows matching each. With dropNA, the fully
// missing pattern is omitted.
func (ga *GenotypeArray) ValueCounts(dropNA bool) (*GenotypeArray, []int) {
	stride := ga.stride()
	seen := make(map[string]int)
	uniques := make([]byte, 0, stride*4)
	counts := make([]int, 0, 4)
	for i := 0; i < ga.Len(); i++ {
		if dropNA && ga.rowMissing(i) {
			continue
		}
		key := ga.patternKey(i)
		if pos, ok := seen[key]; ok {
			counts[pos]++
			continue
		}
		seen[key] = len(counts)
		counts = append(counts, 1)
		uniques = append(uniques, ga.data[i*stride:(i+1)*stride]...)
	}
	return &GenotypeArray{variant: ga.variant, data: uniques}, counts
}

// ConcatGenotypeArrays concatenates columns that share a bit-for-bit
// identical Variant. Palettes that merely overlap are not silently merged;
// any mismatch fails with ErrIncompatibleVariant.
func ConcatGenotypeArrays(arrays ...*GenotypeArray) (*GenotypeArray, error) {
	if len(arrays) == 0 {
		return nil, fmt.Errorf("%w: nothing to concatenate", ErrIncompatibleVariant)
	}
	first := arrays[0]
	total := 0
	for _, a := range arrays {
		if !first.variant.Equal(a.variant) {
			return nil, fmt.Errorf("%w: all arrays must share the same variant to concatenate",
				ErrIncompatibleVariant)
		}
		total += len(a.data)
	}
	data := make([]byte, 0, total)
	for _, a := range arrays {
		data = append(data, a.data...)
	}
	return &GenotypeArray{variant: first.variant, data: data}, nil
}

// Equal reports whether two columns share a structurally equal Variant and
// identical packed records.
func (ga *GenotypeArray) Equal(other *GenotypeArray) bool {
	return other != nil && ga.variant.Equal(other.variant) && bytes.Equal(ga.data, other.data)
}

// SetReference makes the named allele the reference allele for this column.
// The chosen allele and the current reference swap positions in the allele
// list, and exactly those two index values are remapped throughout the
// stored records. The column re-binds to a private copy of the Variant and
// of its records first, so other columns or slices aliasing them are
// unaffected.
func (ga *GenotypeArray) SetReference(allele string) error {
	idx, err := ga.variant.GetIdxFromAllele(allele, false)
	if err != nil {
		return err
	}
	return ga.SetReferenceIdx(idx)
}

// SetReferenceIdx is SetReference with the allele given by index.
func (ga *GenotypeArray) SetReferenceIdx(idx uint8) error {
	if idx == MissingIdx || !ga.variant.IsValidAlleleIdx(idx) {
		return fmt.Errorf("%w: %d is not a valid allele index, the variant has %d alleles",
			ErrInvalidAlleleIndex, idx, ga.variant.NumAlleles())
	}
	if idx == 0 {
		// Already the reference
		return nil
	}

	// Copy-on-write: never rewrite a palette or buffer that other columns
	// might alias.
	variant := ga.variant.clone()
	data := make([]byte, len(ga.data))
	copy(data, ga.data)

	variant.alleles[0], variant.alleles[idx] = variant.alleles[idx], variant.alleles[0]

	ga.variant = variant
	ga.data = data
	for i := 0; i < ga.Len(); i++ {
		row := ga.rowIdxs(i)
		for j, a := range row {
			switch a {
			case 0:
				row[j] = idx
			case idx:
				row[j] = 0
			}
		}
		// Swapping two index values can break the canonical ordering
		sort.Slice(row, func(a, b int) bool { return row[a] < row[b] })
	}
	return nil
}
