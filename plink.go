package gtarray

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/carbocation/pfx"
)

// PlinkReader is the main object used for reading a PLINK fileset: the
// .fam and .bim sidecars are parsed fully on open, while .bed records are
// decoded on demand.
type PlinkReader struct {
	Prefix   string
	Samples  []Sample
	Variants []*Variant

	bed        *os.File
	recordSize int
}

// OpenPlink attempts to read the PLINK fileset sharing the path prefix
// (prefix.bed, prefix.bim, prefix.fam). If successful, this returns a new
// PlinkReader. Otherwise, it returns an error.
func OpenPlink(prefix string) (*PlinkReader, error) {
	r := &PlinkReader{
		Prefix: prefix,
	}

	samples, err := ReadFAM(prefix + ".fam")
	if err != nil {
		return nil, pfx.Err(err)
	}
	r.Samples = samples

	variants, err := ReadBIM(prefix + ".bim")
	if err != nil {
		return nil, pfx.Err(err)
	}
	r.Variants = variants

	bed, err := os.Open(prefix + ".bed")
	if err != nil {
		return nil, pfx.Err(err)
	}
	r.bed = bed
	r.recordSize = bedRecordSize(len(samples))

	if err := r.validateBED(); err != nil {
		bed.Close()
		return nil, pfx.Err(err)
	}

	return r, nil
}

func (r *PlinkReader) validateBED() error {
	magic := make([]byte, len(bedMagic))
	if _, err := r.bed.ReadAt(magic, 0); err != nil {
		return pfx.Err(fmt.Errorf("%s.bed: %v: %w", r.Prefix, err, ErrCorruptFile))
	}
	if !bytes.Equal(magic, bedMagic[:]) {
		return pfx.Err(fmt.Errorf("%s.bed: magic bytes %v, expected %v: %w", r.Prefix, magic, bedMagic, ErrCorruptFile))
	}

	stat, err := r.bed.Stat()
	if err != nil {
		return pfx.Err(err)
	}
	want := int64(len(bedMagic) + r.recordSize*len(r.Variants))
	if stat.Size() != want {
		return pfx.Err(fmt.Errorf("%s.bed is %d bytes, expected %d for %d samples and %d variants: %w",
			r.Prefix, stat.Size(), want, len(r.Samples), len(r.Variants), ErrCorruptFile))
	}

	return nil
}

func (r *PlinkReader) Close() error {
	return r.bed.Close()
}

// NumSamples returns the number of samples in the fileset.
func (r *PlinkReader) NumSamples() int { return len(r.Samples) }

// NumVariants returns the number of variants in the fileset.
func (r *PlinkReader) NumVariants() int { return len(r.Variants) }

// ReadVariantAt decodes the genotype column of the i'th variant.
func (r *PlinkReader) ReadVariantAt(i int) (*GenotypeArray, error) {
	if i < 0 || i >= len(r.Variants) {
		return nil, pfx.Err(fmt.Errorf("variant %d of %d: %w", i, len(r.Variants), ErrIndexOutOfBounds))
	}

	record := make([]byte, r.recordSize)
	offset := int64(len(bedMagic) + i*r.recordSize)
	if _, err := r.bed.ReadAt(record, offset); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s.bed variant %d: %v: %w", r.Prefix, i, err, ErrCorruptFile))
	}

	return unpackBEDRecord(r.Variants[i], record, len(r.Samples))
}

// GenotypeReader streams genotype columns from a PlinkReader in variant
// order.
type GenotypeReader struct {
	VariantsSeen int
	r            *PlinkReader
	err          error
}

func (r *PlinkReader) NewGenotypeReader() *GenotypeReader {
	return &GenotypeReader{r: r}
}

func (gr *GenotypeReader) Error() error {
	return gr.err
}

// Read returns the next genotype column, or nil once every variant has
// been read or an error occurs. Check Error after the final Read.
func (gr *GenotypeReader) Read() *GenotypeArray {
	if gr.err != nil || gr.VariantsSeen >= len(gr.r.Variants) {
		return nil
	}

	ga, err := gr.r.ReadVariantAt(gr.VariantsSeen)
	if err != nil {
		gr.err = pfx.Err(err)
		return nil
	}
	gr.VariantsSeen++

	return ga
}

// PlinkSet is a fully decoded PLINK fileset: one genotype column per
// variant, all sharing the same sample order.
type PlinkSet struct {
	Samples   []Sample
	Genotypes []*GenotypeArray
}

// ReadPlinkSet reads the entire PLINK fileset sharing the path prefix into
// memory. With swapAlleles, allele1 of each variant is treated as the
// reference instead of allele2. maxVariants caps the number of variants
// loaded; pass 0 to load them all.
func ReadPlinkSet(prefix string, swapAlleles bool, maxVariants int) (*PlinkSet, error) {
	r, err := OpenPlink(prefix)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer r.Close()

	n := len(r.Variants)
	if maxVariants > 0 && maxVariants < n {
		n = maxVariants
	}

	set := &PlinkSet{
		Samples:   r.Samples,
		Genotypes: make([]*GenotypeArray, 0, n),
	}
	for i := 0; i < n; i++ {
		ga, err := r.ReadVariantAt(i)
		if err != nil {
			return nil, pfx.Err(err)
		}
		if swapAlleles && ga.Variant().NumAlleles() > 1 {
			if err := ga.SetReferenceIdx(1); err != nil {
				return nil, pfx.Err(err)
			}
		}
		set.Genotypes = append(set.Genotypes, ga)
	}

	return set, nil
}

// WritePlinkSet writes set as a PLINK fileset sharing the path prefix
// (prefix.bed, prefix.bim, prefix.fam). Every genotype column must be
// diploid, biallelic, and the same length as the sample list.
func WritePlinkSet(prefix string, set *PlinkSet) error {
	for i, ga := range set.Genotypes {
		if ga.Len() != len(set.Samples) {
			return pfx.Err(fmt.Errorf("column %d has %d genotypes for %d samples: %w",
				i, ga.Len(), len(set.Samples), ErrIncompatibleVariant))
		}
	}

	if err := WriteFAM(prefix+".fam", set.Samples); err != nil {
		return pfx.Err(err)
	}

	variants := make([]*Variant, 0, len(set.Genotypes))
	for _, ga := range set.Genotypes {
		variants = append(variants, ga.Variant())
	}
	if err := WriteBIM(prefix+".bim", variants); err != nil {
		return pfx.Err(err)
	}

	return writeBED(prefix+".bed", set.Genotypes)
}

func writeBED(path string, genotypes []*GenotypeArray) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	w := bufio.NewWriter(f)
	if _, err := w.Write(bedMagic[:]); err != nil {
		f.Close()
		return pfx.Err(err)
	}
	for _, ga := range genotypes {
		record, err := packBEDRecord(ga)
		if err != nil {
			f.Close()
			return pfx.Err(err)
		}
		if _, err := w.Write(record); err != nil {
			f.Close()
			return pfx.Err(err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return pfx.Err(err)
	}
	if err := f.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// CopyBED copies a raw .bed payload between readers and writers without
// decoding it, validating the magic bytes first.
func CopyBED(dst io.Writer, src io.Reader) (int64, error) {
	magic := make([]byte, len(bedMagic))
	if _, err := io.ReadFull(src, magic); err != nil {
		return 0, pfx.Err(fmt.Errorf("%v: %w", err, ErrCorruptFile))
	}
	if !bytes.Equal(magic, bedMagic[:]) {
		return 0, pfx.Err(fmt.Errorf("magic bytes %v, expected %v: %w", magic, bedMagic, ErrCorruptFile))
	}

	if _, err := dst.Write(magic); err != nil {
		return 0, pfx.Err(err)
	}
	n, err := io.Copy(dst, src)
	if err != nil {
		return n + int64(len(magic)), pfx.Err(err)
	}

	return n + int64(len(magic)), nil
}
