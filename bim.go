package gtarray

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
)

// Map columns in the .bim file to their positions
const (
	bimChromosome int = iota
	bimVariantID
	bimMorgans
	bimCoordinate
	bimAllele1
	bimAllele2
)

// bimAbsentAllele marks a monomorphic variant's unused allele slot.
const bimAbsentAllele = "0"

// BIMRow is one line of a .bim variant annotation file.
type BIMRow struct {
	Chromosome string
	Coordinate uint32 // Labeled "position" by most applications
	VariantID  string // E.g., RSID
	Allele1    string // The alternate allele; can contain > 1 character
	Allele2    string // The reference allele; can contain > 1 character
	// Morgans is excluded intentionally
}

// Variant builds the in-memory variant described by the row. Allele2 is
// the reference and Allele1 the alternate; the "0" placeholder marks an
// absent allele.
func (row *BIMRow) Variant() (*Variant, error) {
	ref := row.Allele2
	if ref == bimAbsentAllele {
		ref = ""
	}

	var alt []string
	if row.Allele1 != bimAbsentAllele {
		alt = append(alt, row.Allele1)
	}

	return NewVariant(row.Chromosome, row.Coordinate, row.VariantID, ref, alt...)
}

// BIM streams rows from a .bim variant annotation file, which may be
// Zstandard compressed.
type BIM struct {
	path    string
	file    io.ReadCloser
	scanner *bufio.Scanner
	err     error
}

func OpenBIM(path string) (*BIM, error) {
	bim := &BIM{
		path: path,
	}

	file, err := openSidecar(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	bim.file = file
	bim.scanner = bufio.NewScanner(file)

	return bim, nil
}

func (b *BIM) Close() error {
	return b.file.Close()
}

func (b *BIM) Err() error {
	if b.err != nil {
		return b.err
	}

	return b.scanner.Err()
}

// Read returns the next row, or nil once the file is exhausted or an error
// occurs. Check Err after the final Read.
func (b *BIM) Read() *BIMRow {
	if !b.scanner.Scan() {
		return nil
	}

	cols := strings.Fields(b.scanner.Text())
	if len(cols) < bimAllele2+1 {
		b.err = pfx.Err(fmt.Errorf("%s: expected %d columns, saw %d: %w", b.path, bimAllele2+1, len(cols), ErrCorruptFile))
		return nil
	}

	row := &BIMRow{
		Chromosome: cols[bimChromosome],
		VariantID:  cols[bimVariantID],
		Allele1:    cols[bimAllele1],
		Allele2:    cols[bimAllele2],
	}

	coord64, err := strconv.ParseUint(cols[bimCoordinate], 10, 32)
	if err != nil {
		b.err = pfx.Err(err)
		return nil
	}
	row.Coordinate = uint32(coord64)

	return row
}

// ReadBIM parses every variant of the .bim file at path.
func ReadBIM(path string) ([]*Variant, error) {
	bim, err := OpenBIM(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer bim.Close()

	var variants []*Variant
	for row := bim.Read(); row != nil; row = bim.Read() {
		v, err := row.Variant()
		if err != nil {
			return nil, pfx.Err(err)
		}
		variants = append(variants, v)
	}
	if err := bim.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	return variants, nil
}

// WriteBIM writes variants to path in the tab-delimited .bim layout. Only
// biallelic variants can be represented.
func WriteBIM(path string, variants []*Variant) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	w := bufio.NewWriter(f)
	for _, v := range variants {
		if v.NumAlleles() != 2 {
			f.Close()
			return pfx.Err(fmt.Errorf("%s: %w", v.ID, ErrUnsupportedMultiAllelic))
		}

		alleles := v.Alleles()
		a1, a2 := alleles[1], alleles[0]
		if a1 == "" {
			a1 = bimAbsentAllele
		}
		if a2 == "" {
			a2 = bimAbsentAllele
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t0\t%d\t%s\t%s\n", v.Chromosome, v.ID, v.Position, a1, a2); err != nil {
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
