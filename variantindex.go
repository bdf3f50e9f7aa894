package gtarray

import (
	"fmt"
	"os"
	"time"

	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
)

// GTIIndex wraps the SQLite variant index (.gti) that sits beside a PLINK
// fileset and allows looking up variants by name or region without walking
// the .bim file.
type GTIIndex struct {
	DB       *sqlx.DB
	Metadata *GTIMetadata
}

func (g *GTIIndex) Close() error {
	return g.DB.Close()
}

// VariantIndex conforms to the data found in the rows of the SQLite table
// "Variant" from .gti index files, and can be easily parsed with sqlx.
type VariantIndex struct {
	Chromosome        string
	Position          uint32
	RSID              string `db:"rsid"`
	NAlleles          uint16 `db:"number_of_alleles"`
	Allele1           string
	Allele2           string
	VariantOrdinal    int    `db:"variant_ordinal"`
	FileStartPosition uint   `db:"file_start_position"`
	SizeInBytes       uint   `db:"size_in_bytes"`
}

// GTIMetadata conforms to the data found in the rows of the SQLite table
// "Metadata".
type GTIMetadata struct {
	Filename           string
	FileSize           uint   `db:"file_size"`
	LastWriteTime      Time   `db:"last_write_time"`
	FirstThousandBytes []byte `db:"first_1000_bytes"`
	IndexCreationTime  Time   `db:"index_creation_time"`
}

// OpenGTI opens an existing .gti index file.
func OpenGTI(path string) (*GTIIndex, error) {
	gti := &GTIIndex{
		Metadata: &GTIMetadata{},
	}

	db, err := openIndexDB(path)
	if err != nil {
		return nil, err
	}
	gti.DB = db

	// Not all index files have metadata; ignore any error
	_ = gti.DB.Get(gti.Metadata, "SELECT * FROM Metadata LIMIT 1")

	return gti, nil
}

const gtiSchema = `
CREATE TABLE IF NOT EXISTS Variant (
	chromosome TEXT NOT NULL,
	position INTEGER NOT NULL,
	rsid TEXT NOT NULL,
	number_of_alleles INTEGER NOT NULL,
	allele1 TEXT NOT NULL,
	allele2 TEXT NOT NULL,
	variant_ordinal INTEGER NOT NULL,
	file_start_position INTEGER NOT NULL,
	size_in_bytes INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS variant_position ON Variant (chromosome, position);
CREATE INDEX IF NOT EXISTS variant_rsid ON Variant (rsid);
CREATE TABLE IF NOT EXISTS Metadata (
	filename TEXT NOT NULL,
	file_size INTEGER NOT NULL,
	last_write_time INTEGER NOT NULL,
	first_1000_bytes BLOB NOT NULL,
	index_creation_time INTEGER NOT NULL
);
`

// BuildGTI walks the fileset open in r and writes a fresh .gti index to
// indexPath, replacing any existing index contents.
func BuildGTI(r *PlinkReader, indexPath string) error {
	db, err := openIndexDB(indexPath)
	if err != nil {
		return pfx.Err(err)
	}
	defer db.Close()

	if _, err := db.Exec(gtiSchema); err != nil {
		return pfx.Err(err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return pfx.Err(err)
	}
	if _, err := tx.Exec("DELETE FROM Variant"); err != nil {
		tx.Rollback()
		return pfx.Err(err)
	}
	if _, err := tx.Exec("DELETE FROM Metadata"); err != nil {
		tx.Rollback()
		return pfx.Err(err)
	}

	insert, err := tx.Preparex(`INSERT INTO Variant
	(chromosome, position, rsid, number_of_alleles, allele1, allele2, variant_ordinal, file_start_position, size_in_bytes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return pfx.Err(err)
	}
	for i, v := range r.Variants {
		// Mirror the .bim column layout: allele2 is the reference
		allele1 := ""
		if v.NumAlleles() > 1 {
			allele1 = v.Alt()[0]
		}
		start := len(bedMagic) + i*r.recordSize
		if _, err := insert.Exec(v.Chromosome, v.Position, v.ID, v.NumAlleles(), allele1, v.Ref(), i, start, r.recordSize); err != nil {
			tx.Rollback()
			return pfx.Err(err)
		}
	}

	if err := insertGTIMetadata(tx, r.Prefix+".bed"); err != nil {
		tx.Rollback()
		return pfx.Err(err)
	}

	if err := tx.Commit(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

func insertGTIMetadata(tx *sqlx.Tx, bedPath string) error {
	stat, err := os.Stat(bedPath)
	if err != nil {
		return pfx.Err(err)
	}

	f, err := os.Open(bedPath)
	if err != nil {
		return pfx.Err(err)
	}
	head := make([]byte, 1000)
	n, _ := f.Read(head)
	f.Close()

	_, err = tx.Exec(`INSERT INTO Metadata
	(filename, file_size, last_write_time, first_1000_bytes, index_creation_time)
	VALUES (?, ?, ?, ?, ?)`,
		bedPath, stat.Size(), stat.ModTime().Unix(), head[:n], time.Now().Unix())
	if err != nil {
		return pfx.Err(err)
	}

	return nil
}

// VariantsInRegion returns index rows for every variant falling within the
// half-open region, ordered by position.
func (g *GTIIndex) VariantsInRegion(region Region) ([]VariantIndex, error) {
	var rows []VariantIndex
	err := g.DB.Select(&rows, `SELECT * FROM Variant
	WHERE chromosome = ? AND position >= ? AND position < ? ORDER BY position`,
		region.Chromosome, region.Start, region.End)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return rows, nil
}

// VariantsWithID returns index rows for every variant carrying the given
// identifier.
func (g *GTIIndex) VariantsWithID(rsid string) ([]VariantIndex, error) {
	var rows []VariantIndex
	err := g.DB.Select(&rows, `SELECT * FROM Variant WHERE rsid = ?`, rsid)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return rows, nil
}

// ReadIndexed decodes the genotype column that the index row points at,
// cross-checking the row against the open fileset.
func (r *PlinkReader) ReadIndexed(vi VariantIndex) (*GenotypeArray, error) {
	i := vi.VariantOrdinal
	if i < 0 || i >= len(r.Variants) {
		return nil, pfx.Err(fmt.Errorf("index row points at variant %d of %d: %w", i, len(r.Variants), ErrIndexOutOfBounds))
	}
	if want := uint(len(bedMagic) + i*r.recordSize); vi.FileStartPosition != want {
		return nil, pfx.Err(fmt.Errorf("index row points at byte %d, fileset expects %d: %w", vi.FileStartPosition, want, ErrCorruptFile))
	}

	return r.ReadVariantAt(i)
}
