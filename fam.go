package gtarray

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/carbocation/pfx"
)

// Sex codes as used in the .fam pedigree format.
const (
	SexUnknown uint8 = 0
	SexMale    uint8 = 1
	SexFemale  uint8 = 2
)

// Sample is one row of a .fam pedigree file.
type Sample struct {
	FamilyID  string
	SampleID  string
	FatherID  string
	MotherID  string
	Sex       uint8
	Phenotype string
}

// IsCase reports whether the sample carries a case/control phenotype
// flagging it as a case.
func (s Sample) IsCase() bool { return s.Phenotype == "2" }

// IsControl reports whether the sample carries a case/control phenotype
// flagging it as a control.
func (s Sample) IsControl() bool { return s.Phenotype == "1" }

// ReadFAM parses the whitespace-delimited .fam pedigree file at path,
// which may be Zstandard compressed. Each line must carry the six standard
// columns: family ID, within-family sample ID, father ID, mother ID, sex,
// and phenotype.
func ReadFAM(path string) ([]Sample, error) {
	r, err := openSidecar(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer r.Close()

	var samples []Sample
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 6 {
			return nil, pfx.Err(fmt.Errorf("%s line %d: expected 6 columns, saw %d: %w", path, len(samples)+1, len(fields), ErrCorruptFile))
		}

		var sex uint8
		switch fields[4] {
		case "1":
			sex = SexMale
		case "2":
			sex = SexFemale
		default:
			sex = SexUnknown
		}

		samples = append(samples, Sample{
			FamilyID:  fields[0],
			SampleID:  fields[1],
			FatherID:  fields[2],
			MotherID:  fields[3],
			Sex:       sex,
			Phenotype: fields[5],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	return samples, nil
}

// WriteFAM writes samples to path in the whitespace-delimited .fam layout.
func WriteFAM(path string, samples []Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	w := bufio.NewWriter(f)
	for _, s := range samples {
		fatherID, motherID := s.FatherID, s.MotherID
		if fatherID == "" {
			fatherID = "0"
		}
		if motherID == "" {
			motherID = "0"
		}
		phenotype := s.Phenotype
		if phenotype == "" {
			phenotype = "-9"
		}
		if _, err := fmt.Fprintf(w, "%s %s %s %s %d %s\n", s.FamilyID, s.SampleID, fatherID, motherID, s.Sex, phenotype); err != nil {
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

// SamplesFromIDs creates placeholder pedigree rows for sample IDs with no
// pedigree information: unknown parents and sex, missing phenotype.
func SamplesFromIDs(ids []string) []Sample {
	samples := make([]Sample, 0, len(ids))
	for _, id := range ids {
		samples = append(samples, Sample{
			FamilyID:  id,
			SampleID:  id,
			FatherID:  "0",
			MotherID:  "0",
			Sex:       SexUnknown,
			Phenotype: "-9",
		})
	}
	return samples
}
