package gtarray

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// IsHomozygous returns one boolean per row, true where every allele of the
// row is the same (the fully missing row counts as homozygous-missing).
func (ga *GenotypeArray) IsHomozygous() []bool {
	out := make([]bool, ga.Len())
	for i := range out {
		row := ga.rowIdxs(i)
		out[i] = allEqual(row, row[0])
	}
	return out
}

// IsHeterozygous is the complement of IsHomozygous.
func (ga *GenotypeArray) IsHeterozygous() []bool {
	out := ga.IsHomozygous()
	for i := range out {
		out[i] = !out[i]
	}
	return out
}

// IsHomozygousRef returns one boolean per row, true where every allele of
// the row is the reference allele.
func (ga *GenotypeArray) IsHomozygousRef() []bool {
	out := make([]bool, ga.Len())
	for i := range out {
		out[i] = allEqual(ga.rowIdxs(i), 0)
	}
	return out
}

// IsHomozygousAlt returns one boolean per row, true where the row is
// homozygous for any single non-reference, non-missing allele.
func (ga *GenotypeArray) IsHomozygousAlt() []bool {
	out := make([]bool, ga.Len())
	for i := range out {
		row := ga.rowIdxs(i)
		out[i] = row[0] != 0 && row[0] != MissingIdx && allEqual(row, row[0])
	}
	return out
}

// MAF calculates the minor allele frequency: the fraction of non-missing
// allele observations matching the most frequent alternate allele. It
// returns NaN when no non-missing alleles exist, and 0 when only the
// reference allele is observed.
func (ga *GenotypeArray) MAF() float64 {
	counts := make([]int, ga.variant.NumAlleles())
	total := 0
	for i := 0; i < ga.Len(); i++ {
		for _, idx := range ga.rowIdxs(i) {
			if idx == MissingIdx {
				continue
			}
			counts[idx]++
			total++
		}
	}
	if total == 0 {
		return math.NaN()
	}
	maxAlt := 0
	for _, c := range counts[1:] {
		if c > maxAlt {
			maxAlt = c
		}
	}
	return float64(maxAlt) / float64(total)
}

// HWEPval calculates the probability that the column is in Hardy-Weinberg
// equilibrium. Expected genotype counts are derived from the observed
// allele frequencies and compared to the observed counts with a chi-square
// goodness-of-fit test over every unordered allele pair, using the number of
// genotype categories minus one as the degrees of freedom. Rows with any
// missing allele are ignored.
//
// NaN is returned for non-diploid variants, for columns with fewer than two
// informative rows, and whenever any expected cell count falls below 5 (the
// usual chi-square validity rule). Expected counts are truncated to whole
// numbers, matching the established behavior of this statistic even though
// it is a known approximation.
func (ga *GenotypeArray) HWEPval() float64 {
	if ga.variant.Ploidy != 2 {
		return math.NaN()
	}

	// Informative rows only
	var rows [][2]uint8
	maxIdx := 0
	for i := 0; i < ga.Len(); i++ {
		if ga.rowAnyMissing(i) {
			continue
		}
		row := ga.rowIdxs(i)
		rows = append(rows, [2]uint8{row[0], row[1]})
		if int(row[1]) > maxIdx {
			maxIdx = int(row[1])
		}
	}
	totalGT := len(rows)
	if totalGT < 2 {
		return math.NaN()
	}
	if maxIdx == 0 {
		// All reference
		return 1.0
	}

	counts := make([]int, maxIdx+1)
	for _, r := range rows {
		counts[r[0]]++
		counts[r[1]]++
	}
	totalAlleles := float64(totalGT * 2)
	freqs := make([]float64, len(counts))
	for i, c := range counts {
		freqs[i] = float64(c) / totalAlleles
	}

	var observed, expected []float64
	for a1 := 0; a1 <= maxIdx; a1++ {
		for a2 := a1; a2 <= maxIdx; a2++ {
			var exp float64
			if a1 != a2 {
				exp = float64(int(freqs[a1] * freqs[a2] * float64(totalGT) * 2))
			} else {
				exp = float64(int(freqs[a1] * freqs[a2] * float64(totalGT)))
			}
			obs := 0
			for _, r := range rows {
				if r[0] == uint8(a1) && r[1] == uint8(a2) {
					obs++
				}
			}
			expected = append(expected, exp)
			observed = append(observed, float64(obs))
		}
	}
	for _, exp := range expected {
		if exp < 5 {
			return math.NaN()
		}
	}

	var chi float64
	for i := range observed {
		diff := observed[i] - expected[i]
		chi += diff * diff / expected[i]
	}
	dist := distuv.ChiSquared{K: float64(len(observed) - 1)}
	return dist.Survival(chi)
}
