package gtarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenotypeCanonicalOrder(t *testing.T) {
	v, err := NewVariant("chr1", 100, "rs1", "A", "T")
	require.NoError(t, err)

	gt, err := newGenotype(v, []uint8{1, 0}, MissingIdx)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 1}, gt.AlleleIdxs, "allele indices are stored sorted")
}

func TestGenotypeString(t *testing.T) {
	v, err := NewVariant("chr1", 100, "rs1", "A", "T")
	require.NoError(t, err)

	cases := []struct {
		idxs []uint8
		want string
	}{
		{[]uint8{0, 0}, "A/A"},
		{[]uint8{0, 1}, "A/T"},
		{[]uint8{1, 1}, "T/T"},
		{[]uint8{0, MissingIdx}, "A/."},
		{[]uint8{MissingIdx, MissingIdx}, "."},
	}
	for _, tt := range cases {
		gt, err := newGenotype(v, tt.idxs, MissingIdx)
		require.NoError(t, err)
		assert.Equal(t, tt.want, gt.String())
	}
}

func TestGenotypeIsMissing(t *testing.T) {
	v, err := NewVariant("chr1", 100, "rs1", "A", "T")
	require.NoError(t, err)

	full, err := newGenotype(v, []uint8{MissingIdx, MissingIdx}, MissingIdx)
	require.NoError(t, err)
	assert.True(t, full.IsMissing())

	partial, err := newGenotype(v, []uint8{0, MissingIdx}, MissingIdx)
	require.NoError(t, err)
	assert.False(t, partial.IsMissing(), "a partially missing genotype is not missing")
}

func TestGenotypeOrdering(t *testing.T) {
	v, err := NewVariant("chr1", 100, "rs1", "A", "T")
	require.NoError(t, err)

	homRef, err := v.MakeGenotypeFromStr("A/A", "/", false)
	require.NoError(t, err)
	het, err := v.MakeGenotypeFromStr("A/T", "/", false)
	require.NoError(t, err)
	homAlt, err := v.MakeGenotypeFromStr("T/T", "/", false)
	require.NoError(t, err)

	less, err := homRef.Less(het)
	require.NoError(t, err)
	assert.True(t, less)

	less, err = het.Less(homAlt)
	require.NoError(t, err)
	assert.True(t, less)

	eq, err := het.Equal(het)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestGenotypeCmpAcrossVariants(t *testing.T) {
	a, err := NewVariant("chr1", 100, "rs1", "A", "T")
	require.NoError(t, err)
	b, err := NewVariant("chr2", 200, "rs2", "C", "G")
	require.NoError(t, err)

	gtA, err := a.MakeGenotypeFromStr("A/A", "/", false)
	require.NoError(t, err)
	gtB, err := b.MakeGenotypeFromStr("C/C", "/", false)
	require.NoError(t, err)

	_, err = gtA.Cmp(gtB)
	assert.ErrorIs(t, err, ErrIncompatibleVariant)
}

func TestNewGenotypeValidation(t *testing.T) {
	v, err := NewVariant("chr1", 100, "rs1", "A", "T")
	require.NoError(t, err)

	_, err = newGenotype(v, []uint8{0}, MissingIdx)
	assert.Error(t, err, "allele count must equal the ploidy")

	_, err = newGenotype(v, []uint8{0, 9}, MissingIdx)
	assert.ErrorIs(t, err, ErrInvalidAlleleIndex)
}
