package gtarray

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The canonical five-row column: hom-ref, het, hom-alt, partially missing,
// fully missing.
func encodingFixture(t *testing.T) *GenotypeArray {
	t.Helper()
	v, err := NewVariant("chr1", 100, "rs1", "A", "T")
	require.NoError(t, err)
	return mustArray(t, v, "A/A", "A/T", "T/T", "A", "")
}

func assertFloats(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "row %d: expected NaN, got %v", i, got[i])
		} else {
			assert.Equal(t, want[i], got[i], "row %d", i)
		}
	}
}

func TestEncodeAdditive(t *testing.T) {
	ga := encodingFixture(t)
	out, err := ga.EncodeAdditive()
	require.NoError(t, err)
	assertFloats(t, []float64{0, 1, 2, math.NaN(), math.NaN()}, out)
}

func TestEncodeDominant(t *testing.T) {
	ga := encodingFixture(t)
	out, err := ga.EncodeDominant()
	require.NoError(t, err)
	assertFloats(t, []float64{0, 1, 1, math.NaN(), math.NaN()}, out)
}

func TestEncodeRecessive(t *testing.T) {
	ga := encodingFixture(t)
	out, err := ga.EncodeRecessive()
	require.NoError(t, err)
	assertFloats(t, []float64{0, 0, 1, math.NaN(), math.NaN()}, out)
}

func TestEncodeCodominant(t *testing.T) {
	ga := encodingFixture(t)
	out, err := ga.EncodeCodominant()
	require.NoError(t, err)
	assert.Equal(t, []Codominant{CodominantRef, CodominantHet, CodominantHom, CodominantMissing, CodominantMissing}, out)
}

func TestEncodeCodominantRequiresDiploid(t *testing.T) {
	v, err := NewVariantPloidy(3, "chr1", 100, "rs1", "A", "T")
	require.NoError(t, err)
	ga, err := GenotypeArrayFromStrings(v, []string{"A/A/T"})
	require.NoError(t, err)

	_, err = ga.EncodeCodominant()
	assert.ErrorIs(t, err, ErrUnsupportedPloidy)
}

func TestEncodingRequiresOneAlt(t *testing.T) {
	v, err := NewVariant("chr1", 100, "rs1", "A", "T", "G")
	require.NoError(t, err)
	ga := mustArray(t, v, "A/G")

	_, err = ga.EncodeAdditive()
	assert.ErrorIs(t, err, ErrUnsupportedMultiAllelic)
	_, err = ga.EncodeDominant()
	assert.ErrorIs(t, err, ErrUnsupportedMultiAllelic)
	_, err = ga.EncodeRecessive()
	assert.ErrorIs(t, err, ErrUnsupportedMultiAllelic)
	_, err = ga.EncodeCodominant()
	assert.ErrorIs(t, err, ErrUnsupportedMultiAllelic)
}

func TestEncodeWeighted(t *testing.T) {
	ga := encodingFixture(t)
	out, err := ga.EncodeWeighted(0.25, "A", "T", 0.3)
	require.NoError(t, err)
	assertFloats(t, []float64{0, 0.25, 1, math.NaN(), math.NaN()}, out)
}

func TestEncodeWeightedSwappedAlleles(t *testing.T) {
	ga := encodingFixture(t)
	// With the pair reversed, hom-ref and hom-alt trade places
	out, err := ga.EncodeWeighted(0.25, "T", "A", 0.3)
	require.NoError(t, err)
	assertFloats(t, []float64{1, 0.25, 0, math.NaN(), math.NaN()}, out)
}

func TestEncodeWeightedMultiAllelic(t *testing.T) {
	v, err := NewVariant("chr1", 100, "rs1", "A", "T", "G")
	require.NoError(t, err)
	ga := mustArray(t, v, "A/A", "A/T", "A/G", "G/G")

	// Rows touching alleles outside the chosen pair become NaN
	out, err := ga.EncodeWeighted(0.5, "A", "T", 0.3)
	require.NoError(t, err)
	assertFloats(t, []float64{0, 0.5, math.NaN(), math.NaN()}, out)
}

func TestEncodeWeightedUnknownAllele(t *testing.T) {
	ga := encodingFixture(t)

	_, err := ga.EncodeWeighted(0.5, "A", "C", 0.3)
	assert.ErrorIs(t, err, ErrUnknownAllele)

	_, err = ga.EncodeWeighted(0.5, ".", "T", 0.3)
	assert.ErrorIs(t, err, ErrUnknownAllele)
}
