package gtarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackBEDRecord(t *testing.T) {
	v := mustVariant(t)
	ga := mustArray(t, v, "A/A", "A/T", "T/T", "", "A/A")

	record, err := packBEDRecord(ga)
	require.NoError(t, err)
	require.Len(t, record, 2)

	// Byte 0 holds samples 0-3 with the first sample in the lowest bit
	// pair: hom-ref(00), het(10), hom-alt(11), missing(01).
	assert.Equal(t, byte(0b01_11_10_00), record[0])
	// Byte 1 holds sample 4 plus zeroed padding.
	assert.Equal(t, byte(0b00_00_00_00), record[1])
}

func TestPackBEDRecordPartialMissing(t *testing.T) {
	v := mustVariant(t)
	ga := mustArray(t, v, "A")

	record, err := packBEDRecord(ga)
	require.NoError(t, err)
	assert.Equal(t, byte(bedMissing), record[0], "a partially missing call has no 2-bit representation and is coded missing")
}

func TestPackBEDRecordRejectsUnsupported(t *testing.T) {
	triploid, err := NewVariantPloidy(3, "chr1", 100, "rs1", "A", "T")
	require.NoError(t, err)
	ga := mustArray(t, triploid, "A/A/T")
	_, err = packBEDRecord(ga)
	assert.ErrorIs(t, err, ErrUnsupportedPloidy)

	multi, err := NewVariant("chr1", 100, "rs2", "A", "T", "G")
	require.NoError(t, err)
	ga = mustArray(t, multi, "A/G")
	_, err = packBEDRecord(ga)
	assert.ErrorIs(t, err, ErrUnsupportedMultiAllelic)
}

func TestUnpackBEDRecord(t *testing.T) {
	v := mustVariant(t)

	ga, err := unpackBEDRecord(v, []byte{0b01_11_10_00, 0b00}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"A/A", "A/T", "T/T", ".", "A/A"}, ga.Strings())

	_, err = unpackBEDRecord(v, []byte{0}, 5)
	assert.ErrorIs(t, err, ErrCorruptFile)
}

func TestBEDRecordRoundTrip(t *testing.T) {
	v := mustVariant(t)

	for _, strs := range [][]string{
		{"A/A", "A/T", "T/T", "", "A/A"},
		{"T/T", "T/T", "T/T", "T/T"},
		{"", "", "", "", "", "A/T"},
		{"A/A", "A/T", "T/T", "A/A", "A/T", "T/T", ""},
	} {
		ga := mustArray(t, v, strs...)

		record, err := packBEDRecord(ga)
		require.NoError(t, err)
		assert.Len(t, record, bedRecordSize(len(strs)))

		back, err := unpackBEDRecord(v, record, len(strs))
		require.NoError(t, err)
		assert.Equal(t, ga.Strings(), back.Strings())
	}
}

func TestBEDRecordSize(t *testing.T) {
	assert.Equal(t, 0, bedRecordSize(0))
	assert.Equal(t, 1, bedRecordSize(1))
	assert.Equal(t, 1, bedRecordSize(4))
	assert.Equal(t, 2, bedRecordSize(5))
	assert.Equal(t, 2, bedRecordSize(8))
	assert.Equal(t, 3, bedRecordSize(9))
}
