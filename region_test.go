package gtarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegion(t *testing.T) {
	r, err := NewRegion("chr1", 100, 200)
	require.NoError(t, err)
	assert.Equal(t, "chr1:100-200", r.String())

	_, err = NewRegion("chr1", 0, 200)
	assert.Error(t, err, "coordinates are 1-based")

	_, err = NewRegion("chr1", 200, 200)
	assert.Error(t, err, "the region must be non-empty")

	_, err = NewRegion("chr1", 300, 200)
	assert.Error(t, err)
}

func TestRegionContainsVariant(t *testing.T) {
	r, err := NewRegion("chr1", 100, 200)
	require.NoError(t, err)

	inside, err := NewVariant("chr1", 150, "rs1", "A", "T")
	require.NoError(t, err)
	assert.True(t, r.ContainsVariant(inside))

	atStart, err := NewVariant("chr1", 100, "rs2", "A", "T")
	require.NoError(t, err)
	assert.True(t, r.ContainsVariant(atStart))

	atEnd, err := NewVariant("chr1", 200, "rs3", "A", "T")
	require.NoError(t, err)
	assert.False(t, r.ContainsVariant(atEnd), "the end coordinate is exclusive")

	otherChrom, err := NewVariant("chr2", 150, "rs4", "A", "T")
	require.NoError(t, err)
	assert.False(t, r.ContainsVariant(otherChrom))
}
