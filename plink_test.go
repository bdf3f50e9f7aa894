package gtarray

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plinkFixture(t *testing.T) *PlinkSet {
	t.Helper()

	v1, err := NewVariant("1", 1000, "rs1", "A", "T")
	require.NoError(t, err)
	v2, err := NewVariant("2", 2000, "rs2", "C", "G")
	require.NoError(t, err)

	ga1 := mustArray(t, v1, "A/A", "A/T", "T/T", "", "A/A")
	ga2 := mustArray(t, v2, "C/G", "C/C", "", "G/G", "C/C")

	return &PlinkSet{
		Samples:   SamplesFromIDs([]string{"s1", "s2", "s3", "s4", "s5"}),
		Genotypes: []*GenotypeArray{ga1, ga2},
	}
}

func TestPlinkRoundTrip(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "toy")
	set := plinkFixture(t)

	require.NoError(t, WritePlinkSet(prefix, set))

	back, err := ReadPlinkSet(prefix, false, 0)
	require.NoError(t, err)

	require.Len(t, back.Samples, 5)
	assert.Equal(t, "s3", back.Samples[2].SampleID)
	assert.Equal(t, "0", back.Samples[2].FatherID)
	assert.Equal(t, SexUnknown, back.Samples[2].Sex)
	assert.Equal(t, "-9", back.Samples[2].Phenotype)

	require.Len(t, back.Genotypes, 2)
	for i, ga := range back.Genotypes {
		orig := set.Genotypes[i]
		assert.True(t, orig.Variant().Equal(ga.Variant()), "variant %d", i)
		assert.Equal(t, orig.Strings(), ga.Strings(), "column %d", i)
	}
}

func TestPlinkReaderStreaming(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "toy")
	set := plinkFixture(t)
	require.NoError(t, WritePlinkSet(prefix, set))

	r, err := OpenPlink(prefix)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 5, r.NumSamples())
	assert.Equal(t, 2, r.NumVariants())

	gr := r.NewGenotypeReader()
	n := 0
	for ga := gr.Read(); ga != nil; ga = gr.Read() {
		assert.Equal(t, set.Genotypes[n].Strings(), ga.Strings())
		n++
	}
	require.NoError(t, gr.Error())
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, gr.VariantsSeen)
}

func TestReadVariantAt(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "toy")
	set := plinkFixture(t)
	require.NoError(t, WritePlinkSet(prefix, set))

	r, err := OpenPlink(prefix)
	require.NoError(t, err)
	defer r.Close()

	// Out of order access
	ga, err := r.ReadVariantAt(1)
	require.NoError(t, err)
	assert.Equal(t, set.Genotypes[1].Strings(), ga.Strings())

	ga, err = r.ReadVariantAt(0)
	require.NoError(t, err)
	assert.Equal(t, set.Genotypes[0].Strings(), ga.Strings())

	_, err = r.ReadVariantAt(2)
	assert.Error(t, err)
}

func TestReadPlinkSetSwapAlleles(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "toy")
	set := plinkFixture(t)
	require.NoError(t, WritePlinkSet(prefix, set))

	back, err := ReadPlinkSet(prefix, true, 0)
	require.NoError(t, err)

	// allele1 becomes the reference, but the calls themselves are unchanged
	assert.Equal(t, "T", back.Genotypes[0].Variant().Ref())
	assert.Equal(t, []string{"A"}, back.Genotypes[0].Variant().Alt())
	assert.Equal(t, set.Genotypes[0].Strings(), back.Genotypes[0].Strings())
}

func TestReadPlinkSetMaxVariants(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "toy")
	set := plinkFixture(t)
	require.NoError(t, WritePlinkSet(prefix, set))

	back, err := ReadPlinkSet(prefix, false, 1)
	require.NoError(t, err)
	require.Len(t, back.Genotypes, 1)
	assert.Equal(t, "rs1", back.Genotypes[0].Variant().ID)
}

func TestOpenPlinkRejectsBadMagic(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "toy")
	set := plinkFixture(t)
	require.NoError(t, WritePlinkSet(prefix, set))

	raw, err := os.ReadFile(prefix + ".bed")
	require.NoError(t, err)
	raw[0] = 0xff
	require.NoError(t, os.WriteFile(prefix+".bed", raw, 0o644))

	_, err = OpenPlink(prefix)
	assert.Error(t, err)
}

func TestOpenPlinkRejectsTruncatedBED(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "toy")
	set := plinkFixture(t)
	require.NoError(t, WritePlinkSet(prefix, set))

	raw, err := os.ReadFile(prefix + ".bed")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(prefix+".bed", raw[:len(raw)-1], 0o644))

	_, err = OpenPlink(prefix)
	assert.Error(t, err)
}

func TestOpenPlinkReadsCompressedSidecars(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain")
	set := plinkFixture(t)
	require.NoError(t, WritePlinkSet(plain, set))

	packed := filepath.Join(dir, "packed")
	data, err := os.ReadFile(plain + ".bed")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(packed+".bed", data, 0o644))
	compressFile(t, plain+".fam", packed+".fam"+zstSuffix)
	compressFile(t, plain+".bim", packed+".bim"+zstSuffix)

	back, err := ReadPlinkSet(packed, false, 0)
	require.NoError(t, err)
	require.Len(t, back.Genotypes, 2)
	assert.Equal(t, set.Genotypes[0].Strings(), back.Genotypes[0].Strings())
	assert.Equal(t, "s1", back.Samples[0].SampleID)
}

func compressFile(t *testing.T, src, dst string) {
	t.Helper()

	in, err := os.Open(src)
	require.NoError(t, err)
	defer in.Close()

	out, err := os.Create(dst)
	require.NoError(t, err)

	enc, err := zstd.NewWriter(out)
	require.NoError(t, err)
	_, err = io.Copy(enc, in)
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, out.Close())
}

func TestCopyBED(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "toy")
	set := plinkFixture(t)
	require.NoError(t, WritePlinkSet(prefix, set))

	raw, err := os.ReadFile(prefix + ".bed")
	require.NoError(t, err)

	var dst bytes.Buffer
	n, err := CopyBED(&dst, bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, int64(len(raw)), n)
	assert.Equal(t, raw, dst.Bytes())

	_, err = CopyBED(&dst, bytes.NewReader([]byte{1, 2, 3, 4}))
	assert.Error(t, err)
}

func TestWriteBIMRejectsMultiAllelic(t *testing.T) {
	v, err := NewVariant("1", 1000, "rs1", "A", "T", "G")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "toy.bim")
	err = WriteBIM(path, []*Variant{v})
	assert.ErrorIs(t, err, ErrUnsupportedMultiAllelic)
}

func TestBIMAbsentAllele(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toy.bim")
	require.NoError(t, os.WriteFile(path, []byte("1\trs1\t0\t1000\t0\tA\n"), 0o644))

	variants, err := ReadBIM(path)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "A", variants[0].Ref())
	assert.Empty(t, variants[0].Alt(), "an absent allele1 leaves the variant monomorphic")
}

func TestFAMRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toy.fam")
	samples := []Sample{
		{FamilyID: "f1", SampleID: "s1", FatherID: "s0", MotherID: "s9", Sex: SexMale, Phenotype: "2"},
		{FamilyID: "f1", SampleID: "s2", Sex: SexFemale, Phenotype: "1"},
	}
	require.NoError(t, WriteFAM(path, samples))

	back, err := ReadFAM(path)
	require.NoError(t, err)
	require.Len(t, back, 2)

	assert.Equal(t, "s0", back[0].FatherID)
	assert.True(t, back[0].IsCase())
	assert.Equal(t, "0", back[1].FatherID, "empty parent ids are written as 0")
	assert.True(t, back[1].IsControl())
	assert.Equal(t, SexFemale, back[1].Sex)
}

func TestReadFAMRejectsShortRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toy.fam")
	require.NoError(t, os.WriteFile(path, []byte("f1 s1 0 0 1\n"), 0o644))

	_, err := ReadFAM(path)
	assert.Error(t, err)
}
