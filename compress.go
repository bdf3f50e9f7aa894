package gtarray

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/carbocation/pfx"
)

// zstSuffix marks text sidecar files stored with Zstandard compression.
const zstSuffix = ".zst"

type zstReadCloser struct {
	*zstd.Decoder
	file *os.File
}

func (z *zstReadCloser) Close() error {
	z.Decoder.Close()
	return z.file.Close()
}

// openTextFile opens path for reading, transparently decompressing it when
// the name carries the Zstandard suffix.
func openTextFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	if !strings.HasSuffix(path, zstSuffix) {
		return f, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, pfx.Err(err)
	}

	return &zstReadCloser{Decoder: dec, file: f}, nil
}

// openSidecar resolves a sidecar file that may exist either uncompressed or
// with the Zstandard suffix, preferring the uncompressed form.
func openSidecar(path string) (io.ReadCloser, error) {
	if _, err := os.Stat(path); err == nil {
		return openTextFile(path)
	}

	if _, err := os.Stat(path + zstSuffix); err == nil {
		return openTextFile(path + zstSuffix)
	}

	// Fall through to the original path so the caller sees a standard
	// not-exist error mentioning the primary name.
	return openTextFile(path)
}
