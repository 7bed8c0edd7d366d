package lexicon

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/hindilts/core/errors"
)

// Compression identifies how a lexicon resource is encoded on disk.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionXZ   Compression = "xz"
	CompressionZstd Compression = "zstd"
)

var (
	magicXZ   = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
	magicZstd = []byte{0x28, 0xB5, 0x2F, 0xFD}
	magicGzip = []byte{0x1F, 0x8B}
)

// Injectable functions for testing
var (
	osOpen        = os.Open
	xzNewReader   = xz.NewReader
	xzNewWriter   = xz.NewWriter
	zstdNewReader = func(r io.Reader) (*zstd.Decoder, error) { return zstd.NewReader(r) }
	zstdNewWriter = func(w io.Writer) (*zstd.Encoder, error) { return zstd.NewWriter(w) }
)

// DetectCompression inspects the leading bytes of a resource.
func DetectCompression(header []byte) Compression {
	switch {
	case bytes.HasPrefix(header, magicXZ):
		return CompressionXZ
	case bytes.HasPrefix(header, magicZstd):
		return CompressionZstd
	case bytes.HasPrefix(header, magicGzip):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

// Decompress wraps r in the decoder matching its magic bytes.
func Decompress(r io.Reader) (io.ReadCloser, Compression, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(len(magicXZ))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", err
	}

	compression := DetectCompression(header)
	switch compression {
	case CompressionXZ:
		xr, err := xzNewReader(br)
		if err != nil {
			return nil, compression, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return io.NopCloser(xr), compression, nil
	case CompressionZstd:
		zr, err := zstdNewReader(br)
		if err != nil {
			return nil, compression, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return zr.IOReadCloser(), compression, nil
	case CompressionGzip:
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, compression, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gr, compression, nil
	default:
		return io.NopCloser(br), compression, nil
	}
}

// Open loads a lexicon file, transparently decompressing xz, zstd and
// gzip resources.
func Open(path string) (*Table, error) {
	f, err := osOpen(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	rc, _, err := Decompress(f)
	if err != nil {
		return nil, errors.NewIO("decompress", path, err)
	}
	defer rc.Close()

	return LoadNamed(rc, path)
}

// Export writes the canonical text form of t to w using the requested
// compression.
func Export(w io.Writer, t *Table, compression Compression) error {
	var (
		cw  io.WriteCloser
		err error
	)
	switch compression {
	case CompressionNone, "":
		_, err = t.WriteTo(w)
		return err
	case CompressionXZ:
		cw, err = xzNewWriter(w)
	case CompressionZstd:
		cw, err = zstdNewWriter(w)
	case CompressionGzip:
		cw = gzip.NewWriter(w)
	default:
		return errors.NewUnsupported("compression", string(compression))
	}
	if err != nil {
		return fmt.Errorf("failed to create %s writer: %w", compression, err)
	}

	if _, err := t.WriteTo(cw); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}
