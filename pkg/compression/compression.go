// Package compression detects compressed input files by suffix and wraps them
// in a transparent decompressing reader, so loaders can read "data.csv.gz" the
// same way they read "data.csv".
//
// Supported algorithms:
//   - Gzip (.gz) via klauspost/compress/gzip
//   - Bzip2 (.bz2), read only
//   - XZ (.xz) via ulikunitz/xz
//   - Zstd (.zst, .zstd) via klauspost/compress/zstd
//   - LZ4 (.lz4) via pierrec/lz4/v4
//
// # Basic Usage
//
//	rc, err := compression.Open("events.csv.zst")
//	if err != nil {
//	    return err
//	}
//	defer rc.Close()
//
//	kind := filepath.Ext(compression.Strip("events.csv.zst")) // ".csv"
package compression

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents an uncompressed file
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Bzip2 represents bzip2 compression
	Bzip2 Algorithm = "bzip2"
	// XZ represents xz compression
	XZ Algorithm = "xz"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
)

var suffixes = []struct {
	ext string
	alg Algorithm
}{
	{".gz", Gzip},
	{".bz2", Bzip2},
	{".xz", XZ},
	{".zst", Zstd},
	{".zstd", Zstd},
	{".lz4", LZ4},
}

// Extension returns the canonical file suffix for the algorithm.
func (a Algorithm) Extension() string {
	for _, s := range suffixes {
		if s.alg == a {
			return s.ext
		}
	}
	return ""
}

// Detect returns the algorithm implied by the path's final suffix.
func Detect(path string) Algorithm {
	lower := strings.ToLower(path)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.ext) {
			return s.alg
		}
	}
	return None
}

// Strip removes a compression suffix from path, if present.
func Strip(path string) string {
	alg := Detect(path)
	if alg == None {
		return path
	}
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)]
}

// Open opens path and returns a reader of its decompressed content. Closing
// the returned reader closes the underlying file.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path) //nolint:gosec // caller-supplied path is the point
	if err != nil {
		return nil, err
	}
	rc, err := NewReader(f, Detect(path))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileReader{ReadCloser: rc, file: f}, nil
}

// NewReader wraps r with a decompressor for alg. Closing the result releases
// decompressor resources but does not close r.
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return zr, nil
	case Bzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case XZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return io.NopCloser(xr), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
}

// NewWriter wraps w with a compressor for alg. The result must be closed to
// flush trailing frames; closing does not close w.
func NewWriter(w io.Writer, alg Algorithm) (io.WriteCloser, error) {
	switch alg {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case XZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xw, nil
	case Zstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return enc, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case Bzip2:
		return nil, fmt.Errorf("bzip2 compression is not supported for writing")
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
}

type fileReader struct {
	io.ReadCloser
	file *os.File
}

func (r *fileReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
