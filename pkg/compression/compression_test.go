package compression

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "id,name\n1,alice\n2,bob\n3,carol\n"

func TestDetect(t *testing.T) {
	tests := []struct {
		path string
		want Algorithm
	}{
		{"data.csv", None},
		{"data.csv.gz", Gzip},
		{"DATA.CSV.GZ", Gzip},
		{"data.json.bz2", Bzip2},
		{"data.csv.xz", XZ},
		{"data.csv.zst", Zstd},
		{"data.csv.zstd", Zstd},
		{"data.jsonl.lz4", LZ4},
		{"archive.tar", None},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.path))
		})
	}
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "data.csv", Strip("data.csv.gz"))
	assert.Equal(t, "dir/data.json", Strip("dir/data.json.zst"))
	assert.Equal(t, "data.csv", Strip("data.csv"))
	assert.Equal(t, "events.CSV", Strip("events.CSV.XZ"))
}

func TestRoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{None, Gzip, XZ, Zstd, LZ4} {
		t.Run(string(alg), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(&buf, alg)
			require.NoError(t, err)
			_, err = io.WriteString(w, sample)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := NewReader(&buf, alg)
			require.NoError(t, err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, sample, string(got))
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := NewWriter(f, Detect(path))
	require.NoError(t, err)
	_, err = io.WriteString(w, sample)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	rc, err := Open(path)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, sample, string(got))
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.csv.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0o600))
	_, err = Open(path)
	assert.Error(t, err)
}

func TestNewWriter_Bzip2Unsupported(t *testing.T) {
	_, err := NewWriter(io.Discard, Bzip2)
	assert.Error(t, err)

	_, err = NewReader(bytes.NewReader(nil), Algorithm("brotli"))
	assert.Error(t, err)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".gz", Gzip.Extension())
	assert.Equal(t, ".zst", Zstd.Extension())
	assert.Equal(t, "", None.Extension())
}
