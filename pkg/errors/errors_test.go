package errors

import (
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_PreservesCause(t *testing.T) {
	cause := stderrors.New("no such table: missing_table")
	err := Wrap(cause, ErrorTypeSourceRead, "failed to read SQLite table")

	require.NotNil(t, err)
	assert.Same(t, cause, err.Unwrap())
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "no such table: missing_table")
	assert.NotEmpty(t, err.Stack)
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeSourceRead, "ignored"))
}

func TestWrap_KeepsInnerStack(t *testing.T) {
	inner := New(ErrorTypeConfig, "inner")
	outer := Wrap(inner, ErrorTypeSourceRead, "outer")

	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, IsType(outer, ErrorTypeSourceRead))
}

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"config", New(ErrorTypeConfig, "x"), IsConfig},
		{"dependency", DependencyMissing("driver", "install it"), IsDependencyMissing},
		{"format", New(ErrorTypeUnsupportedFormat, "x"), IsUnsupportedFormat},
		{"no tables", New(ErrorTypeNoTablesFound, "x"), IsNoTablesFound},
		{"source read", Wrap(io.EOF, ErrorTypeSourceRead, "x"), IsSourceRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.False(t, tt.check(io.EOF))
		})
	}
}

func TestError_DetailsAreSorted(t *testing.T) {
	err := Newf(ErrorTypeUnsupportedFormat, "unsupported file format: %s", ".parquet").
		WithDetail("path", "data.parquet").
		WithDetail("extension", ".parquet")

	assert.Equal(t,
		"unsupported_format: unsupported file format: .parquet (extension=.parquet, path=data.parquet)",
		err.Error())
}
