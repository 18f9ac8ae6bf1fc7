//go:build !nopostgres

package postgresql

import (
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertValue(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"numeric", pgtype.Numeric{Int: big.NewInt(25), Exp: -1, Valid: true}, 2.5},
		{"null numeric", pgtype.Numeric{}, nil},
		{"uuid", [16]byte{0x55, 0x0e, 0x84, 0x00, 0xe2, 0x9b, 0x41, 0xd4, 0xa7, 0x16, 0x44, 0x66, 0x55, 0x44, 0x00, 0x00},
			"550e8400-e29b-41d4-a716-446655440000"},
		{"bytea", []byte{0xde, 0xad}, []byte{0xde, 0xad}},
		{"int4", int32(7), int64(7)},
		{"int2", int16(3), int64(3)},
		{"float4", float32(0.5), 0.5},
		{"text", "x", "x"},
		{"timestamp", now, now},
		{"array", []any{int32(1), nil, int32(3)}, []any{int64(1), nil, int64(3)}},
		{"json", map[string]any{"a": 1.0}, map[string]any{"a": 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertValue(tt.in))
		})
	}
	assert.True(t, Available())
}

func TestConvertValue_NumericOutOfFloatRange(t *testing.T) {
	got := convertValue(pgtype.Numeric{Int: big.NewInt(1), Exp: 400, Valid: true})

	text, ok := got.(string)
	require.True(t, ok, "got %T", got)
	parsed, ok := new(big.Float).SetPrec(2048).SetString(text)
	require.True(t, ok, "unparsable %q", text)
	want := new(big.Float).SetPrec(2048).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(400), nil))
	assert.Zero(t, want.Cmp(parsed))
}
