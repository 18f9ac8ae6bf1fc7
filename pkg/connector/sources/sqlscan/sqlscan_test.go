package sqlscan

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "scan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE items (id INTEGER, name TEXT, price REAL, payload BLOB)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO items VALUES (1, 'pen', 1.5, x'0102'), (2, 'ink', NULL, NULL), (3, 'pad', 3, NULL)`)
	require.NoError(t, err)
	return db
}

func TestQuery(t *testing.T) {
	db := openDB(t)

	tbl, err := Query(context.Background(), db, "items", "SELECT * FROM items ORDER BY id", nil, 0)
	require.NoError(t, err)

	assert.Equal(t, "items", tbl.Name())
	assert.Equal(t, []string{"id", "name", "price", "payload"}, tbl.Columns())
	assert.Equal(t, 3, tbl.RowCount())
	assert.Equal(t, []any{int64(1), "pen", 1.5, []byte{1, 2}}, tbl.Row(0))
	assert.Equal(t, []any{int64(2), "ink", nil, nil}, tbl.Row(1))
}

func TestQuery_ArgsAndMaxRows(t *testing.T) {
	db := openDB(t)

	tbl, err := Query(context.Background(), db, "q", "SELECT name FROM items WHERE id >= ? ORDER BY id", []any{2}, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"ink"}}, tbl.Rows())
}

func TestQuery_EmptyResultKeepsColumns(t *testing.T) {
	db := openDB(t)

	tbl, err := Query(context.Background(), db, "q", "SELECT id, name FROM items WHERE id > 100", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.RowCount())
	assert.Equal(t, []string{"id", "name"}, tbl.Columns())
}

func TestQuery_Error(t *testing.T) {
	db := openDB(t)

	_, err := Query(context.Background(), db, "q", "SELECT * FROM missing", nil, 0)
	assert.Error(t, err)
}

func TestQuery_BinaryValues(t *testing.T) {
	db := openDB(t)
	_, err := db.Exec(`CREATE TABLE raw (payload)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE labelled (payload TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO raw VALUES (x'DEADBEEF')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO labelled VALUES (x'00FF'), ('plain')`)
	require.NoError(t, err)

	t.Run("untyped column", func(t *testing.T) {
		tbl, err := Query(context.Background(), db, "raw", "SELECT payload FROM raw", nil, 0)
		require.NoError(t, err)
		assert.Equal(t, []any{[]byte{0xde, 0xad, 0xbe, 0xef}}, tbl.Row(0))
	})

	t.Run("expression", func(t *testing.T) {
		tbl, err := Query(context.Background(), db, "q", "SELECT x'CAFE' AS b", nil, 0)
		require.NoError(t, err)
		assert.Equal(t, []any{[]byte{0xca, 0xfe}}, tbl.Row(0))
	})

	t.Run("blob in text column", func(t *testing.T) {
		tbl, err := Query(context.Background(), db, "labelled", "SELECT payload FROM labelled ORDER BY rowid", nil, 0, WithBinaryBytes())
		require.NoError(t, err)
		assert.Equal(t, [][]any{{[]byte{0x00, 0xff}}, {"plain"}}, tbl.Rows())
	})
}

func TestNormalize(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		dbType string
		in     any
		want   any
	}{
		{"text bytes", "VARCHAR", []byte("abc"), "abc"},
		{"untyped bytes", "", []byte{0xca, 0xfe}, []byte{0xca, 0xfe}},
		{"mysql text", "TEXT", []byte("abc"), "abc"},
		{"mysql json", "JSON", []byte(`{"a":1}`), `{"a":1}`},
		{"bit bytes", "BIT", []byte{1}, []byte{1}},
		{"int bytes", "BIGINT", []byte("42"), int64(42)},
		{"decimal bytes", "DECIMAL", []byte("4.25"), 4.25},
		{"binary bytes", "VARBINARY", []byte{0xff}, []byte{0xff}},
		{"blob bytes", "BLOB", []byte{1}, []byte{1}},
		{"snowflake fixed int", "FIXED", "7", int64(7)},
		{"snowflake fixed scale", "FIXED", "7.5", 7.5},
		{"snowflake real", "REAL", "0.25", 0.25},
		{"plain string", "TEXT", "7", "7"},
		{"unparseable numeric", "DECIMAL", []byte("n/a"), "n/a"},
		{"int32", "INT", int32(5), int64(5)},
		{"float32", "FLOAT", float32(0.5), 0.5},
		{"time", "DATETIME", now, now},
		{"nil", "TEXT", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.dbType, tt.in))
		})
	}
}
