// Package sqlscan turns database/sql result sets into tables. It is shared by
// every loader built on a database/sql driver.
package sqlscan

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/ajitpratap0/dataconnector/pkg/table"
)

const ctxCheckInterval = 1024

type settings struct {
	binaryBytes bool
}

// Option configures how driver values are collected.
type Option func(*settings)

// WithBinaryBytes is for drivers that deliver character data as string, such
// as SQLite. Every []byte they return is binary data whatever the column's
// declared type, so it is kept as []byte.
func WithBinaryBytes() Option {
	return func(s *settings) { s.binaryBytes = true }
}

// Query runs stmt on db and collects the whole result.
func Query(ctx context.Context, db *sql.DB, name, stmt string, args []any, maxRows int, opts ...Option) (*table.Table, error) {
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return Collect(ctx, rows, name, maxRows, opts...)
}

// Collect reads rows into a table, stopping after maxRows when it is positive.
// The caller closes rows.
func Collect(ctx context.Context, rows *sql.Rows, name string, maxRows int, opts ...Option) (*table.Table, error) {
	var set settings
	for _, opt := range opts {
		opt(&set)
	}

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	dbTypes := make([]string, len(columns))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			dbTypes[i] = strings.ToUpper(ct.DatabaseTypeName())
		}
	}

	b := table.NewBuilder(name, columns)
	dest := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	for rows.Next() {
		if b.Len()%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]any, len(dest))
		for i, v := range dest {
			if b, ok := v.([]byte); ok && set.binaryBytes {
				row[i] = copyBytes(b)
				continue
			}
			row[i] = Normalize(dbTypes[i], v)
		}
		if err := b.AppendRow(row); err != nil {
			return nil, err
		}
		if maxRows > 0 && b.Len() >= maxRows {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// Normalize converts a scanned driver value to the cell types used by tables.
// Bytes from a character column become string, and numeric columns delivered
// as text (MySQL DECIMAL, Snowflake FIXED) become int64 or float64. Bytes from
// any other column, untyped expressions included, stay []byte.
func Normalize(dbType string, v any) any {
	switch t := v.(type) {
	case []byte:
		if isText(dbType) || intTypes[dbType] || floatTypes[dbType] {
			return convertText(dbType, string(t))
		}
		return copyBytes(t)
	case string:
		if textNumeric[dbType] {
			return convertText(dbType, t)
		}
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case int16:
		return int64(t)
	case int8:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case float32:
		return float64(t)
	}
	return v
}

var (
	intTypes = map[string]bool{
		"INT": true, "INTEGER": true, "TINYINT": true, "SMALLINT": true, "MEDIUMINT": true,
		"BIGINT": true, "UNSIGNED INT": true, "UNSIGNED TINYINT": true, "UNSIGNED SMALLINT": true,
		"UNSIGNED MEDIUMINT": true, "YEAR": true,
	}
	floatTypes = map[string]bool{
		"DECIMAL": true, "NUMERIC": true, "FLOAT": true, "DOUBLE": true, "REAL": true,
		"FIXED": true, "NUMBER": true,
	}
	// textNumeric lists types whose drivers return numbers as strings.
	textNumeric = map[string]bool{"FIXED": true, "REAL": true, "NUMBER": true}
)

func convertText(dbType, s string) any {
	switch {
	case intTypes[dbType]:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	case floatTypes[dbType]:
		if dbType == "FIXED" || dbType == "NUMBER" {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// textTypes are character types whose names do not contain CHAR or TEXT.
// MySQL delivers temporal columns as text when parseTime is off.
var textTypes = map[string]bool{
	"STRING": true, "CLOB": true, "JSON": true, "ENUM": true, "SET": true, "UUID": true,
	"DATE": true, "TIME": true, "DATETIME": true, "TIMESTAMP": true,
}

func isText(dbType string) bool {
	return textTypes[dbType] || strings.Contains(dbType, "CHAR") || strings.Contains(dbType, "TEXT")
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
