// Package schema types the string cells read from text and spreadsheet
// sources. A column is typed as a whole: every non-null cell must parse as the
// chosen type, otherwise the column stays string.
package schema

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/dataconnector/pkg/table"
)

// ColumnType is the Go type chosen for a column.
type ColumnType string

const (
	TypeNull    ColumnType = "null"
	TypeInteger ColumnType = "integer"
	TypeFloat   ColumnType = "float"
	TypeBoolean ColumnType = "boolean"
	TypeString  ColumnType = "string"
)

// DefaultNullValues are the cell contents read as missing.
var DefaultNullValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-NaN", "-nan", "<NA>", "N/A", "NA",
	"NULL", "NaN", "None", "n/a", "nan", "null",
}

// TypeInferenceEngine converts string columns into typed columns.
type TypeInferenceEngine struct {
	logger      *zap.Logger
	nullValues  map[string]struct{}
	keepStrings bool
	trimSpaces  bool
}

// Option configures a TypeInferenceEngine.
type Option func(*TypeInferenceEngine)

// WithNullValues adds extra cell contents read as missing.
func WithNullValues(values ...string) Option {
	return func(e *TypeInferenceEngine) {
		for _, v := range values {
			e.nullValues[v] = struct{}{}
		}
	}
}

// WithKeepStrings disables typing; non-null cells stay strings.
func WithKeepStrings(keep bool) Option {
	return func(e *TypeInferenceEngine) { e.keepStrings = keep }
}

// WithTrimSpaces trims surrounding whitespace before null checks and parsing.
func WithTrimSpaces(trim bool) Option {
	return func(e *TypeInferenceEngine) { e.trimSpaces = trim }
}

// NewTypeInferenceEngine creates a new type inference engine
func NewTypeInferenceEngine(logger *zap.Logger, opts ...Option) *TypeInferenceEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &TypeInferenceEngine{
		logger:     logger,
		nullValues: make(map[string]struct{}, len(DefaultNullValues)),
	}
	for _, v := range DefaultNullValues {
		e.nullValues[v] = struct{}{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsNull reports whether a cell is a missing-value marker.
func (e *TypeInferenceEngine) IsNull(cell string) bool {
	if e.trimSpaces {
		cell = strings.TrimSpace(cell)
	}
	_, ok := e.nullValues[cell]
	return ok
}

// InferColumn types one column. Null cells become nil. Integer columns hold
// int64, float columns float64 (integers included), boolean columns bool.
func (e *TypeInferenceEngine) InferColumn(name string, cells []string) ([]any, ColumnType) {
	out := make([]any, len(cells))
	typ := e.detectColumnType(cells)

	for i, cell := range cells {
		if e.IsNull(cell) {
			continue
		}
		if e.trimSpaces {
			cell = strings.TrimSpace(cell)
		}
		switch typ {
		case TypeInteger:
			out[i], _ = strconv.ParseInt(cell, 10, 64)
		case TypeFloat:
			out[i], _ = strconv.ParseFloat(cell, 64)
		case TypeBoolean:
			out[i], _ = parseBool(cell)
		default:
			out[i] = cell
		}
	}

	e.logger.Debug("column type inferred", zap.String("column", name), zap.String("type", string(typ)))
	return out, typ
}

func (e *TypeInferenceEngine) detectColumnType(cells []string) ColumnType {
	isInt, isFloat, isBool := true, true, true
	seen := false

	for _, cell := range cells {
		if e.IsNull(cell) {
			continue
		}
		seen = true
		if e.keepStrings {
			return TypeString
		}
		if e.trimSpaces {
			cell = strings.TrimSpace(cell)
		}
		if isInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat && !isInt {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(cell); !ok {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			return TypeString
		}
	}

	switch {
	case !seen:
		return TypeNull
	case isInt:
		return TypeInteger
	case isFloat:
		return TypeFloat
	case isBool:
		return TypeBoolean
	}
	return TypeString
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	}
	return false, false
}

// InferTable types row-major string cells into a table. Rows shorter than
// columns are padded with nulls; longer rows are an error.
func (e *TypeInferenceEngine) InferTable(name string, columns []string, rows [][]string) (*table.Table, error) {
	width := len(columns)
	byColumn := make([][]string, width)
	for c := range byColumn {
		byColumn[c] = make([]string, len(rows))
	}
	for r, row := range rows {
		if len(row) > width {
			return nil, fmt.Errorf("expected %d fields in data row %d, saw %d", width, r+1, len(row))
		}
		for c, cell := range row {
			byColumn[c][r] = cell
		}
	}

	unique := table.UniqueColumns(columns)
	values := make([][]any, width)
	for c := range byColumn {
		values[c], _ = e.InferColumn(unique[c], byColumn[c])
	}
	return table.FromColumns(name, columns, values)
}
