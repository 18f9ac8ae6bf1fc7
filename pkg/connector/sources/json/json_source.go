// Package json loads JSON and JSON Lines documents into a table.
//
// Four layouts are understood:
//
//	records  [{"a":1,"b":"x"},{"a":2,"b":"y"}]
//	columns  {"a":{"0":1,"1":2},"b":{"0":"x","1":"y"}} or {"a":[1,2],"b":["x","y"]}
//	values   [[1,"x"],[2,"y"]]
//	lines    {"a":1,"b":"x"}\n{"a":2,"b":"y"}
//
// Column order is the order keys are first seen.
package json

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ajitpratap0/dataconnector/pkg/compression"
	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/connector/core"
	"github.com/ajitpratap0/dataconnector/pkg/errors"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

// JSONSource reads JSON documents.
type JSONSource struct {
	logger *zap.Logger
}

// NewJSONSource creates a JSON source.
func NewJSONSource(logger *zap.Logger) *JSONSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONSource{logger: logger.With(zap.String("source", string(core.SourceKindJSON)))}
}

// Read loads the document at path.
func (s *JSONSource) Read(ctx context.Context, path string, opts config.JSONOptions) (*table.Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rc, err := compression.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to open JSON file").
			WithDetail("path", path)
	}
	defer rc.Close()

	orient := opts.Orient
	if orient == config.OrientAuto {
		switch strings.ToLower(filepath.Ext(compression.Strip(path))) {
		case ".jsonl", ".ndjson":
			orient = config.OrientLines
		}
	}

	tbl, err := s.decode(ctx, rc, core.StemName(path), orient, opts.MaxRows)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to parse JSON file").
			WithDetail("path", path).
			WithDetail("orient", string(orient))
	}
	return tbl, nil
}

func (s *JSONSource) decode(ctx context.Context, r io.Reader, name string, orient config.JSONOrient, maxRows int) (*table.Table, error) {
	if orient == config.OrientLines {
		return readLines(ctx, r, name, maxRows)
	}

	dec := gojson.NewDecoder(bufio.NewReader(r))
	dec.UseNumber()

	var docs []any
	for {
		v, err := decodeValue(dec)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, v)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	switch len(docs) {
	case 0:
		return nil, fmt.Errorf("document is empty")
	case 1:
	default:
		// Several top-level values in a .json file: treat it as JSON Lines.
		if orient != config.OrientAuto {
			return nil, fmt.Errorf("expected one JSON document, found %d", len(docs))
		}
		s.logger.Debug("multiple top-level values, reading as lines", zap.Int("count", len(docs)))
		return fromRecords(name, docs, maxRows)
	}

	doc := docs[0]
	if orient == config.OrientAuto {
		orient = detectOrient(doc)
	}
	s.logger.Debug("decoding JSON", zap.String("orient", string(orient)))

	switch orient {
	case config.OrientRecords:
		arr, ok := doc.([]any)
		if !ok {
			return nil, fmt.Errorf("records orient expects an array of objects")
		}
		return fromRecords(name, arr, maxRows)
	case config.OrientValues:
		arr, ok := doc.([]any)
		if !ok {
			return nil, fmt.Errorf("values orient expects an array of arrays")
		}
		return fromValues(name, arr, maxRows)
	case config.OrientColumns:
		obj, ok := doc.(*object)
		if !ok {
			return nil, fmt.Errorf("columns orient expects an object")
		}
		return fromColumns(name, obj, maxRows)
	}
	return nil, fmt.Errorf("unsupported orient %q", orient)
}

func detectOrient(doc any) config.JSONOrient {
	switch v := doc.(type) {
	case *object:
		return config.OrientColumns
	case []any:
		for _, el := range v {
			if _, ok := el.([]any); ok {
				return config.OrientValues
			}
			if el != nil {
				break
			}
		}
	}
	return config.OrientRecords
}

func readLines(ctx context.Context, r io.Reader, name string, maxRows int) (*table.Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var records []any
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		dec := gojson.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, v)
		if maxRows > 0 && len(records) >= maxRows {
			break
		}
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return fromRecords(name, records, maxRows)
}

func fromRecords(name string, records []any, maxRows int) (*table.Table, error) {
	if maxRows > 0 && len(records) > maxRows {
		records = records[:maxRows]
	}

	var columns []string
	index := make(map[string]int)
	for i, rec := range records {
		obj, ok := rec.(*object)
		if !ok {
			return nil, fmt.Errorf("record %d is not an object", i)
		}
		for _, k := range obj.keys {
			if _, seen := index[k]; !seen {
				index[k] = len(columns)
				columns = append(columns, k)
			}
		}
	}

	values := make([][]any, len(columns))
	for c := range values {
		values[c] = make([]any, len(records))
	}
	for r, rec := range records {
		obj := rec.(*object)
		for _, k := range obj.keys {
			values[index[k]][r] = plain(obj.values[k])
		}
	}
	return table.FromColumns(name, columns, values)
}

func fromValues(name string, rows []any, maxRows int) (*table.Table, error) {
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	width := 0
	for i, row := range rows {
		arr, ok := row.([]any)
		if !ok {
			return nil, fmt.Errorf("row %d is not an array", i)
		}
		if len(arr) > width {
			width = len(arr)
		}
	}

	values := make([][]any, width)
	for c := range values {
		values[c] = make([]any, len(rows))
	}
	for r, row := range rows {
		for c, v := range row.([]any) {
			values[c][r] = plain(v)
		}
	}
	return table.FromColumns(name, table.IndexColumns(width), values)
}

func fromColumns(name string, doc *object, maxRows int) (*table.Table, error) {
	// Row labels in first-seen order; array columns use positional labels.
	var labels []string
	labelIndex := make(map[string]int)
	addLabel := func(l string) int {
		if i, ok := labelIndex[l]; ok {
			return i
		}
		labelIndex[l] = len(labels)
		labels = append(labels, l)
		return len(labels) - 1
	}

	type cell struct {
		row int
		val any
	}
	cols := make([][]cell, len(doc.keys))
	for c, k := range doc.keys {
		switch v := doc.values[k].(type) {
		case *object:
			for _, rk := range v.keys {
				cols[c] = append(cols[c], cell{addLabel(rk), v.values[rk]})
			}
		case []any:
			for i, el := range v {
				cols[c] = append(cols[c], cell{addLabel(fmt.Sprint(i)), el})
			}
		default:
			return nil, fmt.Errorf("column %q must be an object or array, got %T", k, v)
		}
	}

	rows := len(labels)
	if maxRows > 0 && rows > maxRows {
		rows = maxRows
	}
	values := make([][]any, len(doc.keys))
	for c := range cols {
		values[c] = make([]any, rows)
		for _, cl := range cols[c] {
			if cl.row < rows {
				values[c][cl.row] = plain(cl.val)
			}
		}
	}
	return table.FromColumns(name, doc.keys, values)
}
