// Package columnar converts tables to and from Apache Arrow records so loaded
// data can be handed to columnar tooling or written as Arrow IPC files.
package columnar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/dataconnector/pkg/errors"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

// timestampType is used for time.Time columns.
var timestampType = arrow.FixedWidthTypes.Timestamp_us

// Schema derives an Arrow schema from the table's cell values. Each column's
// type follows its non-nil cells: all bool is Boolean, all int64 is Int64,
// any mix of int64 and float64 is Float64, all time.Time is a UTC
// microsecond Timestamp, all []byte is Binary. Anything else, including
// all-nil columns, is String. Every field is nullable.
func Schema(t *table.Table) *arrow.Schema {
	fields := make([]arrow.Field, t.ColumnCount())
	for c, name := range t.Columns() {
		fields[c] = arrow.Field{Name: name, Type: columnType(t.ColumnAt(c)), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func columnType(cells []any) arrow.DataType {
	seen := false
	allBool, allInt, allNum, allTime, allBin := true, true, true, true, true
	for _, v := range cells {
		if v == nil {
			continue
		}
		seen = true
		_, isBool := v.(bool)
		_, isInt := v.(int64)
		_, isFloat := v.(float64)
		_, isTime := v.(time.Time)
		_, isBin := v.([]byte)
		allBool = allBool && isBool
		allInt = allInt && isInt
		allNum = allNum && (isInt || isFloat)
		allTime = allTime && isTime
		allBin = allBin && isBin
	}

	switch {
	case !seen:
		return arrow.BinaryTypes.String
	case allBool:
		return arrow.FixedWidthTypes.Boolean
	case allInt:
		return arrow.PrimitiveTypes.Int64
	case allNum:
		return arrow.PrimitiveTypes.Float64
	case allTime:
		return timestampType
	case allBin:
		return arrow.BinaryTypes.Binary
	}
	return arrow.BinaryTypes.String
}

// ToArrow builds one Arrow record holding every row of t. A nil allocator
// uses the Go allocator. The caller must Release the record.
func ToArrow(t *table.Table, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	schema := Schema(t)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for c := range schema.Fields() {
		fb := b.Field(c)
		fb.Reserve(t.RowCount())
		for r := 0; r < t.RowCount(); r++ {
			if err := appendValue(fb, t.Value(r, c)); err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to convert column").
					WithDetail("column", schema.Field(c).Name).
					WithDetail("row", r)
			}
		}
	}
	return b.NewRecord(), nil
}

func appendValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	switch fb := b.(type) {
	case *array.BooleanBuilder:
		fb.Append(v.(bool))
	case *array.Int64Builder:
		fb.Append(v.(int64))
	case *array.Float64Builder:
		switch n := v.(type) {
		case int64:
			fb.Append(float64(n))
		case float64:
			fb.Append(n)
		}
	case *array.TimestampBuilder:
		ts, err := arrow.TimestampFromTime(v.(time.Time), arrow.Microsecond)
		if err != nil {
			return err
		}
		fb.Append(ts)
	case *array.BinaryBuilder:
		fb.Append(v.([]byte))
	case *array.StringBuilder:
		s, err := stringify(v)
		if err != nil {
			return err
		}
		fb.Append(s)
	default:
		return fmt.Errorf("unsupported builder type: %T", b)
	}
	return nil
}

// stringify renders a cell for a String column. Nested values are written as JSON.
func stringify(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case map[string]any, []any:
		data, err := gojson.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	}
	return fmt.Sprint(v), nil
}

// FromArrow converts a record back into a table named name. Values are
// copied out of the record's buffers, so the record may be released
// afterwards.
func FromArrow(name string, rec arrow.Record) (*table.Table, error) {
	columns := make([]string, rec.NumCols())
	values := make([][]any, rec.NumCols())
	for c := range columns {
		columns[c] = rec.ColumnName(c)
		col := rec.Column(c)
		cells := make([]any, col.Len())
		for r := range cells {
			v, err := cellValue(col, r)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to read Arrow column").
					WithDetail("column", columns[c])
			}
			cells[r] = v
		}
		values[c] = cells
	}
	return table.FromColumns(name, columns, values)
}

func cellValue(col arrow.Array, r int) (any, error) {
	if col.IsNull(r) {
		return nil, nil
	}

	switch c := col.(type) {
	case *array.Boolean:
		return c.Value(r), nil
	case *array.Int64:
		return c.Value(r), nil
	case *array.Float64:
		return c.Value(r), nil
	case *array.String:
		return strings.Clone(c.Value(r)), nil
	case *array.Binary:
		src := c.Value(r)
		out := make([]byte, len(src))
		copy(out, src)
		return out, nil
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(r).ToTime(unit), nil
	}
	return nil, fmt.Errorf("unsupported Arrow type %s", col.DataType())
}

// WriteIPC writes t to w in the Arrow IPC file format.
func WriteIPC(w io.Writer, t *table.Table) error {
	mem := memory.NewGoAllocator()
	rec, err := ToArrow(t, mem)
	if err != nil {
		return err
	}
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to create Arrow writer")
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write Arrow record")
	}
	return fw.Close()
}

// ReadIPC reads every record of an Arrow IPC file into one table.
func ReadIPC(r ipc.ReadAtSeeker, name string) (*table.Table, error) {
	fr, err := ipc.NewFileReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to open Arrow file")
	}
	defer fr.Close()

	var out *table.Builder
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to read Arrow record")
		}
		part, err := FromArrow(name, rec)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = table.NewBuilder(name, part.Columns())
		}
		for _, row := range part.Rows() {
			if err := out.AppendRow(row); err != nil {
				return nil, err
			}
		}
	}
	if out == nil {
		columns := make([]string, fr.Schema().NumFields())
		for i, f := range fr.Schema().Fields() {
			columns[i] = f.Name
		}
		out = table.NewBuilder(name, columns)
	}
	return out.Build(), nil
}
