// Package excel loads worksheets from .xlsx workbooks into a table.
package excel

import (
	"context"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ajitpratap0/dataconnector/pkg/compression"
	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/connector/core"
	"github.com/ajitpratap0/dataconnector/pkg/errors"
	"github.com/ajitpratap0/dataconnector/pkg/schema"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

// ExcelSource reads worksheets with excelize.
type ExcelSource struct {
	logger *zap.Logger
}

// NewExcelSource creates an Excel source.
func NewExcelSource(logger *zap.Logger) *ExcelSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExcelSource{logger: logger.With(zap.String("source", string(core.SourceKindExcel)))}
}

// Read loads one worksheet. An empty opts.Sheet selects the first sheet in
// workbook order.
//
// Cells are read as stored, not as displayed: a number formatted "#,##0" is
// still a number. Boolean cells become bool. A column whose every non-empty
// cell is a number carrying a date or time format becomes time.Time (UTC wall
// clock, honoring the workbook's 1904 date system).
func (s *ExcelSource) Read(ctx context.Context, path string, opts config.ExcelOptions) (*table.Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close() // Ignore close error
	}()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New(errors.ErrorTypeSourceRead, "workbook has no worksheets").
				WithDetail("path", path)
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.Newf(errors.ErrorTypeSourceRead, "worksheet named '%s' not found", sheet).
			WithDetail("path", path)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "Excel read cancelled").WithDetail("path", path)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to read worksheet").
			WithDetail("path", path).
			WithDetail("sheet", sheet)
	}
	s.logger.Debug("worksheet read", zap.String("sheet", sheet), zap.Int("raw_rows", len(rows)))

	// first is the worksheet row index of rows[0]
	first := opts.SkipRows
	if first >= len(rows) {
		rows = nil
	} else {
		rows = rows[first:]
	}

	var columns []string
	switch {
	case len(rows) == 0 && len(opts.Names) == 0:
		return table.Empty(sheet), nil
	case !opts.NoHeader && len(opts.Names) > 0:
		columns = opts.Names
		if len(rows) > 0 {
			rows = rows[1:]
			first++
		}
	case !opts.NoHeader:
		columns = rows[0]
		rows = rows[1:]
		first++
	case len(opts.Names) > 0:
		columns = opts.Names
	default:
		columns = table.IndexColumns(maxWidth(rows))
	}

	// excelize trims trailing empty cells, so a header can be narrower than the data
	if w := maxWidth(rows); w > len(columns) && len(opts.Names) == 0 {
		padded := make([]string, w)
		copy(padded, columns)
		columns = padded
	}

	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		rows = rows[:opts.MaxRows]
	}

	cells := newCellReader(f, sheet)
	dateColumns := cells.resolve(rows, first)

	engine := schema.NewTypeInferenceEngine(s.logger, schema.WithKeepStrings(opts.KeepStrings))
	tbl, err := engine.InferTable(sheet, columns, rows)
	if err == nil && !opts.KeepStrings && len(dateColumns) > 0 {
		tbl, err = cells.withDates(tbl, columns, rows, dateColumns)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to build table from worksheet").
			WithDetail("path", path).
			WithDetail("sheet", sheet)
	}
	return tbl, nil
}

// cellReader interprets raw cell values. Booleans are stored as 0/1 and dates
// as serial numbers; only the cell type and style tell them apart from plain
// numbers.
type cellReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newCellReader(f *excelize.File, sheet string) *cellReader {
	r := &cellReader{f: f, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}
	return r
}

// resolve rewrites boolean cells to TRUE/FALSE in place and returns the
// columns in which every non-empty cell is a date-formatted number. first is
// the worksheet row index of rows[0].
func (r *cellReader) resolve(rows [][]string, first int) map[int]bool {
	width := maxWidth(rows)
	filled := make([]int, width)
	dated := make([]int, width)

	for i, row := range rows {
		for c, raw := range row {
			if raw == "" {
				continue
			}
			filled[c]++
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, first+i+1)
			if err != nil {
				continue
			}
			if typ, err := r.f.GetCellType(r.sheet, cell); err == nil && typ == excelize.CellTypeBool {
				row[c] = strings.ToUpper(strconv.FormatBool(raw == "1"))
				continue
			}
			if r.isDate(cell) {
				dated[c]++
			}
		}
	}

	out := make(map[int]bool)
	for c := range filled {
		if filled[c] > 0 && dated[c] == filled[c] {
			out[c] = true
		}
	}
	return out
}

func (r *cellReader) isDate(cell string) bool {
	id, err := r.f.GetCellStyle(r.sheet, cell)
	if err != nil || id == 0 {
		return false
	}
	if d, ok := r.dateStyles[id]; ok {
		return d
	}
	style, err := r.f.GetStyle(id)
	d := err == nil && isDateStyle(style)
	r.dateStyles[id] = d
	return d
}

// withDates rebuilds tbl with the given columns converted from serial numbers
// to time.Time.
func (r *cellReader) withDates(tbl *table.Table, columns []string, rows [][]string, dateColumns map[int]bool) (*table.Table, error) {
	values := make([][]any, tbl.ColumnCount())
	for c := range values {
		if !dateColumns[c] {
			values[c] = tbl.ColumnAt(c)
			continue
		}
		col := make([]any, len(rows))
		for i, row := range rows {
			if c >= len(row) || row[c] == "" {
				continue
			}
			serial, err := strconv.ParseFloat(row[c], 64)
			if err != nil {
				return nil, err
			}
			ts, err := excelize.ExcelDateToTime(serial, r.date1904)
			if err != nil {
				return nil, err
			}
			col[i] = ts
		}
		values[c] = col
	}
	return table.FromColumns(tbl.Name(), columns, values)
}

// Built-in number formats that render dates or times.
var dateNumFmts = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

func isDateStyle(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	return dateNumFmts[style.NumFmt]
}

// isDateFormatCode reports whether a custom format code has date or time
// tokens outside quoted literals, escapes and [bracketed] sections.
func isDateFormatCode(code string) bool {
	var quoted, bracketed, escaped bool
	for _, ch := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case quoted:
			quoted = ch != '"'
		case bracketed:
			bracketed = ch != ']'
		case ch == '\\':
			escaped = true
		case ch == '"':
			quoted = true
		case ch == '[':
			bracketed = true
		case strings.ContainsRune("ymdhs", ch):
			return true
		}
	}
	return false
}

// ListSheets returns the worksheet names in workbook order.
func (s *ExcelSource) ListSheets(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return f.GetSheetList(), nil
}

func open(path string) (*excelize.File, error) {
	rc, err := compression.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to open Excel file").
			WithDetail("path", path)
	}
	defer rc.Close()

	f, err := excelize.OpenReader(rc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to parse Excel file").
			WithDetail("path", path)
	}
	return f, nil
}

func maxWidth(rows [][]string) int {
	w := 0
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}
