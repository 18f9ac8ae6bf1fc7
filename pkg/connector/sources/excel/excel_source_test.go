package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/errors"
)

// createWorkbook writes a workbook whose sheets hold the given rows.
func createWorkbook(t *testing.T, sheets map[string][][]any, order []string) string {
	t.Helper()
	file := excelize.NewFile()
	defer file.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, file.SetSheetName("Sheet1", name))
		} else {
			_, err := file.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			for c, value := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, file.SetCellValue(name, cell, value))
			}
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, file.SaveAs(path))
	return path
}

func sampleWorkbook(t *testing.T) string {
	return createWorkbook(t, map[string][][]any{
		"Orders": {
			{"id", "item", "price"},
			{1, "pen", 1.5},
			{2, "ink", 12},
		},
		"Notes": {
			{"note"},
			{"hello"},
		},
	}, []string{"Orders", "Notes"})
}

func TestRead_FirstSheetByDefault(t *testing.T) {
	src := NewExcelSource(zaptest.NewLogger(t))

	tbl, err := src.Read(context.Background(), sampleWorkbook(t), config.ExcelOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Orders", tbl.Name())
	assert.Equal(t, []string{"id", "item", "price"}, tbl.Columns())
	assert.Equal(t, 2, tbl.RowCount())
	assert.Equal(t, []any{int64(1), "pen", 1.5}, tbl.Row(0))
	assert.Equal(t, []any{int64(2), "ink", 12.0}, tbl.Row(1))
}

func TestRead_StoredValuesNotDisplayText(t *testing.T) {
	file := excelize.NewFile()
	defer file.Close()

	rows := [][]any{
		{"amount", "when", "paid", "note"},
		{1234567, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true, "first"},
		{42, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), false, nil},
	}
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, file.SetCellValue("Sheet1", cell, v))
		}
	}

	thousands, err := file.NewStyle(&excelize.Style{NumFmt: 3})
	require.NoError(t, err)
	require.NoError(t, file.SetCellStyle("Sheet1", "A2", "A3", thousands))
	shortDate, err := file.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, file.SetCellStyle("Sheet1", "B2", "B2", shortDate))
	monthYear := "mmm-yy"
	monthStyle, err := file.NewStyle(&excelize.Style{CustomNumFmt: &monthYear})
	require.NoError(t, err)
	require.NoError(t, file.SetCellStyle("Sheet1", "B3", "B3", monthStyle))

	path := filepath.Join(t.TempDir(), "styled.xlsx")
	require.NoError(t, file.SaveAs(path))

	tbl, err := NewExcelSource(zaptest.NewLogger(t)).Read(context.Background(), path, config.ExcelOptions{})
	require.NoError(t, err)

	amounts, _ := tbl.Column("amount")
	assert.Equal(t, []any{int64(1234567), int64(42)}, amounts)

	paid, _ := tbl.Column("paid")
	assert.Equal(t, []any{true, false}, paid)

	notes, _ := tbl.Column("note")
	assert.Equal(t, []any{"first", nil}, notes)

	when, _ := tbl.Column("when")
	want := []time.Time{
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.Len(t, when, len(want))
	for i, v := range when {
		got, ok := v.(time.Time)
		require.True(t, ok, "row %d is %T", i, v)
		assert.True(t, want[i].Equal(got), "row %d: got %v", i, got)
	}
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"h:mm:ss", true},
		{"[$-409]mmm-yy", true},
		{"#,##0", false},
		{"0.00%", false},
		{`#,##0 "days"`, false},
		{`[Red]#,##0`, false},
		{`0\d`, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormatCode(tt.code))
		})
	}
}

func TestRead_NamedSheet(t *testing.T) {
	src := NewExcelSource(zaptest.NewLogger(t))

	tbl, err := src.Read(context.Background(), sampleWorkbook(t), config.ExcelOptions{Sheet: "Notes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"note"}, tbl.Columns())
	assert.Equal(t, []any{"hello"}, tbl.Row(0))
}

func TestRead_Options(t *testing.T) {
	src := NewExcelSource(zaptest.NewLogger(t))
	path := sampleWorkbook(t)

	t.Run("no header", func(t *testing.T) {
		tbl, err := src.Read(context.Background(), path, config.ExcelOptions{NoHeader: true, KeepStrings: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"0", "1", "2"}, tbl.Columns())
		assert.Equal(t, 3, tbl.RowCount())
		assert.Equal(t, "id", tbl.Value(0, 0))
	})

	t.Run("names and max rows", func(t *testing.T) {
		tbl, err := src.Read(context.Background(), path, config.ExcelOptions{Names: []string{"a", "b", "c"}, MaxRows: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns())
		assert.Equal(t, 1, tbl.RowCount())
	})

	t.Run("skip rows", func(t *testing.T) {
		tbl, err := src.Read(context.Background(), path, config.ExcelOptions{SkipRows: 1, NoHeader: true})
		require.NoError(t, err)
		assert.Equal(t, 2, tbl.RowCount())
		assert.Equal(t, int64(1), tbl.Value(0, 0))
	})
}

func TestRead_Errors(t *testing.T) {
	src := NewExcelSource(zaptest.NewLogger(t))

	t.Run("missing sheet", func(t *testing.T) {
		_, err := src.Read(context.Background(), sampleWorkbook(t), config.ExcelOptions{Sheet: "Missing"})
		require.Error(t, err)
		assert.True(t, errors.IsSourceRead(err))
		assert.Contains(t, err.Error(), "Missing")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := src.Read(context.Background(), filepath.Join(t.TempDir(), "none.xlsx"), config.ExcelOptions{})
		assert.True(t, errors.IsSourceRead(err))
	})

	t.Run("legacy xls content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "old.xls")
		require.NoError(t, os.WriteFile(path, []byte("not a zip workbook"), 0o600))
		_, err := src.Read(context.Background(), path, config.ExcelOptions{})
		require.Error(t, err)
		assert.True(t, errors.IsSourceRead(err))
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := src.Read(context.Background(), sampleWorkbook(t), config.ExcelOptions{MaxRows: -1})
		assert.True(t, errors.IsConfig(err))
	})
}

func TestListSheets(t *testing.T) {
	src := NewExcelSource(zaptest.NewLogger(t))

	sheets, err := src.ListSheets(context.Background(), sampleWorkbook(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Orders", "Notes"}, sheets)
}
