// Package testutil provides fixtures shared by the connector tests: temporary
// files in every supported format and a suite for live database tests.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	_ "modernc.org/sqlite"

	"github.com/ajitpratap0/dataconnector/pkg/compression"
)

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext returns a context with a 30-second timeout, cancelled when the
// test completes.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// WriteFile writes content to name inside dir and returns the path. A
// compression suffix on name (.gz, .zst, ...) compresses the content.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)

	alg := compression.Detect(path)
	if alg == compression.None {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	w, err := compression.NewWriter(f, alg)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return path
}

// SQLiteDB creates a database at dir/name, runs stmts in order and returns
// its path. The file exists even when stmts is empty.
func SQLiteDB(t *testing.T, dir, name string, stmts ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping())
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

// Sheet is one worksheet of a workbook fixture. Nil cells are left empty.
type Sheet struct {
	Name string
	Rows [][]any
}

// Workbook saves an .xlsx file with the given sheets, in order, and returns
// its path.
func Workbook(t *testing.T, dir, name string, sheets ...Sheet) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet.Name))
		} else {
			_, err := f.NewSheet(sheet.Name)
			require.NoError(t, err)
		}
		for r, row := range sheet.Rows {
			for c, v := range row {
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(sheet.Name, cell, v))
			}
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}
