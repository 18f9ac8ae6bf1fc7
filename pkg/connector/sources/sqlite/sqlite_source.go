// Package sqlite reads tables and queries from SQLite database files using the
// pure-Go modernc.org/sqlite driver.
//
// Every call opens its own handle and closes it before returning, on success
// and on failure alike. Table names are substituted into SELECT * FROM
// verbatim; callers must pass trusted identifiers.
package sqlite

import (
	"context"
	"database/sql"
	"os"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/connector/core"
	"github.com/ajitpratap0/dataconnector/pkg/connector/sources/sqlscan"
	"github.com/ajitpratap0/dataconnector/pkg/errors"
	"github.com/ajitpratap0/dataconnector/pkg/metrics"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

const (
	driverName    = "sqlite"
	listTablesSQL = "SELECT name FROM sqlite_master WHERE type='table'"
)

var kind = string(core.SourceKindSQLite)

// SQLiteSource reads SQLite database files.
type SQLiteSource struct {
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewSQLiteSource creates a SQLite source. A nil collector uses the
// process-wide default.
func NewSQLiteSource(logger *zap.Logger, collector *metrics.Collector) *SQLiteSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.Default()
	}
	return &SQLiteSource{
		logger:  logger.With(zap.String("source", kind)),
		metrics: collector,
	}
}

// ReadTable returns every row of tableName.
func (s *SQLiteSource) ReadTable(ctx context.Context, path, tableName string, opts config.SQLOptions) (*table.Table, error) {
	if tableName == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "table name is required")
	}
	tbl, err := s.query(ctx, path, tableName, "SELECT * FROM "+tableName, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to read SQLite table").
			WithDetail("path", path).
			WithDetail("table", tableName)
	}
	return tbl, nil
}

// ReadQuery runs query as given, binding opts.Args to its placeholders.
func (s *SQLiteSource) ReadQuery(ctx context.Context, path, query string, opts config.SQLOptions) (*table.Table, error) {
	if query == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "query is required")
	}
	tbl, err := s.query(ctx, path, "query", query, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to run SQLite query").
			WithDetail("path", path)
	}
	return tbl, nil
}

// ListTables returns the database's table names in catalog order.
func (s *SQLiteSource) ListTables(ctx context.Context, path string) ([]string, error) {
	var names []string
	err := s.withDB(ctx, path, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, listTablesSQL)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to list SQLite tables").
			WithDetail("path", path)
	}
	return names, nil
}

func (s *SQLiteSource) query(ctx context.Context, path, name, stmt string, opts config.SQLOptions) (*table.Table, error) {
	var tbl *table.Table
	err := s.withDB(ctx, path, func(db *sql.DB) error {
		var err error
		tbl, err = sqlscan.Query(ctx, db, name, stmt, opts.Args, opts.MaxRows, sqlscan.WithBinaryBytes())
		return err
	})
	return tbl, err
}

// withDB opens a handle for the duration of fn and always releases it.
func (s *SQLiteSource) withDB(ctx context.Context, path string, fn func(*sql.DB) error) (err error) {
	// sql.Open would create a missing file
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return err
	}
	s.metrics.ConnectionOpened(kind)
	s.logger.Debug("connection opened", zap.String("path", path))

	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
		s.metrics.ConnectionClosed(kind)
		s.logger.Debug("connection closed", zap.String("path", path))
	}()

	return fn(db)
}
