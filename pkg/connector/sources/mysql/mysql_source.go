// Package mysql reads MySQL tables and queries through database/sql.
//
// The go-sql-driver/mysql dependency lives in driver.go and can be compiled
// out with the nomysql build tag, in which case every read fails with a
// dependency-missing error before any network activity.
package mysql

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/connector/core"
	"github.com/ajitpratap0/dataconnector/pkg/connector/sources/sqlscan"
	"github.com/ajitpratap0/dataconnector/pkg/errors"
	"github.com/ajitpratap0/dataconnector/pkg/metrics"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

// Opener returns a handle for cfg. It must not block on the network; the
// first query dials.
type Opener func(cfg config.MySQLConfig) (*sql.DB, error)

// dialer is installed by driver.go unless built with nomysql.
var dialer Opener

var kind = string(core.SourceKindMySQL)

const remedy = "Install it with: go get github.com/go-sql-driver/mysql, and build without the nomysql tag"

// MySQLSource reads from MySQL servers.
type MySQLSource struct {
	logger  *zap.Logger
	metrics *metrics.Collector
	open    Opener

	connectTimeout time.Duration
}

// NewMySQLSource creates a MySQL source. A nil collector uses the process-wide
// default.
func NewMySQLSource(logger *zap.Logger, collector *metrics.Collector) *MySQLSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.Default()
	}
	return &MySQLSource{
		logger:  logger.With(zap.String("source", kind)),
		metrics: collector,
		open:    dialer,
	}
}

// WithConnectTimeout bounds establishing the connection. Zero leaves only the
// caller's context and the driver default.
func (s *MySQLSource) WithConnectTimeout(d time.Duration) *MySQLSource {
	s.connectTimeout = d
	return s
}

// Available reports whether the MySQL driver is compiled in.
func Available() bool { return dialer != nil }

// Read runs cfg.Query, or SELECT * FROM cfg.Table when no query is given.
func (s *MySQLSource) Read(ctx context.Context, cfg config.MySQLConfig) (*table.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s.open == nil {
		return nil, errors.DependencyMissing("MySQL driver (github.com/go-sql-driver/mysql)", remedy)
	}

	name := cfg.Table
	if cfg.Query != "" {
		name = "query"
	}

	tbl, err := s.query(ctx, cfg, name)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to read from MySQL").
			WithDetail("address", cfg.Address()).
			WithDetail("database", cfg.Database)
	}
	return tbl, nil
}

func (s *MySQLSource) query(ctx context.Context, cfg config.MySQLConfig, name string) (tbl *table.Table, err error) {
	db, err := s.open(cfg)
	if err != nil {
		return nil, err
	}
	s.metrics.ConnectionOpened(kind)
	s.logger.Debug("connection opened", zap.String("address", cfg.Address()))
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
		s.metrics.ConnectionClosed(kind)
	}()

	if err := ping(ctx, db, s.connectTimeout); err != nil {
		return nil, err
	}
	return sqlscan.Query(ctx, db, name, cfg.Statement(), cfg.Args, cfg.MaxRows)
}

func ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
