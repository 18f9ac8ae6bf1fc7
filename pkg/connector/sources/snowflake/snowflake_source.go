// Package snowflake reads Snowflake tables and queries through database/sql
// and the gosnowflake driver. Build with nosnowflake to leave the driver out.
package snowflake

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

// Opener returns a lazily connecting handle for cfg.
type Opener func(cfg config.SnowflakeConfig) (*sql.DB, error)

var dialer Opener

var kind = string(core.SourceKindSnowflake)

const remedy = "Install it with: go get github.com/snowflakedb/gosnowflake, and build without the nosnowflake tag"

// SnowflakeSource reads from a Snowflake account.
type SnowflakeSource struct {
	logger  *zap.Logger
	metrics *metrics.Collector
	open    Opener

	connectTimeout time.Duration
}

// NewSnowflakeSource creates a Snowflake source.
func NewSnowflakeSource(logger *zap.Logger, collector *metrics.Collector) *SnowflakeSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.Default()
	}
	return &SnowflakeSource{
		logger:  logger.With(zap.String("source", kind)),
		metrics: collector,
		open:    dialer,
	}
}

// WithConnectTimeout bounds the login round trip.
func (s *SnowflakeSource) WithConnectTimeout(d time.Duration) *SnowflakeSource {
	s.connectTimeout = d
	return s
}

// Available reports whether the Snowflake driver is compiled in.
func Available() bool { return dialer != nil }

// Read runs cfg.Query, or SELECT * FROM cfg.Table when no query is given.
func (s *SnowflakeSource) Read(ctx context.Context, cfg config.SnowflakeConfig) (*table.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s.open == nil {
		return nil, errors.DependencyMissing("Snowflake driver (github.com/snowflakedb/gosnowflake)", remedy)
	}

	name := cfg.Table
	if cfg.Query != "" {
		name = "query"
	}

	db, err := s.open(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to configure Snowflake connection").
			WithDetail("account", cfg.Account)
	}
	s.metrics.ConnectionOpened(kind)
	defer func() {
		if cerr := db.Close(); cerr != nil {
			s.logger.Warn("failed to close connection", zap.Error(cerr))
		}
		s.metrics.ConnectionClosed(kind)
	}()

	tbl, err := s.collect(ctx, db, name, cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to read from Snowflake").
			WithDetail("account", cfg.Account).
			WithDetail("database", cfg.Database)
	}
	return tbl, nil
}

func (s *SnowflakeSource) collect(ctx context.Context, db *sql.DB, name string, cfg config.SnowflakeConfig) (*table.Table, error) {
	pingCtx := ctx
	if s.connectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, s.connectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		return nil, err
	}
	return sqlscan.Query(ctx, db, name, cfg.Statement(), cfg.Args, cfg.MaxRows)
}
