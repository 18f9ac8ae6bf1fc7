// Package postgresql reads PostgreSQL tables and queries with pgx.
//
// The pgx dependency is isolated in driver.go; building with the nopostgres
// tag removes it and every read reports a dependency-missing error.
package postgresql

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/connector/core"
	"github.com/ajitpratap0/dataconnector/pkg/errors"
	"github.com/ajitpratap0/dataconnector/pkg/metrics"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

// Session is one open server connection.
type Session interface {
	// Query runs stmt and collects at most maxRows rows (0 for all).
	Query(ctx context.Context, name, stmt string, args []any, maxRows int) (*table.Table, error)
	Close(ctx context.Context) error
}

// Dialer connects to the server described by a connection URL.
type Dialer func(ctx context.Context, connString string) (Session, error)

var dialer Dialer

var kind = string(core.SourceKindPostgreSQL)

const remedy = "Install it with: go get github.com/jackc/pgx/v5, and build without the nopostgres tag"

// PostgreSQLSource reads from PostgreSQL servers.
type PostgreSQLSource struct {
	logger  *zap.Logger
	metrics *metrics.Collector
	dial    Dialer

	connectTimeout time.Duration
}

// NewPostgreSQLSource creates a PostgreSQL source.
func NewPostgreSQLSource(logger *zap.Logger, collector *metrics.Collector) *PostgreSQLSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.Default()
	}
	return &PostgreSQLSource{
		logger:  logger.With(zap.String("source", kind)),
		metrics: collector,
		dial:    dialer,
	}
}

// WithConnectTimeout bounds the dial and startup handshake.
func (s *PostgreSQLSource) WithConnectTimeout(d time.Duration) *PostgreSQLSource {
	s.connectTimeout = d
	return s
}

// Available reports whether the pgx driver is compiled in.
func Available() bool { return dialer != nil }

// Read runs cfg.Query, or SELECT * FROM cfg.Table when no query is given.
func (s *PostgreSQLSource) Read(ctx context.Context, cfg config.PostgreSQLConfig) (*table.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s.dial == nil {
		return nil, errors.DependencyMissing("PostgreSQL driver (github.com/jackc/pgx/v5)", remedy)
	}

	name := cfg.Table
	if cfg.Query != "" {
		name = "query"
	}
	address := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.EffectivePort()))

	tbl, err := s.query(ctx, cfg, name)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to read from PostgreSQL").
			WithDetail("address", address).
			WithDetail("database", cfg.Database)
	}
	return tbl, nil
}

func (s *PostgreSQLSource) query(ctx context.Context, cfg config.PostgreSQLConfig, name string) (*table.Table, error) {
	dialCtx := ctx
	if s.connectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, s.connectTimeout)
		defer cancel()
	}
	sess, err := s.dial(dialCtx, ConnString(cfg))
	if err != nil {
		return nil, err
	}
	s.metrics.ConnectionOpened(kind)
	defer func() {
		// the caller's ctx may already be done; closing must still reach the server
		if cerr := sess.Close(context.WithoutCancel(ctx)); cerr != nil {
			s.logger.Warn("failed to close connection", zap.Error(cerr))
		}
		s.metrics.ConnectionClosed(kind)
	}()

	return sess.Query(ctx, name, cfg.Statement(), cfg.Args, cfg.MaxRows)
}

// ConnString renders cfg as a postgres:// URL, applying the default port.
func ConnString(cfg config.PostgreSQLConfig) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.EffectivePort())),
		Path:   "/" + cfg.Database,
	}
	if cfg.Username != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.Username, cfg.Password)
		} else {
			u.User = url.User(cfg.Username)
		}
	}
	if cfg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{cfg.SSLMode}}.Encode()
	}
	return u.String()
}
