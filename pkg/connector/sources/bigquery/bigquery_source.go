// Package bigquery runs BigQuery queries and table scans.
//
// Credentials given in the config are passed to the client for that call
// only; nothing in the process environment is modified. Without a
// credentials path the client falls back to Application Default Credentials.
package bigquery

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/connector/core"
	"github.com/ajitpratap0/dataconnector/pkg/errors"
	"github.com/ajitpratap0/dataconnector/pkg/metrics"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

// Runner executes stmt for cfg and returns the result named name.
type Runner func(ctx context.Context, cfg config.BigQueryConfig, name, stmt string) (*table.Table, error)

// runner is installed by client.go unless built with nobigquery.
var runner Runner

var kind = string(core.SourceKindBigQuery)

const remedy = "Install it with: go get cloud.google.com/go/bigquery, and build without the nobigquery tag"

// BigQuerySource reads from Google BigQuery.
type BigQuerySource struct {
	logger  *zap.Logger
	metrics *metrics.Collector
	run     Runner
}

// NewBigQuerySource creates a BigQuery source.
func NewBigQuerySource(logger *zap.Logger, collector *metrics.Collector) *BigQuerySource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.Default()
	}
	return &BigQuerySource{
		logger:  logger.With(zap.String("source", kind)),
		metrics: collector,
		run:     runner,
	}
}

// Available reports whether the BigQuery client is compiled in.
func Available() bool { return runner != nil }

// Read runs cfg.Query, or scans cfg.TableID when no query is given.
func (s *BigQuerySource) Read(ctx context.Context, cfg config.BigQueryConfig) (*table.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s.run == nil {
		return nil, errors.DependencyMissing("BigQuery client (cloud.google.com/go/bigquery)", remedy)
	}

	name := cfg.TableID
	if cfg.Query != "" {
		name = "query"
	}

	s.metrics.ConnectionOpened(kind)
	defer s.metrics.ConnectionClosed(kind)

	s.logger.Debug("running job",
		zap.String("project_id", cfg.ProjectID),
		zap.String("location", cfg.Location),
		zap.Bool("explicit_credentials", cfg.CredentialsPath != ""))

	tbl, err := s.run(ctx, cfg, name, cfg.Statement())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to read from BigQuery").
			WithDetail("project_id", cfg.ProjectID)
	}
	return tbl, nil
}
