package connector

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ajitpratap0/dataconnector/pkg/compression"
	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/connector/core"
	"github.com/ajitpratap0/dataconnector/pkg/connector/registry"
	"github.com/ajitpratap0/dataconnector/pkg/connector/sources/bigquery"
	"github.com/ajitpratap0/dataconnector/pkg/connector/sources/csv"
	"github.com/ajitpratap0/dataconnector/pkg/connector/sources/excel"
	"github.com/ajitpratap0/dataconnector/pkg/connector/sources/json"
	"github.com/ajitpratap0/dataconnector/pkg/connector/sources/mysql"
	"github.com/ajitpratap0/dataconnector/pkg/connector/sources/postgresql"
	"github.com/ajitpratap0/dataconnector/pkg/connector/sources/snowflake"
	"github.com/ajitpratap0/dataconnector/pkg/connector/sources/sqlite"
	"github.com/ajitpratap0/dataconnector/pkg/errors"
	"github.com/ajitpratap0/dataconnector/pkg/logger"
	"github.com/ajitpratap0/dataconnector/pkg/metrics"
	"github.com/ajitpratap0/dataconnector/pkg/observability"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

// Connector reads every supported source kind into a table. It holds no
// per-call state and is safe for concurrent use.
type Connector struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *registry.Registry
	metrics  *metrics.Collector
	observe  bool

	csv        *csv.CSVSource
	excel      *excel.ExcelSource
	json       *json.JSONSource
	sqlite     *sqlite.SQLiteSource
	mysql      *mysql.MySQLSource
	postgresql *postgresql.PostgreSQLSource
	bigquery   *bigquery.BigQuerySource
	snowflake  *snowflake.SnowflakeSource
}

// Option configures a Connector.
type Option func(*Connector)

// WithLogger sets the logger. Without it one is built from cfg.Logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *Connector) { c.logger = l }
}

// WithRegistry sets the extension registry used by AutoDetectAndRead.
func WithRegistry(r *registry.Registry) Option {
	return func(c *Connector) { c.registry = r }
}

// WithMetrics sets the prometheus collector. Without it the process-wide
// default is used when metrics are enabled.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Connector) { c.metrics = m }
}

// New creates a Connector. A nil cfg uses config.NewDefault.
func New(cfg *config.Config, opts ...Option) (*Connector, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid connector configuration")
	}

	c := &Connector{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		l, err := logger.New(cfg.Logging)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to build logger")
		}
		c.logger = l
	}
	c.logger = c.logger.With(zap.String("connector", cfg.Name))

	if c.registry == nil {
		c.registry = registry.Default()
	}

	c.observe = cfg.Observability.EnableMetrics || c.metrics != nil
	if c.metrics == nil {
		if cfg.Observability.EnableMetrics {
			c.metrics = metrics.Default()
		} else {
			// sources still track connections; keep them off the default registry
			c.metrics = metrics.NewCollector(prometheus.NewRegistry())
		}
	}

	c.csv = csv.NewCSVSource(c.logger)
	c.excel = excel.NewExcelSource(c.logger)
	c.json = json.NewJSONSource(c.logger)
	c.sqlite = sqlite.NewSQLiteSource(c.logger, c.metrics)
	c.mysql = mysql.NewMySQLSource(c.logger, c.metrics).WithConnectTimeout(cfg.Timeouts.Connection)
	c.postgresql = postgresql.NewPostgreSQLSource(c.logger, c.metrics).WithConnectTimeout(cfg.Timeouts.Connection)
	c.bigquery = bigquery.NewBigQuerySource(c.logger, c.metrics)
	c.snowflake = snowflake.NewSnowflakeSource(c.logger, c.metrics).WithConnectTimeout(cfg.Timeouts.Connection)

	return c, nil
}

// Logger returns the connector's logger.
func (c *Connector) Logger() *zap.Logger { return c.logger }

// Registry returns the extension registry used for auto-detection.
func (c *Connector) Registry() *registry.Registry { return c.registry }

// ReadCSV reads a delimited text file.
func (c *Connector) ReadCSV(ctx context.Context, path string, opts config.CSVOptions) (*table.Table, error) {
	desc := core.Descriptor{Kind: core.SourceKindCSV, Path: path}
	return c.load(ctx, desc, "read", "Reading CSV file", func(ctx context.Context) (*table.Table, error) {
		return c.csv.Read(ctx, path, opts)
	})
}

// ReadExcel reads one worksheet of an Excel workbook; opts.Sheet empty reads
// the first sheet.
func (c *Connector) ReadExcel(ctx context.Context, path string, opts config.ExcelOptions) (*table.Table, error) {
	desc := core.Descriptor{Kind: core.SourceKindExcel, Path: path, Sheet: opts.Sheet}
	return c.load(ctx, desc, "read", "Reading Excel file", func(ctx context.Context) (*table.Table, error) {
		return c.excel.Read(ctx, path, opts)
	})
}

// ListExcelSheets returns the workbook's sheet names in order.
func (c *Connector) ListExcelSheets(ctx context.Context, path string) ([]string, error) {
	desc := core.Descriptor{Kind: core.SourceKindExcel, Path: path}
	return c.list(ctx, desc, "list_sheets", "Listing Excel sheets", func(ctx context.Context) ([]string, error) {
		return c.excel.ListSheets(ctx, path)
	})
}

// ReadJSON reads a JSON or JSON Lines document.
func (c *Connector) ReadJSON(ctx context.Context, path string, opts config.JSONOptions) (*table.Table, error) {
	desc := core.Descriptor{Kind: core.SourceKindJSON, Path: path}
	return c.load(ctx, desc, "read", "Reading JSON file", func(ctx context.Context) (*table.Table, error) {
		return c.json.Read(ctx, path, opts)
	})
}

// ReadSQLiteTable reads a whole SQLite table. tableName is substituted into
// the statement verbatim and must come from a trusted source.
func (c *Connector) ReadSQLiteTable(ctx context.Context, path, tableName string, opts config.SQLOptions) (*table.Table, error) {
	desc := core.Descriptor{Kind: core.SourceKindSQLite, Path: path, Table: tableName}
	return c.load(ctx, desc, "read_table", "Reading SQLite table", func(ctx context.Context) (*table.Table, error) {
		return c.sqlite.ReadTable(ctx, path, tableName, opts)
	})
}

// ReadSQLiteQuery runs a query against a SQLite database.
func (c *Connector) ReadSQLiteQuery(ctx context.Context, path, query string, opts config.SQLOptions) (*table.Table, error) {
	desc := core.Descriptor{Kind: core.SourceKindSQLite, Path: path, Query: query}
	return c.load(ctx, desc, "read_query", "Executing SQLite query", func(ctx context.Context) (*table.Table, error) {
		return c.sqlite.ReadQuery(ctx, path, query, opts)
	})
}

// ListSQLiteTables returns the database's tables in catalog order.
func (c *Connector) ListSQLiteTables(ctx context.Context, path string) ([]string, error) {
	desc := core.Descriptor{Kind: core.SourceKindSQLite, Path: path}
	return c.list(ctx, desc, "list_tables", "Listing SQLite tables", func(ctx context.Context) ([]string, error) {
		return c.sqlite.ListTables(ctx, path)
	})
}

// ReadMySQL reads a MySQL table or query; the query wins when both are set.
func (c *Connector) ReadMySQL(ctx context.Context, cfg config.MySQLConfig) (*table.Table, error) {
	desc := core.Descriptor{
		Kind: core.SourceKindMySQL, Host: cfg.Host, Port: cfg.Port, Database: cfg.Database,
		Username: cfg.Username, Password: cfg.Password, Table: cfg.Table, Query: cfg.Query,
	}
	if desc.Port == 0 {
		desc.Port = config.DefaultMySQLPort
	}
	return c.load(ctx, desc, "read", "Connecting to MySQL", c.network(func(ctx context.Context) (*table.Table, error) {
		return c.mysql.Read(ctx, cfg)
	}))
}

// ReadPostgreSQL reads a PostgreSQL table or query; the query wins when both
// are set.
func (c *Connector) ReadPostgreSQL(ctx context.Context, cfg config.PostgreSQLConfig) (*table.Table, error) {
	desc := core.Descriptor{
		Kind: core.SourceKindPostgreSQL, Host: cfg.Host, Port: cfg.EffectivePort(), Database: cfg.Database,
		Username: cfg.Username, Password: cfg.Password, Table: cfg.Table, Query: cfg.Query,
	}
	return c.load(ctx, desc, "read", "Connecting to PostgreSQL", c.network(func(ctx context.Context) (*table.Table, error) {
		return c.postgresql.Read(ctx, cfg)
	}))
}

// ReadBigQuery runs a BigQuery query or scans a table; the query wins when
// both are set.
func (c *Connector) ReadBigQuery(ctx context.Context, cfg config.BigQueryConfig) (*table.Table, error) {
	desc := core.Descriptor{
		Kind: core.SourceKindBigQuery, ProjectID: cfg.ProjectID, TableID: cfg.TableID,
		Query: cfg.Query, CredentialsPath: cfg.CredentialsPath,
	}
	return c.load(ctx, desc, "read", "Connecting to BigQuery", c.network(func(ctx context.Context) (*table.Table, error) {
		return c.bigquery.Read(ctx, cfg)
	}))
}

// ReadSnowflake reads a Snowflake table or query; the query wins when both
// are set.
func (c *Connector) ReadSnowflake(ctx context.Context, cfg config.SnowflakeConfig) (*table.Table, error) {
	desc := core.Descriptor{
		Kind: core.SourceKindSnowflake, Account: cfg.Account, Database: cfg.Database, Warehouse: cfg.Warehouse,
		Username: cfg.Username, Password: cfg.Password, Table: cfg.Table, Query: cfg.Query,
	}
	return c.load(ctx, desc, "read", "Connecting to Snowflake", c.network(func(ctx context.Context) (*table.Table, error) {
		return c.snowflake.Read(ctx, cfg)
	}))
}

// AutoDetectAndRead picks a loader from the file extension, ignoring a
// trailing compression suffix. SQLite databases read opts.Table, or the
// first table in catalog order when it is empty.
func (c *Connector) AutoDetectAndRead(ctx context.Context, path string, opts config.AutoOptions) (*table.Table, error) {
	ext := strings.ToLower(filepath.Ext(compression.Strip(path)))
	log := logger.WithContext(ctx, c.logger)
	log.Info("Auto-detecting file type", zap.String("path", path), zap.String("extension", ext))

	kind, ok := c.registry.Lookup(ext)
	if !ok {
		err := errors.Newf(errors.ErrorTypeUnsupportedFormat, "unsupported file format: %s", ext).
			WithDetail("extension", ext).
			WithDetail("path", path)
		log.Error("Unsupported file format", zap.Error(err))
		return nil, err
	}

	switch kind {
	case core.SourceKindCSV:
		return c.ReadCSV(ctx, path, opts.CSV)
	case core.SourceKindExcel:
		return c.ReadExcel(ctx, path, opts.Excel)
	case core.SourceKindJSON:
		return c.ReadJSON(ctx, path, opts.JSON)
	case core.SourceKindSQLite:
		return c.readSQLiteDefault(ctx, log, path, opts)
	}

	err := errors.Newf(errors.ErrorTypeUnsupportedFormat, "no file loader for source kind %s", kind).
		WithDetail("extension", ext)
	log.Error("Unsupported file format", zap.Error(err))
	return nil, err
}

func (c *Connector) readSQLiteDefault(ctx context.Context, log *zap.Logger, path string, opts config.AutoOptions) (*table.Table, error) {
	if alg := compression.Detect(path); alg != compression.None {
		err := errors.Newf(errors.ErrorTypeUnsupportedFormat, "compressed SQLite databases are not supported (%s)", alg).
			WithDetail("extension", alg.Extension()).
			WithDetail("path", path)
		log.Error("Unsupported file format", zap.Error(err))
		return nil, err
	}

	tables, err := c.ListSQLiteTables(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		err := errors.New(errors.ErrorTypeNoTablesFound, "no tables found in SQLite database").
			WithDetail("path", path)
		log.Error("Error reading SQLite database", zap.Error(err))
		return nil, err
	}

	target := opts.Table
	if target == "" {
		target = tables[0]
		log.Warn("multiple tables found, reading first table",
			zap.String("table", target),
			zap.Int("table_count", len(tables)),
			zap.Strings("tables", tables))
	}
	return c.ReadSQLiteTable(ctx, path, target, opts.SQL)
}

// network bounds fn with the configured query timeout.
func (c *Connector) network(fn func(context.Context) (*table.Table, error)) func(context.Context) (*table.Table, error) {
	timeout := c.cfg.Timeouts.Query
	if timeout <= 0 {
		return fn
	}
	return func(ctx context.Context) (*table.Table, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return fn(ctx)
	}
}

// load runs fn inside the status-log, span and metrics envelope shared by
// every read. Errors are returned exactly as the source produced them.
func (c *Connector) load(ctx context.Context, desc core.Descriptor, operation, status string, fn func(context.Context) (*table.Table, error)) (*table.Table, error) {
	kind := string(desc.Kind)
	log := logger.WithContext(ctx, c.logger).With(desc.Field())
	log.Info(status)

	ctx, span := observability.StartLoadSpan(ctx, kind, operation)
	span.SetAttribute("source.target", desc.Target())
	timer := metrics.NewTimer()

	tbl, err := fn(ctx)
	elapsed := timer.Stop()

	if err != nil {
		log.Error(failureMessage(status), zap.Error(err), zap.Duration("duration", elapsed))
		span.End(err)
		if c.observe {
			c.metrics.ObserveLoad(kind, elapsed, 0, err)
		}
		return nil, err
	}

	rows, cols := tbl.Shape()
	log.Info("Successfully loaded data",
		zap.Int("rows", rows),
		zap.Int("columns", cols),
		zap.Duration("duration", elapsed))
	span.RecordShape(rows, cols)
	span.End(nil)
	if c.observe {
		c.metrics.ObserveLoad(kind, elapsed, rows, nil)
	}
	return tbl, nil
}

func (c *Connector) list(ctx context.Context, desc core.Descriptor, operation, status string, fn func(context.Context) ([]string, error)) ([]string, error) {
	log := logger.WithContext(ctx, c.logger).With(desc.Field())
	log.Debug(status)

	ctx, span := observability.StartLoadSpan(ctx, string(desc.Kind), operation)
	names, err := fn(ctx)
	if err != nil {
		log.Error(failureMessage(status), zap.Error(err))
		span.End(err)
		return nil, err
	}
	span.SetAttribute("result.count", len(names))
	span.End(nil)
	return names, nil
}

// failureMessage turns "Reading CSV file" into "Error reading CSV file".
func failureMessage(status string) string {
	if status == "" {
		return "Error"
	}
	return "Error " + strings.ToLower(status[:1]) + status[1:]
}
