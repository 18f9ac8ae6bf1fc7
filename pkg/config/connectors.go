package config

import (
	"fmt"
	"net"
	"strconv"
	"unicode/utf8"

	"github.com/ajitpratap0/dataconnector/pkg/errors"
)

const (
	// DefaultMySQLPort is used when MySQLConfig.Port is zero
	DefaultMySQLPort = 3306
	// DefaultPostgreSQLPort is used when PostgreSQLConfig.Port is zero
	DefaultPostgreSQLPort = 5432
)

// CSVOptions contains the options recognized by the CSV loader.
// The zero value reads a comma-separated file with a header row and types
// each column from its values.
type CSVOptions struct {
	// Delimiter is the field separator, a single character (default ",")
	Delimiter string `yaml:"delimiter" json:"delimiter"`
	// Comment marks lines to skip when it is their first character
	Comment string `yaml:"comment" json:"comment"`
	// NoHeader treats the first line as data; columns are named 0..n-1 unless Names is set
	NoHeader bool `yaml:"no_header" json:"no_header"`
	// Names replaces the header row, or names the columns when NoHeader is set
	Names []string `yaml:"names" json:"names"`
	// SkipRows skips this many lines before the header
	SkipRows int `yaml:"skip_rows" json:"skip_rows"`
	// MaxRows stops after this many data rows (0 reads all)
	MaxRows int `yaml:"max_rows" json:"max_rows"`
	// NullValues are cell values read as nil in addition to the empty string
	NullValues []string `yaml:"null_values" json:"null_values"`
	// KeepStrings disables per-column typing; every value stays a string
	KeepStrings bool `yaml:"keep_strings" json:"keep_strings"`
	// TrimSpaces trims surrounding whitespace from fields before typing
	TrimSpaces bool `yaml:"trim_spaces" json:"trim_spaces"`
	// LazyQuotes allows quotes in unquoted fields
	LazyQuotes bool `yaml:"lazy_quotes" json:"lazy_quotes"`
}

// Validate checks the CSV options.
func (o CSVOptions) Validate() error {
	if o.Delimiter != "" && utf8.RuneCountInString(o.Delimiter) != 1 {
		return errors.Newf(errors.ErrorTypeConfig, "delimiter must be a single character, got %q", o.Delimiter)
	}
	if o.Comment != "" && utf8.RuneCountInString(o.Comment) != 1 {
		return errors.Newf(errors.ErrorTypeConfig, "comment must be a single character, got %q", o.Comment)
	}
	if o.SkipRows < 0 {
		return errors.New(errors.ErrorTypeConfig, "skip_rows cannot be negative")
	}
	if o.MaxRows < 0 {
		return errors.New(errors.ErrorTypeConfig, "max_rows cannot be negative")
	}
	return nil
}

// ExcelOptions contains the options recognized by the Excel loader.
type ExcelOptions struct {
	// Sheet selects a worksheet by name; empty reads the first sheet
	Sheet string `yaml:"sheet" json:"sheet"`
	// NoHeader treats the first row as data
	NoHeader bool `yaml:"no_header" json:"no_header"`
	// Names replaces the header row, or names the columns when NoHeader is set
	Names []string `yaml:"names" json:"names"`
	// SkipRows skips this many rows before the header
	SkipRows int `yaml:"skip_rows" json:"skip_rows"`
	// MaxRows stops after this many data rows (0 reads all)
	MaxRows int `yaml:"max_rows" json:"max_rows"`
	// KeepStrings disables per-column typing
	KeepStrings bool `yaml:"keep_strings" json:"keep_strings"`
}

// Validate checks the Excel options.
func (o ExcelOptions) Validate() error {
	if o.SkipRows < 0 {
		return errors.New(errors.ErrorTypeConfig, "skip_rows cannot be negative")
	}
	if o.MaxRows < 0 {
		return errors.New(errors.ErrorTypeConfig, "max_rows cannot be negative")
	}
	return nil
}

// JSONOrient names the layout of a JSON document.
type JSONOrient string

const (
	// OrientAuto detects the layout from the document shape
	OrientAuto JSONOrient = ""
	// OrientRecords is an array of objects: [{"a":1},{"a":2}]
	OrientRecords JSONOrient = "records"
	// OrientColumns is an object keyed by column: {"a":{"0":1,"1":2}} or {"a":[1,2]}
	OrientColumns JSONOrient = "columns"
	// OrientValues is an array of arrays: [[1,2],[3,4]]
	OrientValues JSONOrient = "values"
	// OrientLines is one JSON object per line (JSONL/NDJSON)
	OrientLines JSONOrient = "lines"
)

// JSONOptions contains the options recognized by the JSON loader.
type JSONOptions struct {
	// Orient selects the document layout
	Orient JSONOrient `yaml:"orient" json:"orient"`
	// MaxRows stops after this many rows (0 reads all)
	MaxRows int `yaml:"max_rows" json:"max_rows"`
}

// Validate checks the JSON options.
func (o JSONOptions) Validate() error {
	switch o.Orient {
	case OrientAuto, OrientRecords, OrientColumns, OrientValues, OrientLines:
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown JSON orient %q", o.Orient)
	}
	if o.MaxRows < 0 {
		return errors.New(errors.ErrorTypeConfig, "max_rows cannot be negative")
	}
	return nil
}

// SQLOptions contains the options recognized by every SQL-backed loader.
type SQLOptions struct {
	// Args are bound to placeholders in a caller-supplied query
	Args []any `yaml:"-" json:"-"`
	// MaxRows stops after this many rows (0 reads all)
	MaxRows int `yaml:"max_rows" json:"max_rows"`
}

// SQLTarget selects what a SQL-backed read returns. Query takes precedence
// over Table. Table is substituted into SELECT * FROM verbatim; it is trusted
// as given and never quoted or escaped.
type SQLTarget struct {
	Table string `yaml:"table" json:"table"`
	Query string `yaml:"query" json:"query"`
}

// Validate returns a configuration error when neither Table nor Query is set.
func (t SQLTarget) Validate() error {
	if t.Query == "" && t.Table == "" {
		return errors.New(errors.ErrorTypeConfig, "either 'table' or 'query' parameter must be provided")
	}
	return nil
}

// Statement returns the SQL text to execute.
func (t SQLTarget) Statement() string {
	if t.Query != "" {
		return t.Query
	}
	return "SELECT * FROM " + t.Table
}

// MySQLConfig describes a MySQL read.
type MySQLConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Database string `yaml:"database" json:"database"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`

	SQLTarget  `yaml:",inline" json:",inline"`
	SQLOptions `yaml:",inline" json:",inline"`

	// Params are extra DSN parameters passed to the driver (e.g. tls, charset)
	Params map[string]string `yaml:"params" json:"params"`
}

// Address returns host:port, applying the default port.
func (c MySQLConfig) Address() string {
	port := c.Port
	if port == 0 {
		port = DefaultMySQLPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// Validate checks the MySQL config without touching the network.
func (c MySQLConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.Newf(errors.ErrorTypeConfig, "invalid port %d", c.Port)
	}
	return c.SQLTarget.Validate()
}

// PostgreSQLConfig describes a PostgreSQL read.
type PostgreSQLConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Database string `yaml:"database" json:"database"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	// SSLMode is passed as sslmode (disable, require, verify-full...); empty uses the driver default
	SSLMode string `yaml:"sslmode" json:"sslmode"`

	SQLTarget  `yaml:",inline" json:",inline"`
	SQLOptions `yaml:",inline" json:",inline"`
}

// EffectivePort returns the port, applying the default.
func (c PostgreSQLConfig) EffectivePort() int {
	if c.Port == 0 {
		return DefaultPostgreSQLPort
	}
	return c.Port
}

// Validate checks the PostgreSQL config without touching the network.
func (c PostgreSQLConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.Newf(errors.ErrorTypeConfig, "invalid port %d", c.Port)
	}
	return c.SQLTarget.Validate()
}

// BigQueryConfig describes a BigQuery read.
type BigQueryConfig struct {
	ProjectID string `yaml:"project_id" json:"project_id"`
	// Query takes precedence over TableID
	Query string `yaml:"query" json:"query"`
	// TableID is the full table id, project.dataset.table
	TableID string `yaml:"table_id" json:"table_id"`
	// CredentialsPath is a service account JSON file used for this call only
	CredentialsPath string `yaml:"credentials_path" json:"credentials_path"`
	// Location is the job location (e.g. US, EU); empty lets BigQuery decide
	Location string `yaml:"location" json:"location"`
	// MaxRows stops after this many rows (0 reads all)
	MaxRows int `yaml:"max_rows" json:"max_rows"`
}

// Validate checks the BigQuery config without touching the network.
func (c BigQueryConfig) Validate() error {
	if c.Query == "" && c.TableID == "" {
		return errors.New(errors.ErrorTypeConfig, "either 'query' or 'table_id' parameter must be provided")
	}
	if c.ProjectID == "" {
		return errors.New(errors.ErrorTypeConfig, "project_id is required")
	}
	if c.MaxRows < 0 {
		return errors.New(errors.ErrorTypeConfig, "max_rows cannot be negative")
	}
	return nil
}

// Statement returns the SQL text to execute.
func (c BigQueryConfig) Statement() string {
	if c.Query != "" {
		return c.Query
	}
	return fmt.Sprintf("SELECT * FROM `%s`", c.TableID)
}

// SnowflakeConfig describes a Snowflake read.
type SnowflakeConfig struct {
	Account   string `yaml:"account" json:"account"`
	Username  string `yaml:"username" json:"username"`
	Password  string `yaml:"password" json:"password"`
	Database  string `yaml:"database" json:"database"`
	Schema    string `yaml:"schema" json:"schema"`
	Warehouse string `yaml:"warehouse" json:"warehouse"`
	Role      string `yaml:"role" json:"role"`

	SQLTarget  `yaml:",inline" json:",inline"`
	SQLOptions `yaml:",inline" json:",inline"`
}

// Validate checks the Snowflake config without touching the network.
func (c SnowflakeConfig) Validate() error {
	if err := c.SQLTarget.Validate(); err != nil {
		return err
	}
	if c.Account == "" {
		return errors.New(errors.ErrorTypeConfig, "account is required")
	}
	return nil
}

// AutoOptions carries options for AutoDetectAndRead. Only the block matching
// the detected format is used.
type AutoOptions struct {
	// Table selects the SQLite table; empty picks the first table in catalog order
	Table string       `yaml:"table" json:"table"`
	CSV   CSVOptions   `yaml:"csv" json:"csv"`
	Excel ExcelOptions `yaml:"excel" json:"excel"`
	JSON  JSONOptions  `yaml:"json" json:"json"`
	SQL   SQLOptions   `yaml:"sql" json:"sql"`
}
