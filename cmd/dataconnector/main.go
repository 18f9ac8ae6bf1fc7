package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/connector"
	"github.com/ajitpratap0/dataconnector/pkg/connector/core"
	"github.com/ajitpratap0/dataconnector/pkg/logger"
	"github.com/ajitpratap0/dataconnector/pkg/observability"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

var version = "0.1.0"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	logLevel   string
	format     string
	output     string
	head       int
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "dataconnector",
		Short: "Read files, databases and warehouses into tables",
		Long: `dataconnector loads CSV, Excel, JSON and SQLite files (optionally compressed)
as well as MySQL, PostgreSQL, BigQuery and Snowflake results, and prints or
exports them as text, JSON or Arrow IPC.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "Path to a YAML connector configuration")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	root.PersistentFlags().StringVarP(&flags.format, "format", "f", formatText, "Output format: text, json or arrow")
	root.PersistentFlags().StringVarP(&flags.output, "output", "o", "", "Write output to this file instead of stdout")
	root.PersistentFlags().IntVar(&flags.head, "head", 0, "Only output the first N rows (0 for all)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dataconnector v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newReadCommand(flags))
	root.AddCommand(newQueryCommand(flags))
	root.AddCommand(newListCommand(flags, "tables", "List the tables of a SQLite database", (*connector.Connector).ListSQLiteTables))
	root.AddCommand(newListCommand(flags, "sheets", "List the worksheets of an Excel workbook", (*connector.Connector).ListExcelSheets))
	root.AddCommand(newDatabaseCommand(flags))
	return root
}

func newReadCommand(flags *globalFlags) *cobra.Command {
	var (
		opts      config.AutoOptions
		orient    string
		noHeader  bool
		delimiter string
		maxRows   int
	)

	cmd := &cobra.Command{
		Use:   "read <path>",
		Short: "Read a file, detecting its format from the extension",
		Example: `  dataconnector read sales.csv.gz --head 10
  dataconnector read app.db --table orders -f json
  dataconnector read book.xlsx --sheet Q3 -f arrow -o q3.arrow`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.CSV.Delimiter = delimiter
			opts.CSV.NoHeader = noHeader
			opts.CSV.MaxRows = maxRows
			opts.Excel.NoHeader = noHeader
			opts.Excel.MaxRows = maxRows
			opts.JSON.Orient = config.JSONOrient(orient)
			opts.JSON.MaxRows = maxRows
			opts.SQL.MaxRows = maxRows

			return run(cmd, flags, func(ctx context.Context, c *connector.Connector) (*table.Table, error) {
				return c.AutoDetectAndRead(ctx, args[0], opts)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Table, "table", "", "SQLite table to read (default: first table)")
	cmd.Flags().StringVar(&opts.Excel.Sheet, "sheet", "", "Excel worksheet to read (default: first sheet)")
	cmd.Flags().StringVar(&orient, "orient", "", "JSON layout: records, columns, values or lines (default: detect)")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "CSV field delimiter")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Treat the first CSV or Excel row as data")
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "Stop reading after N rows (0 for all)")
	return cmd
}

func newQueryCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "query <database> <sql>",
		Short: "Run a SQL query against a SQLite database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, func(ctx context.Context, c *connector.Connector) (*table.Table, error) {
				return c.ReadSQLiteQuery(ctx, args[0], args[1], config.SQLOptions{})
			})
		},
	}
}

func newListCommand(flags *globalFlags, use, short string, list func(*connector.Connector, context.Context, string) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <path>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnector(cmd, flags, func(ctx context.Context, c *connector.Connector) error {
				names, err := list(c, ctx, args[0])
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func newDatabaseCommand(flags *globalFlags) *cobra.Command {
	var sourceFile string

	cmd := &cobra.Command{
		Use:   "db <mysql|postgresql|bigquery|snowflake>",
		Short: "Read from a database or warehouse described by a YAML source file",
		Long: `Read from a database or warehouse. The source file holds the fields of the
matching source config (host, port, database, username, password, table,
query, ...). ${VAR} references are expanded from the environment.`,
		Example: `  dataconnector db postgresql -s warehouse.yaml --head 20`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"mysql", "postgresql", "bigquery", "snowflake"},
		RunE: func(cmd *cobra.Command, args []string) error {
			read, err := databaseReader(core.SourceKind(args[0]), sourceFile)
			if err != nil {
				return err
			}
			return run(cmd, flags, read)
		},
	}
	cmd.Flags().StringVarP(&sourceFile, "source", "s", "", "Path to the source YAML file (required)")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

// run builds a connector, performs one read and writes the result.
func run(cmd *cobra.Command, flags *globalFlags, read func(context.Context, *connector.Connector) (*table.Table, error)) error {
	return withConnector(cmd, flags, func(ctx context.Context, c *connector.Connector) error {
		tbl, err := read(ctx, c)
		if err != nil {
			return err
		}
		if flags.head > 0 {
			tbl = tbl.Head(flags.head)
		}
		return writeOutput(cmd.OutOrStdout(), flags.output, flags.format, tbl)
	})
}

func withConnector(cmd *cobra.Command, flags *globalFlags, fn func(context.Context, *connector.Connector) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.InitTracing(ctx, cfg.Name, cfg.Observability, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	c, err := connector.New(cfg, connector.WithLogger(log))
	if err != nil {
		return err
	}
	return fn(ctx, c)
}

// loadConfig reads the optional config file and applies flag overrides.
// Logs go to stderr so they never mix with table output.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg := config.NewDefault()
	cfg.Logging.OutputPaths = []string{"stderr"}
	cfg.Logging.Level = "warn"

	if flags.configFile != "" {
		if err := config.Load(flags.configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", flags.configFile, err)
		}
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	return cfg, nil
}
