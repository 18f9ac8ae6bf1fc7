package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/dataconnector/pkg/columnar"
	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/connector"
	"github.com/ajitpratap0/dataconnector/pkg/connector/core"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

const (
	formatText  = "text"
	formatJSON  = "json"
	formatArrow = "arrow"
)

// writeOutput renders tbl to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path, format string, tbl *table.Table) (err error) {
	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}
	return render(w, format, tbl)
}

func render(w io.Writer, format string, tbl *table.Table) error {
	switch strings.ToLower(format) {
	case "", formatText:
		return renderText(w, tbl)
	case formatJSON:
		enc := gojson.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tbl.Records())
	case formatArrow:
		return columnar.WriteIPC(w, tbl)
	}
	return fmt.Errorf("unknown output format %q (want text, json or arrow)", format)
}

func renderText(w io.Writer, tbl *table.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tbl.Columns(), "\t"))
	for r := 0; r < tbl.RowCount(); r++ {
		cells := make([]string, tbl.ColumnCount())
		for c := range cells {
			v := tbl.Value(r, c)
			if v == nil {
				cells[c] = "NULL"
				continue
			}
			cells[c] = fmt.Sprint(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n[%d rows x %d columns]\n", tbl.RowCount(), tbl.ColumnCount())
	return err
}

// databaseReader loads the source file for kind and returns the matching read.
func databaseReader(kind core.SourceKind, sourceFile string) (func(context.Context, *connector.Connector) (*table.Table, error), error) {
	switch kind {
	case core.SourceKindMySQL:
		var cfg config.MySQLConfig
		if err := config.Load(sourceFile, &cfg); err != nil {
			return nil, err
		}
		return func(ctx context.Context, c *connector.Connector) (*table.Table, error) {
			return c.ReadMySQL(ctx, cfg)
		}, nil
	case core.SourceKindPostgreSQL:
		var cfg config.PostgreSQLConfig
		if err := config.Load(sourceFile, &cfg); err != nil {
			return nil, err
		}
		return func(ctx context.Context, c *connector.Connector) (*table.Table, error) {
			return c.ReadPostgreSQL(ctx, cfg)
		}, nil
	case core.SourceKindBigQuery:
		var cfg config.BigQueryConfig
		if err := config.Load(sourceFile, &cfg); err != nil {
			return nil, err
		}
		return func(ctx context.Context, c *connector.Connector) (*table.Table, error) {
			return c.ReadBigQuery(ctx, cfg)
		}, nil
	case core.SourceKindSnowflake:
		var cfg config.SnowflakeConfig
		if err := config.Load(sourceFile, &cfg); err != nil {
			return nil, err
		}
		return func(ctx context.Context, c *connector.Connector) (*table.Table, error) {
			return c.ReadSnowflake(ctx, cfg)
		}, nil
	}
	return nil, fmt.Errorf("unknown database kind %q (want mysql, postgresql, bigquery or snowflake)", kind)
}
