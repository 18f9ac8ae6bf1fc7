//go:build !nobigquery

package bigquery

import (
	"context"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

func init() {
	runner = run
}

func clientOptions(cfg config.BigQueryConfig) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	return opts
}

func run(ctx context.Context, cfg config.BigQueryConfig, name, stmt string) (*table.Table, error) {
	client, err := bigquery.NewClient(ctx, cfg.ProjectID, clientOptions(cfg)...)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	q := client.Query(stmt)
	if cfg.Location != "" {
		q.Location = cfg.Location
	}
	it, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	return collect(it, name, cfg.MaxRows)
}

// valueIterator is the part of *bigquery.RowIterator that collect needs.
type valueIterator interface {
	Next(dst interface{}) error
}

// collect drains it. Column names come from the schema, which the iterator
// fills in on the first call to Next.
func collect(it valueIterator, name string, maxRows int) (*table.Table, error) {
	var (
		rows   [][]any
		schema bigquery.Schema
	)
	for maxRows <= 0 || len(rows) < maxRows {
		var values []bigquery.Value
		err := it.Next(&values)
		if schema == nil {
			schema = schemaOf(it)
		}
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = convertValue(v)
		}
		rows = append(rows, row)
	}

	columns := make([]string, len(schema))
	for i, f := range schema {
		columns[i] = f.Name
	}
	return table.FromRows(name, columns, rows)
}

func schemaOf(it valueIterator) bigquery.Schema {
	if ri, ok := it.(*bigquery.RowIterator); ok {
		return ri.Schema
	}
	if s, ok := it.(interface{ Schema() bigquery.Schema }); ok {
		return s.Schema()
	}
	return nil
}

// convertValue maps BigQuery values onto table cell types. NUMERIC and
// BIGNUMERIC become float64, DATE and DATETIME become UTC times.
func convertValue(v bigquery.Value) any {
	switch t := v.(type) {
	case nil:
		return nil
	case *big.Rat:
		if t == nil {
			return nil
		}
		f, _ := t.Float64()
		return f
	case civil.Date:
		return t.In(time.UTC)
	case civil.DateTime:
		return t.In(time.UTC)
	case civil.Time:
		return t.String()
	case []bigquery.Value:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = convertValue(e)
		}
		return out
	}
	return v
}
