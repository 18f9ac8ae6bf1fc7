// Package csv loads delimited text files into a table.
package csv

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ajitpratap0/dataconnector/pkg/compression"
	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/connector/core"
	"github.com/ajitpratap0/dataconnector/pkg/errors"
	"github.com/ajitpratap0/dataconnector/pkg/schema"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

// ctxCheckInterval is how many records are read between context checks.
const ctxCheckInterval = 1024

// CSVSource reads CSV files, optionally compressed.
type CSVSource struct {
	logger *zap.Logger
}

// NewCSVSource creates a CSV source.
func NewCSVSource(logger *zap.Logger) *CSVSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVSource{logger: logger.With(zap.String("source", string(core.SourceKindCSV)))}
}

// Read loads the whole file at path.
func (s *CSVSource) Read(ctx context.Context, path string, opts config.CSVOptions) (*table.Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rc, err := compression.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to open CSV file").
			WithDetail("path", path)
	}
	defer rc.Close()

	tbl, err := s.parse(ctx, rc, core.StemName(path), opts)
	if err != nil {
		if errors.IsConfig(err) || errors.IsSourceRead(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "failed to parse CSV file").
			WithDetail("path", path)
	}
	return tbl, nil
}

func (s *CSVSource) parse(ctx context.Context, r io.Reader, name string, opts config.CSVOptions) (*table.Table, error) {
	br := bufio.NewReader(r)
	for i := 0; i < opts.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1 // Ragged rows are padded or rejected below
	reader.LazyQuotes = opts.LazyQuotes
	reader.TrimLeadingSpace = opts.TrimSpaces
	if opts.Delimiter != "" {
		reader.Comma, _ = utf8.DecodeRuneInString(opts.Delimiter)
	}
	if opts.Comment != "" {
		reader.Comment, _ = utf8.DecodeRuneInString(opts.Comment)
	}

	first, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrorTypeSourceRead, "no columns to parse from file")
	}
	if err != nil {
		return nil, err
	}

	var columns []string
	var cells [][]string
	switch {
	case !opts.NoHeader && len(opts.Names) > 0:
		columns = opts.Names
	case !opts.NoHeader:
		columns = first
	case len(opts.Names) > 0:
		columns = opts.Names
		cells = append(cells, first)
	default:
		columns = table.IndexColumns(len(first))
		cells = append(cells, first)
	}

	for opts.MaxRows == 0 || len(cells) < opts.MaxRows {
		if len(cells)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		cells = append(cells, record)
	}
	if opts.MaxRows > 0 && len(cells) > opts.MaxRows {
		cells = cells[:opts.MaxRows]
	}

	engine := schema.NewTypeInferenceEngine(s.logger,
		schema.WithNullValues(opts.NullValues...),
		schema.WithKeepStrings(opts.KeepStrings),
		schema.WithTrimSpaces(opts.TrimSpaces),
	)
	return engine.InferTable(name, columns, cells)
}
