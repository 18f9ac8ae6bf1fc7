// Package dataconnector loads tabular data from heterogeneous sources into a
// single in-memory table type.
//
// The entry point is pkg/connector, which reads CSV, Excel, JSON and SQLite
// files (plain or compressed with gzip, bzip2, xz, zstd or lz4), MySQL and
// PostgreSQL servers, and BigQuery and Snowflake warehouses. Every read
// returns a *table.Table or a typed *errors.Error.
//
// Supporting packages:
//
//   - pkg/table: the column-major result table
//   - pkg/schema: per-column type inference for text sources
//   - pkg/compression: transparent decompression by file suffix
//   - pkg/columnar: Arrow record and IPC conversion
//   - pkg/config, pkg/logger, pkg/metrics, pkg/observability: configuration,
//     zap logging, prometheus metrics and OpenTelemetry tracing
//
// The dataconnector command in cmd/dataconnector exposes the same reads on
// the command line.
package dataconnector
