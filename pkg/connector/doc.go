// Package connector reads tabular data from files, databases and cloud
// warehouses into a uniform in-memory table.
//
// A Connector is built explicitly with New and carries its logger, extension
// registry and metrics collector:
//
//	c, err := connector.New(config.NewDefault())
//	if err != nil {
//		return err
//	}
//	orders, err := c.ReadCSV(ctx, "orders.csv.gz", config.CSVOptions{})
//
// Every read logs a status line before delegating, a summary with the row and
// column counts on success, and an error line on failure. Failures come back
// as *errors.Error values whose Type says what went wrong:
//
//   - ErrorTypeConfig: a required parameter is missing or invalid, reported
//     before any file or network access
//   - ErrorTypeDependencyMissing: the driver for a database kind was compiled
//     out (nomysql, nopostgres, nobigquery and nosnowflake build tags)
//   - ErrorTypeUnsupportedFormat: AutoDetectAndRead does not know the extension
//   - ErrorTypeNoTablesFound: AutoDetectAndRead found an empty SQLite catalog
//   - ErrorTypeSourceRead: the underlying loader failed; errors.Is and
//     errors.As reach the original driver error
//
// # Sources
//
// Files (CSV, Excel, JSON, SQLite) may be compressed with gzip, bzip2, xz,
// zstd or lz4, except SQLite databases, which must be plain files. Network
// sources (MySQL, PostgreSQL, BigQuery, Snowflake) take a per-kind config
// struct; when both a table and a query are set, the query is used.
//
// SQL table names are placed into SELECT * FROM verbatim. They are not quoted
// or escaped and must come from a trusted source.
package connector
