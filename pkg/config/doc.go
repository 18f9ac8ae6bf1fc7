// Package config provides configuration for the data connector.
//
// Two kinds of configuration live here:
//
//   - Config: connector-wide settings (logging, observability, timeouts) that a
//     caller builds once and hands to connector.New.
//   - Per-source option structs (CSVOptions, ExcelOptions, JSONOptions,
//     SQLOptions, MySQLConfig, PostgreSQLConfig, BigQueryConfig,
//     SnowflakeConfig, AutoOptions). Each enumerates the options its loader
//     recognizes; there is no open-ended option bag.
//
// # Usage
//
//	cfg := config.NewDefault()
//	cfg.Logging.Level = "debug"
//	cfg.Timeouts.Query = 2 * time.Minute
//
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
// # Loading From YAML
//
// Load reads a YAML file and substitutes ${VAR_NAME} with environment values
// before decoding, so secrets can stay out of the file:
//
//	# connector.yaml
//	name: eda
//	logging:
//	  level: info
//	  encoding: json
//	timeouts:
//	  connection: 10s
//	  query: 5m
//
// Source configs load the same way:
//
//	# warehouse.yaml
//	host: db.internal
//	database: sales
//	username: ${DB_USERNAME}
//	password: ${DB_PASSWORD}
//	table: orders
package config
