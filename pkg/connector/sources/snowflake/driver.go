//go:build !nosnowflake

package snowflake

import (
	"database/sql"

	"github.com/snowflakedb/gosnowflake"

	"github.com/ajitpratap0/dataconnector/pkg/config"
)

func init() {
	dialer = openDB
}

func openDB(cfg config.SnowflakeConfig) (*sql.DB, error) {
	dsn, err := gosnowflake.DSN(driverConfig(cfg))
	if err != nil {
		return nil, err
	}
	return sql.Open("snowflake", dsn)
}

func driverConfig(cfg config.SnowflakeConfig) *gosnowflake.Config {
	return &gosnowflake.Config{
		Account:   cfg.Account,
		User:      cfg.Username,
		Password:  cfg.Password,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Warehouse: cfg.Warehouse,
		Role:      cfg.Role,
	}
}
