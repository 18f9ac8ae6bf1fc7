//go:build !nomysql

package mysql

import (
	"database/sql"

	"github.com/go-sql-driver/mysql"

	"github.com/ajitpratap0/dataconnector/pkg/config"
)

func init() {
	dialer = openDB
}

func openDB(cfg config.MySQLConfig) (*sql.DB, error) {
	connector, err := mysql.NewConnector(driverConfig(cfg))
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

func driverConfig(cfg config.MySQLConfig) *mysql.Config {
	c := mysql.NewConfig()
	c.User = cfg.Username
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = cfg.Address()
	c.DBName = cfg.Database
	c.ParseTime = true
	if len(cfg.Params) > 0 {
		c.Params = make(map[string]string, len(cfg.Params))
		for k, v := range cfg.Params {
			c.Params[k] = v
		}
	}
	return c
}
