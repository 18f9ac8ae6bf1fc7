//go:build !nomysql

package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajitpratap0/dataconnector/pkg/config"
)

func TestDriverConfig(t *testing.T) {
	c := driverConfig(config.MySQLConfig{
		Host:     "db.internal",
		Database: "sales",
		Username: "analyst",
		Password: "s3cret",
		Params:   map[string]string{"charset": "utf8mb4"},
	})

	assert.Equal(t, "db.internal:3306", c.Addr)
	assert.Equal(t, "tcp", c.Net)
	assert.Equal(t, "sales", c.DBName)
	assert.Equal(t, "analyst", c.User)
	assert.Equal(t, "s3cret", c.Passwd)
	assert.True(t, c.ParseTime)
	assert.Equal(t, "utf8mb4", c.Params["charset"])
	assert.True(t, Available())
}
