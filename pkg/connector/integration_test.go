package connector

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/testutil"
)

const liveQuery = "SELECT 1 AS one, 'a' AS letter"

// LiveDatabaseSuite reads from real MySQL and PostgreSQL servers. Each test
// skips unless its server is configured through the DATACONNECTOR_TEST_*
// environment variables.
type LiveDatabaseSuite struct {
	testutil.DatabaseSuite
	conn *Connector
}

func (s *LiveDatabaseSuite) SetupSuite() {
	s.DatabaseSuite.SetupSuite()
	conn, err := New(config.NewDefault(), WithLogger(zaptest.NewLogger(s.T())))
	s.Require().NoError(err)
	s.conn = conn
}

func (s *LiveDatabaseSuite) TestMySQLQuery() {
	srv := s.RequireServer(testutil.EnvMySQLHost)

	tbl, err := s.conn.ReadMySQL(s.Context(), config.MySQLConfig{
		Host:      srv.Host,
		Port:      srv.Port,
		Database:  srv.Database,
		Username:  srv.User,
		Password:  srv.Password,
		SQLTarget: config.SQLTarget{Query: liveQuery},
	})
	s.Require().NoError(err)
	s.Equal([]string{"one", "letter"}, tbl.Columns())
	s.Equal(1, tbl.RowCount())
}

func (s *LiveDatabaseSuite) TestPostgreSQLQuery() {
	srv := s.RequireServer(testutil.EnvPostgresHost)

	tbl, err := s.conn.ReadPostgreSQL(s.Context(), config.PostgreSQLConfig{
		Host:      srv.Host,
		Port:      srv.Port,
		Database:  srv.Database,
		Username:  srv.User,
		Password:  srv.Password,
		SSLMode:   "disable",
		SQLTarget: config.SQLTarget{Query: liveQuery},
	})
	s.Require().NoError(err)
	s.Equal([]string{"one", "letter"}, tbl.Columns())
	s.Equal(1, tbl.RowCount())
}

func (s *LiveDatabaseSuite) TestPostgreSQLMissingTable() {
	srv := s.RequireServer(testutil.EnvPostgresHost)

	_, err := s.conn.ReadPostgreSQL(s.Context(), config.PostgreSQLConfig{
		Host:      srv.Host,
		Port:      srv.Port,
		Database:  srv.Database,
		Username:  srv.User,
		Password:  srv.Password,
		SSLMode:   "disable",
		SQLTarget: config.SQLTarget{Table: "dataconnector_no_such_table"},
	})
	s.Error(err)
}

func TestLiveDatabaseSuite(t *testing.T) {
	suite.Run(t, new(LiveDatabaseSuite))
}
