package testutil

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// Environment variables that enable live database tests.
const (
	EnvMySQLHost    = "DATACONNECTOR_TEST_MYSQL_HOST"
	EnvPostgresHost = "DATACONNECTOR_TEST_POSTGRES_HOST"
)

// DatabaseSuite is the base for tests that need a running server. Tests skip
// unless the server's host variable is set; the remaining connection fields
// come from <PREFIX>_PORT, _DATABASE, _USER and _PASSWORD.
type DatabaseSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
}

// SetupSuite runs before all tests in the suite.
func (s *DatabaseSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
}

// TearDownSuite runs after all tests in the suite.
func (s *DatabaseSuite) TearDownSuite() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Context returns the suite context.
func (s *DatabaseSuite) Context() context.Context {
	return s.ctx
}

// Server holds connection settings read from the environment.
type Server struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// RequireServer returns the server configured by hostVar or skips the test.
func (s *DatabaseSuite) RequireServer(hostVar string) Server {
	IntegrationTest(s.T())
	srv, ok := LookupServer(hostVar)
	if !ok {
		s.T().Skipf("%s not set", hostVar)
	}
	return srv
}

// LookupServer reads a Server from hostVar and its sibling variables.
func LookupServer(hostVar string) (Server, bool) {
	host := os.Getenv(hostVar)
	if host == "" {
		return Server{}, false
	}
	prefix := hostVar[:len(hostVar)-len("_HOST")]
	port, _ := strconv.Atoi(os.Getenv(prefix + "_PORT"))
	return Server{
		Host:     host,
		Port:     port,
		Database: os.Getenv(prefix + "_DATABASE"),
		User:     os.Getenv(prefix + "_USER"),
		Password: os.Getenv(prefix + "_PASSWORD"),
	}, true
}

// IntegrationTest marks a test as an integration test.
func IntegrationTest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}
