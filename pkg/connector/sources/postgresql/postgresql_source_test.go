package postgresql

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/dataconnector/pkg/config"
	"github.com/ajitpratap0/dataconnector/pkg/errors"
	"github.com/ajitpratap0/dataconnector/pkg/metrics"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

type fakeSession struct {
	stmt    string
	args    []any
	maxRows int
	err     error
	closed  bool
}

func (f *fakeSession) Query(_ context.Context, name, stmt string, args []any, maxRows int) (*table.Table, error) {
	f.stmt, f.args, f.maxRows = stmt, args, maxRows
	if f.err != nil {
		return nil, f.err
	}
	return table.FromRows(name, []string{"id"}, [][]any{{int64(1)}})
}

func (f *fakeSession) Close(context.Context) error {
	f.closed = true
	return nil
}

func newSource(t *testing.T, sess *fakeSession, dialed *string) (*PostgreSQLSource, *metrics.Collector) {
	collector := metrics.NewCollector(prometheus.NewRegistry())
	src := NewPostgreSQLSource(zaptest.NewLogger(t), collector)
	src.dial = func(_ context.Context, connString string) (Session, error) {
		*dialed = connString
		return sess, nil
	}
	return src, collector
}

func TestRead_QueryTakesPrecedence(t *testing.T) {
	sess := &fakeSession{}
	var dialed string
	src, collector := newSource(t, sess, &dialed)

	cfg := config.PostgreSQLConfig{
		Host:       "pg.internal",
		Database:   "app",
		Username:   "reader",
		SQLTarget:  config.SQLTarget{Table: "users", Query: "SELECT id FROM users WHERE id = $1"},
		SQLOptions: config.SQLOptions{Args: []any{1}, MaxRows: 5},
	}
	tbl, err := src.Read(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "query", tbl.Name())
	assert.Equal(t, "SELECT id FROM users WHERE id = $1", sess.stmt)
	assert.Equal(t, []any{1}, sess.args)
	assert.Equal(t, 5, sess.maxRows)
	assert.Equal(t, "postgres://reader@pg.internal:5432/app", dialed)
	assert.True(t, sess.closed)
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.ActiveConnections.WithLabelValues("postgresql")))
}

func TestRead_Table(t *testing.T) {
	sess := &fakeSession{}
	var dialed string
	src, _ := newSource(t, sess, &dialed)

	tbl, err := src.Read(context.Background(), config.PostgreSQLConfig{Host: "h", SQLTarget: config.SQLTarget{Table: "public.users"}})
	require.NoError(t, err)
	assert.Equal(t, "public.users", tbl.Name())
	assert.Equal(t, "SELECT * FROM public.users", sess.stmt)
}

func TestRead_Errors(t *testing.T) {
	queryErr := stderrors.New(`relation "nope" does not exist`)
	sess := &fakeSession{err: queryErr}
	var dialed string
	src, collector := newSource(t, sess, &dialed)

	_, err := src.Read(context.Background(), config.PostgreSQLConfig{Host: "h"})
	assert.True(t, errors.IsConfig(err))
	assert.Empty(t, dialed, "validation happens before dialing")

	_, err = src.Read(context.Background(), config.PostgreSQLConfig{Host: "h", SQLTarget: config.SQLTarget{Table: "nope"}})
	require.Error(t, err)
	assert.True(t, errors.IsSourceRead(err))
	assert.ErrorIs(t, err, queryErr)
	assert.True(t, sess.closed)
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.ActiveConnections.WithLabelValues("postgresql")))

	dialErr := stderrors.New("connection refused")
	src.dial = func(context.Context, string) (Session, error) { return nil, dialErr }
	_, err = src.Read(context.Background(), config.PostgreSQLConfig{Host: "h", SQLTarget: config.SQLTarget{Table: "t"}})
	assert.ErrorIs(t, err, dialErr)

	src.dial = nil
	_, err = src.Read(context.Background(), config.PostgreSQLConfig{Host: "h", SQLTarget: config.SQLTarget{Table: "t"}})
	assert.True(t, errors.IsDependencyMissing(err))
	assert.Contains(t, err.Error(), "github.com/jackc/pgx/v5")
}

func TestConnString(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.PostgreSQLConfig
		want string
	}{
		{"defaults", config.PostgreSQLConfig{Host: "localhost", Database: "db"}, "postgres://localhost:5432/db"},
		{"credentials", config.PostgreSQLConfig{Host: "h", Port: 6543, Database: "db", Username: "u", Password: "p@ss"},
			"postgres://u:p%40ss@h:6543/db"},
		{"sslmode", config.PostgreSQLConfig{Host: "h", Database: "db", SSLMode: "require"}, "postgres://h:5432/db?sslmode=require"},
		{"ipv6", config.PostgreSQLConfig{Host: "::1", Database: "db"}, "postgres://[::1]:5432/db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConnString(tt.cfg))
		})
	}
}
