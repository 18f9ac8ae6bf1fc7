//go:build !nopostgres

package postgresql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ajitpratap0/dataconnector/pkg/connector/sources/sqlscan"
	"github.com/ajitpratap0/dataconnector/pkg/table"
)

const ctxCheckInterval = 1024

func init() {
	dialer = connect
}

type pgxSession struct {
	conn *pgx.Conn
}

func connect(ctx context.Context, connString string) (Session, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &pgxSession{conn: conn}, nil
}

func (p *pgxSession) Close(ctx context.Context) error {
	return p.conn.Close(ctx)
}

func (p *pgxSession) Query(ctx context.Context, name, stmt string, args []any, maxRows int) (*table.Table, error) {
	rows, err := p.conn.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	b := table.NewBuilder(name, columns)
	for rows.Next() {
		if b.Len()%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = convertValue(v)
		}
		if err := b.AppendRow(values); err != nil {
			return nil, err
		}
		if maxRows > 0 && b.Len() >= maxRows {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// convertValue maps pgx's decoded values onto table cell types. NUMERIC
// becomes float64, or its decimal text when out of float64 range. UUIDs
// become their canonical string, arrays are converted element-wise.
func convertValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case pgtype.Numeric:
		if !t.Valid {
			return nil
		}
		if f, err := t.Float64Value(); err == nil && f.Valid {
			return f.Float64
		}
		text, err := t.Value()
		if err != nil {
			return nil
		}
		return text
	case [16]byte:
		return uuid.UUID(t).String()
	case []byte:
		out := make([]byte, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = convertValue(e)
		}
		return out
	}
	return sqlscan.Normalize("", v)
}
