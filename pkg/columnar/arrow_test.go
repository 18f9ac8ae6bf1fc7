package columnar

import (
	"bytes"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/dataconnector/pkg/table"
)

func sample(t *testing.T) *table.Table {
	t.Helper()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tbl, err := table.FromRows("orders",
		[]string{"id", "amount", "paid", "placed_at", "note", "blob", "empty"},
		[][]any{
			{int64(1), 9.5, true, ts, "first", []byte{1}, nil},
			{int64(2), int64(3), nil, ts.Add(time.Hour), nil, []byte{2, 3}, nil},
			{nil, nil, false, nil, "third", nil, nil},
		})
	require.NoError(t, err)
	return tbl
}

func TestSchema(t *testing.T) {
	s := Schema(sample(t))

	want := []arrow.DataType{
		arrow.PrimitiveTypes.Int64,
		arrow.PrimitiveTypes.Float64,
		arrow.FixedWidthTypes.Boolean,
		arrow.FixedWidthTypes.Timestamp_us,
		arrow.BinaryTypes.String,
		arrow.BinaryTypes.Binary,
		arrow.BinaryTypes.String,
	}
	require.Equal(t, len(want), s.NumFields())
	for i, dt := range want {
		assert.True(t, arrow.TypeEqual(dt, s.Field(i).Type), "field %s", s.Field(i).Name)
		assert.True(t, s.Field(i).Nullable)
	}
}

func TestToArrowRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	in := sample(t)
	rec, err := ToArrow(in, mem)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.NumRows())
	assert.Equal(t, int64(7), rec.NumCols())

	out, err := FromArrow("orders", rec)
	rec.Release()
	require.NoError(t, err)

	assert.Equal(t, in.Columns(), out.Columns())
	assert.Equal(t, []any{int64(1), 9.5, true, in.Value(0, 3), "first", []byte{1}, nil}, out.Row(0))
	assert.Equal(t, 3.0, out.Value(1, 1), "mixed numeric column widens to float")
	assert.Nil(t, out.Value(2, 0))
}

func TestToArrow_NestedAsJSON(t *testing.T) {
	tbl, err := table.FromRows("n", []string{"meta"}, [][]any{{map[string]any{"k": "v"}}, {[]any{int64(1), "x"}}})
	require.NoError(t, err)

	rec, err := ToArrow(tbl, nil)
	require.NoError(t, err)
	defer rec.Release()

	out, err := FromArrow("n", rec)
	require.NoError(t, err)
	assert.Equal(t, `{"k":"v"}`, out.Value(0, 0))
	assert.Equal(t, `[1,"x"]`, out.Value(1, 0))
}

func TestIPCRoundTrip(t *testing.T) {
	in := sample(t)

	var buf bytes.Buffer
	require.NoError(t, WriteIPC(&buf, in))

	out, err := ReadIPC(bytes.NewReader(buf.Bytes()), "orders")
	require.NoError(t, err)
	assert.Equal(t, in.Columns(), out.Columns())
	assert.Equal(t, in.Row(0), out.Row(0))
	assert.Equal(t, in.Row(2), out.Row(2))
	assert.Equal(t, 3.0, out.Value(1, 1))
}

func TestIPC_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIPC(&buf, table.NewBuilder("e", []string{"a", "b"}).Build()))

	out, err := ReadIPC(bytes.NewReader(buf.Bytes()), "e")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Columns())
	assert.Equal(t, 0, out.RowCount())
}
