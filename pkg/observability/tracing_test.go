package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ajitpratap0/dataconnector/pkg/config"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	prev := otel.GetTracerProvider()
	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return sr
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestStartLoadSpan_Success(t *testing.T) {
	sr := withRecorder(t)

	_, span := StartLoadSpan(context.Background(), "csv", "read")
	span.RecordShape(3, 2)
	span.SetAttribute("path", "people.csv")
	span.End(nil)

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "csv.read", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)

	attrs := attrMap(ended[0].Attributes())
	assert.Equal(t, "csv", attrs["source.kind"].AsString())
	assert.Equal(t, int64(3), attrs["table.rows"].AsInt64())
	assert.Equal(t, int64(2), attrs["table.columns"].AsInt64())
	assert.Equal(t, "people.csv", attrs["path"].AsString())
}

func TestStartLoadSpan_Error(t *testing.T) {
	sr := withRecorder(t)

	_, span := StartLoadSpan(context.Background(), "sqlite", "list_tables")
	span.End(errors.New("database is locked"))

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "database is locked", ended[0].Status().Description)
	require.NotEmpty(t, ended[0].Events())
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), "test", config.ObservabilityConfig{}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_Stdout(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	cfg := config.ObservabilityConfig{EnableTracing: true, TracingExporter: "stdout", TracingSampleRate: 1}
	shutdown, err := InitTracing(context.Background(), "test", cfg, &buf)
	require.NoError(t, err)

	_, span := StartLoadSpan(context.Background(), "json", "read")
	span.End(nil)
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "json.read")
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	cfg := config.ObservabilityConfig{EnableTracing: true, TracingExporter: "zipkin"}
	_, err := InitTracing(context.Background(), "test", cfg, nil)
	assert.Error(t, err)
}
