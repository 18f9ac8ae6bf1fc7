// Package observability provides tracing for connector loads.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ajitpratap0/dataconnector"

// Span wraps one load span.
type Span struct {
	span       trace.Span
	attributes []attribute.KeyValue
}

// StartLoadSpan starts a span named "<kind>.<operation>" using the current
// global tracer provider.
func StartLoadSpan(ctx context.Context, kind, operation string) (context.Context, *Span) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, kind+"."+operation)
	s := &Span{span: span}
	s.SetAttribute("source.kind", kind)
	s.SetAttribute("source.operation", operation)
	return ctx, s
}

// SetAttribute adds an attribute to the span. Attributes are applied on End.
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}

	s.attributes = append(s.attributes, attr)
}

// RecordShape stores the loaded table's dimensions.
func (s *Span) RecordShape(rows, columns int) {
	s.SetAttribute("table.rows", rows)
	s.SetAttribute("table.columns", columns)
}

// End sets the status from err and ends the span.
func (s *Span) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}
	s.span.End()
}
