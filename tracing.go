package snapshot

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/goliatone/go-snapshot"

// Span names.
const (
	spanHydrate = "snapshot.hydrate"
	spanMigrate = "snapshot.migrate"
	spanStage   = "snapshot.stage."
)

func newTracer(provider trace.TracerProvider) trace.Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return provider.Tracer(instrumentationName)
}

func endSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func traceIDFrom(ctx context.Context) string {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

func entityAttrs(count, skipped int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.Int("snapshot.count", count)}
	if skipped > 0 {
		attrs = append(attrs, attribute.Int("snapshot.skipped", skipped))
	}
	return attrs
}
