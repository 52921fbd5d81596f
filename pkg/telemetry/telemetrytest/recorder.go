// Package telemetrytest records spans in memory for tests.
package telemetrytest

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// Record installs a global tracer provider backed by a span recorder for the
// duration of the test. Tests using it must not run in parallel.
func Record(t testing.TB) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)

	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		otel.SetTracerProvider(previous)
	})
	return recorder
}

// Span returns the first ended span called name.
func Span(recorder *tracetest.SpanRecorder, name string) (sdktrace.ReadOnlySpan, bool) {
	for _, span := range recorder.Ended() {
		if span.Name() == name {
			return span, true
		}
	}
	return nil, false
}

// Names returns the names of ended spans in the order they ended.
func Names(recorder *tracetest.SpanRecorder) []string {
	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	return names
}

// Attributes flattens the attributes of span into a map.
func Attributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value, len(span.Attributes()))
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}
