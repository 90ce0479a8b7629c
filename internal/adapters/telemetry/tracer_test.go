package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/swcache/internal/adapters/telemetry"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
)

func setupTracer(t *testing.T) (*telemetry.OTelTracer, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return telemetry.NewWithProvider(tp), sr
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestOTelTracer_StartWithAttributes(t *testing.T) {
	tracer, sr := setupTracer(t)

	_, span := tracer.Start(t.Context(), "resolve", ports.WithAttributes(map[string]any{
		"swcache.strategy": domain.StrategyCacheFirst,
		"http.method":      "GET",
	}))
	span.SetAttribute("swcache.source", string(domain.SourceCache))
	span.SetAttribute("http.status", 200)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "resolve", ended[0].Name())

	got := attrs(ended[0])
	assert.Equal(t, "cache-first", got["swcache.strategy"].AsString())
	assert.Equal(t, "GET", got["http.method"].AsString())
	assert.Equal(t, "cache", got["swcache.source"].AsString())
	assert.Equal(t, int64(200), got["http.status"].AsInt64())
}

func TestOTelSpan_RecordError(t *testing.T) {
	tracer, sr := setupTracer(t)

	_, span := tracer.Start(t.Context(), "resolve")
	span.RecordError(errors.New("offline"))
	span.RecordError(nil)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "offline", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
}

func TestNoop(t *testing.T) {
	ctx, span := telemetry.NewNoop().Start(t.Context(), "resolve")
	assert.NotNil(t, ctx)
	assert.NotPanics(t, func() {
		span.SetAttribute("k", "v")
		span.RecordError(errors.New("x"))
		span.End()
	})
}
