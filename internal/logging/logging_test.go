package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger(level zap.AtomicLevel) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &Logger{Logger: zap.New(core)}, logs
}

func TestLogWithContextAddsTraceInfo(t *testing.T) {
	tp := trace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	logger, logs := observedLogger(zap.NewAtomicLevelAt(zap.InfoLevel))

	ctx, span := tp.Tracer("test-tracer").Start(context.Background(), "test-span")
	defer span.End()

	logger.Info(ctx, "test message")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "test message", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestLogWithContextNoSpan(t *testing.T) {
	logger, logs := observedLogger(zap.NewAtomicLevelAt(zap.InfoLevel))

	logger.Warn(context.Background(), "no span here", Fields{"screen": "list"})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.NotContains(t, fields, "trace_id")
	assert.Equal(t, "list", fields["screen"])
}

func TestErrorAddsErrorField(t *testing.T) {
	logger, logs := observedLogger(zap.NewAtomicLevelAt(zap.InfoLevel))

	ctx := WithRequestID(context.Background(), "req-1")
	logger.Error(ctx, "fetch failed", errors.New("boom"), Fields{"op": "list complaints"}, Fields{"attempt": 1})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "list complaints", fields["op"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.EqualValues(t, 1, fields["attempt"])
}

func TestLevelFiltering(t *testing.T) {
	logger, logs := observedLogger(zap.NewAtomicLevelAt(zap.WarnLevel))

	logger.Debug(context.Background(), "debug")
	logger.Info(context.Background(), "info")
	logger.Warn(context.Background(), "warn")

	assert.Equal(t, 1, logs.Len())
}

func TestNewFallsBackToInfo(t *testing.T) {
	logger := New("not-a-level", "production")
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}
