package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestL_ContextLogger(t *testing.T) {
	assert.NotNil(t, L(context.Background(), nil))

	base := zap.NewExample()
	assert.Same(t, base, L(context.Background(), base))

	l := zap.NewExample()
	assert.Same(t, l, L(WithContext(context.Background(), l), base))
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, l := WithRequestID(context.Background(), zap.New(core), "req-42")
	assert.Equal(t, "req-42", GetRequestID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))

	L(ctx, nil).Info("Issue committed")
	l.Info("again")

	require.Equal(t, 2, recorded.Len())
	for _, entry := range recorded.All() {
		assert.Equal(t, "req-42", entry.ContextMap()["request_id"])
	}
}

func TestWithTraceContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithTraceContext(context.Background(), base).Info("no span")
	WithTraceContext(spanContext(t), base).Info("with span")

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "trace_id")
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entries[1].ContextMap()["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entries[1].ContextMap()["span_id"])
}

func TestL(t *testing.T) {
	t.Run("prefers context logger", func(t *testing.T) {
		ctxCore, ctxRecorded := observer.New(zapcore.InfoLevel)
		baseCore, baseRecorded := observer.New(zapcore.InfoLevel)

		ctx := WithContext(spanContext(t), zap.New(ctxCore))
		L(ctx, zap.New(baseCore)).Info("Preview built")

		assert.Equal(t, 0, baseRecorded.Len())
		require.Equal(t, 1, ctxRecorded.Len())
		assert.Contains(t, ctxRecorded.All()[0].ContextMap(), "trace_id")
	})

	t.Run("falls back to base", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		L(context.Background(), zap.New(core)).Info("Preview built")
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("nil base", func(t *testing.T) {
		assert.NotPanics(t, func() { L(context.Background(), nil).Info("dropped") })
	})
}
