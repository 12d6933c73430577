package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/buildstock/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

// newManualMeter returns a meter whose recordings can be collected in-process
func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		ExportInterval:    30 * time.Second,
		ServiceName:       "buildstock-test",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestCounter_AddAndInc(t *testing.T) {
	reader, provider := newManualMeter(t)
	ctx := context.Background()

	counter, err := telemetry.NewCounter(provider.Meter("test"), "documents", "Documents", "{documents}")
	require.NoError(t, err)

	counter.Add(ctx, 4, telemetry.AttrDocument.String("receipt"))
	counter.Inc(ctx, telemetry.AttrDocument.String("receipt"))

	sum, ok := collect(t, reader)["documents"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(5), sum.DataPoints[0].Value)
}

func TestFloatCounter_IgnoresNegative(t *testing.T) {
	reader, provider := newManualMeter(t)
	ctx := context.Background()

	counter, err := telemetry.NewFloatCounter(provider.Meter("test"), "quantity", "Quantity", "{units}")
	require.NoError(t, err)

	counter.Add(ctx, 12.5)
	counter.Add(ctx, -3)
	counter.Add(ctx, 0.25)

	sum, ok := collect(t, reader)["quantity"].(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.InDelta(t, 12.75, sum.DataPoints[0].Value, 1e-9)
}

func TestHistogram_RecordDuration(t *testing.T) {
	reader, provider := newManualMeter(t)
	ctx := context.Background()

	h, err := telemetry.NewHistogram(provider.Meter("test"), telemetry.HistogramOpts{
		Name:       "commit_seconds",
		Unit:       "s",
		Boundaries: telemetry.CommitDurationBuckets,
	})
	require.NoError(t, err)

	h.RecordDuration(ctx, 20*time.Millisecond, telemetry.AttrOutcome.String("committed"))
	h.Record(ctx, 0.3, telemetry.AttrOutcome.String("committed"))

	hist, ok := collect(t, reader)["commit_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	dp := hist.DataPoints[0]
	assert.Equal(t, uint64(2), dp.Count)
	assert.Equal(t, telemetry.CommitDurationBuckets, dp.Bounds)
	assert.InDelta(t, 0.32, dp.Sum, 1e-9)
}

func TestHistogram_WithoutBoundaries(t *testing.T) {
	_, provider := newManualMeter(t)

	h, err := telemetry.NewHistogram(provider.Meter("test"), telemetry.HistogramOpts{Name: "plain"})
	require.NoError(t, err)
	h.Record(context.Background(), 1)
}

func TestGauge_KeepsLastValue(t *testing.T) {
	reader, provider := newManualMeter(t)
	ctx := context.Background()

	g, err := telemetry.NewGauge(provider.Meter("test"), "low_stock", "Low stock", "{materials}")
	require.NoError(t, err)

	g.Record(ctx, 4)
	g.Record(ctx, 2)

	gauge, ok := collect(t, reader)["low_stock"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(2), gauge.DataPoints[0].Value)
}

func TestCommonAttributes(t *testing.T) {
	assert.Equal(t, attribute.Key("http.method"), telemetry.AttrHTTPMethod)
	assert.Equal(t, attribute.Key("http.status_code"), telemetry.AttrHTTPStatusCode)
	assert.Equal(t, attribute.Key("http.route"), telemetry.AttrHTTPRoute)
	assert.Equal(t, attribute.Key("outcome"), telemetry.AttrOutcome)
	assert.Equal(t, attribute.Key("error_category"), telemetry.AttrCategory)
	assert.Equal(t, attribute.Key("document_type"), telemetry.AttrDocument)
}
