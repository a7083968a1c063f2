package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/zatekoja/healthcapacity/internal/infrastructure/observability"
)

func TestInitLoggerWithWriter_JSON(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	var buf bytes.Buffer
	observability.InitLoggerWithWriter("healthcapacity-test", "production", &buf)

	observability.GetLogger().Info().Str("facility", "7").Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "healthcapacity-test", entry["service"])
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "7", entry["facility"])
}

func TestSetup_WithoutEndpoint(t *testing.T) {
	shutdown, err := observability.Setup(context.Background(), "svc", "1.0.0", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		observability.RecordRequestMetric(ctx, nil, "GET", "/health", 200, time.Millisecond)
		observability.RecordSourceFetch(ctx, nil, "api", time.Millisecond, errors.New("down"))
		observability.RecordCacheHit(ctx, nil, "k")
		observability.RecordCacheMiss(ctx, nil, "k")
		observability.RecordReport(ctx, nil, 2, 5)
	})
}

func TestInitMetrics_RecordsToMeterProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	metrics, err := observability.InitMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	observability.RecordReport(ctx, metrics, 3, 12)
	observability.RecordSourceFetch(ctx, metrics, "api", 20*time.Millisecond, errors.New("timeout"))
	observability.RecordCacheMiss(ctx, metrics, "snapshot")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	for _, want := range []string{
		"redirection.reports.count",
		"redirection.overloaded.facilities",
		"redirection.unallocated.patients",
		"statistics.source.fetch.duration",
		"statistics.source.fetch.errors",
		"cache.miss.count",
	} {
		assert.True(t, names[want], "missing metric %s", want)
	}
}
