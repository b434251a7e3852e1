package oteladapters_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Shibashis-Mandal/Library-Management-System/eventstore/oteladapters"
)

func newCollector() (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return oteladapters.NewMetricsCollector(provider.Meter("test")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	byName := make(map[string]metricdata.Metrics)
	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			byName[m.Name] = m
		}
	}

	return byName
}

func Test_MetricsCollector_RecordDuration_InSeconds(t *testing.T) {
	collector, reader := newCollector()

	collector.RecordDuration("eventstore_query_duration_seconds", 150*time.Millisecond, map[string]string{
		"operation": "query",
		"status":    "success",
	})

	m, ok := collect(t, reader)["eventstore_query_duration_seconds"]
	require.True(t, ok)
	assert.Equal(t, "s", m.Unit)

	histogram, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.15, histogram.DataPoints[0].Sum, 0.001)

	expected := attribute.NewSet(attribute.String("operation", "query"), attribute.String("status", "success"))
	assert.True(t, histogram.DataPoints[0].Attributes.Equals(&expected))
}

func Test_MetricsCollector_IncrementCounter_AggregatesPerLabelSet(t *testing.T) {
	collector, reader := newCollector()
	ctx := context.Background()

	collector.IncrementCounterContext(ctx, "commands_total", map[string]string{"command": "issue_book", "status": "success"})
	collector.IncrementCounterContext(ctx, "commands_total", map[string]string{"command": "issue_book", "status": "success"})
	collector.IncrementCounter("commands_total", map[string]string{"command": "issue_book", "status": "rejected"})

	sum, ok := collect(t, reader)["commands_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.True(t, sum.IsMonotonic)

	totals := map[string]int64{}
	for _, dataPoint := range sum.DataPoints {
		status, _ := dataPoint.Attributes.Value("status")
		totals[status.AsString()] = dataPoint.Value
	}

	assert.Equal(t, map[string]int64{"success": 2, "rejected": 1}, totals)
}

func Test_MetricsCollector_RecordValue_KeepsLastValue(t *testing.T) {
	collector, reader := newCollector()

	collector.RecordValue("eventstore_events_queried_total", 3, nil)
	collector.RecordValueContext(context.Background(), "eventstore_events_queried_total", 7, nil)

	gauge, ok := collect(t, reader)["eventstore_events_queried_total"].Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 7.0, gauge.DataPoints[0].Value, 0.0001)
}

func Test_MetricsCollector_IsSafeForConcurrentUse(t *testing.T) {
	collector, reader := newCollector()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter("eventstore_concurrency_conflicts_total", map[string]string{"engine": "memory"})
		}()
	}
	wg.Wait()

	sum, ok := collect(t, reader)["eventstore_concurrency_conflicts_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(20), sum.DataPoints[0].Value)
}
