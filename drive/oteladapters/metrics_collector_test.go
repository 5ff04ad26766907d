package oteladapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive/oteladapters"
)

func givenMetricsCollector(t *testing.T) (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return oteladapters.NewMetricsCollector(provider.Meter("test")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func findMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m
			}
		}
	}

	require.Failf(t, "metric not found", "metric %s was not recorded", name)

	return metricdata.Metrics{}
}

func Test_MetricsCollector_RecordDuration_UsesSecondsHistogram(t *testing.T) {
	// arrange
	collector, reader := givenMetricsCollector(t)
	labels := map[string]string{"operation": "readFile", "status": "success"}

	// act
	collector.RecordDuration("drive_operation_duration_seconds", 150*time.Millisecond, labels)
	collector.RecordDurationContext(context.Background(), "drive_operation_duration_seconds", 50*time.Millisecond, labels)

	// assert
	m := findMetric(t, collect(t, reader), "drive_operation_duration_seconds")
	assert.Equal(t, "s", m.Unit)

	histogram, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected a float64 histogram")
	require.Len(t, histogram.DataPoints, 1)

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(2), dataPoint.Count)
	assert.InDelta(t, 0.2, dataPoint.Sum, 0.001)

	expectedAttrs := attribute.NewSet(
		attribute.String("operation", "readFile"),
		attribute.String("status", "success"),
	)
	assert.True(t, dataPoint.Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounter_SumsPerLabelSet(t *testing.T) {
	// arrange
	collector, reader := givenMetricsCollector(t)
	success := map[string]string{"operation": "stat", "status": "success"}
	failure := map[string]string{"operation": "stat", "status": "error"}

	// act
	collector.IncrementCounter("drive_operations_total", success)
	collector.IncrementCounterContext(context.Background(), "drive_operations_total", success)
	collector.IncrementCounter("drive_operations_total", failure)

	// assert
	sum, ok := findMetric(t, collect(t, reader), "drive_operations_total").Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum")
	assert.True(t, sum.IsMonotonic)
	require.Len(t, sum.DataPoints, 2)

	totals := map[string]int64{}
	for _, dp := range sum.DataPoints {
		status, _ := dp.Attributes.Value("status")
		totals[status.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"success": 2, "error": 1}, totals)
}

func Test_MetricsCollector_RecordValue_KeepsTheLastValue(t *testing.T) {
	// arrange
	collector, reader := givenMetricsCollector(t)
	labels := map[string]string{"operation": "download"}

	// act
	collector.RecordValue("drive_download_bytes", 10, labels)
	collector.RecordValueContext(context.Background(), "drive_download_bytes", 42, labels)

	// assert
	gauge, ok := findMetric(t, collect(t, reader), "drive_download_bytes").Data.(metricdata.Gauge[float64])
	require.True(t, ok, "expected a float64 gauge")
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 42.0, gauge.DataPoints[0].Value, 0.0001)
}

func Test_MetricsCollector_IsSafeForConcurrentUse(t *testing.T) {
	// arrange
	collector, reader := givenMetricsCollector(t)
	done := make(chan struct{})

	// act
	for range 10 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 100 {
				collector.IncrementCounter("drive_operations_total", map[string]string{"operation": "read"})
			}
		}()
	}
	for range 10 {
		<-done
	}

	// assert
	sum, ok := findMetric(t, collect(t, reader), "drive_operations_total").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1000), sum.DataPoints[0].Value)
}
