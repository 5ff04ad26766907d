package testdoubles

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

// Kinds of metric calls recorded by MetricsCollectorSpy.
const (
	MetricKindDuration = "duration"
	MetricKindCounter  = "counter"
	MetricKindValue    = "value"
)

// SpyMetricRecord represents a recorded metrics call.
type SpyMetricRecord struct {
	Kind     string
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
	Context  context.Context
}

// MetricsCollectorSpy is a ContextualMetricsCollector implementation that captures metrics calls for testing.
// Calls through the context-free methods are recorded with a nil Context.
type MetricsCollectorSpy struct {
	mu          sync.Mutex
	records     []SpyMetricRecord
	recordCalls bool
}

// NewMetricsCollectorSpy creates a new MetricsCollectorSpy instance.
func NewMetricsCollectorSpy(recordCalls bool) *MetricsCollectorSpy {
	return &MetricsCollectorSpy{recordCalls: recordCalls}
}

func (s *MetricsCollectorSpy) add(record SpyMetricRecord) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record.Labels = maps.Clone(record.Labels)
	s.records = append(s.records, record)
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: MetricKindDuration, Metric: metric, Duration: duration, Labels: labels})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: MetricKindCounter, Metric: metric, Value: 1, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: MetricKindValue, Metric: metric, Value: value, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordDurationContext(
	ctx context.Context,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {
	s.add(SpyMetricRecord{Kind: MetricKindDuration, Metric: metric, Duration: duration, Labels: labels, Context: ctx})
}

func (s *MetricsCollectorSpy) IncrementCounterContext(ctx context.Context, metric string, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: MetricKindCounter, Metric: metric, Value: 1, Labels: labels, Context: ctx})
}

func (s *MetricsCollectorSpy) RecordValueContext(
	ctx context.Context,
	metric string,
	value float64,
	labels map[string]string,
) {
	s.add(SpyMetricRecord{Kind: MetricKindValue, Metric: metric, Value: value, Labels: labels, Context: ctx})
}

// GetRecords returns a copy of all records for metric.
func (s *MetricsCollectorSpy) GetRecords(metric string) []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matching []SpyMetricRecord
	for _, record := range s.records {
		if record.Metric == metric {
			matching = append(matching, record)
		}
	}

	return matching
}

// GetTotalRecordCount returns the number of metrics calls recorded.
func (s *MetricsCollectorSpy) GetTotalRecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// Reset clears all recorded metrics calls.
func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

// PlainMetricsCollector hides the context-aware methods of a MetricsCollectorSpy,
// so instrumented code takes its fallback path.
type PlainMetricsCollector struct {
	spy *MetricsCollectorSpy
}

// NewPlainMetricsCollector wraps spy as a context-free MetricsCollector.
func NewPlainMetricsCollector(spy *MetricsCollectorSpy) *PlainMetricsCollector {
	return &PlainMetricsCollector{spy: spy}
}

func (p *PlainMetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	p.spy.RecordDuration(metric, duration, labels)
}

func (p *PlainMetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	p.spy.IncrementCounter(metric, labels)
}

func (p *PlainMetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	p.spy.RecordValue(metric, value, labels)
}

var (
	_ drive.ContextualMetricsCollector = (*MetricsCollectorSpy)(nil)
	_ drive.MetricsCollector           = (*PlainMetricsCollector)(nil)
)
