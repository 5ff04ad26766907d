package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

type spanKey struct{}

// SpySpanRecord represents a span started through TracingCollectorSpy.
type SpySpanRecord struct {
	Name        string
	StartAttrs  map[string]string
	Attributes  map[string]string
	Status      string
	FinishAttrs map[string]string
	Finished    bool
}

// SpySpanContext is the SpanContext handed out by TracingCollectorSpy.
type SpySpanContext struct {
	spy   *TracingCollectorSpy
	index int
}

func (c *SpySpanContext) SetStatus(status string) {
	c.spy.update(c.index, func(r *SpySpanRecord) {
		r.Status = status
	})
}

func (c *SpySpanContext) AddAttribute(key, value string) {
	c.spy.update(c.index, func(r *SpySpanRecord) {
		r.Attributes[key] = value
	})
}

// TracingCollectorSpy is a TracingCollector implementation that captures spans for testing.
// The context returned by StartSpan carries the span, see SpanFromContext.
type TracingCollectorSpy struct {
	mu          sync.Mutex
	spans       []SpySpanRecord
	recordCalls bool
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy instance.
func NewTracingCollectorSpy(recordCalls bool) *TracingCollectorSpy {
	return &TracingCollectorSpy{recordCalls: recordCalls}
}

func (s *TracingCollectorSpy) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, drive.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recordCalls {
		return ctx, &SpySpanContext{spy: s, index: -1}
	}

	s.spans = append(s.spans, SpySpanRecord{
		Name:       name,
		StartAttrs: maps.Clone(attrs),
		Attributes: make(map[string]string),
	})

	spanCtx := &SpySpanContext{spy: s, index: len(s.spans) - 1}

	return context.WithValue(ctx, spanKey{}, spanCtx), spanCtx
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx drive.SpanContext, status string, attrs map[string]string) {
	spySpan, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	s.update(spySpan.index, func(r *SpySpanRecord) {
		r.Status = status
		r.FinishAttrs = maps.Clone(attrs)
		r.Finished = true
	})
}

func (s *TracingCollectorSpy) update(index int, fn func(r *SpySpanRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.spans) {
		return
	}

	fn(&s.spans[index])
}

// GetSpans returns a copy of all recorded spans in start order.
func (s *TracingCollectorSpy) GetSpans() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpySpanRecord(nil), s.spans...)
}

// GetSpansByName returns a copy of all recorded spans with the given name.
func (s *TracingCollectorSpy) GetSpansByName(name string) []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matching []SpySpanRecord
	for _, span := range s.spans {
		if span.Name == name {
			matching = append(matching, span)
		}
	}

	return matching
}

// Reset clears all recorded spans.
func (s *TracingCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spans = s.spans[:0]
}

// SpanFromContext returns the spy span stored in ctx by StartSpan.
func SpanFromContext(ctx context.Context) (*SpySpanContext, bool) {
	if ctx == nil {
		return nil, false
	}

	span, ok := ctx.Value(spanKey{}).(*SpySpanContext)

	return span, ok
}

var _ drive.TracingCollector = (*TracingCollectorSpy)(nil)
