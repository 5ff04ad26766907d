package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive/oteladapters"
)

func givenTracingCollector(t *testing.T) (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(trace.WithSyncer(exporter))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return oteladapters.NewTracingCollector(provider.Tracer("test")), exporter
}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expected string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			assert.Equal(t, expected, attr.Value.AsString(), "attribute %s", key)
			return
		}
	}

	assert.Failf(t, "attribute missing", "span %s has no attribute %s", span.Name, key)
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// arrange
	collector, exporter := givenTracingCollector(t)

	// act
	ctx, spanCtx := collector.StartSpan(context.Background(), "drive.readFile", map[string]string{
		"operation": "readFile",
		"path":      "/hello.txt",
	})
	spanCtx.AddAttribute("duration_ms", "1.50")
	collector.FinishSpan(spanCtx, "success", map[string]string{"bytes": "5"})

	// assert
	assert.True(t, oteltrace.SpanContextFromContext(ctx).IsValid(), "context should carry the span")

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "drive.readFile", span.Name)
	assertSpanHasAttribute(t, span, "operation", "readFile")
	assertSpanHasAttribute(t, span, "path", "/hello.txt")
	assertSpanHasAttribute(t, span, "duration_ms", "1.50")
	assertSpanHasAttribute(t, span, "bytes", "5")
	assert.Equal(t, codes.Ok, span.Status.Code)
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status       string
		expectCode   codes.Code
		expectAttr   bool
		expectDetail string
	}{
		{status: "ok", expectCode: codes.Ok},
		{status: "success", expectCode: codes.Ok},
		{status: "error", expectCode: codes.Error, expectDetail: "Drive operation failed"},
		{status: "cancelled", expectCode: codes.Error, expectDetail: "Drive operation cancelled"},
		{status: "timeout", expectCode: codes.Error, expectDetail: "Drive operation timed out"},
		{status: "partial", expectCode: codes.Unset, expectAttr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			collector, exporter := givenTracingCollector(t)
			_, spanCtx := collector.StartSpan(context.Background(), "drive.download", nil)

			// act
			collector.FinishSpan(spanCtx, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectCode, spans[0].Status.Code)
			assert.Equal(t, tc.expectDetail, spans[0].Status.Description)

			if tc.expectAttr {
				assertSpanHasAttribute(t, spans[0], "status", tc.status)
			}
		})
	}
}

func Test_TracingCollector_NestsSpansUnderTheParentContext(t *testing.T) {
	// arrange
	collector, exporter := givenTracingCollector(t)
	parentCtx, parent := collector.StartSpan(context.Background(), "request", nil)

	// act
	_, child := collector.StartSpan(parentCtx, "drive.stat", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
}

type foreignSpan struct{}

func (foreignSpan) SetStatus(string)            {}
func (foreignSpan) AddAttribute(string, string) {}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpans(t *testing.T) {
	// arrange
	collector, exporter := givenTracingCollector(t)

	// act
	collector.FinishSpan(foreignSpan{}, "success", nil)

	// assert
	assert.Empty(t, exporter.GetSpans())
}
