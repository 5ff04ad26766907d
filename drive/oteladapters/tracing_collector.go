package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

// TracingCollector implements drive.TracingCollector using the OpenTelemetry tracing API.
// The context returned by StartSpan carries the span, so contextual log records and
// metrics recorded with it are correlated with the operation.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a collector starting spans with tracer.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, drive.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attributes(attrs)...))

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan sets the final attributes and status and ends the span.
// Spans that were not started by a TracingCollector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx drive.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(attributes(attrs)...)
	otelSpanCtx.SetStatus(status)
	otelSpanCtx.span.End()
}

var _ drive.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext implements drive.SpanContext by wrapping an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

type spanStatus struct {
	code        codes.Code
	description string
}

var spanStatuses = map[string]spanStatus{
	"ok":        {codes.Ok, ""},
	"success":   {codes.Ok, ""},
	"error":     {codes.Error, "Drive operation failed"},
	"failed":    {codes.Error, "Drive operation failed"},
	"cancelled": {codes.Error, "Drive operation cancelled"},
	"canceled":  {codes.Error, "Drive operation cancelled"},
	"timeout":   {codes.Error, "Drive operation timed out"},
}

// SetStatus maps status to an OpenTelemetry status code.
// Unknown status strings are recorded as a status attribute instead.
func (s *OTelSpanContext) SetStatus(status string) {
	mapped, ok := spanStatuses[status]
	if !ok {
		s.span.SetAttributes(attribute.String("status", status))
		return
	}

	s.span.SetStatus(mapped.code, mapped.description)
}

func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ drive.SpanContext = (*OTelSpanContext)(nil)
