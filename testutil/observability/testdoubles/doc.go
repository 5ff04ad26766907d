// Package testdoubles provides test doubles (spies) for the drive observability interfaces.
//
// This package contains spy implementations used by the instrumented drive tests:
//   - LoggerSpy: captures plain structured logging calls
//   - ContextualLoggerSpy: captures structured logging with context
//   - MetricsCollectorSpy: captures metrics recording calls, with and without context
//   - TracingCollectorSpy: captures spans, their attributes and final status
//
// These test doubles enable testing of observability instrumentation
// without requiring actual telemetry backends.
package testdoubles
