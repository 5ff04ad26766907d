package observable

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

const (
	spanNamePrefix          = "drive."
	metricOperationDuration = "drive_operation_duration_seconds"
	metricOperations        = "drive_operations_total"
	metricOperationErrors   = "drive_operation_errors_total"
	logMsgOperationStarted  = "drive operation started: "
	logMsgOperation         = "drive operation: "
	logMsgOperationFailed   = "drive operation failed: "
	logAttrOperationID      = "operation_id"
	logAttrPath             = "path"
	logAttrDurationMS       = "duration_ms"
	logAttrError            = "error"
	spanAttrOperation       = "operation"
	spanAttrOperationID     = "operation_id"
	spanAttrPath            = "path"
	spanAttrDurationMS      = "duration_ms"
	spanAttrErrorType       = "error_type"
	labelStatus             = "status"
	statusSuccess           = "success"
	statusError             = "error"
)

const (
	errorTypeNotFound      = "not_found"
	errorTypeExists        = "exists"
	errorTypeBadDescriptor = "bad_descriptor"
	errorTypeNotDirectory  = "not_directory"
	errorTypeNotEmpty      = "not_empty"
	errorTypeNotWritable   = "not_writable"
	errorTypeClosed        = "closed"
	errorTypeCancelled     = "cancelled"
	errorTypeOther         = "drive_error"
)

// classifyError maps err to a low-cardinality label value.
func classifyError(err error) string {
	switch {
	case errors.Is(err, drive.ErrNotFound):
		return errorTypeNotFound
	case errors.Is(err, drive.ErrExists):
		return errorTypeExists
	case errors.Is(err, drive.ErrBadDescriptor):
		return errorTypeBadDescriptor
	case errors.Is(err, drive.ErrNotDirectory):
		return errorTypeNotDirectory
	case errors.Is(err, drive.ErrNotEmpty):
		return errorTypeNotEmpty
	case errors.Is(err, drive.ErrNotWritable):
		return errorTypeNotWritable
	case errors.Is(err, drive.ErrClosed):
		return errorTypeClosed
	case errors.Is(err, drive.ErrDownloadCancelled):
		return errorTypeCancelled
	default:
		return errorTypeOther
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// === Operation Observer Pattern ===
// An observer covers one call from the raw invocation until its completion callback runs.

type operationObserver struct {
	d         *Drive
	ctx       context.Context
	span      drive.SpanContext
	operation string
	id        string
	path      string
	start     time.Time
}

// observe starts the span and logs the start of operation on path.
func (d *Drive) observe(operation, path string) *operationObserver {
	o := &operationObserver{
		d:         d,
		ctx:       d.baseCtx,
		operation: operation,
		id:        uuid.NewString(),
		path:      path,
		start:     time.Now(),
	}

	if d.tracingCollector != nil {
		attrs := map[string]string{
			spanAttrOperation:   operation,
			spanAttrOperationID: o.id,
		}
		if path != "" {
			attrs[spanAttrPath] = path
		}

		o.ctx, o.span = d.tracingCollector.StartSpan(d.baseCtx, spanNamePrefix+operation, attrs)
	}

	o.logDebug(logMsgOperationStarted+operation, logAttrOperationID, o.id, logAttrPath, path)

	return o
}

// finish records the outcome of the operation. It is called from the completion callback.
func (o *operationObserver) finish(err error) {
	duration := time.Since(o.start)

	if err != nil {
		o.recordMetrics(statusError, duration, classifyError(err))
		o.logError(logMsgOperationFailed+o.operation, err,
			logAttrOperationID, o.id, logAttrPath, o.path, logAttrDurationMS, toMilliseconds(duration))
		o.finishSpan(statusError, duration, map[string]string{spanAttrErrorType: classifyError(err)})

		return
	}

	o.recordMetrics(statusSuccess, duration, "")
	o.logInfo(logMsgOperation+o.operation,
		logAttrOperationID, o.id, logAttrPath, o.path, logAttrDurationMS, toMilliseconds(duration))
	o.finishSpan(statusSuccess, duration, nil)
}

func (o *operationObserver) finishSpan(status string, duration time.Duration, attrs map[string]string) {
	if o.span == nil {
		return
	}

	o.span.SetStatus(status)
	o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))
	for key, value := range attrs {
		o.span.AddAttribute(key, value)
	}

	o.d.tracingCollector.FinishSpan(o.span, status, attrs)
}

func (o *operationObserver) recordMetrics(status string, duration time.Duration, errorType string) {
	collector := o.d.metricsCollector
	if collector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       status,
	}

	// Use context-aware methods if available
	if contextual, ok := collector.(drive.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(o.ctx, metricOperationDuration, duration, labels)
		contextual.IncrementCounterContext(o.ctx, metricOperations, labels)
	} else {
		collector.RecordDuration(metricOperationDuration, duration, labels)
		collector.IncrementCounter(metricOperations, labels)
	}

	if status != statusError {
		return
	}

	errorLabels := map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       status,
		spanAttrErrorType: errorType,
	}

	if contextual, ok := collector.(drive.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(o.ctx, metricOperationErrors, errorLabels)
	} else {
		collector.IncrementCounter(metricOperationErrors, errorLabels)
	}
}

// === Logging ===
// Both loggers are optional; when both are set, both receive every record.

func (o *operationObserver) logDebug(msg string, args ...any) {
	if o.d.logger != nil {
		o.d.logger.Debug(msg, args...)
	}

	if o.d.contextualLogger != nil {
		o.d.contextualLogger.DebugContext(o.ctx, msg, args...)
	}
}

func (o *operationObserver) logInfo(msg string, args ...any) {
	if o.d.logger != nil {
		o.d.logger.Info(msg, args...)
	}

	if o.d.contextualLogger != nil {
		o.d.contextualLogger.InfoContext(o.ctx, msg, args...)
	}
}

func (o *operationObserver) logError(msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if o.d.logger != nil {
		o.d.logger.Error(msg, allArgs...)
	}

	if o.d.contextualLogger != nil {
		o.d.contextualLogger.ErrorContext(o.ctx, msg, allArgs...)
	}
}
