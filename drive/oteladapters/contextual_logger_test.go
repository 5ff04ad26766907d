package oteladapters_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive/oteladapters"
)

// recordingLogger is an OpenTelemetry log.Logger that keeps every emitted record.
type recordingLogger struct {
	embedded.Logger

	mu      sync.Mutex
	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, record)
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

func recordAttributes(record log.Record) map[string]log.Value {
	attrs := make(map[string]log.Value)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})

	return attrs
}

func Test_SlogBridgeLogger_WithHandler_LogsAllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "drive operation started: stat", "path", "/a")
	logger.InfoContext(ctx, "drive operation: stat", "duration_ms", 1.5)
	logger.WarnContext(ctx, "slow drive operation", "operation", "stat")
	logger.ErrorContext(ctx, "drive operation failed: stat", "error", "ENOENT: stat /a")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, `"level":"INFO"`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"level":"ERROR"`)
	assert.Contains(t, output, `"path":"/a"`)
	assert.Contains(t, output, `"duration_ms":1.5`)
}

func Test_NewSlogBridgeLogger_UsesTheGlobalProvider(t *testing.T) {
	// act
	logger := oteladapters.NewSlogBridgeLogger("drive-test")

	// assert
	assert.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "drive operation: ready")
	})
}

func Test_OTelLogger_EmitsTypedAttributes(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.ErrorContext(context.Background(), "drive operation failed: readFile",
		"error", errors.New("ENOENT: readFile /missing"),
		"path", "/missing",
		"duration_ms", 0.25,
		"fd", 12,
		"cached", true,
		"dangling",
	)

	// assert
	require.Len(t, recorder.records, 1)

	record := recorder.records[0]
	assert.Equal(t, log.SeverityError, record.Severity())
	assert.Equal(t, "ERROR", record.SeverityText())
	assert.Equal(t, "drive operation failed: readFile", record.Body().AsString())

	attrs := recordAttributes(record)
	assert.Len(t, attrs, 5)
	assert.Equal(t, "ENOENT: readFile /missing", attrs["error"].AsString())
	assert.Equal(t, "/missing", attrs["path"].AsString())
	assert.InDelta(t, 0.25, attrs["duration_ms"].AsFloat64(), 0.0001)
	assert.Equal(t, int64(12), attrs["fd"].AsInt64())
	assert.True(t, attrs["cached"].AsBool())
}

func Test_OTelLogger_MapsLevelsToSeverities(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug")
	logger.InfoContext(ctx, "info")
	logger.WarnContext(ctx, "warn")
	logger.ErrorContext(ctx, "error")

	// assert
	require.Len(t, recorder.records, 4)
	assert.Equal(t, log.SeverityDebug, recorder.records[0].Severity())
	assert.Equal(t, log.SeverityInfo, recorder.records[1].Severity())
	assert.Equal(t, log.SeverityWarn, recorder.records[2].Severity())
	assert.Equal(t, log.SeverityError, recorder.records[3].Severity())
}
