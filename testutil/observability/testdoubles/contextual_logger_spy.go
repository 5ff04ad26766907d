package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

// Log levels recorded by the logger spies.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// SpyLogRecord represents a recorded log call. Records of a plain Logger carry context.Background().
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// Attr returns the value following key in Args and whether key was present.
func (r SpyLogRecord) Attr(key string) (any, bool) {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if r.Args[i] == key {
			return r.Args[i+1], true
		}
	}

	return nil, false
}

// logRecorder is the shared storage of LoggerSpy and ContextualLoggerSpy.
type logRecorder struct {
	mu          sync.Mutex
	records     []SpyLogRecord
	recordCalls bool
}

func (r *logRecorder) record(ctx context.Context, level, msg string, args []any) {
	if !r.recordCalls {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, SpyLogRecord{
		Level:   level,
		Message: msg,
		Args:    args,
		Context: ctx,
	})
}

// Reset clears all recorded log calls.
func (r *logRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = r.records[:0]
}

// GetRecords returns a copy of all log records of the given level.
func (r *logRecorder) GetRecords(level string) []SpyLogRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matching []SpyLogRecord
	for _, record := range r.records {
		if record.Level == level {
			matching = append(matching, record)
		}
	}

	return matching
}

// GetTotalRecordCount returns the total number of log records across all levels.
func (r *logRecorder) GetTotalRecordCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.records)
}

// HasLog checks if a log with the specified level and message exists.
func (r *logRecorder) HasLog(level, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range r.records {
		if record.Level == level && record.Message == message {
			return true
		}
	}

	return false
}

// ContextualLoggerSpy is a ContextualLogger implementation that captures contextual logging calls for testing.
// It implements the same interface as OpenTelemetry loggers, so the contexts it records carry the
// span context of the instrumented operation.
type ContextualLoggerSpy struct {
	logRecorder
}

// NewContextualLoggerSpy creates a new ContextualLoggerSpy instance.
func NewContextualLoggerSpy(recordCalls bool) *ContextualLoggerSpy {
	return &ContextualLoggerSpy{logRecorder{recordCalls: recordCalls}}
}

func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelDebug, msg, args)
}

func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelInfo, msg, args)
}

func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelWarn, msg, args)
}

func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelError, msg, args)
}

// LoggerSpy is a Logger implementation that captures logging calls for testing.
type LoggerSpy struct {
	logRecorder
}

// NewLoggerSpy creates a new LoggerSpy instance.
func NewLoggerSpy(recordCalls bool) *LoggerSpy {
	return &LoggerSpy{logRecorder{recordCalls: recordCalls}}
}

func (s *LoggerSpy) Debug(msg string, args ...any) {
	s.record(context.Background(), LevelDebug, msg, args)
}

func (s *LoggerSpy) Info(msg string, args ...any) {
	s.record(context.Background(), LevelInfo, msg, args)
}

func (s *LoggerSpy) Warn(msg string, args ...any) {
	s.record(context.Background(), LevelWarn, msg, args)
}

func (s *LoggerSpy) Error(msg string, args ...any) {
	s.record(context.Background(), LevelError, msg, args)
}

var (
	_ drive.ContextualLogger = (*ContextualLoggerSpy)(nil)
	_ drive.Logger           = (*LoggerSpy)(nil)
)
