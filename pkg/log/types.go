package log

// Logger is the structured logger used across the client packages.
type Logger interface {
	// Debug logs low-level details, such as raw RPC frames.
	// keysAndValues carries structured context (e.g., "method", name).
	Debug(msg string, keysAndValues ...any)
	// Info logs routine progress, such as a connection being established.
	Info(msg string, keysAndValues ...any)
	// Warn logs unexpected but recoverable situations.
	Warn(msg string, keysAndValues ...any)
	// Error logs failures that abort the current operation.
	Error(msg string, keysAndValues ...any)
	// Fatal logs an unrecoverable failure and may terminate the program.
	Fatal(msg string, keysAndValues ...any)
	// WithKV returns a logger that attaches key and value to every entry.
	WithKV(key string, value any) Logger
	// GetAllKV returns the key-value pairs attached with WithKV.
	GetAllKV() []any
	// WithName returns a logger scoped to a named component.
	WithName(name string) Logger
	// Name returns the component name of the logger.
	Name() string
	// AddCallerSkip returns a logger that skips extra stack frames when
	// reporting the caller; implementations without caller info return themselves.
	AddCallerSkip(skip int) Logger
}

// Level is the severity of a log entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// SpanEventRecorder records log entries onto a tracing span.
type SpanEventRecorder interface {
	TraceID() string
	SpanID() string

	// RecordEvent adds an event with key-value attributes to the span.
	RecordEvent(name string, keysAndValues ...any)
	// RecordError adds an event and marks the span as failed.
	RecordError(name string, keysAndValues ...any)
}
