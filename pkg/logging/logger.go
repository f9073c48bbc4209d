package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const requestIDKey contextKey = "requestID"

// LevelTrace is below Debug: per-line routing decisions and cache misses.
const LevelTrace = slog.LevelDebug - 4

var (
	logger *slog.Logger
	output io.Writer = os.Stderr
)

func init() {
	// Logs go to stderr so that reports on stdout stay clean
	SetLevel(slog.LevelInfo)
}

// SetOutput redirects log output. The current level and format are reset
// to compact Info output.
func SetOutput(w io.Writer) {
	output = w
	SetLevel(slog.LevelInfo)
}

// SetLevel changes the logging level
func SetLevel(level slog.Level) {
	logger = slog.New(NewCompactHandler(output, &slog.HandlerOptions{Level: level}))
}

// SetJSONOutput switches to JSON format output
func SetJSONOutput(level slog.Level) {
	logger = slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level}))
}

// LevelForVerbosity maps a -v count to a level: none is Info, -v is
// Debug, -vv and more is Trace.
func LevelForVerbosity(verbose int) slog.Level {
	switch {
	case verbose <= 0:
		return slog.LevelInfo
	case verbose == 1:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// Configure sets level and format from command line settings. format is
// "text" or "json".
func Configure(verbose int, format string) error {
	level := LevelForVerbosity(verbose)
	switch format {
	case "", "text":
		SetLevel(level)
	case "json":
		SetJSONOutput(level)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

// Logger returns the current logger, for libraries that take one.
func Logger() *slog.Logger {
	return logger
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// Helper function to add request ID to log attributes if present
func withRequestID(ctx context.Context, args []any) []any {
	requestID := GetRequestID(ctx)
	if requestID != "" {
		return append([]any{"requestID", requestID}, args...)
	}
	return args
}

// Trace logs at TRACE level (very verbose, debug-time only)
func Trace(msg string, args ...any) {
	logger.Log(context.Background(), LevelTrace, msg, args...)
}

// TraceContext logs at TRACE level with context
func TraceContext(ctx context.Context, msg string, args ...any) {
	logger.Log(ctx, LevelTrace, msg, withRequestID(ctx, args)...)
}

// Debug logs at DEBUG level (internal component behavior)
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// DebugContext logs at DEBUG level with context
func DebugContext(ctx context.Context, msg string, args ...any) {
	logger.DebugContext(ctx, msg, withRequestID(ctx, args)...)
}

// Info logs at INFO level (user-facing operations)
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// InfoContext logs at INFO level with context
func InfoContext(ctx context.Context, msg string, args ...any) {
	logger.InfoContext(ctx, msg, withRequestID(ctx, args)...)
}

// Warn logs at WARN level (should be monitored)
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// WarnContext logs at WARN level with context
func WarnContext(ctx context.Context, msg string, args ...any) {
	logger.WarnContext(ctx, msg, withRequestID(ctx, args)...)
}

// Error logs at ERROR level (logical bugs that shouldn't happen)
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// ErrorContext logs at ERROR level with context
func ErrorContext(ctx context.Context, msg string, args ...any) {
	logger.ErrorContext(ctx, msg, withRequestID(ctx, args)...)
}

// Fatal logs at ERROR level and exits (unrecoverable errors)
func Fatal(msg string, args ...any) {
	logger.Error(msg, args...)
	os.Exit(1)
}
