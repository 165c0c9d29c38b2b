package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// NewLoggerWithWriter returns a JSON slog logger configured for Cloud Logging compatibility.
func NewLoggerWithWriter(service string, w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true, Level: level})
	return slog.New(handler).With(slog.String("service", service))
}

// ParseLevel maps LOG_LEVEL style strings to slog levels, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID attaches a request identifier to the logger context.
func WithRequestID(ctx context.Context, logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With(slog.String("requestId", requestID))
}
