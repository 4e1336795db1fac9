// Package logger builds the process-wide slog logger and adds the few
// structured events the service emits repeatedly.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger embeds slog so call sites keep the standard Debug/Info/Warn/Error
// surface alongside the domain helpers below.
type Logger struct {
	*slog.Logger
}

// New picks the handler by environment: readable text at debug level during
// development, JSON at info level everywhere else.
func New(env string) *Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// HTTPRequest records one completed request.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// ChannelError records a failure talking to the contact channel gateway.
// These are transient and never abort the pipeline, but must stay visible.
func (l *Logger) ChannelError(operation, destination string, err error) {
	l.Warn("channel_error",
		slog.String("operation", operation),
		slog.String("destination", destination),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded records a request rejected by the per-IP limiter.
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
