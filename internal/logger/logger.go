// Package logger builds the leveled application logger and carries it through contexts.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type contextKey string

const loggerKey contextKey = "logger"

// New returns a timestamped logger writing to w at the named level.
// Unknown levels fall back to info.
func New(level string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           ParseLevel(level),
	})
	return l
}

// ParseLevel maps debug|info|warn|error to a log level, defaulting to info
func ParseLevel(level string) log.Level {
	l, err := ParseLevelStrict(level)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// ParseLevelStrict is ParseLevel that rejects unknown names. Empty means info.
func ParseLevelStrict(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q (must be debug, info, warn or error)", level)
	}
}

// Discard returns a logger that drops everything; used by tests and library callers
// that do not care about diagnostics.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// WithContext embeds l into ctx
func WithContext(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or the package default logger
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok && l != nil {
		return l
	}
	return log.Default()
}
