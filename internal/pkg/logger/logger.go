package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
)

// SlogLogger adapts log/slog to ports.Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// New creates a text logger writing to w. Debug and info records are only
// emitted when verbose is set; warnings and errors always are.
func New(w io.Writer, verbose bool) *SlogLogger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogLogger{logger: slog.New(handler)}
}

// NewStd creates a logger on stderr.
func NewStd(verbose bool) *SlogLogger {
	return New(os.Stderr, verbose)
}

// Nop discards everything.
func Nop() *SlogLogger {
	return New(io.Discard, false)
}

// With returns a logger that adds the component attribute to every record.
func (l *SlogLogger) With(component string) *SlogLogger {
	return &SlogLogger{logger: l.logger.With("component", component)}
}

func (l *SlogLogger) Debug(msg string, fields map[string]interface{}) {
	l.log(slog.LevelDebug, msg, nil, fields)
}

func (l *SlogLogger) Info(msg string, fields map[string]interface{}) {
	l.log(slog.LevelInfo, msg, nil, fields)
}

func (l *SlogLogger) Warn(msg string, fields map[string]interface{}) {
	l.log(slog.LevelWarn, msg, nil, fields)
}

func (l *SlogLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.log(slog.LevelError, msg, err, fields)
}

func (l *SlogLogger) log(level slog.Level, msg string, err error, fields map[string]interface{}) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+1)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}
