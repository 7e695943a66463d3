package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger is an alias for slog.Logger
type Logger = slog.Logger

var (
	defaultLogger *Logger
	level         = new(slog.LevelVar)
)

// Convenience variables to match slog's API
var (
	String = slog.String
	Int    = slog.Int
	Bool   = slog.Bool
	Any    = slog.Any
)

// Package-level logging functions
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Err(err error) slog.Attr {
	return slog.Attr{Key: "error", Value: slog.AnyValue(err)}
}

func FilePath(path string) slog.Attr {
	return slog.Attr{Key: "file_path", Value: slog.AnyValue(path)}
}

func Module(name string) slog.Attr {
	return slog.Attr{Key: "module", Value: slog.AnyValue(name)}
}

// PrefixHandler is a simple wrapper around slog.Handler that adds a prefix to all messages.
// Without an explicit handler it forwards to the current default logger, so loggers
// created before SetOutput or SetLogger follow the change.
type PrefixHandler struct {
	prefix  string
	handler slog.Handler
	// applied in order on top of the resolved handler
	wrap []func(slog.Handler) slog.Handler
}

func init() {
	level.Set(slog.LevelInfo)
	SetOutput(os.Stderr)
}

// SetOutput replaces the default logger with a text logger writing to w.
func SetOutput(w io.Writer) {
	defaultLogger = slog.New(&PrefixHandler{
		handler: slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	})
}

// SetDebug toggles debug output for every logger created by this package.
func SetDebug(debug bool) {
	if debug {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelInfo)
}

// WithPrefix returns a new logger with the specified prefix
func WithPrefix(prefix string) *Logger {
	return slog.New(&PrefixHandler{prefix: prefix})
}

func SetLogger(l *Logger) {
	defaultLogger = l
}

func (h *PrefixHandler) resolve() slog.Handler {
	base := h.handler
	if base == nil {
		base = defaultLogger.Handler()
	}
	for _, w := range h.wrap {
		base = w(base)
	}
	return base
}

func (h *PrefixHandler) with(w func(slog.Handler) slog.Handler) *PrefixHandler {
	wrap := make([]func(slog.Handler) slog.Handler, 0, len(h.wrap)+1)
	wrap = append(append(wrap, h.wrap...), w)
	return &PrefixHandler{
		prefix:  h.prefix,
		handler: h.handler,
		wrap:    wrap,
	}
}

// Handle implements slog.Handler interface
func (h *PrefixHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.prefix != "" {
		r.Message = fmt.Sprintf("[%s] %s", h.prefix, r.Message)
	}
	return h.resolve().Handle(ctx, r)
}

// WithAttrs implements slog.Handler interface
func (h *PrefixHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler {
		return next.WithAttrs(attrs)
	})
}

// WithGroup implements slog.Handler interface
func (h *PrefixHandler) WithGroup(name string) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler {
		return next.WithGroup(name)
	})
}

// Enabled implements slog.Handler interface
func (h *PrefixHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.resolve().Enabled(ctx, level)
}
