// Package logger builds slog loggers with the levels and formats the
// service uses everywhere else.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
)

// ColorHandler wraps a text handler and colors warnings yellow and errors
// red when writing to a terminal-like writer.
type ColorHandler struct {
	inner slog.Handler
	w     io.Writer
	mu    *sync.Mutex
	opts  *slog.HandlerOptions
}

// NewColorHandler creates a handler that writes colored text records to w.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorHandler{
		inner: slog.NewTextHandler(w, opts),
		w:     w,
		mu:    &sync.Mutex{},
		opts:  opts,
	}
}

func (h *ColorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ColorHandler) Handle(ctx context.Context, r slog.Record) error {
	var color string
	switch {
	case r.Level >= slog.LevelError:
		color = colorRed
	case r.Level >= slog.LevelWarn:
		color = colorYellow
	}
	if color == "" {
		return h.inner.Handle(ctx, r)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := fmt.Fprint(h.w, color); err != nil {
		return err
	}
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	_, err := fmt.Fprint(h.w, colorReset)
	return err
}

func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ColorHandler{inner: h.inner.WithAttrs(attrs), w: h.w, mu: h.mu, opts: h.opts}
}

func (h *ColorHandler) WithGroup(name string) slog.Handler {
	return &ColorHandler{inner: h.inner.WithGroup(name), w: h.w, mu: h.mu, opts: h.opts}
}

// New builds a logger for the given level name ("debug", "info", "warn",
// "error") and format ("text" or "json"). Unknown values fall back to info
// and text.
func New(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = NewColorHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// NewDefaultLogger returns a colored text logger at the given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
