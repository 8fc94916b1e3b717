package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestColorHandlerColorsBySeverity(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Info("plain message")
	plain := buf.String()
	assert.NotContains(t, plain, colorRed)
	assert.NotContains(t, plain, colorYellow)

	buf.Reset()
	log.Warn("careful")
	assert.Contains(t, buf.String(), colorYellow)

	buf.Reset()
	log.Error("broken")
	assert.Contains(t, buf.String(), colorRed)
}

func TestColorHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewColorHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestColorHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, nil)).With("source", "GFR 2017")

	log.Info("indexed")
	out := buf.String()
	require.Contains(t, out, "source=")
	assert.Contains(t, out, "GFR 2017")
}

func TestNewFormats(t *testing.T) {
	assert.NotNil(t, New("debug", "text"))
	assert.NotNil(t, New("info", "json"))
	assert.NotNil(t, New("", ""))
}
