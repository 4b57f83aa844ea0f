package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/config"
)

func TestConsoleHandler_Format(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, nil)).With(ComponentKey, "reconcile")

	// Act
	logger.Info("Run completed", "matches", 12, "strategy", "auto")

	// Assert
	line := buf.String()
	assert.Regexp(t, regexp.MustCompile(`^\[INFO\] \[reconcile\] \[\d{2}:\d{2}:\d{2}\] Run completed`), line)
	assert.Contains(t, line, " matches=12")
	assert.Contains(t, line, " strategy=auto")
	assert.NotContains(t, line, "component=")
	assert.NotContains(t, line, "\033[", "no colors when not a terminal")
}

func TestConsoleHandler_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("failed", "error", errors.New("database locked"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, `[ERROR]`)
	assert.Contains(t, out, `error="database locked"`)
}

func TestConsoleHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, nil))

	logger.WithGroup("progress").Info("Chunk done", "processed", 50, "total", 120)
	logger.Info("Stats", slog.Group("confidence", "high", 3, "low", 1))

	out := buf.String()
	assert.Contains(t, out, "progress.processed=50")
	assert.Contains(t, out, "progress.total=120")
	assert.Contains(t, out, "confidence.high=3")
	assert.Contains(t, out, "confidence.low=1")
}

func TestConsoleHandler_ComponentFromRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, nil))

	logger.Info("Listening", ComponentKey, "api", "port", 8085)

	assert.Contains(t, buf.String(), "[api]")
	assert.NotContains(t, buf.String(), "component=")
}

func TestNewLoggerTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "debug", Format: "json"})

	logger.Debug("Scored pair", "booking_id", "B1", "score", 0.91)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "Scored pair", entry["msg"])
	assert.Equal(t, "B1", entry["booking_id"])
	assert.Equal(t, 0.91, entry["score"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(name))
		})
	}
}
