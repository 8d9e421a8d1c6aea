package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestNew_DualOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")
	var console bytes.Buffer

	logger := New(Options{
		Env:          "prod",
		ConsoleLevel: "info",
		FileLevel:    "debug",
		File:         logFile,
		App:          "test-app",
		Console:      &console,
	})
	defer func() {
		if err := Close(logger); err != nil {
			t.Errorf("Error closing logger: %v", err)
		}
	}()

	logger.Debug("debug message")
	logger.Info("info message", slog.String("task", "ping"))

	fileContent := readLog(t, logFile)
	if !strings.Contains(fileContent, "debug message") {
		t.Error("File should contain debug message")
	}
	if !strings.Contains(fileContent, `"level":"DEBUG"`) {
		t.Error("File should contain JSON formatted debug level")
	}
	if !strings.Contains(fileContent, `"app":"test-app"`) {
		t.Error("File should contain app field")
	}

	out := console.String()
	if strings.Contains(out, "debug message") {
		t.Error("Console should not contain debug message at info level")
	}
	if !strings.Contains(out, "info message") || !strings.Contains(out, "task=ping") {
		t.Errorf("Console should contain info message with attrs, got %q", out)
	}
}

func TestNew_DefaultLevels(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "default.log")
	var console bytes.Buffer

	logger := New(Options{Env: "dev", File: logFile, App: "test-app", Console: &console})
	defer func() { _ = Close(logger) }()

	logger.Debug("debug message")
	logger.Info("info message")

	if !strings.Contains(readLog(t, logFile), "debug message") {
		t.Error("Default file level should include debug messages")
	}
	if strings.Contains(console.String(), "debug message") {
		t.Error("Default console level should be info")
	}
}

func TestNew_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger := New(Options{Env: "dev", ConsoleLevel: "warn", App: "test-app", Console: &console})

	logger.Info("hidden")
	logger.Warn("visible")

	if err := Close(logger); err != nil {
		t.Errorf("Close without file should be a no-op, got %v", err)
	}
	if strings.Contains(console.String(), "hidden") || !strings.Contains(console.String(), "visible") {
		t.Errorf("unexpected console output %q", console.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in, slog.LevelInfo); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMultiHandler(t *testing.T) {
	var infoBuf, warnBuf bytes.Buffer
	h1 := slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn})

	multi := NewMultiHandler(h1, h2)
	ctx := context.Background()

	if multi.Enabled(ctx, slog.LevelDebug) {
		t.Error("Should not be enabled for debug level")
	}
	if !multi.Enabled(ctx, slog.LevelInfo) {
		t.Error("Should be enabled for info level")
	}

	l := slog.New(multi.WithAttrs([]slog.Attr{slog.String("component", "housekeeper")}).WithGroup("task"))
	l.Info("info record", "name", "ping")
	l.Warn("warn record", "name", "pong")

	if !strings.Contains(infoBuf.String(), "info record") || !strings.Contains(infoBuf.String(), "warn record") {
		t.Errorf("info handler missed records: %q", infoBuf.String())
	}
	if strings.Contains(warnBuf.String(), "info record") {
		t.Error("warn handler should skip info records")
	}
	if !strings.Contains(warnBuf.String(), "component=housekeeper") || !strings.Contains(warnBuf.String(), "task.name=pong") {
		t.Errorf("attrs and groups should propagate: %q", warnBuf.String())
	}

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "direct", 0)
	if err := multi.Handle(ctx, record); err != nil {
		t.Errorf("Handle should not return error: %v", err)
	}
}
