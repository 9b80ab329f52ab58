package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yukimemi/mjhnkn/internal/logging"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"off":   logging.LevelOff,
		"ERROR": slog.LevelError,
		"warn":  slog.LevelWarn,
		"":      slog.LevelInfo,
		"info":  slog.LevelInfo,
		"debug": slog.LevelDebug,
		"trace": logging.LevelTrace,
	}
	for input, want := range cases {
		got, err := logging.ParseLevel(input)
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := logging.ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestConsoleLoggerWritesComponentAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")

	logger, closer, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closer.Close()

	component := logging.NewComponentLogger(logger, "tail")
	component.Info("drained input", logging.Uint64("cursor", 42), logging.String("input", "/var/log/a b.log"))
	component.Debug("hidden at info")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "INFO [tail] – drained input") {
		t.Fatalf("expected header with component, got %q", text)
	}
	if !strings.Contains(text, "cursor=42") || !strings.Contains(text, `input="/var/log/a b.log"`) {
		t.Fatalf("expected formatted fields, got %q", text)
	}
	if strings.Contains(text, "hidden at info") {
		t.Fatalf("debug record should be filtered at info level, got %q", text)
	}
	if strings.Contains(text, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", text)
	}
}

func TestJSONLoggerUsesStableKeysAndTraceLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")

	logger, closer, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "trace",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closer.Close()
	logging.Trace(logger, "poll cycle", logging.Int("bytes", 0))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, content)
	}
	if entry["level"] != "trace" {
		t.Fatalf("expected level trace, got %v", entry["level"])
	}
	if entry["msg"] != "poll cycle" {
		t.Fatalf("unexpected msg %v", entry["msg"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
}

func TestOffLevelSuppressesEverything(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "off.log")

	logger, closer, err := logging.New(logging.Options{Level: "off", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closer.Close()
	logger.Error("should not appear")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(content) != 0 {
		t.Fatalf("expected empty log, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, _, err := logging.New(logging.Options{Format: "xml", OutputPaths: []string{filepath.Join(t.TempDir(), "x.log")}})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, closer, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closer.Close()

	logging.WarnWithContext(logger, "read failed", "input_read_failed", logging.Error(errors.New("boom")))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("expected %s in %v", key, entry)
		}
	}
	if entry[logging.FieldEventType] != "input_read_failed" {
		t.Fatalf("unexpected event type %v", entry[logging.FieldEventType])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled")
	}
}

func TestCloserReleasesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "closed.log")
	logger, closer, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{"stderr", logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("before close")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	logger.Info("after close")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "before close") {
		t.Fatalf("expected record written before close, got %q", text)
	}
	if strings.Contains(text, "after close") {
		t.Fatalf("log file still written after close: %q", text)
	}
}
