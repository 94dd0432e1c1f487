package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tessera/internal/logging"
)

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerFoldsComponentIntoPrefix(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "component.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "derivatives").Info("thumbnail generated",
		logging.String("asset_id", "abc123"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "derivatives: thumbnail generated") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "asset_id=abc123") {
		t.Fatalf("expected asset attribute, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component attribute should be folded into prefix, got %q", line)
	}
}

func TestNewJSONLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"json message"`) {
		t.Fatalf("expected renamed msg key, got %q", content)
	}
	if !strings.Contains(string(content), `"level":"info"`) {
		t.Fatalf("expected lowercase level, got %q", content)
	}
}

func TestNewInvalidFormatFails(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("discarded", logging.Error(os.ErrNotExist))
}
