package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	// Test with text format
	cfg := Config{
		Level:  "info",
		Format: "text",
	}
	logger := New(cfg)
	if logger == nil {
		t.Error("Expected logger to not be nil")
	}

	// Test with json format
	cfg.Format = "json"
	logger = New(cfg)
	if logger == nil {
		t.Error("Expected logger to not be nil")
	}

	// Test with logfmt format
	cfg.Format = "logfmt"
	logger = New(cfg)
	if logger == nil {
		t.Error("Expected logger to not be nil")
	}

	// Test with invalid level (should default to info)
	cfg.Level = "invalid"
	logger = New(cfg)
	if logger == nil {
		t.Error("Expected logger to not be nil")
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: "json", Output: &buf})

	logger.WithComponent("api").Info("hello", "count", 3)

	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) {
		t.Errorf("Expected message in JSON output, got %s", out)
	}
	if !strings.Contains(out, `"component":"api"`) {
		t.Errorf("Expected component attribute in JSON output, got %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "logfmt", Output: &buf})

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("Expected info message to be filtered at warn level, got %s", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("Expected warn message to be written, got %s", out)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requestline.log")
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: "logfmt", File: path, Output: &buf})

	logger.Info("mirrored")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file to exist: %v", err)
	}
	if !strings.Contains(string(data), "mirrored") {
		t.Errorf("Expected log file to contain message, got %s", data)
	}
	if !strings.Contains(buf.String(), "mirrored") {
		t.Errorf("Expected primary output to contain message, got %s", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	logger := Default()
	componentLogger := logger.WithComponent("test-component")

	if componentLogger == nil {
		t.Error("Expected component logger to not be nil")
	}

	// Test chaining
	componentLogger2 := componentLogger.WithComponent("nested-component")
	if componentLogger2 == nil {
		t.Error("Expected chained component logger to not be nil")
	}
}

func TestWithSessionAndTask(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: "json", Output: &buf})

	logger.WithSession("AB12").WithTask("task-1", 42).Info("enriched")

	out := buf.String()
	for _, want := range []string{`"session_id":"AB12"`, `"task_id":"task-1"`, `"submission_id":42`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %s in output, got %s", want, out)
		}
	}
}
