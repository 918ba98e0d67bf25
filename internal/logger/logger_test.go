package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")

	logger, err := build(true, false, []string{out})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	logger.Debug("hidden")
	WithSource(logger, "linkedin").Info("source finished")
	_ = logger.Sync()

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the info line, got %d lines: %s", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}

	if entry["step"] != "source finished" || entry[FieldSource] != "linkedin" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestBuildDebug(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.txt")

	logger, err := build(false, true, []string{out})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	logger.Debug("prompt sent")
	_ = logger.Sync()

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	if !strings.Contains(string(data), "prompt sent") {
		t.Fatalf("expected debug line, got %q", data)
	}
}
