package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func fixedLogger(level Level, jsonFormat bool) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	l := NewLogger(level, jsonFormat)
	l.output = &out
	l.errOutput = &errOut
	l.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return l, &out, &errOut
}

func TestLevelFiltering(t *testing.T) {
	l, out, errOut := fixedLogger(INFO, false)

	l.Debug("hidden")
	l.Info("shown")
	l.Error("broken")

	if strings.Contains(out.String(), "hidden") {
		t.Errorf("Expected debug line to be filtered, got %q", out.String())
	}
	if !strings.Contains(out.String(), "INFO: shown") {
		t.Errorf("Expected info line on output, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "ERROR: broken") {
		t.Errorf("Expected error line on error output, got %q", errOut.String())
	}
}

func TestTextFieldsAreSorted(t *testing.T) {
	l, out, _ := fixedLogger(DEBUG, false)

	l.WithField("pid", 42).Info("tick", map[string]interface{}{"attempt": 3})

	want := "[2024-05-01 12:00:00] INFO: tick attempt=3 pid=42\n"
	if out.String() != want {
		t.Errorf("Expected %q, got %q", want, out.String())
	}
}

func TestJSONFormat(t *testing.T) {
	l, out, _ := fixedLogger(DEBUG, true)

	l.WithField("component", "symlink-cleaner").Info("stopped")

	var entry LogEntry
	if err := json.Unmarshal(out.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to decode log line: %v", err)
	}
	if entry.Level != "INFO" || entry.Message != "stopped" {
		t.Errorf("Unexpected entry: %+v", entry)
	}
	if entry.Fields["component"] != "symlink-cleaner" {
		t.Errorf("Expected component field, got %v", entry.Fields)
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	l, out, _ := fixedLogger(DEBUG, false)

	_ = l.WithField("path", "/tmp/x")
	l.Info("plain")

	if strings.Contains(out.String(), "path=") {
		t.Errorf("Parent logger picked up child field: %q", out.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"Error", ERROR},
		{"bogus", INFO},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
