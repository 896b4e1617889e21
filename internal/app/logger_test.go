package app

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogger_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf)

	log.Info("upload complete", map[string]interface{}{"document_id": 42})
	log.Error("upload failed", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var evt LogEvent
	if err := json.Unmarshal([]byte(lines[0]), &evt); err != nil {
		t.Fatalf("first line is not JSON: %v", err)
	}
	if evt.Level != "info" || evt.Message != "upload complete" {
		t.Fatalf("event = %+v", evt)
	}
	if evt.Fields["document_id"] != float64(42) {
		t.Fatalf("fields = %v", evt.Fields)
	}

	if err := json.Unmarshal([]byte(lines[1]), &evt); err != nil {
		t.Fatalf("second line is not JSON: %v", err)
	}
	if evt.Level != "error" {
		t.Fatalf("level = %q, want error", evt.Level)
	}
}

func TestNewFileLogger_EmptyPathDiscards(t *testing.T) {
	log := NewFileLogger("")
	// Must not panic or write anywhere.
	log.Info("noop", nil)
}
