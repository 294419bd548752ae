package obs

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestLogRequestWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Logger().SetOutput(&buf)
	defer Logger().SetOutput(os.Stdout)

	LogRequest("req-1", "GET", "/api/auth/me", 401, 1500*time.Microsecond)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "request_complete" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["request_id"] != "req-1" || entry["path"] != "/api/auth/me" {
		t.Fatalf("unexpected fields: %v", entry)
	}
	if status, _ := entry["status"].(float64); status != 401 {
		t.Fatalf("unexpected status: %v", entry["status"])
	}
	if ms, _ := entry["duration_ms"].(float64); ms != 1.5 {
		t.Fatalf("unexpected duration: %v", entry["duration_ms"])
	}
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	if err := Configure("loud", true); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := Configure("debug", true); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	_ = Configure("info", true)
}
