package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
	}{
		{name: "Debug level emits debug", level: "debug", wantDebug: true},
		{name: "Info level swallows debug", level: "info", wantDebug: false},
		{name: "Warn level swallows debug", level: "warn", wantDebug: false},
		{name: "Error level swallows debug", level: "error", wantDebug: false},
		{name: "Invalid level defaults to info", level: "invalid", wantDebug: false},
		{name: "Empty level defaults to info", level: "", wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(tt.level, &buf)
			if log == nil {
				t.Fatal("NewWithWriter() returned nil")
			}

			log.Debug("ping")
			if got := buf.Len() > 0; got != tt.wantDebug {
				t.Errorf("NewWithWriter(%q) debug emitted = %v, want %v", tt.level, got, tt.wantDebug)
			}
		})
	}
}

func TestLogger_WithModule(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithModule("trainer").Info("test message")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	if module, ok := logEntry["module"].(string); !ok || module != "trainer" {
		t.Errorf("WithModule() module = %v, want %q", logEntry["module"], "trainer")
	}
}

func TestLogger_WithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithRequestID("req-123").Info("test message")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	if requestID, ok := logEntry["request_id"].(string); !ok || requestID != "req-123" {
		t.Errorf("WithRequestID() request_id = %v, want %q", logEntry["request_id"], "req-123")
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithError(errors.New("corpus file missing")).Error("stage failed")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	if errField, ok := logEntry["error"].(string); !ok || errField != "corpus file missing" {
		t.Errorf("WithError() error = %v, want %q", logEntry["error"], "corpus file missing")
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithFields(map[string]any{"algorithm": "naive_bayes", "rows": 42}).Info("trained")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	if logEntry["algorithm"] != "naive_bayes" {
		t.Errorf("WithFields() algorithm = %v, want %q", logEntry["algorithm"], "naive_bayes")
	}
	if logEntry["rows"] != float64(42) {
		t.Errorf("WithFields() rows = %v, want 42", logEntry["rows"])
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info("test message")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	for _, field := range []string{"timestamp", "level", "message"} {
		if _, ok := logEntry[field]; !ok {
			t.Errorf("JSON log missing required field %q", field)
		}
	}

	if logEntry["message"] != "test message" {
		t.Errorf("message = %v, want %q", logEntry["message"], "test message")
	}
	if logEntry["level"] != "info" {
		t.Errorf("level = %v, want %q", logEntry["level"], "info")
	}
}
