package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"WARN", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Errorf("ParseFormat(empty) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat must reject unknown formats")
	}
}

func TestFileOutputJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keybridge.log")

	l, err := New(&Config{
		Level:     LevelDebug,
		Format:    FormatJSON,
		Output:    "file",
		FilePath:  path,
		Component: "test",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info("key event", "physical", 0x00070004)
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "key event" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["component"] != "test" {
		t.Errorf("component = %v", entry["component"])
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keybridge.log")

	l, err := New(&Config{
		Level:    LevelWarn,
		Format:   FormatText,
		Output:   "file",
		FilePath: path,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Debug("below threshold")
	l.Warn("at threshold")
	l.Close()

	data, _ := os.ReadFile(path)
	out := string(data)
	if strings.Contains(out, "below threshold") {
		t.Error("debug message leaked past warn level")
	}
	if !strings.Contains(out, "at threshold") {
		t.Error("warn message missing")
	}
}

func TestWithComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keybridge.log")

	l, err := New(&Config{
		Format:   FormatJSON,
		Output:   "file",
		FilePath: path,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.WithComponent("engine").Info("scoped")
	l.Close()

	data, _ := os.ReadFile(path)
	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["component"] != "engine" {
		t.Errorf("component = %v", entry["component"])
	}
}

func TestFileOutputRequiresPath(t *testing.T) {
	if _, err := New(&Config{Output: "file"}); err == nil {
		t.Error("New must fail for file output without a path")
	}
}
