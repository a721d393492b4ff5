package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"ERROR", LevelError, false},
		{"trace", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestInitAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")

	if err := Init(Config{Level: "debug", Path: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() { _ = Close() }()

	logger := Get("builder")
	logger.Info("build complete", "files", 3)
	logger.Debug("cache hit", "path", "etc/hosts")

	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "build complete") {
		t.Errorf("log file missing info message: %s", content)
	}
	if !strings.Contains(content, "cache hit") {
		t.Errorf("log file missing debug message at debug level: %s", content)
	}
	if !strings.Contains(content, "builder") {
		t.Errorf("log file missing component prefix: %s", content)
	}
}

func TestComponentLevelOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	err := Init(Config{
		Level:      "error",
		Path:       path,
		Components: map[string]string{"chatty": "debug"},
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() { _ = Close() }()

	Get("chatty").Debug("verbose detail")
	Get("quiet").Debug("should be filtered")

	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "verbose detail") {
		t.Error("component override did not lower the level")
	}
	if strings.Contains(content, "should be filtered") {
		t.Error("default level did not filter debug output")
	}
}

func TestInitInvalidLevel(t *testing.T) {
	if err := Init(Config{Level: "loud", Path: filepath.Join(t.TempDir(), "x.log")}); err == nil {
		_ = Close()
		t.Fatal("Init() error = nil for invalid level")
	}
}

func TestGetBeforeInitDiscards(t *testing.T) {
	// Must not panic or write anywhere.
	logger := Get("pre-init-component")
	logger.Info("goes nowhere")
	logger.With("k", "v").Error("also nowhere")
}

func TestWith(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	if err := Init(Config{Level: "info", Path: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() { _ = Close() }()

	Get("codec").With("database", "baseline.db").Info("loaded")

	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "baseline.db") {
		t.Errorf("With() context missing from output: %s", data)
	}
}
