package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToLogFile(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	if Logger == nil {
		t.Fatal("Logger is nil after Init")
	}

	Info("habit added", "id", "abc")
	Debug("not written at info level")

	data, err := os.ReadFile(LogPath(configDir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "habit added") {
		t.Errorf("log file = %q, want it to contain the info message", data)
	}
	if strings.Contains(string(data), "not written") {
		t.Errorf("log file contains a debug message outside debug mode")
	}
}

func TestInitDebugMode(t *testing.T) {
	configDir := t.TempDir()

	if err := Init(Config{Debug: true, ConfigDir: configDir}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	Debug("toggle", "id", "abc")

	data, err := os.ReadFile(LogPath(configDir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "toggle") {
		t.Errorf("debug message missing from log file: %q", data)
	}
}

func TestHelpersBeforeInit(t *testing.T) {
	Logger = nil

	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
}

func TestInitUnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0600); err != nil {
		t.Fatal(err)
	}

	if err := Init(Config{ConfigDir: blocker}); err == nil {
		t.Error("Init() under a regular file should fail")
	}
}

func TestLogPath(t *testing.T) {
	got := LogPath("/tmp/habitlit")
	want := filepath.Join("/tmp/habitlit", "logs", "habitlit.log")
	if got != want {
		t.Errorf("LogPath() = %q, want %q", got, want)
	}
}
