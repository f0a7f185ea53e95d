package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWriter_Levels(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	defer Close()
	SetVerbose(false)

	Info("session %s opened", "abc")
	Debug("hidden %d", 1)
	Warn("slow lookup")
	Error("boom")

	out := buf.String()
	for _, want := range []string{"[INFO] session abc opened", "[WARN] slow lookup", "[ERROR] boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written while verbose is off:\n%s", out)
	}
}

func TestDebug_Verbose(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	defer Close()
	SetVerbose(true)
	defer SetVerbose(false)

	Debug("polling %s", "//x")
	if !strings.Contains(buf.String(), "[DEBUG] polling //x") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Info("hello")
	if GetWriter() == nil {
		t.Fatal("expected writer")
	}
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "[INFO] hello") {
		t.Errorf("log file content = %q", data)
	}
}

func TestInit_BadPath(t *testing.T) {
	if err := Init(filepath.Join(t.TempDir(), "missing", "run.log")); err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestNoLogger_NoPanic(t *testing.T) {
	Close()
	Info("dropped")
	Error("dropped")
}
