package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"":       "info",
		"debug":  "debug",
		" WARN ": "warn",
		"error":  "error",
	}
	for in, want := range cases {
		level, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if level.String() != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, level, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, cleanup, err := New(Options{Level: "warn", Console: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Infow("hidden")
	log.Warnw("fetch failed", "op", "daily activity")
	cleanup()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered:\n%s", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, `"op": "daily activity"`) {
		t.Fatalf("unexpected console output:\n%s", out)
	}
}

func TestFileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "readlog.log")
	log, cleanup, err := New(Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Debugw("session recorded", "words", 420)
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &line); err != nil {
		t.Fatalf("decode log line %q: %v", data, err)
	}
	if line["msg"] != "session recorded" || line["level"] != "debug" || line["words"] != float64(420) {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestNoSinksIsNop(t *testing.T) {
	log, cleanup, err := New(Options{})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer cleanup()
	if log.Desugar().Core().Enabled(zap.ErrorLevel) {
		t.Fatalf("expected no-op logger")
	}
}
