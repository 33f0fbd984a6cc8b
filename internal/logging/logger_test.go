package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, "INFO": slog.LevelInfo, " warn ": slog.LevelWarn,
		"warning": slog.LevelWarn, "error": slog.LevelError, "verbose": slog.LevelInfo, "": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "json", &buf)
	log.Debug("mined frequent itemsets", "count", 7)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "mined frequent itemsets" || rec["count"] != float64(7) || rec["level"] != "DEBUG" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNewTextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "text", &buf)
	log.Info("hidden")
	log.Warn("shown", "rules", 0)
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") || !strings.Contains(out, "rules=0") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestValidateFormat(t *testing.T) {
	for _, ok := range []string{"text", "JSON", ""} {
		if err := ValidateFormat(ok); err != nil {
			t.Errorf("ValidateFormat(%q): %v", ok, err)
		}
	}
	if err := ValidateFormat("logfmt"); err == nil {
		t.Fatalf("expected error for logfmt")
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing")
}
