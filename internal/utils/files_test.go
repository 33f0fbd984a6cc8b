package utils

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeWriteFileCreatesParents(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out", "rules.json")
	if err := SafeWriteFile(p, []byte("[]")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "[]" {
		t.Fatalf("read back %q, %v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestSafeWriteFileOverwrites(t *testing.T) {
	p := filepath.Join(t.TempDir(), "report.md")
	for _, body := range []string{"first", "second"} {
		if err := SafeWriteFile(p, []byte(body)); err != nil {
			t.Fatalf("SafeWriteFile: %v", err)
		}
	}
	if b, _ := os.ReadFile(p); string(b) != "second" {
		t.Fatalf("expected overwrite, got %q", b)
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"rules": 2})
	if err != nil {
		t.Fatalf("PrettyJSON: %v", err)
	}
	if !strings.Contains(string(b), "\n  \"rules\": 2") {
		t.Fatalf("not indented: %s", b)
	}
	if _, err := PrettyJSON(math.Inf(1)); err == nil || !strings.Contains(err.Error(), "marshal json") {
		t.Fatalf("expected wrapped marshal error, got %v", err)
	}
}
