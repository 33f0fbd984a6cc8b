package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Fingerprint identifies a source file version. A cached entry is valid only
// while the file keeps the same size and modification time.
type Fingerprint struct {
	Path    string
	Sheet   string
	Size    int64
	ModTime time.Time
}

// FingerprintFile stats path and returns its fingerprint. sheet distinguishes
// sheets of the same workbook and may be empty.
func FingerprintFile(path, sheet string) (Fingerprint, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("stat source: %w", err)
	}
	return Fingerprint{Path: abs, Sheet: sheet, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Source describes one cached file.
type Source struct {
	ID        int64
	Path      string
	Sheet     string
	Size      int64
	ModTime   time.Time
	Rows      int
	Header    []string
	CreatedAt time.Time
}

// Matches reports whether the cached entry still describes fp.
func (s Source) Matches(fp Fingerprint) bool {
	return s.Path == fp.Path && s.Sheet == fp.Sheet && s.Size == fp.Size &&
		s.ModTime.UnixNano() == fp.ModTime.UnixNano()
}

// headerSep joins header fields in the sources table.
const headerSep = "\x1f"

func encodeHeader(h []string) string { return strings.Join(h, headerSep) }

func decodeHeader(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, headerSep)
}
