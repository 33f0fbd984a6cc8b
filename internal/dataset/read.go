package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupported indicates a file extension no reader handles.
var ErrUnsupported = errors.New("unsupported dataset format")

// ReadOptions controls table reading.
type ReadOptions struct {
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, picked from the extension (.tsv -> tab, else comma).
	Delimiter rune
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based index when SheetName is empty.
	SheetIndex int
}

// Table is a transaction table as read from disk. Header is nil when the
// source had no header line, in which case Rows is empty too.
type Table struct {
	Header []string
	Rows   []Row
}

// Has reports whether the header carries column c.
func (t *Table) Has(c Column) bool {
	return t != nil && indexHeader(t.Header)[c] >= 0
}

// Reader reads a transaction table from disk.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt ReadOptions) (*Table, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ReadTable selects a reader by extension and returns the table in path.
func ReadTable(path string, opt ReadOptions) (*Table, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(path, opt)
		}
	}
	return nil, fmt.Errorf("%s: %w (use .csv, .tsv or .xlsx)", filepath.Base(path), ErrUnsupported)
}

func hasExt(path string, exts ...string) bool {
	lower := strings.ToLower(path)
	for _, e := range exts {
		if strings.HasSuffix(lower, e) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}
