package report

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned for output formats Write cannot produce.
var ErrUnknownFormat = errors.New("report: unknown format")

// Format names an output encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatTable, FormatMarkdown, FormatCSV, FormatJSON, FormatYAML}
}

// ParseFormat accepts a format name, case-insensitively. "md" and "yml" are
// accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	case FormatTable, FormatMarkdown, FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("%w %q (use table|markdown|csv|json|yaml)", ErrUnknownFormat, s)
}

// FormatForPath infers a format from an output file extension.
func FormatForPath(p string) (Format, bool) {
	lower := strings.ToLower(p)
	switch {
	case strings.HasSuffix(lower, ".md"):
		return FormatMarkdown, true
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV, true
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON, true
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML, true
	}
	return "", false
}
