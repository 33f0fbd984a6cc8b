// Package report renders mined association rules as a terminal table,
// Markdown, CSV, JSON or YAML.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/KaramelBytes/basketloom-cli/internal/apriori"
	"github.com/KaramelBytes/basketloom-cli/internal/dataset"
	"github.com/KaramelBytes/basketloom-cli/internal/pipeline"
	"github.com/KaramelBytes/basketloom-cli/internal/rules"
)

// Report is the outcome of one mining run, ready to be written.
type Report struct {
	RunID        string
	Source       string
	Country      string
	GeneratedAt  time.Time
	Params       pipeline.Params
	Prepared     *dataset.PrepareStats
	Transactions int
	Items        int
	Density      float64
	Levels       []apriori.LevelStats
	Itemsets     []apriori.Itemset
	// TotalRules counts rules before Top was applied.
	TotalRules int
	Rules      []rules.Rule
	SortedBy   rules.Metric
	Elapsed    time.Duration
}

// Options shape a report.
type Options struct {
	Source   string
	Country  string
	Prepared *dataset.PrepareStats
	// Sort orders rules by this metric, highest first. Empty keeps generation order.
	Sort rules.Metric
	// Top keeps the first Top rules after sorting; <= 0 keeps all.
	Top int
}

// New builds a report from a pipeline result. The result is not modified.
func New(res *pipeline.Result, opt Options) *Report {
	rs := make([]rules.Rule, len(res.Rules))
	copy(rs, res.Rules)
	if opt.Sort != "" {
		rules.SortBy(rs, opt.Sort)
	}
	r := &Report{
		RunID:       uuid.NewString(),
		Source:      opt.Source,
		Country:     opt.Country,
		GeneratedAt: time.Now().UTC(),
		Params:      res.Params,
		Prepared:    opt.Prepared,
		TotalRules:  len(rs),
		Rules:       rules.Top(rs, opt.Top),
		SortedBy:    opt.Sort,
		Elapsed:     res.Elapsed,
	}
	if res.Matrix != nil {
		r.Transactions = res.Matrix.NumTransactions()
		r.Items = res.Matrix.NumItems()
		r.Density = res.Matrix.Density()
	}
	if res.Itemsets != nil {
		r.Levels = res.Itemsets.Levels()
		r.Itemsets = res.Itemsets.Itemsets()
	}
	return r
}

// Write renders the report in format f.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatTable:
		return r.WriteTable(w, colorEnabled(w))
	case FormatMarkdown:
		return r.WriteMarkdown(w)
	case FormatCSV:
		return r.WriteCSV(w)
	case FormatJSON:
		return r.WriteJSON(w)
	case FormatYAML:
		return r.WriteYAML(w)
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, f)
}

// colorEnabled is true when w is a terminal and NO_COLOR is unset.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// formatFloat renders metrics with four decimals and "inf" for +Inf.
func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	}
	return fmt.Sprintf("%.4f", v)
}
