package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// ANSI colours for lift
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
)

const labelWidth = 32

// WriteTable writes a fixed-width terminal table. With color set, lift above
// 1 is green and below 1 red.
func (r *Report) WriteTable(w io.Writer, color bool) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Run %s  source: %s", r.RunID, r.Source))
	if r.Country != "" {
		sb.WriteString(fmt.Sprintf("  country: %s", r.Country))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Transactions: %s  Items: %s  Density: %.2f%%  Frequent itemsets: %s  Rules: %s\n",
		humanize.Comma(int64(r.Transactions)),
		humanize.Comma(int64(r.Items)),
		r.Density*100,
		humanize.Comma(int64(len(r.Itemsets))),
		humanize.Comma(int64(r.TotalRules))))
	sb.WriteString(fmt.Sprintf("min_support=%g metric=%s min_threshold=%g\n\n",
		r.Params.MinSupport, r.Params.Metric, r.Params.MinThreshold))

	if len(r.Rules) == 0 {
		sb.WriteString("No rules met the threshold.\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	sb.WriteString(fmt.Sprintf("%-*s %-*s %9s %9s %9s %9s %10s\n",
		labelWidth, "Antecedents", labelWidth, "Consequents",
		"Support", "Confid.", "Lift", "Leverage", "Conviction"))
	sb.WriteString(strings.Repeat("─", 2*labelWidth+2+4*10+11))
	sb.WriteString("\n")

	for _, rule := range r.Rules {
		lift := fmt.Sprintf("%9s", formatFloat(rule.Lift))
		if color {
			switch {
			case rule.Lift > 1:
				lift = colorGreen + lift + colorReset
			case rule.Lift < 1:
				lift = colorRed + lift + colorReset
			}
		}
		sb.WriteString(fmt.Sprintf("%-*s %-*s %9s %9s %s %9s %10s\n",
			labelWidth, truncate(strings.Join(rule.Antecedent, ", "), labelWidth),
			labelWidth, truncate(strings.Join(rule.Consequent, ", "), labelWidth),
			formatFloat(rule.Support),
			formatFloat(rule.Confidence),
			lift,
			formatFloat(rule.Leverage),
			formatFloat(rule.Conviction)))
	}
	if shown := len(r.Rules); shown < r.TotalRules {
		sb.WriteString(fmt.Sprintf("\nShowing %d of %s rules", shown, humanize.Comma(int64(r.TotalRules))))
		if r.SortedBy != "" {
			sb.WriteString(fmt.Sprintf(" (by %s)", r.SortedBy))
		}
		sb.WriteString(".\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	if n <= 3 {
		return string(rs[:n])
	}
	return string(rs[:n-3]) + "..."
}
