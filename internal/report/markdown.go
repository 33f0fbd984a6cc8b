package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// WriteMarkdown writes a summary followed by the rule and level tables.
func (r *Report) WriteMarkdown(w io.Writer) error {
	var b strings.Builder
	b.WriteString("# Association rules\n\n")
	b.WriteString(fmt.Sprintf("- Run: `%s`\n", r.RunID))
	if r.Source != "" {
		b.WriteString(fmt.Sprintf("- Source: %s\n", r.Source))
	}
	if r.Country != "" {
		b.WriteString(fmt.Sprintf("- Country: %s\n", r.Country))
	}
	b.WriteString(fmt.Sprintf("- Generated: %s\n", r.GeneratedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("- Transactions: %s, items: %s, frequent itemsets: %s, rules: %s\n",
		humanize.Comma(int64(r.Transactions)),
		humanize.Comma(int64(r.Items)),
		humanize.Comma(int64(len(r.Itemsets))),
		humanize.Comma(int64(r.TotalRules))))
	b.WriteString(fmt.Sprintf("- Parameters: min_support=%g, metric=%s, min_threshold=%g\n",
		r.Params.MinSupport, r.Params.Metric, r.Params.MinThreshold))
	if p := r.Prepared; p != nil {
		b.WriteString(fmt.Sprintf("- Rows kept: %s of %s (incomplete %d, cancelled %d, non-positive %d, other country %d)\n",
			humanize.Comma(int64(p.Kept)), humanize.Comma(int64(p.Input)),
			p.Incomplete, p.Cancelled, p.NonPositive, p.OtherCountry))
	}

	b.WriteString("\n## Rules\n\n")
	if len(r.Rules) == 0 {
		b.WriteString("No rules met the threshold.\n")
	} else {
		b.WriteString("| Antecedents | Consequents | Support | Confidence | Lift | Leverage | Conviction |\n")
		b.WriteString("|---|---|---:|---:|---:|---:|---:|\n")
		for _, rule := range r.Rules {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
				mdCell(strings.Join(rule.Antecedent, ", ")),
				mdCell(strings.Join(rule.Consequent, ", ")),
				formatFloat(rule.Support),
				formatFloat(rule.Confidence),
				formatFloat(rule.Lift),
				formatFloat(rule.Leverage),
				formatFloat(rule.Conviction)))
		}
	}

	if len(r.Levels) > 0 {
		b.WriteString("\n## Levels\n\n")
		b.WriteString("| Size | Candidates | Pruned | Frequent |\n")
		b.WriteString("|---:|---:|---:|---:|\n")
		for _, l := range r.Levels {
			b.WriteString(fmt.Sprintf("| %d | %d | %d | %d |\n", l.Size, l.Candidates, l.Pruned, l.Frequent))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func mdCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "\\|")
}
