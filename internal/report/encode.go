package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/basketloom-cli/internal/apriori"
	"github.com/KaramelBytes/basketloom-cli/internal/dataset"
	"github.com/KaramelBytes/basketloom-cli/internal/pipeline"
	"github.com/KaramelBytes/basketloom-cli/internal/rules"
	"github.com/KaramelBytes/basketloom-cli/internal/utils"
)

// ruleRecord is the serialized form of a rule. Conviction is null when
// infinite, since JSON has no representation for it.
type ruleRecord struct {
	Antecedents       []string `json:"antecedents" yaml:"antecedents"`
	Consequents       []string `json:"consequents" yaml:"consequents"`
	AntecedentSupport float64  `json:"antecedent_support" yaml:"antecedent_support"`
	ConsequentSupport float64  `json:"consequent_support" yaml:"consequent_support"`
	Support           float64  `json:"support" yaml:"support"`
	Confidence        float64  `json:"confidence" yaml:"confidence"`
	Lift              float64  `json:"lift" yaml:"lift"`
	Leverage          float64  `json:"leverage" yaml:"leverage"`
	Conviction        *float64 `json:"conviction" yaml:"conviction"`
}

func toRecord(r rules.Rule) ruleRecord {
	rec := ruleRecord{
		Antecedents:       r.Antecedent,
		Consequents:       r.Consequent,
		AntecedentSupport: r.AntecedentSupport,
		ConsequentSupport: r.ConsequentSupport,
		Support:           r.Support,
		Confidence:        r.Confidence,
		Lift:              r.Lift,
		Leverage:          r.Leverage,
	}
	if !math.IsInf(r.Conviction, 0) && !math.IsNaN(r.Conviction) {
		c := r.Conviction
		rec.Conviction = &c
	}
	return rec
}

type document struct {
	RunID        string                `json:"run_id" yaml:"run_id"`
	Source       string                `json:"source,omitempty" yaml:"source,omitempty"`
	Country      string                `json:"country,omitempty" yaml:"country,omitempty"`
	GeneratedAt  time.Time             `json:"generated_at" yaml:"generated_at"`
	Params       pipeline.Params       `json:"params" yaml:"params"`
	Prepared     *dataset.PrepareStats `json:"prepared,omitempty" yaml:"prepared,omitempty"`
	Transactions int                   `json:"transactions" yaml:"transactions"`
	Items        int                   `json:"items" yaml:"items"`
	Density      float64               `json:"density" yaml:"density"`
	ElapsedMS    int64                 `json:"elapsed_ms" yaml:"elapsed_ms"`
	Levels       []apriori.LevelStats  `json:"levels" yaml:"levels"`
	Itemsets     []apriori.Itemset     `json:"itemsets" yaml:"itemsets"`
	TotalRules   int                   `json:"total_rules" yaml:"total_rules"`
	Rules        []ruleRecord          `json:"rules" yaml:"rules"`
}

func (r *Report) document() document {
	recs := make([]ruleRecord, len(r.Rules))
	for i, rule := range r.Rules {
		recs[i] = toRecord(rule)
	}
	levels := r.Levels
	if levels == nil {
		levels = []apriori.LevelStats{}
	}
	sets := r.Itemsets
	if sets == nil {
		sets = []apriori.Itemset{}
	}
	return document{
		RunID:        r.RunID,
		Source:       r.Source,
		Country:      r.Country,
		GeneratedAt:  r.GeneratedAt,
		Params:       r.Params,
		Prepared:     r.Prepared,
		Transactions: r.Transactions,
		Items:        r.Items,
		Density:      r.Density,
		ElapsedMS:    r.Elapsed.Milliseconds(),
		Levels:       levels,
		Itemsets:     sets,
		TotalRules:   r.TotalRules,
		Rules:        recs,
	}
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	b, err := utils.PrettyJSON(r.document())
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// WriteYAML writes the report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.document()); err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	return enc.Close()
}

// csvHeader is the column order of WriteCSV.
var csvHeader = []string{
	"antecedents", "consequents", "antecedent_support", "consequent_support",
	"support", "confidence", "lift", "leverage", "conviction",
}

// WriteCSV writes one rule per row. Itemsets are joined with "; ".
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rule := range r.Rules {
		rec := []string{
			strings.Join(rule.Antecedent, "; "),
			strings.Join(rule.Consequent, "; "),
			csvFloat(rule.AntecedentSupport),
			csvFloat(rule.ConsequentSupport),
			csvFloat(rule.Support),
			csvFloat(rule.Confidence),
			csvFloat(rule.Lift),
			csvFloat(rule.Leverage),
			csvFloat(rule.Conviction),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvFloat(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
