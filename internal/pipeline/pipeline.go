// Package pipeline runs encode -> mine -> generate over prepared lines.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KaramelBytes/basketloom-cli/internal/apriori"
	"github.com/KaramelBytes/basketloom-cli/internal/basket"
	"github.com/KaramelBytes/basketloom-cli/internal/rules"
)

// Result holds every stage output of a run.
type Result struct {
	Params   Params
	Matrix   *basket.Matrix
	Itemsets *apriori.Table
	Rules    []rules.Rule
	Elapsed  time.Duration
}

// Run validates p before touching the data, then encodes lines, mines
// frequent itemsets and derives rules. A nil logger uses slog.Default().
func Run(ctx context.Context, lines []basket.Line, p Params, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Metric, _ = rules.ParseMetric(string(p.Metric))
	start := time.Now()

	m, err := basket.Encode(lines)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	log.Info("encoded baskets",
		"lines", len(lines),
		"transactions", m.NumTransactions(),
		"items", m.NumItems(),
		"density", m.Density())

	tab, err := apriori.Mine(ctx, m, apriori.Options{
		MinSupport: p.MinSupport,
		MaxLen:     p.MaxLen,
		Workers:    p.Workers,
		OnLevel: func(l apriori.LevelStats) {
			log.Debug("apriori level",
				"size", l.Size,
				"candidates", l.Candidates,
				"pruned", l.Pruned,
				"frequent", l.Frequent)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mine: %w", err)
	}
	log.Info("mined frequent itemsets", "itemsets", tab.Len(), "min_support", p.MinSupport)

	rs, err := rules.Generate(tab, p.Metric, p.MinThreshold)
	if err != nil {
		return nil, fmt.Errorf("generate rules: %w", err)
	}
	elapsed := time.Since(start)
	log.Info("generated rules",
		"rules", len(rs),
		"metric", p.Metric,
		"min_threshold", p.MinThreshold,
		"elapsed", elapsed)

	return &Result{Params: p, Matrix: m, Itemsets: tab, Rules: rs, Elapsed: elapsed}, nil
}
