// Package rules derives directional association rules from a table of
// frequent itemsets.
package rules

import (
	"math"
	"sort"

	"github.com/KaramelBytes/basketloom-cli/internal/apriori"
)

// Rule is antecedent -> consequent with its measures. Both sides are sorted,
// disjoint and non-empty, and their union is a frequent itemset.
type Rule struct {
	Antecedent        []string `json:"antecedents" yaml:"antecedents"`
	Consequent        []string `json:"consequents" yaml:"consequents"`
	AntecedentSupport float64  `json:"antecedent_support" yaml:"antecedent_support"`
	ConsequentSupport float64  `json:"consequent_support" yaml:"consequent_support"`
	Support           float64  `json:"support" yaml:"support"`
	Confidence        float64  `json:"confidence" yaml:"confidence"`
	Lift              float64  `json:"lift" yaml:"lift"`
	Leverage          float64  `json:"leverage" yaml:"leverage"`
	// Conviction is +Inf when Confidence is 1.
	Conviction float64 `json:"-" yaml:"-"`
}

// Value returns the measure named by m.
func (r Rule) Value(m Metric) float64 {
	switch m {
	case Support:
		return r.Support
	case Confidence:
		return r.Confidence
	case Lift:
		return r.Lift
	case Leverage:
		return r.Leverage
	case Conviction:
		return r.Conviction
	}
	return math.NaN()
}

// Generate returns every rule A -> F\A over the itemsets F of t with at
// least two items whose metric value is >= minThreshold. Rules whose
// antecedent or consequent support is not in t are skipped.
//
// Output order follows t's itemset order, then antecedent size, then the
// lexicographic order of the antecedent.
func Generate(t *apriori.Table, metric Metric, minThreshold float64) ([]Rule, error) {
	m, err := ParseMetric(string(metric))
	if err != nil {
		return nil, err
	}
	out := []Rule{}
	if t == nil {
		return out, nil
	}
	for _, f := range t.Itemsets() {
		n := f.Len()
		if n < 2 {
			continue
		}
		for size := 1; size < n; size++ {
			combinations(n, size, func(pick []int) {
				ante, cons := split(f.Items, pick)
				sa, okA := t.Support(ante)
				sc, okC := t.Support(cons)
				if !okA || !okC {
					return
				}
				r := measure(ante, cons, sa, sc, f.Support)
				if r.Value(m) >= minThreshold {
					out = append(out, r)
				}
			})
		}
	}
	return out, nil
}

func measure(ante, cons []string, sa, sc, s float64) Rule {
	r := Rule{
		Antecedent:        ante,
		Consequent:        cons,
		AntecedentSupport: sa,
		ConsequentSupport: sc,
		Support:           s,
		Confidence:        s / sa,
		// written as s/(sa*sc) so that A->C and C->A get the identical value
		Lift:     s / (sa * sc),
		Leverage: s - sa*sc,
	}
	if r.Confidence >= 1 {
		r.Conviction = math.Inf(1)
	} else {
		r.Conviction = (1 - sc) / (1 - r.Confidence)
	}
	return r
}

// split partitions items into the picked positions and the rest.
func split(items []string, pick []int) (ante, cons []string) {
	ante = make([]string, 0, len(pick))
	cons = make([]string, 0, len(items)-len(pick))
	k := 0
	for i, it := range items {
		if k < len(pick) && pick[k] == i {
			ante = append(ante, it)
			k++
			continue
		}
		cons = append(cons, it)
	}
	return ante, cons
}

// combinations calls fn with every size-k subset of 0..n-1 in lexicographic
// order. The slice is reused between calls.
func combinations(n, k int, fn func([]int)) {
	if k <= 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// SortBy orders rules by metric, highest first. Ties keep their order.
func SortBy(rs []Rule, m Metric) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].Value(m) > rs[j].Value(m)
	})
}

// Top returns at most n rules; n <= 0 returns all of them.
func Top(rs []Rule, n int) []Rule {
	if n <= 0 || n >= len(rs) {
		return rs
	}
	return rs[:n]
}
