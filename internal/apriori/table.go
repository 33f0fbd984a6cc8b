package apriori

import (
	"sort"
	"strings"
)

// Itemset is a set of distinct item labels, kept sorted, with its exact
// transaction count and support.
type Itemset struct {
	Items   []string `json:"items" yaml:"items"`
	Count   int      `json:"count" yaml:"count"`
	Support float64  `json:"support" yaml:"support"`
}

// Len returns the number of items.
func (s Itemset) Len() int { return len(s.Items) }

// Key returns the lookup key of the itemset.
func (s Itemset) Key() string { return Key(s.Items) }

// Key builds the order-independent lookup key of a set of labels.
func Key(items []string) string { return joinKey(sortedCopy(items)) }

func sortedCopy(items []string) []string {
	sorted := make([]string, len(items))
	copy(sorted, items)
	sort.Strings(sorted)
	return sorted
}

// joinKey expects labels already sorted.
func joinKey(sorted []string) string { return strings.Join(sorted, "\x1f") }

// LevelStats describes one level of the search.
type LevelStats struct {
	Size       int `json:"size" yaml:"size"`
	Candidates int `json:"candidates" yaml:"candidates"`
	Pruned     int `json:"pruned" yaml:"pruned"`
	Frequent   int `json:"frequent" yaml:"frequent"`
}

// Table is the itemset -> support lookup produced by Mine. Itemsets are kept
// in discovery order: by size, then lexicographically by item.
type Table struct {
	sets         []Itemset
	index        map[string]int
	transactions int
	levels       []LevelStats
}

// NewTable returns an empty table over the given number of transactions.
func NewTable(transactions int) *Table {
	return &Table{index: make(map[string]int), transactions: transactions}
}

// Add records an itemset with its absolute count. It reports false when the
// set is empty or already present.
func (t *Table) Add(items []string, count int) bool {
	if len(items) == 0 {
		return false
	}
	sorted := sortedCopy(items)
	key := joinKey(sorted)
	if _, ok := t.index[key]; ok {
		return false
	}
	var support float64
	if t.transactions > 0 {
		support = float64(count) / float64(t.transactions)
	}
	t.index[key] = len(t.sets)
	t.sets = append(t.sets, Itemset{Items: sorted, Count: count, Support: support})
	return true
}

// Len returns the number of itemsets.
func (t *Table) Len() int { return len(t.sets) }

// Transactions returns the transaction count supports are relative to.
func (t *Table) Transactions() int { return t.transactions }

// Itemsets returns the itemsets in discovery order.
func (t *Table) Itemsets() []Itemset {
	out := make([]Itemset, len(t.sets))
	copy(out, t.sets)
	return out
}

// Lookup returns the itemset with exactly the given labels.
func (t *Table) Lookup(items []string) (Itemset, bool) {
	i, ok := t.index[Key(items)]
	if !ok {
		return Itemset{}, false
	}
	return t.sets[i], true
}

// Support returns the support of the given labels if they were found frequent.
func (t *Table) Support(items []string) (float64, bool) {
	s, ok := t.Lookup(items)
	return s.Support, ok
}

// Levels returns per-size search statistics recorded by Mine.
func (t *Table) Levels() []LevelStats {
	out := make([]LevelStats, len(t.levels))
	copy(out, t.levels)
	return out
}

// MaxLen returns the size of the largest itemset.
func (t *Table) MaxLen() int {
	n := 0
	for _, s := range t.sets {
		n = max(n, len(s.Items))
	}
	return n
}
