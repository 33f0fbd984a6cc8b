// Package apriori mines frequent itemsets from a basket.Matrix with a
// level-wise search.
//
// Level k candidates are built only from frequent (k-1)-itemsets that share
// their first k-2 items, and a candidate is dropped before counting when any
// of its (k-1)-subsets is not frequent. Supports are exact: each surviving
// candidate's transaction set is the intersection of its parent's set with
// the new item's column. Only the current level (the frontier) keeps
// transaction sets in memory.
package apriori

import (
	"context"
	"runtime"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/basketloom-cli/internal/basket"
)

// Options controls the search.
type Options struct {
	// MinSupport is the minimum fraction of transactions, in (0, 1].
	MinSupport float64
	// MaxLen caps itemset size; 0 means unlimited.
	MaxLen int
	// Workers bounds parallel support counting; 0 uses GOMAXPROCS.
	Workers int
	// OnLevel, when set, is called after each level is counted.
	OnLevel func(LevelStats)
}

// DefaultOptions returns the thresholds used for the Online Retail dataset.
func DefaultOptions() Options {
	return Options{MinSupport: 0.03}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if !(o.MinSupport > 0 && o.MinSupport <= 1) {
		return ErrInvalidSupport
	}
	if o.MaxLen < 0 {
		return ErrInvalidMaxLen
	}
	return nil
}

type node struct {
	items []int
	tids  *bitset.BitSet
}

type candidate struct {
	items  []int
	parent int
	last   int
}

// Mine returns every itemset whose support is at least opt.MinSupport.
func Mine(ctx context.Context, m *basket.Matrix, opt Options) (*Table, error) {
	if m == nil {
		return nil, ErrNilMatrix
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	n := m.NumTransactions()
	t := NewTable(n)
	if n == 0 {
		return t, nil
	}
	frequent := func(count int) bool {
		return float64(count)/float64(n) >= opt.MinSupport
	}

	var frontier []node
	level := LevelStats{Size: 1, Candidates: m.NumItems()}
	for i := 0; i < m.NumItems(); i++ {
		col := m.Column(i)
		c := int(col.Count())
		if !frequent(c) {
			continue
		}
		frontier = append(frontier, node{items: []int{i}, tids: col})
		t.Add([]string{m.Item(i)}, c)
	}
	level.Frequent = len(frontier)
	t.record(level, opt.OnLevel)

	for k := 2; len(frontier) > 1 && (opt.MaxLen == 0 || k <= opt.MaxLen); k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cands, pruned := generate(frontier)
		level = LevelStats{Size: k, Candidates: len(cands) + pruned, Pruned: pruned}
		if len(cands) == 0 {
			t.record(level, opt.OnLevel)
			break
		}

		tids := make([]*bitset.BitSet, len(cands))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, c := range cands {
			i, c := i, c
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				tids[i] = frontier[c.parent].tids.Intersection(m.Column(c.last))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		next := make([]node, 0, len(cands))
		for i, c := range cands {
			count := int(tids[i].Count())
			if !frequent(count) {
				continue
			}
			next = append(next, node{items: c.items, tids: tids[i]})
			labels := make([]string, len(c.items))
			for j, it := range c.items {
				labels[j] = m.Item(it)
			}
			t.Add(labels, count)
		}
		level.Frequent = len(next)
		t.record(level, opt.OnLevel)
		frontier = next
	}
	return t, nil
}

func (t *Table) record(l LevelStats, hook func(LevelStats)) {
	t.levels = append(t.levels, l)
	if hook != nil {
		hook(l)
	}
}

// generate joins frontier nodes sharing all but their last item. The
// frontier must be sorted lexicographically, which keeps nodes with a common
// prefix adjacent and the output sorted as well. It returns the surviving
// candidates and how many were pruned by the subset check.
func generate(frontier []node) ([]candidate, int) {
	known := make(map[string]struct{}, len(frontier))
	for _, nd := range frontier {
		known[intsKey(nd.items)] = struct{}{}
	}
	var out []candidate
	pruned := 0
	for i := 0; i < len(frontier); i++ {
		a := frontier[i].items
		prefix := a[:len(a)-1]
		for j := i + 1; j < len(frontier); j++ {
			b := frontier[j].items
			if !samePrefix(prefix, b) {
				break
			}
			items := make([]int, len(a)+1)
			copy(items, a)
			items[len(a)] = b[len(b)-1]
			if !subsetsFrequent(items, known) {
				pruned++
				continue
			}
			out = append(out, candidate{items: items, parent: i, last: b[len(b)-1]})
		}
	}
	return out, pruned
}

func samePrefix(prefix, items []int) bool {
	for k, v := range prefix {
		if items[k] != v {
			return false
		}
	}
	return true
}

// subsetsFrequent checks the (k-1)-subsets obtained by dropping one of the
// first k-2 items; the two remaining subsets are the joined parents.
func subsetsFrequent(items []int, known map[string]struct{}) bool {
	sub := make([]int, 0, len(items)-1)
	for drop := 0; drop < len(items)-2; drop++ {
		sub = sub[:0]
		sub = append(sub, items[:drop]...)
		sub = append(sub, items[drop+1:]...)
		if _, ok := known[intsKey(sub)]; !ok {
			return false
		}
	}
	return true
}

func intsKey(items []int) string {
	var b strings.Builder
	for k, v := range items {
		if k > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}
