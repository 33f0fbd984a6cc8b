package apriori

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableAddAndLookup(t *testing.T) {
	tab := NewTable(4)
	require.True(t, tab.Add([]string{"B", "A"}, 2))
	require.False(t, tab.Add([]string{"A", "B"}, 3), "duplicate set")
	require.False(t, tab.Add(nil, 1))

	s, ok := tab.Lookup([]string{"A", "B"})
	require.True(t, ok)
	require.Equal(t, []string{"A", "B"}, s.Items)
	require.Equal(t, 2, s.Count)
	require.Equal(t, 0.5, s.Support)
	require.Equal(t, 1, tab.Len())
	require.Equal(t, 4, tab.Transactions())
}

func TestAddIndexesUnderKey(t *testing.T) {
	tab := NewTable(3)
	require.True(t, tab.Add([]string{"jam", "bread", "milk"}, 1))

	s := tab.Itemsets()[0]
	require.Equal(t, Key([]string{"milk", "jam", "bread"}), s.Key())
	require.Equal(t, "bread\x1fjam\x1fmilk", s.Key())
	_, ok := tab.index[Key([]string{"milk", "bread", "jam"})]
	require.True(t, ok)
}

func TestGeneratePrunesInfrequentSubsets(t *testing.T) {
	frontier := []node{
		{items: []int{0, 1}},
		{items: []int{0, 2}},
		{items: []int{0, 3}},
		{items: []int{1, 2}},
	}
	cands, pruned := generate(frontier)
	// {0,1,2} survives; {0,1,3} and {0,2,3} need {1,3}/{2,3}.
	require.Len(t, cands, 1)
	require.Equal(t, []int{0, 1, 2}, cands[0].items)
	require.Equal(t, 0, cands[0].parent)
	require.Equal(t, 2, cands[0].last)
	require.Equal(t, 2, pruned)
}

func TestIntsKey(t *testing.T) {
	require.Equal(t, "1,12,3", intsKey([]int{1, 12, 3}))
	require.Equal(t, "", intsKey(nil))
}
