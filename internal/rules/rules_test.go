package rules_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/basketloom-cli/internal/apriori"
	"github.com/KaramelBytes/basketloom-cli/internal/basket"
	"github.com/KaramelBytes/basketloom-cli/internal/rules"
)

func mine(t *testing.T, txs map[string][]string, minSupport float64) *apriori.Table {
	t.Helper()
	var lines []basket.Line
	for tx, items := range txs {
		for _, it := range items {
			lines = append(lines, basket.Line{TransactionID: tx, Item: it, Quantity: decimal.NewFromInt(1)})
		}
	}
	m, err := basket.Encode(lines)
	require.NoError(t, err)
	tab, err := apriori.Mine(context.Background(), m, apriori.Options{MinSupport: minSupport})
	require.NoError(t, err)
	return tab
}

func threeBaskets(t *testing.T) *apriori.Table {
	return mine(t, map[string][]string{
		"T1": {"A", "B"},
		"T2": {"A", "C"},
		"T3": {"A", "B", "C"},
	}, 0.3)
}

func find(t *testing.T, rs []rules.Rule, ante, cons string) rules.Rule {
	t.Helper()
	for _, r := range rs {
		if fmt.Sprint(r.Antecedent) == ante && fmt.Sprint(r.Consequent) == cons {
			return r
		}
	}
	t.Fatalf("rule %s -> %s not found", ante, cons)
	return rules.Rule{}
}

func TestGenerateAllRulesAtZeroSupport(t *testing.T) {
	rs, err := rules.Generate(threeBaskets(t), rules.Support, 0)
	require.NoError(t, err)
	// three pairs give 2 rules each, {A,B,C} gives 6
	require.Len(t, rs, 12)

	ab := find(t, rs, "[A]", "[B]")
	require.InDelta(t, 2.0/3.0, ab.Support, 1e-12)
	require.InDelta(t, 2.0/3.0, ab.Confidence, 1e-12)
	require.InDelta(t, 1.0, ab.Lift, 1e-12)
	require.InDelta(t, 0.0, ab.Leverage, 1e-12)
	require.InDelta(t, 1.0, ab.Conviction, 1e-12)

	ba := find(t, rs, "[B]", "[A]")
	require.Equal(t, 1.0, ba.Confidence)
	require.True(t, math.IsInf(ba.Conviction, 1))

	bc := find(t, rs, "[B]", "[C]")
	require.InDelta(t, 0.75, bc.Lift, 1e-12)

	abC := find(t, rs, "[A B]", "[C]")
	require.InDelta(t, 0.5, abC.Confidence, 1e-12)
}

func TestGenerateFiltersByConfidence(t *testing.T) {
	rs, err := rules.Generate(threeBaskets(t), rules.Confidence, 1)
	require.NoError(t, err)
	for _, r := range rs {
		require.Equal(t, []string{"A"}, r.Consequent, "only X -> A is certain")
	}
	require.Len(t, rs, 3) // B->A, C->A, BC->A
}

func TestLiftThresholdWithNoStrongPairsIsEmpty(t *testing.T) {
	rs, err := rules.Generate(threeBaskets(t), rules.Lift, 3)
	require.NoError(t, err)
	require.NotNil(t, rs)
	require.Empty(t, rs)
}

func TestGenerateEmptyTable(t *testing.T) {
	rs, err := rules.Generate(apriori.NewTable(0), rules.Lift, 1)
	require.NoError(t, err)
	require.Empty(t, rs)

	rs, err = rules.Generate(nil, rules.Lift, 1)
	require.NoError(t, err)
	require.Empty(t, rs)
}

func TestGenerateRejectsUnknownMetric(t *testing.T) {
	_, err := rules.Generate(threeBaskets(t), rules.Metric("zhang"), 0.5)
	require.ErrorIs(t, err, rules.ErrInvalidMetric)
	var me *rules.MetricError
	require.True(t, errors.As(err, &me))
	require.Equal(t, "zhang", me.Name)
}

func TestParseMetric(t *testing.T) {
	m, err := rules.ParseMetric("  Lift ")
	require.NoError(t, err)
	require.Equal(t, rules.Lift, m)
	_, err = rules.ParseMetric("")
	require.ErrorIs(t, err, rules.ErrInvalidMetric)
}

func TestGenerateSkipsRulesWithUnknownSubsets(t *testing.T) {
	tab := apriori.NewTable(4)
	tab.Add([]string{"A"}, 3)
	tab.Add([]string{"B"}, 2)
	tab.Add([]string{"A", "B"}, 2)
	tab.Add([]string{"A", "B", "C"}, 1) // {C}, {A,C}, {B,C} missing

	rs, err := rules.Generate(tab, rules.Support, 0)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	require.Equal(t, []string{"A"}, rs[0].Antecedent)
	require.Equal(t, []string{"B"}, rs[1].Antecedent)
}

func TestGenerateOrder(t *testing.T) {
	rs, err := rules.Generate(threeBaskets(t), rules.Support, 0)
	require.NoError(t, err)
	var got []string
	for _, r := range rs {
		got = append(got, fmt.Sprintf("%v->%v", r.Antecedent, r.Consequent))
	}
	require.Equal(t, []string{
		"[A]->[B]", "[B]->[A]",
		"[A]->[C]", "[C]->[A]",
		"[B]->[C]", "[C]->[B]",
		"[A]->[B C]", "[B]->[A C]", "[C]->[A B]",
		"[A B]->[C]", "[A C]->[B]", "[B C]->[A]",
	}, got)
}

func randomTable(t *testing.T, seed int64) *apriori.Table {
	r := rand.New(rand.NewSource(seed))
	txs := map[string][]string{}
	for i := 0; i < 120; i++ {
		tx := fmt.Sprintf("T%03d", i)
		for j := 0; j < 8; j++ {
			if r.Float64() < 0.35 {
				txs[tx] = append(txs[tx], fmt.Sprintf("I%d", j))
			}
		}
	}
	return mine(t, txs, 0.04)
}

func TestRuleProperties(t *testing.T) {
	tab := randomTable(t, 42)
	rs, err := rules.Generate(tab, rules.Support, 0)
	require.NoError(t, err)
	require.NotEmpty(t, rs)

	byKey := map[string]rules.Rule{}
	for _, r := range rs {
		key := apriori.Key(r.Antecedent) + "=>" + apriori.Key(r.Consequent)
		_, dup := byKey[key]
		require.False(t, dup, "rule %s emitted twice", key)
		byKey[key] = r

		require.GreaterOrEqual(t, r.Confidence, 0.0)
		require.LessOrEqual(t, r.Confidence, 1.0)
		union, ok := tab.Support(append(append([]string{}, r.Antecedent...), r.Consequent...))
		require.True(t, ok)
		require.Equal(t, union, r.Support)
		require.InDelta(t, r.Support/r.AntecedentSupport, r.Confidence, 1e-12)
		require.InDelta(t, r.Confidence/r.ConsequentSupport, r.Lift, 1e-9)
	}
	for _, r := range rs {
		rev, ok := byKey[apriori.Key(r.Consequent)+"=>"+apriori.Key(r.Antecedent)]
		require.True(t, ok)
		require.Equal(t, r.Lift, rev.Lift, "lift is symmetric")
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	tab := randomTable(t, 9)
	first, err := rules.Generate(tab, rules.Lift, 1.1)
	require.NoError(t, err)
	second, err := rules.Generate(tab, rules.Lift, 1.1)
	require.NoError(t, err)
	require.Equal(t, first, second)
	for _, r := range first {
		require.GreaterOrEqual(t, r.Lift, 1.1)
	}
}

func TestSortByAndTop(t *testing.T) {
	rs, err := rules.Generate(threeBaskets(t), rules.Support, 0)
	require.NoError(t, err)
	rules.SortBy(rs, rules.Confidence)
	for i := 1; i < len(rs); i++ {
		require.GreaterOrEqual(t, rs[i-1].Confidence, rs[i].Confidence)
	}
	require.Len(t, rules.Top(rs, 2), 2)
	require.Len(t, rules.Top(rs, 0), len(rs))
	require.Len(t, rules.Top(rs, 100), len(rs))
}
