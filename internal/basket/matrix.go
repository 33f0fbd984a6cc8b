// Package basket turns raw (transaction, item, quantity) lines into a sparse
// transaction x item incidence matrix.
//
// The matrix is built once by Encode and is read-only afterwards, so it can be
// shared by concurrent readers (support counting runs in parallel).
package basket

import (
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/shopspring/decimal"
)

// Line is one (transaction id, item label, quantity) record handed over by
// data preparation.
type Line struct {
	TransactionID string
	Item          string
	Quantity      decimal.Decimal
}

// Matrix is a sparse boolean incidence structure. Rows are transactions
// sorted by id, columns are items sorted by label. Each row keeps the sorted
// indices of its true cells and each column keeps a bitset over rows; every
// cell that is not recorded is false.
type Matrix struct {
	items []string
	index map[string]int
	txIDs []string
	rows  [][]int
	cols  []*bitset.BitSet
	nnz   int
}

var one = decimal.NewFromInt(1)

// Present reports whether a summed quantity marks an item as bought. Sums
// below one whole unit (returns, zero lines, fractional adjustments) are not
// a purchase.
func Present(sum decimal.Decimal) bool {
	return sum.GreaterThanOrEqual(one)
}

// Encode groups lines by (transaction, item), sums their quantities and
// pivots the result into a Matrix. Items that are never present do not get a
// column and transactions with no present item do not get a row.
func Encode(lines []Line) (*Matrix, error) {
	sums := make(map[string]map[string]decimal.Decimal)
	for i, ln := range lines {
		if ln.TransactionID == "" || ln.Item == "" {
			return nil, fmt.Errorf("line %d: %w", i+1, ErrEmptyKey)
		}
		byItem := sums[ln.TransactionID]
		if byItem == nil {
			byItem = make(map[string]decimal.Decimal)
			sums[ln.TransactionID] = byItem
		}
		byItem[ln.Item] = byItem[ln.Item].Add(ln.Quantity)
	}

	bought := make(map[string][]string, len(sums))
	labels := make(map[string]struct{})
	for tx, byItem := range sums {
		for item, q := range byItem {
			if !Present(q) {
				continue
			}
			bought[tx] = append(bought[tx], item)
			labels[item] = struct{}{}
		}
	}

	m := &Matrix{
		items: make([]string, 0, len(labels)),
		index: make(map[string]int, len(labels)),
		txIDs: make([]string, 0, len(bought)),
	}
	for item := range labels {
		m.items = append(m.items, item)
	}
	sort.Strings(m.items)
	for i, item := range m.items {
		m.index[item] = i
	}
	for tx := range bought {
		m.txIDs = append(m.txIDs, tx)
	}
	sort.Strings(m.txIDs)

	m.rows = make([][]int, len(m.txIDs))
	m.cols = make([]*bitset.BitSet, len(m.items))
	for i := range m.cols {
		m.cols[i] = bitset.New(uint(len(m.txIDs)))
	}
	for t, tx := range m.txIDs {
		row := make([]int, 0, len(bought[tx]))
		for _, item := range bought[tx] {
			row = append(row, m.index[item])
		}
		sort.Ints(row)
		for _, i := range row {
			m.cols[i].Set(uint(t))
		}
		m.rows[t] = row
		m.nnz += len(row)
	}
	return m, nil
}

// NumTransactions returns the number of rows.
func (m *Matrix) NumTransactions() int { return len(m.txIDs) }

// NumItems returns the number of columns.
func (m *Matrix) NumItems() int { return len(m.items) }

// Items returns the column labels in column order.
func (m *Matrix) Items() []string {
	out := make([]string, len(m.items))
	copy(out, m.items)
	return out
}

// Item returns the label of column i. i must be in [0, NumItems()); it
// panics otherwise. Use ItemIndex or Count for unchecked input.
func (m *Matrix) Item(i int) string { return m.items[i] }

// Transactions returns the row ids in row order.
func (m *Matrix) Transactions() []string {
	out := make([]string, len(m.txIDs))
	copy(out, m.txIDs)
	return out
}

// ItemIndex returns the column of label.
func (m *Matrix) ItemIndex(label string) (int, bool) {
	i, ok := m.index[label]
	return i, ok
}

// Row returns the labels of the items bought in the transaction with id tx.
// Unknown ids yield nil.
func (m *Matrix) Row(tx string) []string {
	t := sort.SearchStrings(m.txIDs, tx)
	if t == len(m.txIDs) || m.txIDs[t] != tx {
		return nil
	}
	out := make([]string, len(m.rows[t]))
	for k, i := range m.rows[t] {
		out[k] = m.items[i]
	}
	return out
}

// Has reports the cell (tx, item). Pairs outside the matrix are false.
func (m *Matrix) Has(tx, item string) bool {
	i, ok := m.index[item]
	if !ok {
		return false
	}
	t := sort.SearchStrings(m.txIDs, tx)
	if t == len(m.txIDs) || m.txIDs[t] != tx {
		return false
	}
	return m.cols[i].Test(uint(t))
}

// Column returns the row bitset of item i. Callers must not modify it. Like
// Item, it panics when i is outside [0, NumItems()).
func (m *Matrix) Column(i int) *bitset.BitSet { return m.cols[i] }

// Count returns the number of transactions whose row is true for every
// given item. An empty item list counts every transaction.
func (m *Matrix) Count(items []int) (int, error) {
	for _, i := range items {
		if i < 0 || i >= len(m.cols) {
			return 0, fmt.Errorf("column %d: %w", i, ErrUnknownItem)
		}
	}
	switch len(items) {
	case 0:
		return len(m.txIDs), nil
	case 1:
		return int(m.cols[items[0]].Count()), nil
	case 2:
		return int(m.cols[items[0]].IntersectionCardinality(m.cols[items[1]])), nil
	}
	acc := m.cols[items[0]].Clone()
	for _, i := range items[1:] {
		acc.InPlaceIntersection(m.cols[i])
	}
	return int(acc.Count()), nil
}

// Density returns the fraction of true cells.
func (m *Matrix) Density() float64 {
	if len(m.txIDs) == 0 || len(m.items) == 0 {
		return 0
	}
	return float64(m.nnz) / (float64(len(m.txIDs)) * float64(len(m.items)))
}
