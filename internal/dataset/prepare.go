package dataset

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/basketloom-cli/internal/basket"
)

// ItemColumn selects which field labels an item.
type ItemColumn string

const (
	ItemDescription ItemColumn = "description"
	ItemStockCode   ItemColumn = "stockcode"
)

// ParseItemColumn accepts "description" or "stockcode" (any case, "_"/"-" ignored).
func ParseItemColumn(s string) (ItemColumn, error) {
	switch normalizeHeader(s) {
	case "description", "":
		return ItemDescription, nil
	case "stockcode":
		return ItemStockCode, nil
	}
	return "", fmt.Errorf("invalid item column %q (use description|stockcode)", s)
}

// PrepareOptions controls cleaning before encoding.
type PrepareOptions struct {
	// Country keeps only rows of this country (case-insensitive); empty keeps all.
	Country string
	// ItemColumn labels items by description or stock code.
	ItemColumn ItemColumn
	// PositiveOnly drops lines with quantity <= 0.
	PositiveOnly bool
	// DropCancellations drops invoices whose number starts with C.
	DropCancellations bool
	// RequireCustomer drops lines without a customer id.
	RequireCustomer bool
}

// DefaultPrepareOptions mirrors the Online Retail study: United Kingdom,
// described items, positive quantities, known customers, no cancellations.
func DefaultPrepareOptions() PrepareOptions {
	return PrepareOptions{
		Country:           "United Kingdom",
		ItemColumn:        ItemDescription,
		PositiveOnly:      true,
		DropCancellations: true,
		RequireCustomer:   true,
	}
}

// PrepareStats counts why rows were dropped.
type PrepareStats struct {
	Input        int `json:"input" yaml:"input"`
	Incomplete   int `json:"incomplete" yaml:"incomplete"`
	Cancelled    int `json:"cancelled" yaml:"cancelled"`
	NonPositive  int `json:"non_positive" yaml:"non_positive"`
	OtherCountry int `json:"other_country" yaml:"other_country"`
	Kept         int `json:"kept" yaml:"kept"`
}

// Prepare filters rows and converts them to basket lines. Each row is counted
// under the first rule that drops it.
func Prepare(rows []Row, opt PrepareOptions) ([]basket.Line, PrepareStats, error) {
	col, err := ParseItemColumn(string(opt.ItemColumn))
	if err != nil {
		return nil, PrepareStats{}, err
	}
	country := strings.TrimSpace(opt.Country)
	st := PrepareStats{Input: len(rows)}
	lines := make([]basket.Line, 0, len(rows))
	for _, r := range rows {
		item := r.Description
		if col == ItemStockCode {
			item = r.StockCode
		}
		switch {
		case r.InvoiceNo == "" || item == "" || !r.Quantity.Valid ||
			(opt.RequireCustomer && r.CustomerID == ""):
			st.Incomplete++
			continue
		case opt.DropCancellations && r.Cancelled():
			st.Cancelled++
			continue
		case opt.PositiveOnly && !r.Quantity.Decimal.IsPositive():
			st.NonPositive++
			continue
		case country != "" && !strings.EqualFold(strings.TrimSpace(r.Country), country):
			st.OtherCountry++
			continue
		}
		lines = append(lines, basket.Line{TransactionID: r.InvoiceNo, Item: item, Quantity: r.Quantity.Decimal})
	}
	st.Kept = len(lines)
	return lines, st, nil
}

// PrepareTable is Prepare for a table read from disk. It fails with a
// MissingColumnError when the header lacks a column opt filters on or labels
// items by, since every row would otherwise be dropped.
func PrepareTable(t *Table, opt PrepareOptions) ([]basket.Line, PrepareStats, error) {
	col, err := ParseItemColumn(string(opt.ItemColumn))
	if err != nil {
		return nil, PrepareStats{}, err
	}
	if t == nil {
		return Prepare(nil, opt)
	}
	if missing := requiredColumns(t, opt, col); len(missing) > 0 {
		return nil, PrepareStats{Input: len(t.Rows)}, &MissingColumnError{Columns: missing, Header: t.Header}
	}
	return Prepare(t.Rows, opt)
}

// requiredColumns lists the columns opt depends on that t does not carry. A
// table without a header has no rows and needs nothing.
func requiredColumns(t *Table, opt PrepareOptions, col ItemColumn) []Column {
	if len(t.Header) == 0 {
		return nil
	}
	var need []Column
	if col == ItemStockCode {
		need = append(need, ColStockCode)
	} else {
		need = append(need, ColDescription)
	}
	if opt.RequireCustomer {
		need = append(need, ColCustomerID)
	}
	if strings.TrimSpace(opt.Country) != "" {
		need = append(need, ColCountry)
	}
	var missing []Column
	for _, c := range need {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}
