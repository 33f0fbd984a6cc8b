package dataset

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DatasetProfile is a descriptive summary of a transaction table.
type DatasetProfile struct {
	Name          string
	Rows          int
	Invoices      int
	Customers     int
	Cancellations int
	NonPositive   int
	FirstDate     time.Time
	LastDate      time.Time
	Missing       map[Column]int
	Countries     []ValueCount
	TopItems      []ValueCount
	Samples       []Row
}

// ValueCount is a value with its number of occurrences.
type ValueCount struct {
	Value string
	Count int
}

// Profile summarizes rows. top bounds the item list (<= 0 means 10); all
// countries are listed.
func Profile(name string, rows []Row, top int) *DatasetProfile {
	if top <= 0 {
		top = 10
	}
	p := &DatasetProfile{Name: name, Rows: len(rows), Missing: map[Column]int{}}
	invoices := map[string]struct{}{}
	customers := map[string]struct{}{}
	countries := map[string]int{}
	items := map[string]int{}
	for i, r := range rows {
		if i < 5 {
			p.Samples = append(p.Samples, r)
		}
		if r.InvoiceNo == "" {
			p.Missing[ColInvoiceNo]++
		} else {
			invoices[r.InvoiceNo] = struct{}{}
		}
		if r.StockCode == "" {
			p.Missing[ColStockCode]++
		}
		if r.Description == "" {
			p.Missing[ColDescription]++
		} else {
			items[r.Description]++
		}
		if !r.Quantity.Valid {
			p.Missing[ColQuantity]++
		} else if !r.Quantity.Decimal.IsPositive() {
			p.NonPositive++
		}
		if r.InvoiceDate.IsZero() {
			p.Missing[ColInvoiceDate]++
		} else {
			if p.FirstDate.IsZero() || r.InvoiceDate.Before(p.FirstDate) {
				p.FirstDate = r.InvoiceDate
			}
			if r.InvoiceDate.After(p.LastDate) {
				p.LastDate = r.InvoiceDate
			}
		}
		if !r.UnitPrice.Valid {
			p.Missing[ColUnitPrice]++
		}
		if r.CustomerID == "" {
			p.Missing[ColCustomerID]++
		} else {
			customers[r.CustomerID] = struct{}{}
		}
		if r.Country == "" {
			p.Missing[ColCountry]++
		} else {
			countries[r.Country]++
		}
		if r.Cancelled() {
			p.Cancellations++
		}
	}
	p.Invoices = len(invoices)
	p.Customers = len(customers)
	p.Countries = sortedCounts(countries, 0)
	p.TopItems = sortedCounts(items, top)
	return p
}

// sortedCounts orders by count desc, then value; limit <= 0 keeps all.
func sortedCounts(m map[string]int, limit int) []ValueCount {
	out := make([]ValueCount, 0, len(m))
	for v, c := range m {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Markdown renders the profile as compact sections.
func (p *DatasetProfile) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", p.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %s\n", humanize.Comma(int64(p.Rows))))
	b.WriteString(fmt.Sprintf("Invoices: %s\n", humanize.Comma(int64(p.Invoices))))
	b.WriteString(fmt.Sprintf("Customers: %s\n", humanize.Comma(int64(p.Customers))))
	b.WriteString(fmt.Sprintf("Cancellations: %s\n", humanize.Comma(int64(p.Cancellations))))
	b.WriteString(fmt.Sprintf("Non-positive quantities: %s\n", humanize.Comma(int64(p.NonPositive))))
	if !p.FirstDate.IsZero() {
		b.WriteString(fmt.Sprintf("Period: %s .. %s\n", p.FirstDate.Format("2006-01-02"), p.LastDate.Format("2006-01-02")))
	}

	b.WriteString("\n[MISSING VALUES]\n")
	for c := Column(0); c < numColumns; c++ {
		b.WriteString(fmt.Sprintf("- %s: %d\n", c, p.Missing[c]))
	}

	if len(p.Samples) > 0 {
		b.WriteString("\n[HEAD]\n")
		b.WriteString("| InvoiceNo | StockCode | Description | Quantity | CustomerID | Country |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, r := range p.Samples {
			qty := ""
			if r.Quantity.Valid {
				qty = r.Quantity.Decimal.String()
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				cell(r.InvoiceNo), cell(r.StockCode), cell(r.Description), qty, cell(r.CustomerID), cell(r.Country)))
		}
	}

	if len(p.Countries) > 0 {
		b.WriteString("\n[COUNTRIES]\n")
		for _, vc := range p.Countries {
			b.WriteString(fmt.Sprintf("- %s: %s\n", vc.Value, humanize.Comma(int64(vc.Count))))
		}
	}
	if len(p.TopItems) > 0 {
		b.WriteString("\n[TOP ITEMS]\n")
		for _, vc := range p.TopItems {
			b.WriteString(fmt.Sprintf("- %s: %s\n", vc.Value, humanize.Comma(int64(vc.Count))))
		}
	}
	return b.String()
}

func cell(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
