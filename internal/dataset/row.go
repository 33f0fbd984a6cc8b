// Package dataset reads retail transaction tables (CSV/TSV/XLSX), cleans
// them and hands the basket encoder its (transaction, item, quantity) lines.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one line of the Online Retail table.
type Row struct {
	InvoiceNo   string
	StockCode   string
	Description string
	Quantity    decimal.NullDecimal
	InvoiceDate time.Time
	UnitPrice   decimal.NullDecimal
	CustomerID  string
	Country     string
}

// Cancelled reports whether the invoice is a cancellation (code starts with C).
func (r Row) Cancelled() bool {
	return strings.HasPrefix(strings.ToUpper(r.InvoiceNo), "C")
}

// Column identifies a field of Row.
type Column int

const (
	ColInvoiceNo Column = iota
	ColStockCode
	ColDescription
	ColQuantity
	ColInvoiceDate
	ColUnitPrice
	ColCustomerID
	ColCountry
	numColumns
)

var columnNames = [numColumns]string{
	"InvoiceNo", "StockCode", "Description", "Quantity",
	"InvoiceDate", "UnitPrice", "CustomerID", "Country",
}

func (c Column) String() string {
	if c < 0 || c >= numColumns {
		return "Column(" + strconv.Itoa(int(c)) + ")"
	}
	return columnNames[c]
}

// header aliases, normalized by normalizeHeader
var aliases = map[string]Column{
	"invoiceno": ColInvoiceNo, "invoice": ColInvoiceNo, "invoiceid": ColInvoiceNo,
	"orderid": ColInvoiceNo, "transactionid": ColInvoiceNo,
	"stockcode": ColStockCode, "sku": ColStockCode, "productid": ColStockCode,
	"description": ColDescription, "productname": ColDescription, "product": ColDescription, "item": ColDescription,
	"quantity": ColQuantity, "qty": ColQuantity,
	"invoicedate": ColInvoiceDate, "date": ColInvoiceDate,
	"unitprice": ColUnitPrice, "price": ColUnitPrice,
	"customerid": ColCustomerID, "customer": ColCustomerID, "userid": ColCustomerID,
	"country": ColCountry,
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// MissingColumnError reports required columns absent from a header.
type MissingColumnError struct {
	Columns []Column
	Header  []string
}

func (e *MissingColumnError) Error() string {
	names := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		names[i] = c.String()
	}
	return fmt.Sprintf("missing required column(s) %s in header [%s]",
		strings.Join(names, ", "), strings.Join(e.Header, ", "))
}

// columnMap maps each Column to its field position, -1 when absent.
type columnMap [numColumns]int

// indexHeader maps each Column to the first header field naming it.
func indexHeader(header []string) columnMap {
	var cm columnMap
	for i := range cm {
		cm[i] = -1
	}
	for i, h := range header {
		c, ok := aliases[normalizeHeader(h)]
		if ok && cm[c] < 0 {
			cm[c] = i
		}
	}
	return cm
}

// mapHeader indexes header and checks the columns every table needs.
func mapHeader(header []string) (columnMap, error) {
	cm := indexHeader(header)
	var missing []Column
	for _, c := range []Column{ColInvoiceNo, ColQuantity} {
		if cm[c] < 0 {
			missing = append(missing, c)
		}
	}
	if cm[ColDescription] < 0 && cm[ColStockCode] < 0 {
		missing = append(missing, ColDescription)
	}
	if len(missing) > 0 {
		return cm, &MissingColumnError{Columns: missing, Header: header}
	}
	return cm, nil
}

func (cm columnMap) field(rec []string, c Column) string {
	i := cm[c]
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// row converts a record; Excel-style serial dates are accepted when serial is true.
func (cm columnMap) row(rec []string, serial bool) Row {
	return Row{
		InvoiceNo:   normalizeID(cm.field(rec, ColInvoiceNo)),
		StockCode:   cm.field(rec, ColStockCode),
		Description: cm.field(rec, ColDescription),
		Quantity:    parseDecimal(cm.field(rec, ColQuantity)),
		InvoiceDate: parseDate(cm.field(rec, ColInvoiceDate), serial),
		UnitPrice:   parseDecimal(cm.field(rec, ColUnitPrice)),
		CustomerID:  normalizeID(cm.field(rec, ColCustomerID)),
		Country:     cm.field(rec, ColCountry),
	}
}

// normalizeID strips the ".0" float exports leave on integral ids.
func normalizeID(s string) string {
	if strings.HasSuffix(s, ".0") {
		if _, err := strconv.ParseInt(s[:len(s)-2], 10, 64); err == nil {
			return s[:len(s)-2]
		}
	}
	return s
}

// parseDecimal accepts '.' or ',' decimal separators with optional
// thousands grouping. Empty or unparsable values are invalid.
func parseDecimal(s string) decimal.NullDecimal {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "\u00a0", "")
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return decimal.NullDecimal{}
	}
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0 && cpos > dpos:
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	case cpos >= 0 && dpos >= 0:
		raw = strings.ReplaceAll(raw, ",", "")
	case cpos >= 0:
		raw = strings.Replace(raw, ",", ".", 1)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02",
	"1/2/2006 15:04:05", "1/2/2006 15:04", "1/2/2006", "02/01/2006 15:04", "2006/01/02",
}

// excelEpoch is day zero of the 1900 date system as Excel counts it.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

func parseDate(s string, serial bool) time.Time {
	if s == "" {
		return time.Time{}
	}
	if serial {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			days := math.Floor(f)
			secs := math.Round((f - days) * 86400)
			return excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)
		}
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
