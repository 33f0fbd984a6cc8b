package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const onlineRetailCSV = "\ufeffInvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country\n" +
	"536365,85123A,WHITE HANGING HEART T-LIGHT HOLDER,6,12/1/2010 8:26,2.55,17850.0,United Kingdom\n" +
	"536365,71053,WHITE METAL LANTERN,6,12/1/2010 8:26,3.39,17850.0,United Kingdom\n" +
	"C536379,D,Discount,-1,12/1/2010 9:41,27.50,14527.0,United Kingdom\n" +
	"536370,22728,\"ALARM CLOCK BAKELIKE PINK, RETRO\",24,2010-12-01 08:45:00,\"3,75\",12583,France\n" +
	"536414,22139,,56,12/1/2010 11:52,0,,United Kingdom\n"

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func readRows(p string, opt ReadOptions) ([]Row, error) {
	tab, err := ReadTable(p, opt)
	if err != nil {
		return nil, err
	}
	return tab.Rows, nil
}

func TestReadCSVOnlineRetail(t *testing.T) {
	p := writeFile(t, "retail.csv", onlineRetailCSV)
	rows, err := readRows(p, ReadOptions{})
	if err != nil {
		t.Fatalf("readRows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.InvoiceNo != "536365" || first.CustomerID != "17850" {
		t.Fatalf("ids not normalized: %+v", first)
	}
	if got := first.InvoiceDate; !got.Equal(time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)) {
		t.Fatalf("invoice date: %v", got)
	}
	if !rows[2].Cancelled() || rows[2].Quantity.Decimal.String() != "-1" {
		t.Fatalf("cancellation row: %+v", rows[2])
	}
	fr := rows[3]
	if fr.Description != "ALARM CLOCK BAKELIKE PINK, RETRO" {
		t.Fatalf("quoted description: %q", fr.Description)
	}
	if fr.UnitPrice.Decimal.String() != "3.75" {
		t.Fatalf("comma decimal: %s", fr.UnitPrice.Decimal)
	}
	if fr.InvoiceDate.Hour() != 8 || fr.InvoiceDate.Minute() != 45 {
		t.Fatalf("iso date: %v", fr.InvoiceDate)
	}
	last := rows[4]
	if last.Description != "" || last.CustomerID != "" {
		t.Fatalf("expected empty description and customer: %+v", last)
	}
}

func TestReadTSVAndAliases(t *testing.T) {
	body := "order_id\tproduct name\tqty\n1\tbread\t2\n1\tmilk\t1\n2\tbread\t1\n"
	p := writeFile(t, "orders.tsv", body)
	rows, err := readRows(p, ReadOptions{})
	if err != nil {
		t.Fatalf("readRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1].InvoiceNo != "1" || rows[1].Description != "milk" || rows[1].Quantity.Decimal.IntPart() != 1 {
		t.Fatalf("unexpected row: %+v", rows[1])
	}
	if rows[0].Country != "" || rows[0].UnitPrice.Valid {
		t.Fatalf("absent columns should be empty: %+v", rows[0])
	}
}

func TestReadTableKeepsHeader(t *testing.T) {
	tab, err := ReadTable(writeFile(t, "orders.tsv", "order_id\tproduct name\tqty\n1\tbread\t2\n"), ReadOptions{})
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if strings.Join(tab.Header, ",") != "order_id,product name,qty" {
		t.Fatalf("header: %v", tab.Header)
	}
	for _, c := range []Column{ColInvoiceNo, ColDescription, ColQuantity} {
		if !tab.Has(c) {
			t.Errorf("expected %s to be present", c)
		}
	}
	for _, c := range []Column{ColStockCode, ColCustomerID, ColCountry} {
		if tab.Has(c) {
			t.Errorf("expected %s to be absent", c)
		}
	}
}

func TestReadCSVMaxRows(t *testing.T) {
	p := writeFile(t, "retail.csv", onlineRetailCSV)
	rows, err := readRows(p, ReadOptions{MaxRows: 2})
	if err != nil {
		t.Fatalf("readRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestReadCSVMissingColumns(t *testing.T) {
	p := writeFile(t, "bad.csv", "InvoiceNo,Country\n1,France\n")
	_, err := readRows(p, ReadOptions{})
	var mc *MissingColumnError
	if !errors.As(err, &mc) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if len(mc.Columns) != 2 || mc.Columns[0] != ColQuantity || mc.Columns[1] != ColDescription {
		t.Fatalf("unexpected missing columns: %v", mc.Columns)
	}
	if !strings.Contains(err.Error(), "Quantity, Description") {
		t.Fatalf("message: %v", err)
	}
}

func TestReadCSVEmptyFile(t *testing.T) {
	tab, err := ReadTable(writeFile(t, "empty.csv", ""), ReadOptions{})
	if err != nil || tab.Rows != nil || tab.Header != nil {
		t.Fatalf("expected an empty table and no error, got %+v, %v", tab, err)
	}
}

func TestReadTableUnsupported(t *testing.T) {
	_, err := readRows(writeFile(t, "retail.parquet", "x"), ReadOptions{})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestParseDecimal(t *testing.T) {
	cases := map[string]string{
		"6":        "6",
		"-12":      "-12",
		"2.55":     "2.55",
		"2,55":     "2.55",
		"1,234.5":  "1234.5",
		"1.234,5":  "1234.5",
		"1 234,50": "1234.5",
	}
	for in, want := range cases {
		got := parseDecimal(in)
		if !got.Valid || got.Decimal.String() != want {
			t.Errorf("parseDecimal(%q) = %v, want %s", in, got, want)
		}
	}
	for _, in := range []string{"", "  ", "n/a"} {
		if parseDecimal(in).Valid {
			t.Errorf("parseDecimal(%q) should be invalid", in)
		}
	}
}

func TestNormalizeID(t *testing.T) {
	for in, want := range map[string]string{"17850.0": "17850", "17850": "17850", "C536379": "C536379", "1.5": "1.5", "A.0": "A.0"} {
		if got := normalizeID(in); got != want {
			t.Errorf("normalizeID(%q) = %q, want %q", in, got, want)
		}
	}
}
