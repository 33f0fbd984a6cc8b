package dataset

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const (
	fixtureWorkbook = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Notes" sheetId="1" r:id="rId1"/><sheet name="Online Retail" sheetId="2" r:id="rId2"/></sheets>
</workbook>`

	// rId2 uses an absolute target, which must be normalized before lookup.
	fixtureRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="/xl/worksheets/sheet2.xml"/>
</Relationships>`

	fixtureShared = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="10" uniqueCount="10">
<si><t>InvoiceNo</t></si><si><t>StockCode</t></si><si><t>Description</t></si><si><t>Quantity</t></si>
<si><t>InvoiceDate</t></si><si><t>UnitPrice</t></si><si><t>CustomerID</t></si><si><t>Country</t></si>
<si><t>WHITE HANGING HEART T-LIGHT HOLDER</t></si><si><r><t>United </t></r><r><t>Kingdom</t></r></si>
</sst>`

	fixtureNotes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>not a transaction table</t></is></c></row>
</sheetData></worksheet>`

	fixtureData = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="s"><v>2</v></c><c r="D1" t="s"><v>3</v></c><c r="E1" t="s"><v>4</v></c><c r="F1" t="s"><v>5</v></c><c r="G1" t="s"><v>6</v></c><c r="H1" t="s"><v>7</v></c></row>
<row r="2"><c r="A2"><v>536365</v></c><c r="B2" t="inlineStr"><is><t>85123A</t></is></c><c r="C2" t="s"><v>8</v></c><c r="D2"><v>6</v></c><c r="E2"><v>40513.3541666667</v></c><c r="F2"><v>2.55</v></c><c r="G2"><v>17850</v></c><c r="H2" t="s"><v>9</v></c></row>
<row r="3"><c r="A3" t="inlineStr"><is><t>C536379</t></is></c><c r="B3" t="inlineStr"><is><t>D</t></is></c><c r="C3" t="inlineStr"><is><t>Discount</t></is></c><c r="D3"><v>-1</v></c><c r="E3"><v>40513.5</v></c><c r="F3"><v>27.5</v></c><c r="G3"><v>14527</v></c><c r="H3" t="s"><v>9</v></c></row>
<row r="4"/>
<row r="5"><c r="A5"><v>536366</v></c><c r="D5"><v>2</v></c><c r="H5" t="inlineStr"><is><t>France</t></is></c></row>
</sheetData></worksheet>`
)

func writeXLSXFixture(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "Online Retail.xlsx")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create xlsx: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"xl/workbook.xml":            fixtureWorkbook,
		"xl/_rels/workbook.xml.rels": fixtureRels,
		"xl/sharedStrings.xml":       fixtureShared,
		"xl/worksheets/sheet1.xml":   fixtureNotes,
		"xl/worksheets/sheet2.xml":   fixtureData,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close xlsx: %v", err)
	}
	return p
}

func TestReadXLSXBySheetNameAndIndex(t *testing.T) {
	p := writeXLSXFixture(t)

	byName, err := readRows(p, ReadOptions{SheetName: "online retail"})
	if err != nil {
		t.Fatalf("readRows by name: %v", err)
	}
	byIndex, err := readRows(p, ReadOptions{SheetIndex: 2})
	if err != nil {
		t.Fatalf("readRows by index: %v", err)
	}
	for _, rows := range [][]Row{byName, byIndex} {
		if len(rows) != 3 {
			t.Fatalf("expected 3 rows (blank row skipped), got %d", len(rows))
		}
		r := rows[0]
		if r.InvoiceNo != "536365" || r.StockCode != "85123A" || r.Description != "WHITE HANGING HEART T-LIGHT HOLDER" {
			t.Fatalf("unexpected first row: %+v", r)
		}
		if r.Country != "United Kingdom" {
			t.Fatalf("rich shared string not joined: %q", r.Country)
		}
		if !r.Quantity.Valid || r.Quantity.Decimal.IntPart() != 6 {
			t.Fatalf("quantity: %+v", r.Quantity)
		}
		if r.UnitPrice.Decimal.String() != "2.55" {
			t.Fatalf("unit price: %s", r.UnitPrice.Decimal)
		}
		want := time.Date(2010, 12, 1, 8, 30, 0, 0, time.UTC)
		if !r.InvoiceDate.Equal(want) {
			t.Fatalf("serial date: got %v want %v", r.InvoiceDate, want)
		}
		if !rows[1].Cancelled() || rows[1].Quantity.Decimal.Sign() >= 0 {
			t.Fatalf("expected cancellation row, got %+v", rows[1])
		}
		sparse := rows[2]
		if sparse.InvoiceNo != "536366" || sparse.Description != "" || sparse.Country != "France" {
			t.Fatalf("sparse row misaligned: %+v", sparse)
		}
	}
}

func TestReadXLSXDefaultsToFirstSheet(t *testing.T) {
	p := writeXLSXFixture(t)
	_, err := readRows(p, ReadOptions{})
	var mc *MissingColumnError
	if !errors.As(err, &mc) {
		t.Fatalf("expected MissingColumnError from the notes sheet, got %v", err)
	}
}

func TestReadXLSXUnknownSheet(t *testing.T) {
	p := writeXLSXFixture(t)
	_, err := readRows(p, ReadOptions{SheetName: "Sheet9"})
	if err == nil || !strings.Contains(err.Error(), "available: Notes, Online Retail") {
		t.Fatalf("expected sheet listing, got %v", err)
	}
}

func TestReadXLSXMaxRows(t *testing.T) {
	p := writeXLSXFixture(t)
	rows, err := readRows(p, ReadOptions{SheetIndex: 2, MaxRows: 1})
	if err != nil {
		t.Fatalf("readRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
}

func TestSheetNames(t *testing.T) {
	names, err := SheetNames(writeXLSXFixture(t))
	if err != nil {
		t.Fatalf("SheetNames: %v", err)
	}
	if strings.Join(names, ",") != "Notes,Online Retail" {
		t.Fatalf("unexpected sheets: %v", names)
	}
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"styles.xml", "xl/styles.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.input); got != tt.expected {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestColIndexFromRef(t *testing.T) {
	for ref, want := range map[string]int{"A1": 0, "H12": 7, "Z3": 25, "AA10": 26, "ab2": 27} {
		if got := colIndexFromRef(ref); got != want {
			t.Errorf("colIndexFromRef(%q) = %d, want %d", ref, got, want)
		}
	}
}
