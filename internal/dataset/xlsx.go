package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(p string) bool { return hasExt(p, ".xlsx") }

// Read loads the selected sheet. If SheetName is empty and SheetIndex <= 0,
// the first sheet is used. SheetIndex is 1-based.
func (xlsxReader) Read(p string, opt ReadOptions) (*Table, error) {
	wb, err := openWorkbook(p)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	target, err := wb.sheetPath(opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
	}
	data, ok := wb.file(target)
	if !ok {
		return nil, fmt.Errorf("%s: worksheet %s missing from archive", filepath.Base(p), target)
	}
	rr := newSheetRowReader(data, wb.shared)
	header, ok := rr.Next()
	if !ok || len(header) == 0 {
		return &Table{}, nil
	}
	header = append([]string(nil), header...)
	cm, err := mapHeader(header)
	if err != nil {
		return nil, err
	}
	t := &Table{Header: header}
	for opt.MaxRows <= 0 || len(t.Rows) < opt.MaxRows {
		rec, ok := rr.Next()
		if !ok {
			break
		}
		if blank(rec) {
			continue
		}
		t.Rows = append(t.Rows, cm.row(rec, true))
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type workbook struct {
	zc     *zip.ReadCloser
	sheets []wbSheet
	rels   map[string]string
	shared []string
}

type wbSheet struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RID     string `xml:"id,attr"` // r:id
}

type wbXML struct {
	Sheets []wbSheet `xml:"sheets>sheet"`
}

type relsXML struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// sstXML is the shared string table. An item is either plain text or a list
// of rich text runs.
type sstXML struct {
	Items []struct {
		T    string `xml:"t"`
		Runs []struct {
			T string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

func openWorkbook(p string) (*workbook, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb := &workbook{zc: zr, rels: map[string]string{}}
	if err := wb.load(); err != nil {
		zr.Close()
		return nil, err
	}
	return wb, nil
}

func (wb *workbook) Close() error { return wb.zc.Close() }

func (wb *workbook) load() error {
	zr := wb.zc

	var wx wbXML
	if err := decodeMember(zr.File, "xl/workbook.xml", &wx); err != nil {
		return err
	}
	wb.sheets = wx.Sheets

	var rx relsXML
	if err := decodeMember(zr.File, "xl/_rels/workbook.xml.rels", &rx); err != nil {
		return err
	}
	for _, r := range rx.Rels {
		if r.ID != "" && r.Target != "" {
			wb.rels[r.ID] = r.Target
		}
	}

	var sx sstXML
	if err := decodeMember(zr.File, "xl/sharedStrings.xml", &sx); err != nil {
		return err
	}
	wb.shared = make([]string, len(sx.Items))
	for i, it := range sx.Items {
		if len(it.Runs) == 0 {
			wb.shared[i] = it.T
			continue
		}
		var b strings.Builder
		for _, r := range it.Runs {
			b.WriteString(r.T)
		}
		wb.shared[i] = b.String()
	}
	return nil
}

// decodeMember unmarshals the archive member name into v. A missing member
// leaves v untouched.
func decodeMember(files []*zip.File, name string, v any) error {
	for _, f := range files {
		if f.Name != name {
			continue
		}
		b, err := readZipFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := xml.Unmarshal(b, v); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		return nil
	}
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (wb *workbook) file(name string) ([]byte, bool) {
	for _, f := range wb.zc.File {
		if f.Name == name {
			b, err := readZipFile(f)
			return b, err == nil
		}
	}
	return nil, false
}

// sheetPath resolves the archive path of the requested worksheet.
func (wb *workbook) sheetPath(name string, index int) (string, error) {
	if name != "" {
		for _, s := range wb.sheets {
			if strings.EqualFold(s.Name, name) {
				if rel, ok := wb.rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
			}
		}
		avail := make([]string, len(wb.sheets))
		for i, s := range wb.sheets {
			avail[i] = s.Name
		}
		return "", fmt.Errorf("sheet %q not found (available: %s)", name, strings.Join(avail, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range wb.sheets {
		if s.SheetID == index {
			if rel, ok := wb.rels[s.RID]; ok {
				return normalizeRelPath(rel), nil
			}
		}
	}
	return path.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", index)), nil
}

// sheetRowReader streams rows of a worksheet as string slices.
type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

// Next returns the next row padded to its highest referenced column.
func (r *sheetRowReader) Next() ([]string, bool) {
	var row []string
	inRow := false
	next := 0
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow = true
				row = row[:0]
				next = 0
			case inRow && se.Name.Local == "c":
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col := next
				if ref != "" {
					if c := colIndexFromRef(ref); c >= 0 {
						col = c
					}
				}
				for len(row) <= col {
					row = append(row, "")
				}
				row[col] = r.cellValue(typ)
				next = col + 1
			}
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				return row, true
			}
		}
	}
}

// cellValue reads up to the end of the current <c> element, capturing <v>
// or inline <is><t> text.
func (r *sheetRowReader) cellValue(typ string) string {
	var val strings.Builder
	capture := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				capture = true
			}
		case xml.EndElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				capture = false
			}
			if se.Name.Local == "c" {
				return r.resolve(typ, val.String())
			}
		case xml.CharData:
			if capture {
				val.Write(se)
			}
		}
	}
	return r.resolve(typ, val.String())
}

func (r *sheetRowReader) resolve(typ, v string) string {
	if typ != "s" {
		return v
	}
	idx, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || idx < 0 || idx >= len(r.shared) {
		return ""
	}
	return r.shared[idx]
}

// colIndexFromRef maps refs like "C12" to a 0-based column index.
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

// normalizeRelPath converts relationship targets to archive paths.
// Targets may be absolute ("/xl/worksheets/sheet1.xml") or relative to xl/.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}

var errNoSheets = errors.New("workbook has no sheets")

// SheetNames lists the sheets of an .xlsx workbook in workbook order.
func SheetNames(p string) ([]string, error) {
	wb, err := openWorkbook(p)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	if len(wb.sheets) == 0 {
		return nil, errNoSheets
	}
	out := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		out[i] = s.Name
	}
	return out, nil
}
