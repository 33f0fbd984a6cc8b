package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

type csvReader struct{}

func (csvReader) CanRead(path string) bool { return hasExt(path, ".csv", ".tsv") }

func (csvReader) Read(path string, opt ReadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return readCSV(f, delimiterFor(path, opt.Delimiter), opt.MaxRows)
}

func delimiterFor(path string, d rune) rune {
	if d != 0 {
		return d
	}
	if hasExt(path, ".tsv") {
		return '\t'
	}
	return ','
}

func readCSV(src io.Reader, delim rune, maxRows int) (*Table, error) {
	r := csv.NewReader(src)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)
	cm, err := mapHeader(header)
	if err != nil {
		return nil, err
	}
	t := &Table{Header: header}
	for line := 2; maxRows <= 0 || len(t.Rows) < maxRows; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		t.Rows = append(t.Rows, cm.row(rec, false))
	}
	return t, nil
}
