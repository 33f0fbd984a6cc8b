package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/KaramelBytes/basketloom-cli/internal/dataset"
)

// SaveTable replaces the cached header and rows of fp in a single transaction.
func (s *Store) SaveTable(ctx context.Context, fp Fingerprint, t *dataset.Table) error {
	if t == nil {
		t = &dataset.Table{}
	}
	rows := t.Rows
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE path = ? AND sheet = ?`, fp.Path, fp.Sheet); err != nil {
		return fmt.Errorf("failed to drop previous entry for %s: %w", fp.Path, classify(err))
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO sources (path, sheet, size_bytes, mod_time, row_count, header, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, fp.Path, fp.Sheet, fp.Size, fp.ModTime.UnixNano(), len(rows), encodeHeader(t.Header),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert source %s: %w", fp.Path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read source id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rows
		(source_id, seq, invoice_no, stock_code, description, quantity, invoice_date, unit_price, customer_id, country)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		var date sql.NullInt64
		if !r.InvoiceDate.IsZero() {
			date = sql.NullInt64{Int64: r.InvoiceDate.UnixMilli(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, i, r.InvoiceNo, r.StockCode, r.Description,
			r.Quantity, date, r.UnitPrice, r.CustomerID, r.Country); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rows: %w", err)
	}
	return nil
}

// LoadTable returns the cached header and rows of fp, rows in their original
// order. It returns ErrNotCached when the source is unknown or the file
// changed after caching.
func (s *Store) LoadTable(ctx context.Context, fp Fingerprint) (*dataset.Table, error) {
	src, err := s.source(ctx, fp.Path, fp.Sheet)
	if err != nil {
		return nil, err
	}
	if !src.Matches(fp) {
		return nil, fmt.Errorf("%w: %s changed since it was cached", ErrNotCached, fp.Path)
	}

	rs, err := s.db.QueryContext(ctx, `
		SELECT invoice_no, stock_code, description, quantity, invoice_date, unit_price, customer_id, country
		FROM rows
		WHERE source_id = ?
		ORDER BY seq
	`, src.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", classify(err))
	}
	defer rs.Close()

	out := make([]dataset.Row, 0, src.Rows)
	for rs.Next() {
		var (
			r             dataset.Row
			stock, desc   sql.NullString
			cust, country sql.NullString
			qty, price    decimal.NullDecimal
			date          sql.NullInt64
		)
		if err := rs.Scan(&r.InvoiceNo, &stock, &desc, &qty, &date, &price, &cust, &country); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.StockCode, r.Description = stock.String, desc.String
		r.CustomerID, r.Country = cust.String, country.String
		r.Quantity, r.UnitPrice = qty, price
		if date.Valid {
			r.InvoiceDate = time.UnixMilli(date.Int64).UTC()
		}
		out = append(out, r)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return &dataset.Table{Header: src.Header, Rows: out}, nil
}

func (s *Store) source(ctx context.Context, path, sheet string) (Source, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, sheet, size_bytes, mod_time, row_count, header, created_at
		FROM sources
		WHERE path = ? AND sheet = ?
	`, path, sheet)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, fmt.Errorf("%w: %s", ErrNotCached, path)
	}
	if err != nil {
		return Source{}, fmt.Errorf("failed to get source %s: %w", path, classify(err))
	}
	return src, nil
}

// ListSources returns every cached source ordered by path and sheet.
func (s *Store) ListSources(ctx context.Context) ([]Source, error) {
	rs, err := s.db.QueryContext(ctx, `
		SELECT id, path, sheet, size_bytes, mod_time, row_count, header, created_at
		FROM sources
		ORDER BY path, sheet
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", classify(err))
	}
	defer rs.Close()

	var out []Source
	for rs.Next() {
		src, err := scanSource(rs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		out = append(out, src)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sources: %w", err)
	}
	return out, nil
}

// Clear removes every cached source and its rows, returning how many sources
// were dropped.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sources`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared sources: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSource(sc scanner) (Source, error) {
	var (
		src       Source
		modTime   int64
		header    string
		createdAt string
	)
	if err := sc.Scan(&src.ID, &src.Path, &src.Sheet, &src.Size, &modTime, &src.Rows, &header, &createdAt); err != nil {
		return Source{}, err
	}
	src.Header = decodeHeader(header)
	src.ModTime = time.Unix(0, modTime)
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Source{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	src.CreatedAt = t
	return src, nil
}
