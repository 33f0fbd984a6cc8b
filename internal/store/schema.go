package store

const schema = `
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL,
    sheet TEXT NOT NULL DEFAULT '',
    size_bytes INTEGER NOT NULL,
    mod_time INTEGER NOT NULL,
    row_count INTEGER NOT NULL,
    header TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    UNIQUE (path, sheet)
);

CREATE TABLE IF NOT EXISTS rows (
    source_id INTEGER NOT NULL,
    seq INTEGER NOT NULL,
    invoice_no TEXT NOT NULL,
    stock_code TEXT,
    description TEXT,
    quantity TEXT,
    invoice_date INTEGER,
    unit_price TEXT,
    customer_id TEXT,
    country TEXT,
    PRIMARY KEY (source_id, seq),
    FOREIGN KEY (source_id) REFERENCES sources(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sources_path ON sources(path);
`
