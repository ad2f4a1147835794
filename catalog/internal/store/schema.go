// CLAUDE:SUMMARY Applies the complete catalog SQL schema including the FTS5 index and triggers.
package store

import (
	"database/sql"
	"fmt"
)

// Schema is the complete catalog schema.
const Schema = `
-- Datasets in the catalog
CREATE TABLE IF NOT EXISTS datasets (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    version     TEXT NOT NULL DEFAULT '1.0.0',
    description TEXT NOT NULL DEFAULT '',
    homepage    TEXT NOT NULL DEFAULT '',
    citation    TEXT NOT NULL DEFAULT '',
    example_url TEXT NOT NULL DEFAULT '',
    config_json TEXT NOT NULL DEFAULT '{}',
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_datasets_name_version ON datasets(name, version);

-- Feature schema rows, ordered by position within a dataset
CREATE TABLE IF NOT EXISTS features (
    id         TEXT PRIMARY KEY,
    dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    dtype      TEXT NOT NULL,
    shape_json TEXT NOT NULL DEFAULT '[]',
    split      TEXT NOT NULL DEFAULT '',
    position   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_features_dataset ON features(dataset_id, position);

-- Fetched example snapshots (body stored verbatim)
CREATE TABLE IF NOT EXISTS examples (
    id            TEXT PRIMARY KEY,
    dataset_id    TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
    content_hash  TEXT NOT NULL,
    body_html     TEXT NOT NULL,
    body_markdown TEXT NOT NULL DEFAULT '',
    status_code   INTEGER NOT NULL DEFAULT 0,
    etag          TEXT NOT NULL DEFAULT '',
    last_modified TEXT NOT NULL DEFAULT '',
    fetched_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_examples_dataset ON examples(dataset_id, fetched_at DESC);

-- FTS5 on datasets (name + description)
CREATE VIRTUAL TABLE IF NOT EXISTS datasets_fts USING fts5(
    name, description, content='datasets', content_rowid='rowid',
    tokenize='unicode61 remove_diacritics 2'
);

-- Triggers to keep FTS5 in sync
CREATE TRIGGER IF NOT EXISTS datasets_ai AFTER INSERT ON datasets BEGIN
    INSERT INTO datasets_fts(rowid, name, description) VALUES (new.rowid, new.name, new.description);
END;
CREATE TRIGGER IF NOT EXISTS datasets_ad AFTER DELETE ON datasets BEGIN
    INSERT INTO datasets_fts(datasets_fts, rowid, name, description) VALUES('delete', old.rowid, old.name, old.description);
END;
CREATE TRIGGER IF NOT EXISTS datasets_au AFTER UPDATE ON datasets BEGIN
    INSERT INTO datasets_fts(datasets_fts, rowid, name, description) VALUES('delete', old.rowid, old.name, old.description);
    INSERT INTO datasets_fts(rowid, name, description) VALUES (new.rowid, new.name, new.description);
END;

-- Fetch log (observability)
CREATE TABLE IF NOT EXISTS fetch_log (
    id            TEXT PRIMARY KEY,
    dataset_id    TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
    status        TEXT NOT NULL,
    status_code   INTEGER,
    content_hash  TEXT NOT NULL DEFAULT '',
    error_message TEXT NOT NULL DEFAULT '',
    duration_ms   INTEGER NOT NULL DEFAULT 0,
    fetched_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fetch_log_dataset ON fetch_log(dataset_id, fetched_at DESC);

-- Search log (user search history)
CREATE TABLE IF NOT EXISTS search_log (
    id           TEXT PRIMARY KEY,
    query        TEXT NOT NULL,
    result_count INTEGER NOT NULL DEFAULT 0,
    searched_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_log_time ON search_log(searched_at DESC);
`

// columnMigrations adds columns introduced after the initial schema. The
// CREATE TABLE statements already include them; these cover databases
// created by earlier versions.
var columnMigrations = []struct{ table, column, ddl string }{
	{"examples", "etag", `ALTER TABLE examples ADD COLUMN etag TEXT NOT NULL DEFAULT ''`},
	{"examples", "last_modified", `ALTER TABLE examples ADD COLUMN last_modified TEXT NOT NULL DEFAULT ''`},
}

// ApplySchema creates all tables, indexes and triggers on the given database,
// then applies column migrations. Idempotent.
func ApplySchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return err
	}
	for _, m := range columnMigrations {
		var count int
		q := fmt.Sprintf(`SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name = ?`, m.table)
		if err := db.QueryRow(q, m.column).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			if _, err := db.Exec(m.ddl); err != nil {
				return fmt.Errorf("add column %s.%s: %w", m.table, m.column, err)
			}
		}
	}
	return nil
}
