package storage

import (
	"database/sql"
	"fmt"
)

// schema is applied on open; CREATE IF NOT EXISTS keeps reopening cheap.
const schema = `
CREATE TABLE IF NOT EXISTS files (
	id         TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	file_hash  TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS blocks (
	id         TEXT PRIMARY KEY,
	file_id    TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	parent_id  TEXT REFERENCES blocks(id),
	language   TEXT NOT NULL,
	block_type TEXT NOT NULL,
	method     TEXT NOT NULL,
	content    TEXT NOT NULL,
	start_line INTEGER NOT NULL,
	end_line   INTEGER NOT NULL,
	confidence REAL NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_blocks_file_id ON blocks(file_id);
CREATE INDEX IF NOT EXISTS idx_blocks_status ON blocks(status);

CREATE TABLE IF NOT EXISTS feedback (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	block_id           TEXT NOT NULL REFERENCES blocks(id) ON DELETE CASCADE,
	action             TEXT NOT NULL,
	corrected_language TEXT,
	created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func applySchema(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
