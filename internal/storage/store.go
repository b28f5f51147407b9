// Package storage persists extraction results so downstream consumers can
// review, accept, reject and edit blocks. The engine never reads this
// store; corrected content goes back in only as new records, and
// re-scoring a block means re-running extraction.
package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codesift/codesift/internal/engine"
)

// FeedbackAction is a reviewer operation on a block.
type FeedbackAction string

const (
	ActionAccept FeedbackAction = "accept"
	ActionReject FeedbackAction = "reject"
	ActionModify FeedbackAction = "modify"
)

// Store is a SQLite-backed block store.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult persists one extraction result atomically: the file row
// first (blocks carry a foreign key to it), then every block.
func (s *Store) SaveResult(res *engine.Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	hash := sha256.Sum256([]byte(res.Path))
	_, err = sq.Insert("files").
		Columns("id", "path", "file_hash").
		Values(res.FileID, res.Path, hex.EncodeToString(hash[:])).
		Suffix("ON CONFLICT(id) DO NOTHING").
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert file %s: %w", res.Path, err)
	}

	for _, b := range res.Blocks {
		_, err = sq.Insert("blocks").
			Columns("id", "file_id", "language", "block_type", "method",
				"content", "start_line", "end_line", "confidence", "status").
			Values(b.ID, res.FileID, b.Language, string(b.Type), b.Method,
				b.Content, b.StartLine, b.EndLine, b.Confidence, string(b.Status)).
			Suffix("ON CONFLICT(id) DO NOTHING").
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert block %s: %w", b.ID, err)
		}
	}

	return tx.Commit()
}

// BlocksByFile returns all blocks of a file ordered by start line.
func (s *Store) BlocksByFile(fileID string) ([]engine.ExtractedBlock, error) {
	rows, err := sq.Select("id", "file_id", "language", "block_type", "method",
		"content", "start_line", "end_line", "confidence", "status").
		From("blocks").
		Where(sq.Eq{"file_id": fileID}).
		OrderBy("start_line").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	return scanBlocks(rows)
}

// BlocksByStatus returns all blocks in a given review state.
func (s *Store) BlocksByStatus(status engine.Status) ([]engine.ExtractedBlock, error) {
	rows, err := sq.Select("id", "file_id", "language", "block_type", "method",
		"content", "start_line", "end_line", "confidence", "status").
		From("blocks").
		Where(sq.Eq{"status": string(status)}).
		OrderBy("file_id", "start_line").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	return scanBlocks(rows)
}

func scanBlocks(rows *sql.Rows) ([]engine.ExtractedBlock, error) {
	var blocks []engine.ExtractedBlock
	for rows.Next() {
		var b engine.ExtractedBlock
		var blockType, status string
		if err := rows.Scan(&b.ID, &b.SourceFileID, &b.Language, &blockType, &b.Method,
			&b.Content, &b.StartLine, &b.EndLine, &b.Confidence, &status); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		b.Type = engine.BlockType(blockType)
		b.Status = engine.Status(status)
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// RecordFeedback applies an accept/reject decision: the status flips and
// the feedback event is kept for audit. Content and boundaries are never
// touched here.
func (s *Store) RecordFeedback(blockID string, action FeedbackAction, correctedLanguage string) error {
	if action == ActionModify {
		return fmt.Errorf("modify feedback must go through EditBlock")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status := engine.StatusAccepted
	if action == ActionReject {
		status = engine.StatusRejected
	}

	res, err := sq.Update("blocks").
		Set("status", string(status)).
		Where(sq.Eq{"id": blockID}).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to update block status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("block %s not found", blockID)
	}

	corrected := sql.NullString{String: correctedLanguage, Valid: correctedLanguage != ""}
	if _, err := sq.Insert("feedback").
		Columns("block_id", "action", "corrected_language").
		Values(blockID, string(action), corrected).
		RunWith(tx).
		Exec(); err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	return tx.Commit()
}

// EditBlock stores corrected content as a NEW block row pointing back at
// its parent. The original row keeps its identity, content and score; the
// edited copy carries no confidence claim (it was never extracted) and
// waits as pending until re-extraction or review.
func (s *Store) EditBlock(blockID, newContent string) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := sq.Select("file_id", "language", "block_type", "method", "start_line", "end_line").
		From("blocks").
		Where(sq.Eq{"id": blockID}).
		RunWith(tx).
		QueryRow()

	var fileID, language, blockType, method string
	var startLine, endLine int
	if err := row.Scan(&fileID, &language, &blockType, &method, &startLine, &endLine); err != nil {
		return "", fmt.Errorf("block %s not found: %w", blockID, err)
	}

	sum := sha256.Sum256([]byte(blockID + "\x00" + newContent))
	newID := hex.EncodeToString(sum[:16])

	if _, err := sq.Insert("blocks").
		Columns("id", "file_id", "parent_id", "language", "block_type", "method",
			"content", "start_line", "end_line", "confidence", "status").
		Values(newID, fileID, blockID, language, blockType, method,
			newContent, startLine, endLine, 0.0, string(engine.StatusPending)).
		RunWith(tx).
		Exec(); err != nil {
		return "", fmt.Errorf("failed to insert edited block: %w", err)
	}

	if _, err := sq.Insert("feedback").
		Columns("block_id", "action", "corrected_language").
		Values(blockID, string(ActionModify), sql.NullString{}).
		RunWith(tx).
		Exec(); err != nil {
		return "", fmt.Errorf("failed to record feedback: %w", err)
	}

	return newID, tx.Commit()
}

// FileCount reports how many files the store holds.
func (s *Store) FileCount() (int, error) {
	var n int
	err := sq.Select("COUNT(*)").From("files").RunWith(s.db).QueryRow().Scan(&n)
	return n, err
}
