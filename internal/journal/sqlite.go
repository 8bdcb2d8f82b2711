// Package journal implements the operations journal: a small SQLite record
// of every store-mutating CLI operation, backing the history command.
package journal

import (
	"database/sql"
	"fmt"

	"scribe-go/internal/journal/migrations"
	"scribe-go/internal/model"
	"scribe-go/internal/scribe"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal implements the Journal interface using SQLite.
type SQLiteJournal struct {
	db    *sql.DB
	clock scribe.Clock
	idgen scribe.IDGenerator
}

// NewSQLiteJournal opens (or creates) the journal at path and migrates its
// schema. path can be a file path or ":memory:".
func NewSQLiteJournal(path string, clock scribe.Clock, idgen scribe.IDGenerator) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal schema: %w", err)
	}

	return &SQLiteJournal{db: db, clock: clock, idgen: idgen}, nil
}

// Begin records the start of an operation and returns its id.
func (j *SQLiteJournal) Begin(operation, parameters string) (string, error) {
	id := j.idgen.New()
	_, err := j.db.Exec(
		"INSERT INTO operations (id, operation, parameters, started_at) VALUES (?, ?, ?, ?)",
		id, operation, parameters, j.clock.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("recording operation %s: %w", operation, err)
	}
	return id, nil
}

// Finish stamps an operation with its outcome.
func (j *SQLiteJournal) Finish(id, status string) error {
	res, err := j.db.Exec(
		"UPDATE operations SET finished_at = ?, status = ? WHERE id = ?",
		j.clock.Now(), status, id,
	)
	if err != nil {
		return fmt.Errorf("finishing operation %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing operation %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("operation %s not found in journal", id)
	}
	return nil
}

// List returns the most recent operations, newest first.
func (j *SQLiteJournal) List(limit int) ([]*model.JournalOperation, error) {
	rows, err := j.db.Query(
		"SELECT id, operation, parameters, started_at, finished_at, status FROM operations ORDER BY started_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*model.JournalOperation
	for rows.Next() {
		op := &model.JournalOperation{}
		var finished sql.NullTime
		if err := rows.Scan(&op.ID, &op.Operation, &op.Parameters, &op.StartedAt, &finished, &op.Status); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			op.FinishedAt = &t
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// Close closes the journal database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// Compile-time check that SQLiteJournal implements the Journal interface.
var _ scribe.Journal = (*SQLiteJournal)(nil)
