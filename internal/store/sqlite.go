package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps documents in a single SQLite table. Write transactions
// start with BEGIN IMMEDIATE so compare-and-swap updates are serialized.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database file at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", absPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", absPath, err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			body TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (collection, id)
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate documents table: %w", err)
	}
	return nil
}

// GetAll returns every record of a collection
func (s *SQLiteStore) GetAll(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, body
		FROM documents
		WHERE collection = ?
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("get all %s: %w", collection, err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", collection, err)
		}
		out[id] = json.RawMessage(body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", collection, err)
	}
	return out, nil
}

// Get returns a single record or nil
func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	return getDoc(ctx, s.db, collection, id)
}

// TransactionalUpdate reads, transforms and writes one record in a single transaction
func (s *SQLiteStore) TransactionalUpdate(ctx context.Context, collection, id string, fn UpdateFunc) (bool, json.RawMessage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getDoc(ctx, tx, collection, id)
	if err != nil {
		return false, nil, err
	}

	next, commit := fn(clone(current))
	if !commit {
		return false, current, nil
	}

	if next == nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
			return false, nil, fmt.Errorf("delete %s/%s: %w", collection, id, err)
		}
	} else if err := putDoc(ctx, tx, collection, id, next); err != nil {
		return false, nil, err
	}

	if err := tx.Commit(); err != nil {
		return false, nil, fmt.Errorf("commit transaction: %w", err)
	}
	return true, clone(next), nil
}

// Set replaces a record
func (s *SQLiteStore) Set(ctx context.Context, collection, id string, record any) error {
	doc, err := encode(record)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return putDoc(ctx, s.db, collection, id, doc)
}

// MultiUpdate applies all field updates inside one transaction
func (s *SQLiteStore) MultiUpdate(ctx context.Context, updates map[string]any) error {
	grouped, order, err := groupUpdates(updates)
	if err != nil {
		return fmt.Errorf("multi update: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range order {
		current, err := getDoc(ctx, tx, key.collection, key.id)
		if err != nil {
			return err
		}
		doc, err := applyAll(current, grouped[key])
		if err != nil {
			return fmt.Errorf("multi update %s/%s: %w", key.collection, key.id, err)
		}
		if err := putDoc(ctx, tx, key.collection, key.id, doc); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getDoc(ctx context.Context, q querier, collection, id string) (json.RawMessage, error) {
	var body string
	err := q.QueryRowContext(ctx, `
		SELECT body
		FROM documents
		WHERE collection = ? AND id = ?
	`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return json.RawMessage(body), nil
}

func putDoc(ctx context.Context, q querier, collection, id string, doc json.RawMessage) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP
	`, collection, id, string(doc))
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}
