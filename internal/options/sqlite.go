package options

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const createOptionsTable = `CREATE TABLE IF NOT EXISTS options (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at INTEGER DEFAULT (strftime('%s', 'now'))
)`

// SQLiteStore keeps options in a single name/value table, the same shape as a
// CMS options table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// options table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(createOptionsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create options table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (ss *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := ss.db.QueryRowContext(ctx, `SELECT value FROM options WHERE name = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrOptionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select option %s: %w", key, err)
	}
	return value, nil
}

func (ss *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := ss.db.ExecContext(ctx,
		`INSERT INTO options (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = strftime('%s', 'now')`,
		key, value)
	if err != nil {
		return fmt.Errorf("upsert option %s: %w", key, err)
	}
	return nil
}

func (ss *SQLiteStore) Add(ctx context.Context, key, value string) (bool, error) {
	res, err := ss.db.ExecContext(ctx, `INSERT OR IGNORE INTO options (name, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return false, fmt.Errorf("insert option %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (ss *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := ss.db.ExecContext(ctx, `DELETE FROM options WHERE name = ?`, key); err != nil {
		return fmt.Errorf("delete option %s: %w", key, err)
	}
	return nil
}

func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}
