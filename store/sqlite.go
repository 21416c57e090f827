package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/always-cache/conditional/rfc7232"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStore is a ValidatorStore backed by a SQLite database file.
// Use the filename "file::memory:?cache=shared" for an in-memory database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(filename string) (SQLiteStore, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return SQLiteStore{}, err
	}
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS validators (key TEXT PRIMARY KEY, etag TEXT, last_modified INTEGER)")
	if err != nil {
		return SQLiteStore{}, err
	}
	return SQLiteStore{db: db}, nil
}

func (s SQLiteStore) Get(ctx context.Context, key string) (rfc7232.TimedValidator, bool, error) {
	var rec record
	err := s.db.QueryRowContext(ctx,
		"SELECT etag, last_modified FROM validators WHERE key = ?", key).
		Scan(&rec.ETag, &rec.LastModified)
	if errors.Is(err, sql.ErrNoRows) {
		return rfc7232.TimedValidator{}, false, nil
	}
	if err != nil {
		return rfc7232.TimedValidator{}, false, err
	}
	return rec.validator(), true, nil
}

func (s SQLiteStore) Put(ctx context.Context, key string, v rfc7232.TimedValidator) error {
	rec := toRecord(v)
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO validators (key, etag, last_modified) VALUES (?, ?, ?)",
		key, rec.ETag, rec.LastModified)
	return err
}

func (s SQLiteStore) Purge(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM validators WHERE key = ?", key)
	return err
}

// Close closes the underlying database.
func (s SQLiteStore) Close() error {
	return s.db.Close()
}
