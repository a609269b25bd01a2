package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BlobInfo describes a stored blob without its value.
type BlobInfo struct {
	Key       string
	Size      int
	UpdatedAt int64
}

// Get returns the blob stored under key. ok is false when nothing is stored.
func (db *DB) Get(key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the blob stored under key.
func (db *DB) Set(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO blobs (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob stored under key, if any.
func (db *DB) Delete(key string) error {
	if _, err := db.Exec(`DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Blobs lists stored blobs ordered by key.
func (db *DB) Blobs() ([]BlobInfo, error) {
	rows, err := db.Query(`SELECT key, length(value), updated_at FROM blobs ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []BlobInfo
	for rows.Next() {
		var b BlobInfo
		if err := rows.Scan(&b.Key, &b.Size, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
