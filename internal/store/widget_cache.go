// Package store persists the few fields the home-screen widget needs between
// process lifetimes.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a cache key has never been written.
var ErrNotFound = errors.New("no cached value for key")

// Keys the widget reads. Written only by the background refresher.
const (
	KeyLastTemp   = "last_temp"
	KeyLastLoc    = "last_loc"
	KeyLastSymbol = "last_symbol"
)

// WidgetCache is a small SQLite-backed key-value store shared with the widget
// process. Writers upsert whole values; readers may interleave with a write
// and observe the previous value; the widget tolerates staleness of one
// refresh interval.
type WidgetCache struct {
	db *sql.DB
}

// Open opens (and if needed creates) the cache database at path.
func Open(path string) (*WidgetCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open widget cache: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS widget_cache (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init widget cache schema: %w", err)
	}

	return &WidgetCache{db: db}, nil
}

func (c *WidgetCache) Close() error {
	return c.db.Close()
}

// Put upserts one key.
func (c *WidgetCache) Put(ctx context.Context, key, value string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO widget_cache (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Get reads one key, returning ErrNotFound when it was never written.
func (c *WidgetCache) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM widget_cache WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// PutWidgetState writes the three widget fields in one transaction.
func (c *WidgetCache) PutWidgetState(ctx context.Context, temp, loc, symbol string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin widget state write: %w", err)
	}
	defer tx.Rollback()

	for key, value := range map[string]string{
		KeyLastTemp:   temp,
		KeyLastLoc:    loc,
		KeyLastSymbol: symbol,
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO widget_cache (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}

	return tx.Commit()
}
