package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// sequenceCounter numbers events across every session writing to the
// database. The row update is atomic in SQLite, so two processes never
// receive the same value; mu only avoids needless lock contention inside one
// process.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

var sequenceDDL = []string{
	`CREATE TABLE IF NOT EXISTS event_sequence (
		id       INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL
	)`,
	`INSERT OR IGNORE INTO event_sequence (id, next_val) VALUES (1, 1)`,
}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	for _, stmt := range sequenceDDL {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("create event sequence: %w", err)
		}
	}
	return &sequenceCounter{db: db}, nil
}

// Next returns the current value and advances the counter.
func (c *sequenceCounter) Next(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	row := c.db.QueryRowContext(ctx,
		`UPDATE event_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("next event sequence: %w", err)
	}
	return n, nil
}
