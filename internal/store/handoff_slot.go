package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSlotNotFound is returned when a handoff key does not exist,
	// including after its payload has been taken.
	ErrSlotNotFound = errors.New("handoff slot not found")

	// ErrSlotExists is returned when opening a key that is already in use.
	ErrSlotExists = errors.New("handoff slot already exists")

	// ErrSlotState is returned when a slot is not in the state an
	// operation requires.
	ErrSlotState = errors.New("handoff slot in unexpected state")
)

// migrateHandoffSlots creates the slot table. It lives outside ent because
// every transition is a conditional UPDATE or DELETE ... RETURNING that
// must be atomic across processes.
func migrateHandoffSlots(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS handoff_slots (
		key        TEXT PRIMARY KEY,
		state      TEXT NOT NULL,
		payload    BLOB,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create handoff_slots table: %w", err)
	}
	return nil
}

// handoffRepo implements HandoffRepo with raw SQL.
type handoffRepo struct {
	db *sql.DB
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func (r *handoffRepo) Open(ctx context.Context, key string) error {
	now := nowMillis()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO handoff_slots (key, state, payload, created_at, updated_at)
		 VALUES (?, ?, NULL, ?, ?) ON CONFLICT(key) DO NOTHING`,
		key, string(SlotPending), now, now)
	if err != nil {
		return fmt.Errorf("open handoff slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("open handoff slot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSlotExists, key)
	}
	return nil
}

func (r *handoffRepo) MarkReady(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE handoff_slots SET state = ?, updated_at = ? WHERE key = ? AND state = ?`,
		string(SlotReady), nowMillis(), key, string(SlotPending))
	if err != nil {
		return fmt.Errorf("mark handoff slot ready: %w", err)
	}
	return r.checkTransition(ctx, res, key, SlotPending)
}

func (r *handoffRepo) Deliver(ctx context.Context, key string, payload []byte) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE handoff_slots SET state = ?, payload = ?, updated_at = ? WHERE key = ? AND state = ?`,
		string(SlotDelivered), payload, nowMillis(), key, string(SlotReady))
	if err != nil {
		return fmt.Errorf("deliver handoff payload: %w", err)
	}
	return r.checkTransition(ctx, res, key, SlotReady)
}

func (r *handoffRepo) Take(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM handoff_slots WHERE key = ? AND state = ? RETURNING payload`,
		key, string(SlotDelivered)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.stateError(ctx, key, SlotDelivered)
	}
	if err != nil {
		return nil, fmt.Errorf("take handoff payload: %w", err)
	}
	return payload, nil
}

func (r *handoffRepo) Get(ctx context.Context, key string) (*HandoffSlot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT key, state, payload, created_at, updated_at FROM handoff_slots WHERE key = ?`, key)
	slot, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get handoff slot: %w", err)
	}
	return slot, nil
}

func (r *handoffRepo) Discard(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM handoff_slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("discard handoff slot: %w", err)
	}
	return nil
}

func (r *handoffRepo) List(ctx context.Context) ([]HandoffSlot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, state, payload, created_at, updated_at FROM handoff_slots ORDER BY created_at, key`)
	if err != nil {
		return nil, fmt.Errorf("list handoff slots: %w", err)
	}
	defer rows.Close()

	var slots []HandoffSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan handoff slot: %w", err)
		}
		slots = append(slots, *slot)
	}
	return slots, rows.Err()
}

func (r *handoffRepo) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM handoff_slots WHERE updated_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune handoff slots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune handoff slots: %w", err)
	}
	return int(n), nil
}

// checkTransition turns a zero-row conditional UPDATE into a typed error.
func (r *handoffRepo) checkTransition(ctx context.Context, res sql.Result, key string, want SlotState) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("handoff slot %s: %w", key, err)
	}
	if n == 1 {
		return nil
	}
	return r.stateError(ctx, key, want)
}

func (r *handoffRepo) stateError(ctx context.Context, key string, want SlotState) error {
	slot, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if slot == nil {
		return fmt.Errorf("%w: %s", ErrSlotNotFound, key)
	}
	return fmt.Errorf("%w: %s is %s, want %s", ErrSlotState, key, slot.State, want)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (*HandoffSlot, error) {
	var (
		slot             HandoffSlot
		state            string
		created, updated int64
	)
	if err := row.Scan(&slot.Key, &state, &slot.Payload, &created, &updated); err != nil {
		return nil, err
	}
	slot.State = SlotState(state)
	slot.CreatedAt = time.UnixMilli(created)
	slot.UpdatedAt = time.UnixMilli(updated)
	return &slot, nil
}
