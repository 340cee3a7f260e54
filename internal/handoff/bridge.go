package handoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/codedrill/internal/learnpath"
	"github.com/abhisek/codedrill/internal/store"
)

var (
	// ErrSlotNotFound is returned when the handoff key does not exist,
	// including after the payload has already been taken.
	ErrSlotNotFound = store.ErrSlotNotFound

	// ErrNotReady is returned by Deliver when the spawned session did not
	// report ready within the timeout.
	ErrNotReady = errors.New("spawned session did not become ready")

	// ErrNotDelivered is returned by Accept when the payload did not
	// arrive within the timeout.
	ErrNotDelivered = errors.New("handoff payload was not delivered")
)

// Ticket tracks one handoff on the originating side.
type Ticket struct {
	Key      string
	Location string
	Payload  Payload
}

// Bridge transfers drill-down intent from one session to a newly spawned
// one through the shared slot table.
//
// Protocol, one slot per handoff:
//
//	origin:  Prepare  -> slot pending, new session launched
//	spawned: Accept   -> slot ready (controller is up), waits
//	origin:  Deliver  -> payload written, slot delivered
//	spawned: Accept   -> payload taken, slot deleted
type Bridge struct {
	repo     store.HandoffRepo
	launcher Launcher
	cfg      Config
	newKey   func() string
}

// NewBridge creates a Bridge. launcher may be nil on the spawned side.
func NewBridge(repo store.HandoffRepo, launcher Launcher, cfg Config) *Bridge {
	return &Bridge{
		repo:     repo,
		launcher: launcher,
		cfg:      cfg,
		newKey:   func() string { return uuid.New().String() },
	}
}

// Prepare derives the payload for p, opens a fresh slot for it and
// launches a new session pointed at that slot.
//
// When launching fails the slot stays open and the ticket is still
// returned with the error, so the location can be opened by hand and
// Deliver called as usual.
func (b *Bridge) Prepare(ctx context.Context, p learnpath.Problem, hc Context) (*Ticket, error) {
	payload := DerivePayload(p, hc)
	if err := payload.Params().Validate(); err != nil {
		return nil, fmt.Errorf("handoff payload: %w", err)
	}

	key := b.newKey()
	location, err := BuildLocation(b.cfg.BaseLocation, key)
	if err != nil {
		return nil, err
	}
	if err := b.repo.Open(ctx, key); err != nil {
		return nil, err
	}

	t := &Ticket{Key: key, Location: location, Payload: payload}

	if b.launcher == nil {
		return t, ErrNoLauncher
	}
	if err := b.launcher.Launch(ctx, location); err != nil {
		return t, err
	}
	return t, nil
}

// Deliver waits for the spawned session to report ready and then writes
// the payload. On timeout the slot is discarded.
func (b *Bridge) Deliver(ctx context.Context, t *Ticket) error {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	if err := b.waitFor(ctx, t.Key, store.SlotReady); err != nil {
		b.discard(t.Key)
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w within %s", ErrNotReady, b.cfg.Timeout)
		}
		return err
	}

	data, err := encodePayload(t.Payload)
	if err != nil {
		b.discard(t.Key)
		return err
	}
	return b.repo.Deliver(ctx, t.Key, data)
}

// Accept is the spawned session's bootstrap: it signals readiness on the
// slot, waits for the payload and consumes it. After Accept returns the
// slot no longer exists.
func (b *Bridge) Accept(ctx context.Context, key string) (Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	if err := b.repo.MarkReady(ctx, key); err != nil {
		return Payload{}, err
	}

	if err := b.waitFor(ctx, key, store.SlotDelivered); err != nil {
		b.discard(key)
		if errors.Is(err, context.DeadlineExceeded) {
			return Payload{}, fmt.Errorf("%w within %s", ErrNotDelivered, b.cfg.Timeout)
		}
		return Payload{}, err
	}

	data, err := b.repo.Take(ctx, key)
	if err != nil {
		return Payload{}, err
	}
	return decodePayload(data)
}

// Cancel abandons a handoff from either side.
func (b *Bridge) Cancel(ctx context.Context, key string) error {
	return b.repo.Discard(ctx, key)
}

// waitFor polls the slot until it reaches want.
func (b *Bridge) waitFor(ctx context.Context, key string, want store.SlotState) error {
	ticker := time.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()

	for {
		slot, err := b.repo.Get(ctx, key)
		if err != nil {
			return err
		}
		if slot == nil {
			return fmt.Errorf("%w: %s", ErrSlotNotFound, key)
		}
		if slot.State == want {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// discard removes a slot after the handshake failed. It runs on a fresh
// context because the handshake context has usually expired.
func (b *Bridge) discard(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = b.repo.Discard(ctx, key)
}
