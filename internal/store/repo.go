package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	Since time.Time // timestamp >= Since

	Topic      string // case-insensitive exact match
	FailedOnly bool
}

// GenerationEventData captures one call to the problem generator.
type GenerationEventData struct {
	Topic        string
	Language     string
	Difficulty   string
	Endpoint     string
	StatusCode   int
	LatencyMs    int64
	Success      bool
	ErrorKind    string // "transport", "server" or "" on success
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// GenerationEvent is a stored GenerationEventData with its identity.
type GenerationEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionID string
	GenerationEventData
}

// TopicUsage aggregates generator calls for one topic.
type TopicUsage struct {
	Topic        string
	Calls        int
	Failures     int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to generator call events.
type EventRepo interface {
	// AppendGeneration records a generator call.
	AppendGeneration(ctx context.Context, data GenerationEventData) error

	// QueryGenerations returns events newest first.
	QueryGenerations(ctx context.Context, opts QueryOpts) ([]GenerationEvent, error)

	// GetGeneration returns a single event, or nil if it does not exist.
	GetGeneration(ctx context.Context, id int) (*GenerationEvent, error)

	// UsageByTopic aggregates calls per topic, busiest first.
	UsageByTopic(ctx context.Context) ([]TopicUsage, error)
}

// SlotState is the lifecycle state of a handoff slot.
type SlotState string

const (
	// SlotPending: opened by the originating session, no payload yet.
	SlotPending SlotState = "pending"
	// SlotReady: the spawned session is running and waiting for the payload.
	SlotReady SlotState = "ready"
	// SlotDelivered: the payload is stored and waiting to be taken.
	SlotDelivered SlotState = "delivered"
)

// HandoffSlot is one row of the shared handoff table.
type HandoffSlot struct {
	Key       string
	State     SlotState
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HandoffRepo is the storage shared between sessions for drill-down
// handoffs. Every handoff has its own key; slots are deleted when taken.
type HandoffRepo interface {
	// Open creates a pending slot. Fails if the key already exists.
	Open(ctx context.Context, key string) error

	// MarkReady moves a pending slot to ready.
	MarkReady(ctx context.Context, key string) error

	// Deliver stores the payload on a ready slot and marks it delivered.
	Deliver(ctx context.Context, key string, payload []byte) error

	// Take atomically returns and deletes a delivered slot's payload.
	Take(ctx context.Context, key string) ([]byte, error)

	// Get returns the slot, or nil if it does not exist.
	Get(ctx context.Context, key string) (*HandoffSlot, error)

	// Discard deletes a slot in any state. Missing keys are not an error.
	Discard(ctx context.Context, key string) error

	// List returns all slots, oldest first.
	List(ctx context.Context) ([]HandoffSlot, error)

	// Prune deletes slots last updated before cutoff and returns how many.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}
