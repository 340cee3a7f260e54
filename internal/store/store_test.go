package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "codedrill.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.Client() == nil {
		t.Fatal("expected non-nil ent client")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestPragmasOnEveryConnection(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Holding the first connection forces the pool to open a second one.
	for i := 0; i < 2; i++ {
		conn, err := s.DB().Conn(ctx)
		if err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		defer conn.Close()

		var timeout int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("conn %d busy_timeout: %v", i, err)
		}
		if timeout != 5000 {
			t.Errorf("conn %d busy_timeout = %d, want 5000", i, timeout)
		}
	}
}

func TestHandoffOpenWaitsForWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	origin, err := Open(path)
	if err != nil {
		t.Fatalf("open origin: %v", err)
	}
	defer origin.Close()
	spawned, err := Open(path)
	if err != nil {
		t.Fatalf("open spawned: %v", err)
	}
	defer spawned.Close()

	ctx := context.Background()

	// Pin the spawned store's first connection so the handoff call runs on
	// a fresh one.
	pinned, err := spawned.DB().Conn(ctx)
	if err != nil {
		t.Fatalf("pin conn: %v", err)
	}
	defer pinned.Close()

	tx, err := origin.DB().BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE event_sequence SET next_val = next_val WHERE id = 1`); err != nil {
		t.Fatalf("take write lock: %v", err)
	}
	released := make(chan error, 1)
	go func() {
		time.Sleep(200 * time.Millisecond)
		released <- tx.Commit()
	}()

	if err := spawned.HandoffRepo().Open(ctx, "k1"); err != nil {
		t.Fatalf("open slot while origin writes: %v", err)
	}
	if err := <-released; err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(s.DB())
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if want := int64(i + 1); seq != want {
			t.Errorf("seq[%d] = %d, want %d", i, seq, want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"generation_events", "handoff_slots", "event_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestGenerationEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []GenerationEventData{
		{Topic: "recursion", Language: "go", Difficulty: "beginner", StatusCode: 200, LatencyMs: 100, Success: true},
		{Topic: "recursion", Language: "go", Difficulty: "advanced", StatusCode: 500, LatencyMs: 300, ErrorKind: "server", ErrorMessage: "boom"},
		{Topic: "graphs", Language: "rust", Difficulty: "intermediate", StatusCode: 200, LatencyMs: 50, Success: true, ResponseBody: `{"learningPath":{}}`},
	}
	for _, e := range events {
		if err := repo.AppendGeneration(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.QueryGenerations(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Topic != "graphs" || got[0].Sequence <= got[1].Sequence {
		t.Errorf("expected newest first, got %+v", got)
	}

	future, err := repo.QueryGenerations(ctx, QueryOpts{Since: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("query since: %v", err)
	}
	if len(future) != 0 {
		t.Errorf("since in the future returned %d events", len(future))
	}

	failed, err := repo.QueryGenerations(ctx, QueryOpts{Topic: "RECURSION", FailedOnly: true})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ErrorKind != "server" {
		t.Errorf("failed recursion calls = %+v", failed)
	}

	ev, err := repo.GetGeneration(ctx, got[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ev == nil || ev.ResponseBody != `{"learningPath":{}}` {
		t.Errorf("get returned %+v", ev)
	}
	if ev != nil && ev.SessionID != s.SessionID() {
		t.Errorf("session = %q, want %q", ev.SessionID, s.SessionID())
	}

	missing, err := repo.GetGeneration(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing event")
	}

	usage, err := repo.UsageByTopic(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(usage) != 2 {
		t.Fatalf("usage rows = %d, want 2", len(usage))
	}
	if usage[0].Topic != "recursion" || usage[0].Calls != 2 || usage[0].Failures != 1 || usage[0].AvgLatencyMs != 200 {
		t.Errorf("recursion usage = %+v", usage[0])
	}
}

func TestHandoffSlotLifecycle(t *testing.T) {
	s := openTestStore(t)
	repo := s.HandoffRepo()
	ctx := context.Background()

	if err := repo.Open(ctx, "k1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.Open(ctx, "k1"); !errors.Is(err, ErrSlotExists) {
		t.Fatalf("second open err = %v, want ErrSlotExists", err)
	}

	// Payload cannot be delivered before the spawned session is ready.
	if err := repo.Deliver(ctx, "k1", []byte("x")); !errors.Is(err, ErrSlotState) {
		t.Fatalf("early deliver err = %v, want ErrSlotState", err)
	}

	if err := repo.MarkReady(ctx, "k1"); err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	if _, err := repo.Take(ctx, "k1"); !errors.Is(err, ErrSlotState) {
		t.Fatalf("early take err = %v, want ErrSlotState", err)
	}

	if err := repo.Deliver(ctx, "k1", []byte(`{"topic":"t"}`)); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	slot, err := repo.Get(ctx, "k1")
	if err != nil || slot == nil {
		t.Fatalf("get: %v %v", slot, err)
	}
	if slot.State != SlotDelivered {
		t.Errorf("state = %s, want delivered", slot.State)
	}

	payload, err := repo.Take(ctx, "k1")
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if string(payload) != `{"topic":"t"}` {
		t.Errorf("payload = %s", payload)
	}

	if _, err := repo.Take(ctx, "k1"); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("second take err = %v, want ErrSlotNotFound", err)
	}
	if slot, _ := repo.Get(ctx, "k1"); slot != nil {
		t.Errorf("slot should be gone after take")
	}
}

func TestHandoffSlotsVisibleAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	origin, err := Open(path)
	if err != nil {
		t.Fatalf("open origin: %v", err)
	}
	defer origin.Close()
	spawned, err := Open(path)
	if err != nil {
		t.Fatalf("open spawned: %v", err)
	}
	defer spawned.Close()

	ctx := context.Background()
	if err := origin.HandoffRepo().Open(ctx, "shared"); err != nil {
		t.Fatalf("open slot: %v", err)
	}
	if err := spawned.HandoffRepo().MarkReady(ctx, "shared"); err != nil {
		t.Fatalf("mark ready from second store: %v", err)
	}
	slot, err := origin.HandoffRepo().Get(ctx, "shared")
	if err != nil || slot == nil || slot.State != SlotReady {
		t.Fatalf("origin sees %+v, %v", slot, err)
	}
}

func TestHandoffPruneAndList(t *testing.T) {
	s := openTestStore(t)
	repo := s.HandoffRepo()
	ctx := context.Background()

	for _, k := range []string{"a", "b"} {
		if err := repo.Open(ctx, k); err != nil {
			t.Fatalf("open %s: %v", k, err)
		}
	}

	slots, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("list len = %d, want 2", len(slots))
	}

	n, err := repo.Prune(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("prune old: %v", err)
	}
	if n != 0 {
		t.Errorf("pruned %d fresh slots", n)
	}

	n, err = repo.Prune(ctx, time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 2 {
		t.Errorf("pruned = %d, want 2", n)
	}

	if err := repo.Discard(ctx, "missing"); err != nil {
		t.Errorf("discard missing: %v", err)
	}
}

func TestSequenceSharedAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	a, err := Open(path)
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	defer a.Close()
	b, err := Open(path)
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	seen := map[int64]bool{}
	for i := 0; i < 4; i++ {
		for _, s := range []*Store{a, b} {
			n, err := s.seq.Next(ctx)
			if err != nil {
				t.Fatalf("next: %v", err)
			}
			if seen[n] {
				t.Fatalf("sequence %d handed out twice", n)
			}
			seen[n] = true
		}
	}
	if a.SessionID() == b.SessionID() {
		t.Error("stores share a session id")
	}
}
