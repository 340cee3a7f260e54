package handoff

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/codedrill/internal/learnpath"
	"github.com/abhisek/codedrill/internal/request"
	"github.com/abhisek/codedrill/internal/store"
)

func testConfig() Config {
	return Config{
		BaseLocation: "codedrill://practice",
		Timeout:      2 * time.Second,
		PollInterval: 5 * time.Millisecond,
	}
}

// openShared opens two stores on one database file, standing in for two
// separate codedrill processes.
func openShared(t *testing.T) (origin, spawned *store.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codedrill.db")
	var err error
	origin, err = store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { origin.Close() })
	spawned, err = store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { spawned.Close() })
	return origin, spawned
}

// sessionLauncher simulates opening a new session: it parses the location
// and runs the spawned side's bootstrap in a goroutine.
type sessionLauncher struct {
	bridge *Bridge

	mu       sync.Mutex
	wg       sync.WaitGroup
	launched []string
	results  map[string]Payload
	errs     map[string]error
}

func newSessionLauncher(b *Bridge) *sessionLauncher {
	return &sessionLauncher{bridge: b, results: map[string]Payload{}, errs: map[string]error{}}
}

func (l *sessionLauncher) Launch(_ context.Context, location string) error {
	loc, err := ParseLocation(location)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.launched = append(l.launched, location)
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		p, err := l.bridge.Accept(context.Background(), loc.Key)
		l.mu.Lock()
		defer l.mu.Unlock()
		l.results[loc.Key] = p
		l.errs[loc.Key] = err
	}()
	return nil
}

type failingLauncher struct{ err error }

func (f failingLauncher) Launch(context.Context, string) error { return f.err }

var twoSum = learnpath.Problem{
	Title:    "Two Sum",
	Level:    1,
	Concepts: []string{"hash maps", "arrays"},
}

func TestHandoffRoundTrip(t *testing.T) {
	originStore, spawnedStore := openShared(t)
	spawnedBridge := NewBridge(spawnedStore.HandoffRepo(), nil, testConfig())
	launcher := newSessionLauncher(spawnedBridge)
	origin := NewBridge(originStore.HandoffRepo(), launcher, testConfig())
	ctx := context.Background()

	ticket, err := origin.Prepare(ctx, twoSum, Context{Language: "go", Difficulty: request.Intermediate})
	require.NoError(t, err)
	require.NoError(t, origin.Deliver(ctx, ticket))
	launcher.wg.Wait()

	require.NoError(t, launcher.errs[ticket.Key])
	got := launcher.results[ticket.Key]
	assert.Equal(t, Payload{Topic: "Two Sum: hash maps, arrays", Language: "go", Difficulty: request.Intermediate}, got)

	slot, err := originStore.HandoffRepo().Get(ctx, ticket.Key)
	require.NoError(t, err)
	assert.Nil(t, slot, "slot must be empty after the spawned session reads it")

	slots, err := originStore.HandoffRepo().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, slots)

	loc, err := ParseLocation(launcher.launched[0])
	require.NoError(t, err)
	assert.True(t, loc.AutoStart)
	assert.Equal(t, ticket.Key, loc.Key)
}

func TestHandoffConcurrentHandoffsDoNotClobber(t *testing.T) {
	originStore, spawnedStore := openShared(t)
	launcher := newSessionLauncher(NewBridge(spawnedStore.HandoffRepo(), nil, testConfig()))
	origin := NewBridge(originStore.HandoffRepo(), launcher, testConfig())
	ctx := context.Background()

	// Both handoffs are prepared before either spawned session consumes.
	first, err := origin.Prepare(ctx, twoSum, Context{Language: "go", Difficulty: request.Beginner})
	require.NoError(t, err)
	second, err := origin.Prepare(ctx, learnpath.Problem{Title: "LRU Cache", Concepts: []string{"linked lists"}},
		Context{Language: "rust", Difficulty: request.Advanced})
	require.NoError(t, err)
	require.NotEqual(t, first.Key, second.Key)

	var wg sync.WaitGroup
	for _, tk := range []*Ticket{second, first} {
		wg.Add(1)
		go func(tk *Ticket) {
			defer wg.Done()
			assert.NoError(t, origin.Deliver(ctx, tk))
		}(tk)
	}
	wg.Wait()
	launcher.wg.Wait()

	assert.Equal(t, "Two Sum: hash maps, arrays", launcher.results[first.Key].Topic)
	assert.Equal(t, "go", launcher.results[first.Key].Language)
	assert.Equal(t, "LRU Cache: linked lists", launcher.results[second.Key].Topic)
	assert.Equal(t, request.Advanced, launcher.results[second.Key].Difficulty)
}

func TestDeliverTimesOutWithoutSpawnedSession(t *testing.T) {
	originStore, _ := openShared(t)
	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	launchErr := errors.New("no terminal")
	b := NewBridge(originStore.HandoffRepo(), failingLauncher{err: launchErr}, cfg)
	ctx := context.Background()

	ticket, err := b.Prepare(ctx, twoSum, Context{Language: "go", Difficulty: request.Beginner})
	require.ErrorIs(t, err, launchErr)
	require.NotNil(t, ticket, "ticket is returned so the location can be opened by hand")

	slot, err := originStore.HandoffRepo().Get(ctx, ticket.Key)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, store.SlotPending, slot.State)

	err = b.Deliver(ctx, ticket)
	assert.ErrorIs(t, err, ErrNotReady)

	slot, err = originStore.HandoffRepo().Get(ctx, ticket.Key)
	require.NoError(t, err)
	assert.Nil(t, slot, "abandoned slot is discarded")
}

func TestAcceptTimesOutWithoutDelivery(t *testing.T) {
	originStore, spawnedStore := openShared(t)
	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, originStore.HandoffRepo().Open(ctx, "orphan"))

	_, err := NewBridge(spawnedStore.HandoffRepo(), nil, cfg).Accept(ctx, "orphan")
	assert.ErrorIs(t, err, ErrNotDelivered)

	slot, err := originStore.HandoffRepo().Get(ctx, "orphan")
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestAcceptUnknownKey(t *testing.T) {
	_, spawnedStore := openShared(t)
	_, err := NewBridge(spawnedStore.HandoffRepo(), nil, testConfig()).Accept(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestAcceptTwiceFails(t *testing.T) {
	originStore, spawnedStore := openShared(t)
	launcher := newSessionLauncher(NewBridge(spawnedStore.HandoffRepo(), nil, testConfig()))
	origin := NewBridge(originStore.HandoffRepo(), launcher, testConfig())
	ctx := context.Background()

	ticket, err := origin.Prepare(ctx, twoSum, Context{Language: "go", Difficulty: request.Beginner})
	require.NoError(t, err)
	require.NoError(t, origin.Deliver(ctx, ticket))
	launcher.wg.Wait()
	require.NoError(t, launcher.errs[ticket.Key])

	_, err = NewBridge(spawnedStore.HandoffRepo(), nil, testConfig()).Accept(ctx, ticket.Key)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestPrepareRejectsEmptyTopic(t *testing.T) {
	originStore, _ := openShared(t)
	b := NewBridge(originStore.HandoffRepo(), failingLauncher{}, testConfig())

	_, err := b.Prepare(context.Background(), learnpath.Problem{}, Context{Language: "go", Difficulty: request.Beginner})
	var verr *request.ValidationError
	assert.True(t, errors.As(err, &verr))

	slots, err := originStore.HandoffRepo().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestCancel(t *testing.T) {
	originStore, _ := openShared(t)
	b := NewBridge(originStore.HandoffRepo(), failingLauncher{}, testConfig())
	ctx := context.Background()

	ticket, err := b.Prepare(ctx, twoSum, Context{Language: "go", Difficulty: request.Beginner})
	require.NoError(t, err)
	require.NoError(t, b.Cancel(ctx, ticket.Key))

	err = b.Deliver(ctx, ticket)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}
