package practice

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/codedrill/internal/generator"
	"github.com/abhisek/codedrill/internal/handoff"
	"github.com/abhisek/codedrill/internal/learnpath"
	"github.com/abhisek/codedrill/internal/request"
	"github.com/abhisek/codedrill/internal/router"
	"github.com/abhisek/codedrill/internal/store"
)

const canonicalBody = `{"learningPath":{"description":"Arrays first.","problems":[
	{"title":"Two Sum","level":1,"concepts":["hash maps","arrays"],"description":"Find two numbers.",
	 "prerequisites":[],"examples":[{"input":"[2,7], 9","output":"[0,1]","explanation":"2+7"}],"hints":["use a map"]},
	{"title":"Three Sum","level":2,"concepts":["two pointers"],"description":"Find three numbers.",
	 "prerequisites":["Two Sum"],"examples":[],"hints":[]}]}}`

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// awaitMsg runs every command reachable from cmd concurrently and returns
// the first message of type T.
func awaitMsg[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	var zero T
	require.NotNil(t, cmd)

	found := make(chan T, 1)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, bc := range batch {
					run(bc)
				}
				return
			}
			if m, ok := msg.(T); ok {
				select {
				case found <- m:
				default:
				}
			}
		}()
	}
	run(cmd)

	select {
	case m := <-found:
		return m
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %v", reflect.TypeOf(zero))
		return zero
	}
}

func newTestScreen(client generator.Client, bridge *handoff.Bridge, opts Options) (*PracticeScreen, *request.Controller) {
	ctrl := request.New(client)
	return New(ctrl, bridge, opts), ctrl
}

func learnParse(t *testing.T) *learnpath.LearningPath {
	t.Helper()
	lp, err := learnpath.Parse([]byte(canonicalBody))
	require.NoError(t, err)
	return lp
}

func fillForm(s *PracticeScreen, topic, language string) {
	s.topic.SetValue(topic)
	s.language.SetValue(language)
}

func handoffConfig() handoff.Config {
	return handoff.Config{
		BaseLocation: "codedrill://practice",
		Timeout:      2 * time.Second,
		PollInterval: 5 * time.Millisecond,
	}
}

func openShared(t *testing.T) (*store.Store, *store.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codedrill.db")
	a, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	b, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return a, b
}

// stubLauncher records the launched location without starting anything.
type stubLauncher struct {
	location string
	err      error
}

func (l *stubLauncher) Launch(_ context.Context, location string) error {
	l.location = location
	return l.err
}

// acceptingLauncher plays the spawned session by accepting the handoff.
type acceptingLauncher struct {
	bridge  *handoff.Bridge
	payload chan handoff.Payload
}

func (l *acceptingLauncher) Launch(_ context.Context, location string) error {
	loc, err := handoff.ParseLocation(location)
	if err != nil {
		return err
	}
	go func() {
		p, err := l.bridge.Accept(context.Background(), loc.Key)
		if err == nil {
			l.payload <- p
		}
	}()
	return nil
}

func TestPracticeScreen_Title(t *testing.T) {
	s, _ := newTestScreen(generator.NewMockClient(), nil, Options{})
	assert.Equal(t, "Practice", s.Title())
}

func TestPracticeScreen_DefaultDifficulty(t *testing.T) {
	s, _ := newTestScreen(generator.NewMockClient(), nil, Options{})
	assert.Equal(t, request.Beginner, s.params().Difficulty)

	s.Update(specialKey(tea.KeyTab))
	s.Update(specialKey(tea.KeyTab))
	require.Equal(t, fieldDifficulty, s.focus)

	s.Update(specialKey(tea.KeyRight))
	assert.Equal(t, request.Intermediate, s.params().Difficulty)
	s.Update(specialKey(tea.KeyRight))
	s.Update(specialKey(tea.KeyRight))
	assert.Equal(t, request.Advanced, s.params().Difficulty)
	s.Update(specialKey(tea.KeyLeft))
	assert.Equal(t, request.Intermediate, s.params().Difficulty)
}

func TestPracticeScreen_InitialParams(t *testing.T) {
	s, _ := newTestScreen(generator.NewMockClient(), nil, Options{
		Initial: request.Params{Topic: "graphs", Language: "rust", Difficulty: request.Advanced},
	})
	assert.Equal(t, request.Params{Topic: "graphs", Language: "rust", Difficulty: request.Advanced}, s.params())
}

func TestPracticeScreen_TypingFillsTopic(t *testing.T) {
	s, _ := newTestScreen(generator.NewMockClient(), nil, Options{})
	s.Init()
	for _, r := range "dp" {
		s.Update(keyPress(r))
	}
	assert.Equal(t, "dp", s.topic.Value())
}

func TestPracticeScreen_SubmitSuccess(t *testing.T) {
	client := generator.NewMockClient(generator.MockResponse{Body: []byte(canonicalBody)})
	s, ctrl := newTestScreen(client, nil, Options{})
	fillForm(s, "arrays", "go")

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	assert.True(t, ctrl.Loading())
	assert.False(t, s.submit.Active, "submit is disabled while loading")
	assert.Contains(t, s.View(100, 40), "Generating problems")

	result := awaitMsg[request.ResultMsg](t, cmd)
	s.Update(result)

	require.Equal(t, request.StatusSuccess, ctrl.State().Status)
	assert.True(t, s.submit.Active)
	assert.Equal(t, fieldResults, s.focus)

	view := s.View(100, 60)
	assert.Contains(t, view, "Two Sum")
	assert.Contains(t, view, "Three Sum")
	assert.Contains(t, view, "use a map")

	require.Len(t, client.Calls, 1)
	assert.Equal(t, generator.Request{Topic: "arrays", Language: "go", Difficulty: "beginner"}, client.Calls[0])
}

func TestPracticeScreen_SubmitWhileLoadingIgnored(t *testing.T) {
	client := generator.NewMockClient(generator.MockResponse{Body: []byte(canonicalBody)})
	s, _ := newTestScreen(client, nil, Options{})
	fillForm(s, "arrays", "go")

	_, first := s.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, first)

	_, second := s.Update(specialKey(tea.KeyEnter))
	assert.Nil(t, second)

	s.Update(awaitMsg[request.ResultMsg](t, first))
	assert.Equal(t, 1, client.CallCount())
}

func TestPracticeScreen_ValidationError(t *testing.T) {
	client := generator.NewMockClient()
	s, ctrl := newTestScreen(client, nil, Options{})
	fillForm(s, "", "go")

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, request.StatusError, ctrl.State().Status)
	assert.Equal(t, 0, client.CallCount())
	assert.Contains(t, s.View(100, 40), "topic is required")
}

func TestPracticeScreen_ServerFailure(t *testing.T) {
	client := generator.NewMockClient(generator.MockResponse{Err: &generator.TransportError{Err: errors.New("refused")}})
	s, ctrl := newTestScreen(client, nil, Options{})
	fillForm(s, "arrays", "go")

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	s.Update(awaitMsg[request.ResultMsg](t, cmd))

	assert.Equal(t, request.StatusError, ctrl.State().Status)
	assert.Contains(t, s.View(100, 40), generator.GenericFailureMessage)
	assert.True(t, s.submit.Active)
}

func TestPracticeScreen_AutoSubmit(t *testing.T) {
	client := generator.NewMockClient(generator.MockResponse{Body: []byte(canonicalBody)})
	s, ctrl := newTestScreen(client, nil, Options{
		Initial:    request.Params{Topic: "arrays", Language: "go", Difficulty: request.Beginner},
		AutoSubmit: true,
	})

	cmd := s.Init()
	assert.True(t, ctrl.Loading())
	s.Update(awaitMsg[request.ResultMsg](t, cmd))
	assert.Equal(t, request.StatusSuccess, ctrl.State().Status)
}

func TestPracticeScreen_BootstrapFromHandoff(t *testing.T) {
	originStore, spawnedStore := openShared(t)
	launcher := &stubLauncher{}
	origin := handoff.NewBridge(originStore.HandoffRepo(), launcher, handoffConfig())
	spawned := handoff.NewBridge(spawnedStore.HandoffRepo(), nil, handoffConfig())

	ticket, err := origin.Prepare(context.Background(),
		learnParse(t).Problems[0],
		handoff.Context{Language: "python", Difficulty: request.Advanced})
	require.NoError(t, err)

	delivered := make(chan error, 1)
	go func() { delivered <- origin.Deliver(context.Background(), ticket) }()

	loc, err := handoff.ParseLocation(launcher.location)
	require.NoError(t, err)
	require.True(t, loc.AutoStart)

	client := generator.NewMockClient(generator.MockResponse{Body: []byte(canonicalBody)})
	s, ctrl := newTestScreen(client, spawned, Options{HandoffKey: loc.Key})
	assert.Equal(t, request.StatusIdle, ctrl.State().Status, "nothing is submitted before the payload arrives")

	boot := awaitMsg[bootstrapMsg](t, s.Init())
	require.NoError(t, boot.Err)
	require.NoError(t, <-delivered)

	_, cmd := s.Update(boot)
	assert.True(t, ctrl.Loading())
	assert.Equal(t, request.Params{Topic: "Two Sum: hash maps, arrays", Language: "python", Difficulty: request.Advanced}, s.params())

	s.Update(awaitMsg[request.ResultMsg](t, cmd))
	require.Len(t, client.Calls, 1)
	assert.Equal(t, "Two Sum: hash maps, arrays", client.Calls[0].Topic)
	assert.Equal(t, "advanced", client.Calls[0].Difficulty)

	slot, err := originStore.HandoffRepo().Get(context.Background(), loc.Key)
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestPracticeScreen_BootstrapFailureShowsStatus(t *testing.T) {
	_, spawnedStore := openShared(t)
	spawned := handoff.NewBridge(spawnedStore.HandoffRepo(), nil, handoffConfig())

	client := generator.NewMockClient()
	s, ctrl := newTestScreen(client, spawned, Options{HandoffKey: "missing"})

	boot := awaitMsg[bootstrapMsg](t, s.Init())
	s.Update(boot)

	assert.Equal(t, request.StatusIdle, ctrl.State().Status)
	assert.True(t, s.statusErr)
	assert.Contains(t, s.View(100, 40), "Handoff failed")
	assert.Equal(t, 0, client.CallCount())
}

func TestPracticeScreen_LearnMore(t *testing.T) {
	originStore, spawnedStore := openShared(t)
	launcher := &acceptingLauncher{
		bridge:  handoff.NewBridge(spawnedStore.HandoffRepo(), nil, handoffConfig()),
		payload: make(chan handoff.Payload, 1),
	}
	origin := handoff.NewBridge(originStore.HandoffRepo(), launcher, handoffConfig())

	client := generator.NewMockClient(generator.MockResponse{Body: []byte(canonicalBody)})
	s, ctrl := newTestScreen(client, origin, Options{})
	fillForm(s, "arrays", "go")

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	s.Update(awaitMsg[request.ResultMsg](t, cmd))
	require.Equal(t, fieldResults, s.focus)

	// Select the second problem and ask for more.
	s.Update(specialKey(tea.KeyDown))
	_, cmd = s.Update(specialKey(tea.KeyEnter))
	prepared := awaitMsg[handoffPreparedMsg](t, cmd)
	require.NoError(t, prepared.Err)

	_, cmd = s.Update(prepared)
	assert.Contains(t, s.status, "Opening a new session")
	s.Update(awaitMsg[handoffDeliveredMsg](t, cmd))

	assert.False(t, s.statusErr)
	assert.Contains(t, s.status, "Handed off")
	assert.Equal(t, request.StatusSuccess, ctrl.State().Status, "handoff never touches the controller")

	select {
	case p := <-launcher.payload:
		assert.Equal(t, handoff.Payload{Topic: "Three Sum: two pointers", Language: "go", Difficulty: request.Beginner}, p)
	case <-time.After(5 * time.Second):
		t.Fatal("spawned session never received the payload")
	}
}

func TestPracticeScreen_LearnMoreLaunchFailure(t *testing.T) {
	originStore, _ := openShared(t)
	cfg := handoffConfig()
	cfg.Timeout = 30 * time.Millisecond
	origin := handoff.NewBridge(originStore.HandoffRepo(), &stubLauncher{err: errors.New("no terminal")}, cfg)

	client := generator.NewMockClient(generator.MockResponse{Body: []byte(canonicalBody)})
	s, _ := newTestScreen(client, origin, Options{})
	fillForm(s, "arrays", "go")

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	s.Update(awaitMsg[request.ResultMsg](t, cmd))

	_, cmd = s.Update(specialKey(tea.KeyEnter))
	prepared := awaitMsg[handoffPreparedMsg](t, cmd)
	require.Error(t, prepared.Err)

	_, cmd = s.Update(prepared)
	assert.True(t, s.statusErr)
	assert.True(t, strings.Contains(s.status, "codedrill open '"+prepared.Ticket.Location+"'"))

	s.Update(awaitMsg[handoffDeliveredMsg](t, cmd))
	assert.Contains(t, s.status, "did not start in time")
}

func TestPracticeScreen_KeyHints(t *testing.T) {
	s, _ := newTestScreen(generator.NewMockClient(), nil, Options{})
	assert.NotEmpty(t, s.KeyHints())

	s.Update(specialKey(tea.KeyTab))
	s.Update(specialKey(tea.KeyTab))
	assert.Equal(t, "←→", s.KeyHints()[0].Key)
}

func TestPracticeScreen_ViewProblemPushesDetail(t *testing.T) {
	client := generator.NewMockClient(generator.MockResponse{Body: []byte(canonicalBody)})
	s, _ := newTestScreen(client, nil, Options{})
	fillForm(s, "arrays", "go")

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	s.Update(awaitMsg[request.ResultMsg](t, cmd))

	_, cmd = s.Update(keyPress('v'))
	push := awaitMsg[router.PushScreenMsg](t, cmd)
	assert.Equal(t, "Two Sum", push.Screen.Title())
}

func TestPracticeScreen_EscCancelsPendingHandoff(t *testing.T) {
	originStore, _ := openShared(t)
	origin := handoff.NewBridge(originStore.HandoffRepo(), &stubLauncher{}, handoffConfig())

	client := generator.NewMockClient(generator.MockResponse{Body: []byte(canonicalBody)})
	s, _ := newTestScreen(client, origin, Options{})
	fillForm(s, "arrays", "go")

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	s.Update(awaitMsg[request.ResultMsg](t, cmd))

	_, cmd = s.Update(specialKey(tea.KeyEnter))
	prepared := awaitMsg[handoffPreparedMsg](t, cmd)
	require.NoError(t, prepared.Err)
	_, deliver := s.Update(prepared)
	assert.Equal(t, "Esc", s.KeyHints()[0].Key)

	_, cmd = s.Update(specialKey(tea.KeyEscape))
	cancelled := awaitMsg[handoffCancelledMsg](t, cmd)
	require.NoError(t, cancelled.Err)
	s.Update(cancelled)
	assert.Contains(t, s.status, "Cancelled handoff")

	slots, err := originStore.HandoffRepo().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, slots)

	// The running Deliver notices the missing slot; its late result must
	// not overwrite the cancellation.
	delivered := awaitMsg[handoffDeliveredMsg](t, deliver)
	assert.ErrorIs(t, delivered.Err, handoff.ErrSlotNotFound)
	s.Update(delivered)
	assert.Contains(t, s.status, "Cancelled handoff")
	assert.False(t, s.statusErr)
}
