package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"

	"github.com/abhisek/codedrill/internal/screen"
)

// stubScreen is a minimal screen that records what it receives.
type stubScreen struct {
	title    string
	initRan  bool
	received []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.received = append(s.received, msg)
	return s, nil
}

func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

type resultMsg struct{}

func TestPushAndPop(t *testing.T) {
	first := &stubScreen{title: "first"}
	r := New(first)

	second := &stubScreen{title: "second"}
	r.Push(second)
	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, "second", r.Active().Title())
	assert.True(t, second.initRan, "Init runs on push")

	r.Update(PopScreenMsg{})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "first", r.Active().Title())
}

func TestPopNoopAtBottom(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	r.Pop()
	assert.Equal(t, 1, r.Depth())
}

func TestPushMsgRunsInit(t *testing.T) {
	r := New(&stubScreen{title: "first"})

	second := &stubScreen{title: "second"}
	r.Update(PushScreenMsg{Screen: second})

	assert.Equal(t, 2, r.Depth())
	assert.True(t, second.initRan)
}

func TestKeysGoToActiveOnly(t *testing.T) {
	bottom := &stubScreen{title: "bottom"}
	top := &stubScreen{title: "top"}
	r := New(bottom)
	r.Push(top)

	r.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})

	assert.Empty(t, bottom.received)
	assert.Len(t, top.received, 1)
}

func TestResultsReachCoveredScreens(t *testing.T) {
	bottom := &stubScreen{title: "bottom"}
	top := &stubScreen{title: "top"}
	r := New(bottom)
	r.Push(top)

	r.Update(resultMsg{})

	assert.Equal(t, []tea.Msg{resultMsg{}}, bottom.received)
	assert.Equal(t, []tea.Msg{resultMsg{}}, top.received)
}

func TestViewRendersActive(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	r.Push(&stubScreen{title: "second"})
	assert.Equal(t, "second", r.View(80, 24))
}
