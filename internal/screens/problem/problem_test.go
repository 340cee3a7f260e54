package problem

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/codedrill/internal/learnpath"
	"github.com/abhisek/codedrill/internal/router"
)

type learnedMsg struct{}

var twoSum = learnpath.Problem{
	Title:       "Two Sum",
	Level:       1,
	Description: "Find two numbers.",
	Concepts:    []string{"hash maps"},
	Examples:    []learnpath.Example{{Input: "[2,7], 9", Output: "[0,1]"}},
	Hints:       []string{"use a map"},
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collect(c)...)
	}
	return out
}

func TestRenderIncludesDetail(t *testing.T) {
	out := Render(twoSum, 80)
	for _, want := range []string{"Two Sum", "level 1", "Find two numbers.", "hash maps", "[0,1]", "use a map"} {
		assert.Contains(t, out, want)
	}
}

func TestEscPops(t *testing.T) {
	s := New(twoSum, nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, []tea.Msg{router.PopScreenMsg{}}, collect(cmd))
}

func TestEnterPopsAndLearns(t *testing.T) {
	s := New(twoSum, func() tea.Cmd {
		return func() tea.Msg { return learnedMsg{} }
	})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	msgs := collect(cmd)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs, tea.Msg(router.PopScreenMsg{}))
	assert.Contains(t, msgs, tea.Msg(learnedMsg{}))
}

func TestEnterWithoutBridgeDoesNothing(t *testing.T) {
	s := New(twoSum, nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Len(t, s.KeyHints(), 2)
}

func TestIgnoresForeignMessages(t *testing.T) {
	s := New(twoSum, nil)
	_, cmd := s.Update(learnedMsg{})
	assert.Nil(t, cmd)
}
