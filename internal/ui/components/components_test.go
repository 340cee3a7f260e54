package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
)

type pressedMsg struct{}

func press() tea.Cmd {
	return func() tea.Msg { return pressedMsg{} }
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestMenuSkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "a", Disabled: true},
		{Label: "b"},
		{Label: "c", Disabled: true},
		{Label: "d"},
	})
	assert.Equal(t, 1, m.Current())

	m, _ = m.Update(key("down"))
	assert.Equal(t, 3, m.Current())

	m, _ = m.Update(key("down"))
	assert.Equal(t, 3, m.Current(), "stays on the last enabled item")

	m, _ = m.Update(key("up"))
	assert.Equal(t, 1, m.Current())
}

func TestMenuEnterRunsAction(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "a", Action: press}})
	_, cmd := m.Update(key("enter"))
	assert.NotNil(t, cmd)
	assert.Equal(t, pressedMsg{}, cmd())
}

func TestMenuEmpty(t *testing.T) {
	m := NewMenu(nil)
	assert.Equal(t, -1, m.Current())
	_, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Empty(t, m.View())
}

func TestMenuViewShowsDetail(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "1. Two Sum", Detail: "hash maps"}})
	assert.Contains(t, m.View(), "Two Sum")
	assert.Contains(t, m.View(), "hash maps")
}

func TestButtonInactiveIgnoresPress(t *testing.T) {
	b := NewButton("Generate", false, press)
	_, cmd := b.Update(key("enter"))
	assert.Nil(t, cmd)

	b.Active = true
	_, cmd = b.Update(key("enter"))
	assert.NotNil(t, cmd)
}
