package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codedrill/internal/ui/theme"
)

// MenuItem is one selectable row. Detail is rendered dim after the label.
type MenuItem struct {
	Label    string
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list with a single selected row that skips disabled
// items.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.step(0, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// Current returns the index of the selected item, or -1 for an empty menu.
func (m Menu) Current() int {
	if len(m.Items) == 0 {
		return -1
	}
	return m.Selected
}

// step moves the selection to the first enabled item at or after from,
// walking in direction dir. The selection is unchanged when none exists.
func (m *Menu) step(from, dir int) {
	for i := from; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		m.step(m.Selected-1, -1)
	case "down", "j":
		m.step(m.Selected+1, 1)
	case "home", "g":
		m.step(0, 1)
	case "end", "G":
		m.step(len(m.Items)-1, -1)
	case "enter":
		if item := m.Items[m.Selected]; item.Action != nil && !item.Disabled {
			return m, item.Action()
		}
	}
	return m, nil
}

func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		style, cursor := theme.Unselected, "    "
		switch {
		case i == m.Selected:
			style, cursor = theme.Selected, "  ▸ "
		case item.Disabled:
			style = theme.Hint
		}
		b.WriteString(style.Render(cursor + item.Label))
		if item.Detail != "" {
			b.WriteString(theme.Hint.Render("  " + item.Detail))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
