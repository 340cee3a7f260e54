package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codedrill/internal/ui/theme"
)

// Button runs OnPress on enter or space while Active. Focused only changes
// how it is drawn.
type Button struct {
	Label   string
	Active  bool
	Focused bool
	OnPress func() tea.Cmd
}

func NewButton(label string, active bool, onPress func() tea.Cmd) Button {
	return Button{Label: label, Active: active, OnPress: onPress}
}

func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !b.Active || b.OnPress == nil {
		return b, nil
	}
	switch key.String() {
	case "enter", "space":
		return b, b.OnPress()
	}
	return b, nil
}

func (b Button) View() string {
	marker := " "
	if b.Focused {
		marker = "▸"
	}
	style := theme.ButtonInactive
	if b.Active {
		style = theme.ButtonActive
	}
	return style.Render(marker + " " + b.Label)
}
