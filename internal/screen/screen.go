package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codedrill/internal/ui/layout"
)

// Screen is one view on the router stack.
//
// A screen receives input only while it is on top, but it receives every
// other message even when covered, so it must ignore messages it did not
// start.
type Screen interface {
	// Init returns the command to run when the screen is pushed.
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen body; the app draws header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider is implemented by screens that set their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}
