package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrill/internal/ui/theme"
)

// Smallest terminal the practice form fits in.
const (
	MinWidth  = 72
	MinHeight = 20
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// Chrome is the header and footer drawn around the active screen.
type Chrome struct {
	Title string
	// Info is right-aligned in the header, usually the generator endpoint.
	Info  string
	Hints []KeyHint
}

// Render draws the chrome and fills the space between header and footer
// with body, which is called with the width and height left for it.
func (c Chrome) Render(width, height int, body func(w, h int) string) string {
	if width < MinWidth || height < MinHeight {
		return TooSmall(width, height)
	}

	header := RenderHeader(c.Title, c.Info, width)
	footer := RenderFooter(c.Hints, width)
	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := lipgloss.NewStyle().
		Width(width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(body(width, bodyHeight))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

// TooSmall asks the user to resize the terminal.
func TooSmall(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Hint.Render(fmt.Sprintf("codedrill needs at least %dx%d (now %dx%d)",
			MinWidth, MinHeight, width, height)))
}

// RenderHeader puts the app name and screen title on the left and info on
// the right, separated by a rule below.
func RenderHeader(title, info string, width int) string {
	left := theme.Selected.Render("codedrill")
	if title != "" {
		left += theme.Hint.Render(" / ") + theme.Body.Render(title)
	}
	right := theme.Hint.Render(info)

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	line := " " + left + strings.Repeat(" ", gap) + right

	rule := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width, 0)))
	return line + "\n" + rule
}

// RenderFooter lists the key hints on a single line under a rule.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + theme.Hint.Render(h.Description)
	}

	rule := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width, 0)))
	return rule + "\n " + strings.Join(parts, theme.Hint.Render("  ·  "))
}
