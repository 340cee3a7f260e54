// Package theme holds the colors and styles shared by every screen.
package theme

import (
	"charm.land/lipgloss/v2"
)

var (
	Primary   = lipgloss.Color("#38BDF8")
	Secondary = lipgloss.Color("#FBBF24")
	Success   = lipgloss.Color("#4ADE80")
	Error     = lipgloss.Color("#F87171")
	Text      = lipgloss.Color("#E5E7EB")
	TextDim   = lipgloss.Color("#6B7280")
	BgCard    = lipgloss.Color("#111827")
	Border    = lipgloss.Color("#374151")
)

var (
	Body = lipgloss.NewStyle().Foreground(Text)
	Hint = lipgloss.NewStyle().Foreground(TextDim)
	// Code is used for example input and output.
	Code = lipgloss.NewStyle().Foreground(Secondary)

	Card = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(Primary).
		PaddingLeft(2)

	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)

	StatusOK    = lipgloss.NewStyle().Foreground(Success)
	StatusError = lipgloss.NewStyle().Foreground(Error).Bold(true)

	ButtonActive = lipgloss.NewStyle().
			Foreground(BgCard).
			Background(Primary).
			Bold(true).
			Padding(0, 3)
	ButtonInactive = lipgloss.NewStyle().
			Foreground(TextDim).
			Background(BgCard).
			Padding(0, 3)
)
