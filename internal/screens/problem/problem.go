// Package problem shows a single generated problem full screen.
package problem

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrill/internal/learnpath"
	"github.com/abhisek/codedrill/internal/router"
	"github.com/abhisek/codedrill/internal/screen"
	"github.com/abhisek/codedrill/internal/ui/layout"
	"github.com/abhisek/codedrill/internal/ui/theme"
)

// ProblemScreen renders one problem. LearnMore, when set, is run after the
// screen pops itself so its result lands on the screen underneath.
type ProblemScreen struct {
	problem   learnpath.Problem
	learnMore func() tea.Cmd
}

var _ screen.Screen = (*ProblemScreen)(nil)
var _ screen.KeyHintProvider = (*ProblemScreen)(nil)

func New(p learnpath.Problem, learnMore func() tea.Cmd) *ProblemScreen {
	return &ProblemScreen{problem: p, learnMore: learnMore}
}

func (s *ProblemScreen) Init() tea.Cmd { return nil }

func (s *ProblemScreen) Title() string { return s.problem.Title }

func (s *ProblemScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	if s.learnMore != nil {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Learn more"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (s *ProblemScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch key.String() {
	case "esc", "q", "backspace":
		return s, pop
	case "enter", "l":
		if s.learnMore == nil {
			return s, nil
		}
		return s, tea.Batch(pop, s.learnMore())
	}
	return s, nil
}

func (s *ProblemScreen) View(width, height int) string {
	return lipgloss.NewStyle().MaxHeight(height).Render(Render(s.problem, width))
}

func pop() tea.Msg { return router.PopScreenMsg{} }

// Render draws p as a card that fits width.
func Render(p learnpath.Problem, width int) string {
	var b strings.Builder

	b.WriteString(theme.Selected.Render(p.Title))
	b.WriteString(theme.Hint.Render(fmt.Sprintf("  level %d", p.Level)))
	b.WriteString("\n")

	if p.Description != "" {
		b.WriteString("\n" + theme.Body.Render(p.Description) + "\n")
	}
	if len(p.Concepts) > 0 {
		b.WriteString("\n" + theme.Hint.Render("Concepts: "+strings.Join(p.Concepts, ", ")) + "\n")
	}
	if len(p.Prerequisites) > 0 {
		b.WriteString(theme.Hint.Render("Prerequisites: "+strings.Join(p.Prerequisites, ", ")) + "\n")
	}
	for i, ex := range p.Examples {
		b.WriteString("\n" + theme.Body.Bold(true).Render(fmt.Sprintf("Example %d", i+1)) + "\n")
		if ex.Input != "" {
			b.WriteString("  Input:  " + theme.Code.Render(ex.Input) + "\n")
		}
		if ex.Output != "" {
			b.WriteString("  Output: " + theme.Code.Render(ex.Output) + "\n")
		}
		if ex.Explanation != "" {
			b.WriteString("  " + theme.Hint.Render(ex.Explanation) + "\n")
		}
	}
	if len(p.Hints) > 0 {
		b.WriteString("\n" + theme.Body.Bold(true).Render("Hints") + "\n")
		for _, h := range p.Hints {
			b.WriteString("  • " + h + "\n")
		}
	}

	cardWidth := max(width-4, 20)
	return lipgloss.NewStyle().MarginLeft(2).Render(theme.Card.Width(cardWidth).Render(b.String()))
}
