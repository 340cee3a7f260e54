package practice

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrill/internal/learnpath"
	"github.com/abhisek/codedrill/internal/request"
	"github.com/abhisek/codedrill/internal/screens/problem"
	"github.com/abhisek/codedrill/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (s *PracticeScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(s.renderForm())
	b.WriteString("\n\n")

	st := s.ctrl.State()
	switch st.Status {
	case request.StatusLoading:
		frame := spinnerFrames[s.spinnerFrame%len(spinnerFrames)]
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render("  " + frame + " Generating problems..."))
	case request.StatusError:
		b.WriteString(theme.StatusError.Render("  " + st.Err))
	case request.StatusSuccess:
		b.WriteString(s.renderPath(st.Result, width))
	default:
		b.WriteString(theme.Hint.Render("  Pick a topic and language, then press Enter."))
	}

	if s.status != "" {
		style := theme.StatusOK
		if s.statusErr {
			style = theme.StatusError
		}
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Render(style.Render("  " + s.status)))
	}

	return lipgloss.NewStyle().Width(width).MaxHeight(height).Render(b.String())
}

func (s *PracticeScreen) renderForm() string {
	lines := []string{
		"  " + s.topic.View(),
		"  " + s.language.View(),
		"  " + s.renderDifficulty(),
		"",
		"  " + s.submit.View(),
	}
	return strings.Join(lines, "\n")
}

func (s *PracticeScreen) renderDifficulty() string {
	label := lipgloss.NewStyle().Foreground(theme.TextDim).Width(12)
	if s.focus == fieldDifficulty {
		label = label.Foreground(theme.Primary).Bold(true)
	}

	opts := make([]string, 0, len(request.Difficulties))
	for i, d := range request.Difficulties {
		if i == s.difficulty {
			opts = append(opts, theme.Selected.Render("["+string(d)+"]"))
		} else {
			opts = append(opts, theme.Unselected.Render(" "+string(d)+" "))
		}
	}
	return label.Render("Difficulty") + strings.Join(opts, " ")
}

func (s *PracticeScreen) renderPath(lp *learnpath.LearningPath, width int) string {
	if lp == nil || len(lp.Problems) == 0 {
		return theme.Hint.Render("  The server returned no problems.")
	}

	var b strings.Builder
	if lp.Description != "" {
		b.WriteString(lipgloss.NewStyle().Width(width-4).PaddingLeft(2).Foreground(theme.Text).Render(lp.Description))
		b.WriteString("\n\n")
	}
	b.WriteString(s.problems.View())

	if i := s.problems.Current(); s.focus == fieldResults && i >= 0 && i < len(lp.Problems) {
		b.WriteString("\n")
		b.WriteString(problem.Render(lp.Problems[i], width))
	}
	return b.String()
}

func joinConcepts(concepts []string) string {
	return strings.Join(concepts, ", ")
}
