package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codedrill/internal/handoff"
	"github.com/abhisek/codedrill/internal/request"
	"github.com/abhisek/codedrill/internal/router"
	"github.com/abhisek/codedrill/internal/screen"
	"github.com/abhisek/codedrill/internal/screens/practice"
	"github.com/abhisek/codedrill/internal/ui/layout"
)

// Options holds the dependencies for one session.
type Options struct {
	// Controller owns the session's generation requests. Required.
	Controller *request.Controller

	// Bridge enables "learn more" handoffs and bootstrapping from one.
	// Optional.
	Bridge *handoff.Bridge

	// Endpoint is shown in the header.
	Endpoint string

	Practice practice.Options
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	endpoint string
	width    int
	height   int
}

// newAppModel creates a new AppModel with the practice screen. The
// practice screen is built after the controller, so a handoff bootstrap
// started from its Init always finds the controller in place.
func newAppModel(opts Options) AppModel {
	practiceScreen := practice.New(opts.Controller, opts.Bridge, opts.Practice)
	return AppModel{
		router:   router.New(practiceScreen),
		endpoint: opts.Endpoint,
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, m.router.Update(msg)
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}

	v.SetContent(m.chrome().Render(m.width, m.height, m.router.View))
	return v
}

// chrome describes the header and footer for the active screen.
func (m AppModel) chrome() layout.Chrome {
	c := layout.Chrome{
		Info:  m.endpoint,
		Hints: []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}},
	}
	active := m.router.Active()
	if active == nil {
		return c
	}
	c.Title = active.Title()
	if hp, ok := active.(screen.KeyHintProvider); ok {
		c.Hints = hp.KeyHints()
	}
	return c
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Controller == nil {
		return fmt.Errorf("app: controller is required")
	}
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
