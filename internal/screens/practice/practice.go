package practice

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codedrill/internal/handoff"
	"github.com/abhisek/codedrill/internal/learnpath"
	"github.com/abhisek/codedrill/internal/request"
	"github.com/abhisek/codedrill/internal/router"
	"github.com/abhisek/codedrill/internal/screen"
	"github.com/abhisek/codedrill/internal/screens/problem"
	"github.com/abhisek/codedrill/internal/ui/components"
	"github.com/abhisek/codedrill/internal/ui/layout"
)

const spinnerInterval = 120 * time.Millisecond

type field int

const (
	fieldTopic field = iota
	fieldLanguage
	fieldDifficulty
	fieldSubmit
	fieldResults
)

// Options configure a PracticeScreen.
type Options struct {
	// Initial prefills the form. An empty difficulty means beginner.
	Initial request.Params

	// AutoSubmit submits Initial as soon as the screen starts.
	AutoSubmit bool

	// HandoffKey, when set, makes the screen bootstrap from the handoff
	// slot with this key: the payload fills the form and is submitted.
	HandoffKey string
}

// PracticeScreen is the problem generation form plus the rendered
// learning path.
type PracticeScreen struct {
	ctrl   *request.Controller
	bridge *handoff.Bridge
	opts   Options

	topic      components.TextInput
	language   components.TextInput
	difficulty int
	submit     components.Button
	problems   components.Menu
	focus      field

	spinnerFrame int
	status       string
	statusErr    bool

	// pending is the handoff waiting for its spawned session, if any.
	pending *handoff.Ticket
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)

// New creates a PracticeScreen driving ctrl. bridge may be nil, in which
// case "learn more" is unavailable and HandoffKey is ignored.
func New(ctrl *request.Controller, bridge *handoff.Bridge, opts Options) *PracticeScreen {
	s := &PracticeScreen{
		ctrl:     ctrl,
		bridge:   bridge,
		opts:     opts,
		topic:    components.NewTextInput("Topic", "e.g. binary search", 80),
		language: components.NewTextInput("Language", "e.g. go", 40),
	}
	s.setParams(opts.Initial)
	s.submit = components.NewButton("Generate", true, s.submitCmd)
	return s
}

func (s *PracticeScreen) Title() string {
	return "Practice"
}

// Init starts the handoff bootstrap when this session was opened by
// another one. The controller already exists at this point, so the
// readiness signal sent by Accept always means the session can submit.
func (s *PracticeScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{s.topic.Focus()}

	switch {
	case s.opts.HandoffKey != "" && s.bridge != nil:
		s.setStatus("Waiting for handoff from the other session...", false)
		cmds = append(cmds, s.acceptCmd(s.opts.HandoffKey))
	case s.opts.AutoSubmit:
		cmds = append(cmds, s.submitCmd())
	}
	return tea.Batch(cmds...)
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	if s.pending != nil {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Cancel handoff"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	switch s.focus {
	case fieldDifficulty:
		return []layout.KeyHint{
			{Key: "←→", Description: "Difficulty"},
			{Key: "Tab", Description: "Next"},
			{Key: "Enter", Description: "Generate"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	case fieldResults:
		hints := []layout.KeyHint{
			{Key: "↑↓", Description: "Problem"},
			{Key: "v", Description: "View"},
		}
		if s.bridge != nil {
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Learn more"})
		}
		return append(hints,
			layout.KeyHint{Key: "Tab", Description: "Form"},
			layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
		)
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next"},
		{Key: "Enter", Description: "Generate"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case request.ResultMsg:
		return s, s.handleResult(msg)

	case spinnerTickMsg:
		if !s.ctrl.Loading() {
			return s, nil
		}
		s.spinnerFrame++
		return s, spinnerTick()

	case bootstrapMsg:
		return s, s.handleBootstrap(msg)

	case handoffPreparedMsg:
		return s, s.handlePrepared(msg)

	case handoffDeliveredMsg:
		s.handleDelivered(msg)
		return s, nil

	case handoffCancelledMsg:
		if msg.Err != nil && !errors.Is(msg.Err, handoff.ErrSlotNotFound) {
			s.setStatus("Cancel failed: "+msg.Err.Error(), true)
		}
		return s, nil

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}

	return s, s.forwardToInput(msg)
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" && s.pending != nil {
		return s.cancelCmd()
	}

	switch msg.String() {
	case "tab", "down":
		if s.focus == fieldResults && msg.String() == "down" {
			break
		}
		return s.moveFocus(1)
	case "shift+tab", "up":
		if s.focus == fieldResults && msg.String() == "up" {
			break
		}
		return s.moveFocus(-1)
	}

	switch s.focus {
	case fieldTopic, fieldLanguage:
		if msg.String() == "enter" {
			return s.submitCmd()
		}
		return s.forwardToInput(msg)

	case fieldDifficulty:
		switch msg.String() {
		case "left", "h":
			if s.difficulty > 0 {
				s.difficulty--
			}
		case "right", "l":
			if s.difficulty < len(request.Difficulties)-1 {
				s.difficulty++
			}
		case "enter":
			return s.submitCmd()
		}
		return nil

	case fieldSubmit:
		var cmd tea.Cmd
		s.submit, cmd = s.submit.Update(msg)
		return cmd

	case fieldResults:
		if msg.String() == "v" {
			return s.openProblemCmd()
		}
		var cmd tea.Cmd
		s.problems, cmd = s.problems.Update(msg)
		return cmd
	}
	return nil
}

// openProblemCmd pushes the selected problem full screen.
func (s *PracticeScreen) openProblemCmd() tea.Cmd {
	st := s.ctrl.State()
	i := s.problems.Current()
	if st.Result == nil || i < 0 || i >= len(st.Result.Problems) {
		return nil
	}
	p := st.Result.Problems[i]

	var learn func() tea.Cmd
	if s.bridge != nil {
		learn = func() tea.Cmd { return s.learnMoreCmd(p) }
	}
	detail := problem.New(p, learn)
	return func() tea.Msg { return router.PushScreenMsg{Screen: detail} }
}

// moveFocus cycles through the form fields, and the result list when a
// learning path is shown.
func (s *PracticeScreen) moveFocus(delta int) tea.Cmd {
	n := int(fieldSubmit) + 1
	if s.hasResults() {
		n = int(fieldResults) + 1
	}
	next := field(((int(s.focus)+delta)%n + n) % n)
	return s.setFocus(next)
}

func (s *PracticeScreen) setFocus(f field) tea.Cmd {
	s.focus = f
	s.topic.Blur()
	s.language.Blur()
	s.submit.Focused = f == fieldSubmit

	switch f {
	case fieldTopic:
		return s.topic.Focus()
	case fieldLanguage:
		return s.language.Focus()
	}
	return nil
}

func (s *PracticeScreen) forwardToInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.focus {
	case fieldTopic:
		s.topic, cmd = s.topic.Update(msg)
	case fieldLanguage:
		s.language, cmd = s.language.Update(msg)
	}
	return cmd
}

// params reads the current form values.
func (s *PracticeScreen) params() request.Params {
	return request.Params{
		Topic:      s.topic.Value(),
		Language:   s.language.Value(),
		Difficulty: request.Difficulties[s.difficulty],
	}
}

func (s *PracticeScreen) setParams(p request.Params) {
	s.topic.SetValue(p.Topic)
	s.language.SetValue(p.Language)
	s.difficulty = 0
	for i, d := range request.Difficulties {
		if d == p.Difficulty {
			s.difficulty = i
		}
	}
}

// submitCmd submits the form. Presses while a request is loading are
// ignored; validation failures surface through the controller's Error state.
func (s *PracticeScreen) submitCmd() tea.Cmd {
	cmd, err := s.ctrl.Submit(s.params())
	if err != nil {
		return nil
	}
	s.submit.Active = false
	s.spinnerFrame = 0
	return tea.Batch(cmd, spinnerTick())
}

func (s *PracticeScreen) handleResult(msg request.ResultMsg) tea.Cmd {
	if !s.ctrl.Resolve(msg) {
		return nil
	}
	s.submit.Active = true

	st := s.ctrl.State()
	if st.Status != request.StatusSuccess {
		s.problems = components.Menu{}
		if s.focus == fieldResults {
			return s.setFocus(fieldTopic)
		}
		return nil
	}

	s.problems = s.problemMenu(st.Result)
	return s.setFocus(fieldResults)
}

func (s *PracticeScreen) problemMenu(lp *learnpath.LearningPath) components.Menu {
	items := make([]components.MenuItem, 0, len(lp.Problems))
	for i := range lp.Problems {
		p := lp.Problems[i]
		item := components.MenuItem{
			Label:  fmt.Sprintf("%d. %s", p.Level, p.Title),
			Detail: joinConcepts(p.Concepts),
		}
		if s.bridge != nil {
			item.Action = func() tea.Cmd { return s.learnMoreCmd(p) }
		}
		items = append(items, item)
	}
	return components.NewMenu(items)
}

func (s *PracticeScreen) hasResults() bool {
	st := s.ctrl.State()
	return st.Status == request.StatusSuccess && st.Result != nil && len(st.Result.Problems) > 0
}

func (s *PracticeScreen) handleBootstrap(msg bootstrapMsg) tea.Cmd {
	if msg.Err != nil {
		s.setStatus("Handoff failed: "+msg.Err.Error(), true)
		return nil
	}
	s.setParams(msg.Payload.Params())
	s.setStatus("", false)
	return s.submitCmd()
}

func (s *PracticeScreen) handlePrepared(msg handoffPreparedMsg) tea.Cmd {
	if msg.Ticket == nil {
		s.setStatus("Learn more failed: "+msg.Err.Error(), true)
		return nil
	}

	s.pending = msg.Ticket
	topic := msg.Ticket.Payload.Topic
	if msg.Err != nil {
		s.setStatus(fmt.Sprintf("Could not open a new session (%v). Run: codedrill open '%s'",
			msg.Err, msg.Ticket.Location), true)
	} else {
		s.setStatus(fmt.Sprintf("Opening a new session for %q...", topic), false)
	}
	return s.deliverCmd(msg.Ticket)
}

// handleDelivered reports the outcome of the pending handoff. Results for a
// handoff that was cancelled or superseded are dropped.
func (s *PracticeScreen) handleDelivered(msg handoffDeliveredMsg) {
	if s.pending == nil || s.pending.Key != msg.Ticket.Key {
		return
	}
	s.pending = nil

	topic := msg.Ticket.Payload.Topic
	switch {
	case msg.Err == nil:
		s.setStatus(fmt.Sprintf("Handed off %q to the new session", topic), false)
	case errors.Is(msg.Err, handoff.ErrNotReady):
		s.setStatus(fmt.Sprintf("New session for %q did not start in time", topic), true)
	default:
		s.setStatus("Handoff failed: "+msg.Err.Error(), true)
	}
}

func (s *PracticeScreen) setStatus(text string, isErr bool) {
	s.status = text
	s.statusErr = isErr
}

// learnMoreCmd starts a handoff for p using the language and difficulty
// of the submission that produced it.
func (s *PracticeScreen) learnMoreCmd(p learnpath.Problem) tea.Cmd {
	bridge := s.bridge
	params := s.ctrl.Params()
	hc := handoff.Context{Language: params.Language, Difficulty: params.Difficulty}
	s.setStatus("Preparing handoff...", false)
	return func() tea.Msg {
		t, err := bridge.Prepare(context.Background(), p, hc)
		return handoffPreparedMsg{Ticket: t, Err: err}
	}
}

func (s *PracticeScreen) deliverCmd(t *handoff.Ticket) tea.Cmd {
	bridge := s.bridge
	return func() tea.Msg {
		err := bridge.Deliver(context.Background(), t)
		return handoffDeliveredMsg{Ticket: t, Err: err}
	}
}

// cancelCmd abandons the pending handoff. The slot is removed, so the
// spawned session's Accept fails and the running Deliver stops polling.
func (s *PracticeScreen) cancelCmd() tea.Cmd {
	t := s.pending
	s.pending = nil
	s.setStatus(fmt.Sprintf("Cancelled handoff for %q", t.Payload.Topic), false)

	bridge := s.bridge
	return func() tea.Msg {
		err := bridge.Cancel(context.Background(), t.Key)
		return handoffCancelledMsg{Ticket: t, Err: err}
	}
}

func (s *PracticeScreen) acceptCmd(key string) tea.Cmd {
	bridge := s.bridge
	return func() tea.Msg {
		p, err := bridge.Accept(context.Background(), key)
		return bootstrapMsg{Payload: p, Err: err}
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}
