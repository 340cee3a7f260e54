package request

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/codedrill/internal/generator"
	"github.com/abhisek/codedrill/internal/learnpath"
)

// ResultMsg carries the outcome of a generator call back into the
// session's event loop.
type ResultMsg struct {
	SubmissionID string
	Body         []byte
	Err          error
}

// Controller owns the lifecycle of one outstanding generation request.
//
// It is not safe for concurrent use: all methods must be called from the
// session's event loop (a Bubble Tea Update). The network call itself runs
// in the returned tea.Cmd and reports back through Resolve.
type Controller struct {
	client    generator.Client
	state     State
	params    Params
	inflight  string
	observers []func(Transition)
}

// New creates a Controller in StatusIdle.
func New(client generator.Client) *Controller {
	return &Controller{client: client}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Params returns the params of the most recent submission.
func (c *Controller) Params() Params {
	return c.params
}

// Loading reports whether a request is in flight.
func (c *Controller) Loading() bool {
	return c.state.Status == StatusLoading
}

// OnTransition registers fn to be called after every state change.
func (c *Controller) OnTransition(fn func(Transition)) {
	c.observers = append(c.observers, fn)
}

// Submit starts a generation request.
//
// While a request is loading Submit returns ErrInFlight and changes
// nothing. Invalid params move the controller to StatusError without a
// network call. Otherwise the controller moves to StatusLoading and the
// returned command performs exactly one generator call; deliver its
// ResultMsg to Resolve.
func (c *Controller) Submit(p Params) (tea.Cmd, error) {
	if c.state.Status == StatusLoading {
		return nil, ErrInFlight
	}

	if err := p.Validate(); err != nil {
		c.transition("", State{Status: StatusError, Err: err.Error(), Cause: err})
		return nil, err
	}

	id := uuid.New().String()
	c.params = p
	c.inflight = id
	c.transition(id, State{Status: StatusLoading})

	client := c.client
	req := generator.Request{
		Topic:      p.Topic,
		Language:   p.Language,
		Difficulty: string(p.Difficulty),
	}
	return func() tea.Msg {
		body, err := client.Generate(context.Background(), req)
		return ResultMsg{SubmissionID: id, Body: body, Err: err}
	}, nil
}

// Resolve applies a generator outcome. It returns false, leaving the state
// untouched, when msg does not belong to the in-flight submission.
func (c *Controller) Resolve(msg ResultMsg) bool {
	if c.state.Status != StatusLoading || msg.SubmissionID != c.inflight {
		return false
	}
	c.inflight = ""

	if msg.Err != nil {
		c.transition(msg.SubmissionID, State{
			Status: StatusError,
			Err:    failureMessage(msg.Err),
			Cause:  msg.Err,
		})
		return true
	}

	lp, err := learnpath.Parse(msg.Body)
	if err != nil {
		c.transition(msg.SubmissionID, State{Status: StatusError, Err: err.Error(), Cause: err})
		return true
	}

	c.transition(msg.SubmissionID, State{Status: StatusSuccess, Result: lp})
	return true
}

// failureMessage maps a transport failure to the text shown to the learner.
func failureMessage(err error) string {
	var se *generator.ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return generator.GenericFailureMessage
}

func (c *Controller) transition(id string, next State) {
	from := c.state.Status
	c.state = next
	for _, fn := range c.observers {
		fn(Transition{SubmissionID: id, From: from, To: next.Status})
	}
}
