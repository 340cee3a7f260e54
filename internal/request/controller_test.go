package request

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/codedrill/internal/generator"
	"github.com/abhisek/codedrill/internal/learnpath"
)

const canonicalBody = `{"learningPath":{"description":"D","problems":[{"title":"T","level":1,"concepts":["x"],"description":"d","prerequisites":[],"examples":[],"hints":[]}]}}`

var validParams = Params{Topic: "closures", Language: "javascript", Difficulty: Intermediate}

// run executes the command returned by Submit and resolves its result.
func run(t *testing.T, c *Controller, p Params) State {
	t.Helper()
	cmd, err := c.Submit(p)
	require.NoError(t, err)
	require.NotNil(t, cmd)
	require.Equal(t, StatusLoading, c.State().Status)

	msg, ok := cmd().(ResultMsg)
	require.True(t, ok)
	require.True(t, c.Resolve(msg))
	return c.State()
}

func recordTransitions(c *Controller) *[]Transition {
	var got []Transition
	c.OnTransition(func(tr Transition) { got = append(got, tr) })
	return &got
}

func TestSubmit_Success(t *testing.T) {
	mock := generator.NewMockClient(generator.MockResponse{Body: []byte(canonicalBody)})
	c := New(mock)
	transitions := recordTransitions(c)

	st := run(t, c, validParams)

	assert.Equal(t, StatusSuccess, st.Status)
	assert.Empty(t, st.Err)
	require.NotNil(t, st.Result)
	assert.Equal(t, "D", st.Result.Description)
	assert.Equal(t, validParams, c.Params())

	require.Len(t, mock.Calls, 1)
	assert.Equal(t, generator.Request{Topic: "closures", Language: "javascript", Difficulty: "intermediate"}, mock.Calls[0])

	require.Len(t, *transitions, 2)
	assert.Equal(t, StatusIdle, (*transitions)[0].From)
	assert.Equal(t, StatusLoading, (*transitions)[0].To)
	assert.Equal(t, StatusSuccess, (*transitions)[1].To)
	assert.Equal(t, (*transitions)[0].SubmissionID, (*transitions)[1].SubmissionID)
}

func TestSubmit_WhileLoadingIsNoop(t *testing.T) {
	mock := generator.NewMockClient(
		generator.MockResponse{Body: []byte(canonicalBody)},
		generator.MockResponse{Body: []byte(canonicalBody)},
	)
	c := New(mock)

	cmd, err := c.Submit(validParams)
	require.NoError(t, err)
	before := c.State()
	transitions := recordTransitions(c)

	other := Params{Topic: "generics", Language: "go", Difficulty: Advanced}
	again, err := c.Submit(other)
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Nil(t, again)
	assert.Equal(t, before, c.State())
	assert.Equal(t, validParams, c.Params())
	assert.Empty(t, *transitions)

	// Invalid params are also ignored while loading.
	_, err = c.Submit(Params{})
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Equal(t, StatusLoading, c.State().Status)

	// The original call still completes.
	require.True(t, c.Resolve(cmd().(ResultMsg)))
	assert.Equal(t, StatusSuccess, c.State().Status)
	assert.Equal(t, 1, mock.CallCount())
}

func TestSubmit_ValidationNeverCallsNetwork(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		field  string
	}{
		{"empty topic", Params{Topic: "", Language: "go", Difficulty: Beginner}, "topic"},
		{"blank topic", Params{Topic: "   ", Language: "go", Difficulty: Beginner}, "topic"},
		{"empty language", Params{Topic: "maps", Language: "", Difficulty: Beginner}, "language"},
		{"bad difficulty", Params{Topic: "maps", Language: "go", Difficulty: "expert"}, "difficulty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := generator.NewMockClient()
			c := New(mock)

			cmd, err := c.Submit(tt.params)
			assert.Nil(t, cmd)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)

			assert.Equal(t, StatusError, c.State().Status)
			assert.Equal(t, err.Error(), c.State().Err)
			assert.Equal(t, 0, mock.CallCount())
		})
	}
}

func TestSubmit_MalformedBodyEndsInError(t *testing.T) {
	c := New(generator.NewMockClient(generator.MockResponse{Body: []byte(`{}`)}))

	st := run(t, c, validParams)

	assert.Equal(t, StatusError, st.Status)
	assert.Nil(t, st.Result)
	var perr *learnpath.ParseError
	assert.True(t, errors.As(st.Cause, &perr))
	assert.Contains(t, st.Err, "invalid response format from server")
}

func TestSubmit_ServerErrorPassedThrough(t *testing.T) {
	c := New(generator.NewMockClient(generator.MockResponse{
		Err: &generator.ServerError{StatusCode: 400, Message: "Topic must be about programming"},
	}))

	st := run(t, c, validParams)
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, "Topic must be about programming", st.Err)
}

func TestSubmit_TransportErrorUsesGenericMessage(t *testing.T) {
	c := New(generator.NewMockClient(generator.MockResponse{
		Err: &generator.TransportError{StatusCode: 503},
	}))

	st := run(t, c, validParams)
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, generator.GenericFailureMessage, st.Err)
}

func TestSubmit_ResubmitAfterErrorClearsState(t *testing.T) {
	mock := generator.NewMockClient(
		generator.MockResponse{Err: &generator.TransportError{}},
		generator.MockResponse{Body: []byte(canonicalBody)},
		generator.MockResponse{Err: &generator.ServerError{StatusCode: 500, Message: "down"}},
	)
	c := New(mock)

	assert.Equal(t, StatusError, run(t, c, validParams).Status)

	cmd, err := c.Submit(validParams)
	require.NoError(t, err)
	assert.Empty(t, c.State().Err, "error cleared on resubmit")
	require.True(t, c.Resolve(cmd().(ResultMsg)))
	assert.Equal(t, StatusSuccess, c.State().Status)

	cmd, err = c.Submit(validParams)
	require.NoError(t, err)
	assert.Nil(t, c.State().Result, "result cleared on resubmit")
	require.True(t, c.Resolve(cmd().(ResultMsg)))
	assert.Equal(t, "down", c.State().Err)
}

func TestResolve_IgnoresStaleResults(t *testing.T) {
	c := New(generator.NewMockClient(generator.MockResponse{Body: []byte(canonicalBody)}))

	assert.False(t, c.Resolve(ResultMsg{SubmissionID: "nobody"}))
	assert.Equal(t, StatusIdle, c.State().Status)

	cmd, err := c.Submit(validParams)
	require.NoError(t, err)
	assert.False(t, c.Resolve(ResultMsg{SubmissionID: "other", Body: []byte(canonicalBody)}))
	assert.Equal(t, StatusLoading, c.State().Status)

	msg := cmd().(ResultMsg)
	require.True(t, c.Resolve(msg))
	assert.False(t, c.Resolve(msg), "a result applies once")
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" Advanced ")
	require.NoError(t, err)
	assert.Equal(t, Advanced, d)

	_, err = ParseDifficulty("expert")
	assert.Error(t, err)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "topic is required", Params{Language: "go", Difficulty: Beginner}.Validate().Error())
	assert.Equal(t, "language is required", Params{Topic: "maps", Difficulty: Beginner}.Validate().Error())
	assert.Equal(t, `difficulty "expert" is not one of beginner, intermediate, advanced`,
		Params{Topic: "maps", Language: "go", Difficulty: "expert"}.Validate().Error())
}
