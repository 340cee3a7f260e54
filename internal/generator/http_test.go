package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/codedrill/internal/store"
)

func newTestServer(t *testing.T, status int, body string, seen *Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate-problems", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if seen != nil {
			raw, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.NoError(t, json.Unmarshal(raw, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func clientFor(srv *httptest.Server) *HTTPClient {
	return NewHTTPClient(Config{BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
}

func TestHTTPClient_Success(t *testing.T) {
	var seen Request
	srv := newTestServer(t, http.StatusOK, `{"learningPath":{"description":"D","problems":[]}}`, &seen)

	body, err := clientFor(srv).Generate(context.Background(), Request{Topic: "maps", Language: "go", Difficulty: "beginner"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"learningPath":{"description":"D","problems":[]}}`, string(body))
	assert.Equal(t, Request{Topic: "maps", Language: "go", Difficulty: "beginner"}, seen)
}

func TestHTTPClient_ServerErrorBody(t *testing.T) {
	srv := newTestServer(t, http.StatusBadRequest, `{"error":"topic too vague"}`, nil)

	_, err := clientFor(srv).Generate(context.Background(), Request{Topic: "x", Language: "go", Difficulty: "beginner"})
	require.Error(t, err)

	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "topic too vague", se.Message)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
}

func TestHTTPClient_Non2xxWithoutErrorBody(t *testing.T) {
	for _, body := range []string{``, `<html>bad gateway</html>`, `{"message":"nope"}`} {
		srv := newTestServer(t, http.StatusBadGateway, body, nil)

		_, err := clientFor(srv).Generate(context.Background(), Request{Topic: "x", Language: "go", Difficulty: "beginner"})
		var te *TransportError
		require.True(t, errors.As(err, &te), "body %q: got %v", body, err)
		assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	}
}

func TestHTTPClient_Unreachable(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{}`, nil)
	c := clientFor(srv)
	srv.Close()

	_, err := c.Generate(context.Background(), Request{Topic: "x", Language: "go", Difficulty: "beginner"})
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 0, te.StatusCode)
	assert.Contains(t, te.Error(), "unreachable")
}

func TestHTTPClient_Endpoint(t *testing.T) {
	c := NewHTTPClient(Config{BaseURL: "http://gen.local:3001/", Timeout: time.Second})
	assert.Equal(t, "http://gen.local:3001/generate-problems", c.Endpoint())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{BaseURL: "ftp://x", Timeout: time.Second}.Validate())
	assert.Error(t, Config{BaseURL: "http://", Timeout: time.Second}.Validate())
	assert.Error(t, Config{BaseURL: "http://x", Timeout: 0}.Validate())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("CODEDRILL_BASE_URL", "https://gen.example.com")
	t.Setenv("CODEDRILL_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	assert.Equal(t, "https://gen.example.com", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

type recordingRepo struct {
	store.EventRepo
	events []store.GenerationEventData
	err    error
}

func (r *recordingRepo) AppendGeneration(_ context.Context, data store.GenerationEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingClient(t *testing.T) {
	mock := NewMockClient(
		MockResponse{Body: []byte(`{"problems":[]}`)},
		MockResponse{Err: &ServerError{StatusCode: 422, Message: "bad topic"}},
		MockResponse{Err: &TransportError{Err: errors.New("dial tcp: refused")}},
	)
	repo := &recordingRepo{}
	c := WithLogging(mock, repo)
	req := Request{Topic: "sorting", Language: "python", Difficulty: "advanced"}

	body, err := c.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `{"problems":[]}`, string(body))

	_, err = c.Generate(context.Background(), req)
	require.Error(t, err)
	_, err = c.Generate(context.Background(), req)
	require.Error(t, err)

	require.Len(t, repo.events, 3)
	assert.True(t, repo.events[0].Success)
	assert.Equal(t, "mock", repo.events[0].Endpoint)
	assert.JSONEq(t, `{"topic":"sorting","language":"python","difficulty":"advanced"}`, repo.events[0].RequestBody)

	assert.Equal(t, "server", repo.events[1].ErrorKind)
	assert.Equal(t, 422, repo.events[1].StatusCode)
	assert.Equal(t, "bad topic", repo.events[1].ErrorMessage)

	assert.Equal(t, "transport", repo.events[2].ErrorKind)
	assert.Equal(t, 3, mock.CallCount())
}

func TestLoggingClient_LogFailureDoesNotFailCall(t *testing.T) {
	mock := NewMockClient(MockResponse{Body: []byte(`[]`)})
	c := WithLogging(mock, &recordingRepo{err: errors.New("disk full")})

	body, err := c.Generate(context.Background(), Request{Topic: "t", Language: "l", Difficulty: "beginner"})
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(body))
}

func TestHTTPClient_OversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(bytes.Repeat([]byte("x"), maxBodyBytes+1))
	}))
	t.Cleanup(srv.Close)

	_, err := clientFor(srv).Generate(context.Background(), Request{Topic: "t", Language: "go", Difficulty: "beginner"})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Error(), "exceeds 8 MiB")
}

func TestLoggingClient_RecordsActualStatus(t *testing.T) {
	srv := newTestServer(t, http.StatusAccepted, `{"problems":[]}`, nil)
	repo := &recordingRepo{}
	c := WithLogging(clientFor(srv), repo)

	_, err := c.Generate(context.Background(), Request{Topic: "t", Language: "go", Difficulty: "beginner"})
	require.NoError(t, err)
	require.Len(t, repo.events, 1)
	assert.Equal(t, http.StatusAccepted, repo.events[0].StatusCode)
	assert.True(t, repo.events[0].Success)
}

func TestLoggingClient_UnknownStatusStaysZero(t *testing.T) {
	repo := &recordingRepo{}
	c := WithLogging(NewMockClient(MockResponse{Body: []byte(`[]`)}), repo)

	_, err := c.Generate(context.Background(), Request{Topic: "t", Language: "go", Difficulty: "beginner"})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.events[0].StatusCode)
}
