package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/codedrill/internal/store"
)

// LoggingClient is a decorator that records every generator call as an event.
type LoggingClient struct {
	inner     Client
	eventRepo store.EventRepo
}

// statusClient is implemented by clients that know the HTTP status of a
// successful call.
type statusClient interface {
	GenerateStatus(ctx context.Context, req Request) (int, []byte, error)
}

// WithLogging wraps a Client with event logging.
func WithLogging(c Client, repo store.EventRepo) Client {
	return &LoggingClient{inner: c, eventRepo: repo}
}

func (l *LoggingClient) Generate(ctx context.Context, req Request) ([]byte, error) {
	start := time.Now()

	var (
		status int
		body   []byte
		err    error
	)
	if sc, ok := l.inner.(statusClient); ok {
		status, body, err = sc.GenerateStatus(ctx, req)
	} else {
		body, err = l.inner.Generate(ctx, req)
	}

	reqBody, _ := json.Marshal(req)
	data := store.GenerationEventData{
		Topic:        req.Topic,
		Language:     req.Language,
		Difficulty:   req.Difficulty,
		Endpoint:     l.inner.Endpoint(),
		LatencyMs:    time.Since(start).Milliseconds(),
		Success:      err == nil,
		RequestBody:  string(reqBody),
		ResponseBody: string(body),
		// Zero when the inner client cannot tell.
		StatusCode: status,
	}

	var serverErr *ServerError
	var transportErr *TransportError
	switch {
	case errors.As(err, &serverErr):
		data.StatusCode = serverErr.StatusCode
		data.ErrorKind = "server"
		data.ErrorMessage = serverErr.Message
	case errors.As(err, &transportErr):
		data.StatusCode = transportErr.StatusCode
		data.ErrorKind = "transport"
		data.ErrorMessage = transportErr.Error()
	case err != nil:
		data.ErrorKind = "transport"
		data.ErrorMessage = err.Error()
	}

	// Log the event but don't fail the request if logging fails.
	if logErr := l.eventRepo.AppendGeneration(ctx, data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log generation event: %v\n", logErr)
	}

	return body, err
}

func (l *LoggingClient) Endpoint() string {
	return l.inner.Endpoint()
}
