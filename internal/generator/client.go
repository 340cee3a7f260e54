package generator

import "context"

// Client issues generation requests to the remote problem generator.
type Client interface {
	// Generate posts one request and returns the raw success body.
	// Non-2xx responses and connectivity failures are returned as
	// *ServerError or *TransportError.
	Generate(ctx context.Context, req Request) ([]byte, error)

	// Endpoint returns the URL requests are sent to.
	Endpoint() string
}

// Request is the JSON body of POST /generate-problems.
type Request struct {
	Topic      string `json:"topic"`
	Language   string `json:"language"`
	Difficulty string `json:"difficulty"`
}
