package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 8 << 20

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	client   *http.Client
	endpoint string
}

// NewHTTPClient creates a client for the generator described by cfg.
func NewHTTPClient(cfg Config) *HTTPClient {
	return &HTTPClient{
		client:   &http.Client{Timeout: cfg.Timeout},
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/generate-problems",
	}
}

func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

func (c *HTTPClient) Generate(ctx context.Context, r Request) ([]byte, error) {
	_, body, err := c.GenerateStatus(ctx, r)
	return body, err
}

// GenerateStatus is Generate that also reports the HTTP status of a
// successful response.
func (c *HTTPClient) GenerateStatus(ctx context.Context, r Request) (int, []byte, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return 0, nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}
	if len(body) > maxBodyBytes {
		return 0, nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("response exceeds %d MiB", maxBodyBytes>>20)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg := errorField(body); msg != "" {
			return 0, nil, &ServerError{StatusCode: resp.StatusCode, Message: msg}
		}
		return 0, nil, &TransportError{StatusCode: resp.StatusCode}
	}

	return resp.StatusCode, body, nil
}

// errorField extracts {"error": "..."} from a failure body, or "".
func errorField(body []byte) string {
	var eb struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return eb.Error
}
