package generator

import "fmt"

// GenericFailureMessage is surfaced when a request fails without the
// server explaining why.
const GenericFailureMessage = "Failed to generate problems. Please try again."

// TransportError indicates the generator could not be reached, or answered
// with a non-2xx status and no error body.
type TransportError struct {
	// StatusCode is 0 when no HTTP response was received.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("generator returned HTTP %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("generator returned HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("generator unreachable: %v", e.Err)
	}
	return "generator unreachable"
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError indicates a non-2xx response whose body carried an
// "error" field. Message is passed through verbatim.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("generator error (HTTP %d): %s", e.StatusCode, e.Message)
}
