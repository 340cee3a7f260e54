package request

import "errors"

// ErrInFlight is returned by Submit while a request is loading.
var ErrInFlight = errors.New("a generation request is already in flight")

// ValidationError indicates params were rejected before any network call.
// Message completes a sentence that starts with Field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}
