package learnpath

import "fmt"

// ParseError indicates the generator returned a success body that is not
// valid JSON or matches neither recognized response shape.
type ParseError struct {
	// Shape is the variant the body was detected as. ShapeUnknown when
	// the discriminant check itself failed.
	Shape  Shape
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "invalid response format from server"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }
