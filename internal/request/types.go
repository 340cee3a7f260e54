package request

import (
	"fmt"
	"strings"

	"github.com/abhisek/codedrill/internal/learnpath"
)

// Difficulty is the requested problem difficulty.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Difficulties lists the accepted values in ascending order.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// ParseDifficulty accepts a difficulty name in any letter case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("invalid difficulty %q: must be beginner, intermediate or advanced", s)
	}
	return d, nil
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Params are the inputs of one generation request.
type Params struct {
	Topic      string
	Language   string
	Difficulty Difficulty
}

// Validate returns a *ValidationError when a field is missing or invalid.
func (p Params) Validate() error {
	if strings.TrimSpace(p.Topic) == "" {
		return &ValidationError{Field: "topic", Message: "is required"}
	}
	if strings.TrimSpace(p.Language) == "" {
		return &ValidationError{Field: "language", Message: "is required"}
	}
	if !p.Difficulty.Valid() {
		return &ValidationError{Field: "difficulty", Message: fmt.Sprintf("%q is not one of beginner, intermediate, advanced", p.Difficulty)}
	}
	return nil
}

// Status is the controller's lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// State is a snapshot of the controller. Exactly one Status holds;
// Err is set only in StatusError and Result only in StatusSuccess.
type State struct {
	Status Status
	Err    string
	Result *learnpath.LearningPath

	// Cause is the typed error behind Err.
	Cause error
}

// Transition is one observable state change.
type Transition struct {
	SubmissionID string
	From         Status
	To           Status
}
