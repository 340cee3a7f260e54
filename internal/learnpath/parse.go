package learnpath

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape is the discriminant of a generator response body.
type Shape int

const (
	ShapeUnknown   Shape = iota
	ShapeCanonical       // {"learningPath": {"description", "problems"}}
	ShapeLegacy          // [records] or {"problems": [records] | "<json>"}
)

func (s Shape) String() string {
	switch s {
	case ShapeCanonical:
		return "canonical"
	case ShapeLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// variant is a decoded response body tagged with its shape.
type variant struct {
	shape Shape
	body  any // learningPath object for canonical, record list for legacy
}

// Detect reports which response shape raw matches without validating
// the variant's fields.
func Detect(raw []byte) Shape {
	v, err := detect(raw)
	if err != nil {
		return ShapeUnknown
	}
	return v.shape
}

// Parse normalizes a generator success body into a LearningPath.
//
// A body exposing "learningPath" is always treated as the canonical shape,
// even when it also carries "problems". Anything matching neither shape,
// and any variant missing a required field, fails with *ParseError.
func Parse(raw []byte) (*LearningPath, error) {
	v, err := detect(raw)
	if err != nil {
		return nil, err
	}

	switch v.shape {
	case ShapeCanonical:
		return parseCanonical(v.body)
	case ShapeLegacy:
		return parseLegacy(v.body)
	}
	return nil, &ParseError{Reason: "unrecognized response shape"}
}

// Encode renders lp in the canonical response shape.
func Encode(lp *LearningPath) ([]byte, error) {
	return json.Marshal(struct {
		LearningPath *LearningPath `json:"learningPath"`
	}{lp})
}

func detect(raw []byte) (variant, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return variant{}, &ParseError{Reason: "invalid JSON", Err: err}
	}

	switch top := doc.(type) {
	case []any:
		return variant{shape: ShapeLegacy, body: top}, nil

	case map[string]any:
		if lp, ok := top["learningPath"]; ok {
			return variant{shape: ShapeCanonical, body: lp}, nil
		}
		problems, ok := top["problems"]
		if !ok {
			return variant{}, &ParseError{Reason: "body has neither learningPath nor problems"}
		}
		// Older backends sent the list JSON-encoded inside a string.
		if s, isString := problems.(string); isString {
			var inner any
			if err := json.Unmarshal([]byte(s), &inner); err != nil {
				return variant{}, &ParseError{Shape: ShapeLegacy, Reason: "problems string is not JSON", Err: err}
			}
			problems = inner
		}
		list, ok := problems.([]any)
		if !ok {
			return variant{}, &ParseError{Shape: ShapeLegacy, Reason: "problems is not a list"}
		}
		return variant{shape: ShapeLegacy, body: list}, nil
	}

	return variant{}, &ParseError{Reason: fmt.Sprintf("unexpected top-level JSON %T", doc)}
}

func parseCanonical(body any) (*LearningPath, error) {
	if err := validate("canonical-learning-path", canonicalSchema, body); err != nil {
		return nil, &ParseError{Shape: ShapeCanonical, Reason: "schema validation failed", Err: err}
	}

	var lp LearningPath
	if err := remarshal(body, &lp); err != nil {
		return nil, &ParseError{Shape: ShapeCanonical, Reason: "decode learning path", Err: err}
	}
	lp.normalize()
	return &lp, nil
}

// legacyRecord is one problem in the bare-list shape.
type legacyRecord struct {
	Statement  string      `json:"statement"`
	Example    string      `json:"example"`
	Hints      stringOrArr `json:"hints"`
	Objectives stringOrArr `json:"objectives"`
}

func parseLegacy(body any) (*LearningPath, error) {
	if err := validate("legacy-problems", legacySchema, body); err != nil {
		return nil, &ParseError{Shape: ShapeLegacy, Reason: "schema validation failed", Err: err}
	}

	var records []legacyRecord
	if err := remarshal(body, &records); err != nil {
		return nil, &ParseError{Shape: ShapeLegacy, Reason: "decode problems", Err: err}
	}

	lp := &LearningPath{Problems: make([]Problem, 0, len(records))}
	for i, r := range records {
		lp.Problems = append(lp.Problems, Problem{
			Title:         fmt.Sprintf("Problem %d", i+1),
			Level:         i + 1,
			Concepts:      r.Objectives,
			Description:   r.Statement,
			Prerequisites: []string{},
			Examples:      []Example{{Input: r.Example}},
			Hints:         r.Hints,
		})
	}
	lp.normalize()
	return lp, nil
}

// remarshal decodes an already-validated generic value into dst.
func remarshal(v any, dst any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	return dec.Decode(dst)
}

// stringOrArr decodes either "text" or ["a", "b"].
type stringOrArr []string

func (s *stringOrArr) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*s = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*s = []string{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = many
	return nil
}
