package handoff

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/codedrill/internal/learnpath"
	"github.com/abhisek/codedrill/internal/request"
)

// Payload is the drill-down intent handed to a spawned session.
// It is consumed exactly once and deleted when read.
type Payload struct {
	Topic      string             `json:"topic"`
	Language   string             `json:"language"`
	Difficulty request.Difficulty `json:"difficulty"`
}

// Context is the originating session's current language and difficulty.
type Context struct {
	Language   string
	Difficulty request.Difficulty
}

// DerivePayload builds the payload for drilling into p. The topic is the
// problem title followed by its concepts in order, e.g.
// "Two Sum: hash maps, arrays".
func DerivePayload(p learnpath.Problem, c Context) Payload {
	topic := strings.TrimSpace(p.Title)
	var concepts []string
	for _, concept := range p.Concepts {
		if concept = strings.TrimSpace(concept); concept != "" {
			concepts = append(concepts, concept)
		}
	}
	if len(concepts) > 0 {
		if topic == "" {
			topic = strings.Join(concepts, ", ")
		} else {
			topic += ": " + strings.Join(concepts, ", ")
		}
	}
	return Payload{
		Topic:      topic,
		Language:   c.Language,
		Difficulty: c.Difficulty,
	}
}

// Params converts the payload into controller params.
func (p Payload) Params() request.Params {
	return request.Params{
		Topic:      p.Topic,
		Language:   p.Language,
		Difficulty: p.Difficulty,
	}
}

func encodePayload(p Payload) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode handoff payload: %w", err)
	}
	return b, nil
}

func decodePayload(b []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return Payload{}, fmt.Errorf("decode handoff payload: %w", err)
	}
	return p, nil
}
