package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abhisek/codedrill/ent"
	"github.com/abhisek/codedrill/ent/generationevent"
)

// eventRepo implements EventRepo backed by ent and the global sequence counter.
type eventRepo struct {
	client    *ent.Client
	db        *sql.DB
	seq       *sequenceCounter
	sessionID string
}

func (r *eventRepo) AppendGeneration(ctx context.Context, data GenerationEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.client.GenerationEvent.Create().
		SetSequence(seqNum).
		SetSessionID(r.sessionID).
		SetTopic(data.Topic).
		SetLanguage(data.Language).
		SetDifficulty(data.Difficulty).
		SetEndpoint(data.Endpoint).
		SetStatusCode(data.StatusCode).
		SetLatencyMs(data.LatencyMs).
		SetSuccess(data.Success).
		SetErrorKind(data.ErrorKind).
		SetErrorMessage(data.ErrorMessage).
		SetRequestBody(data.RequestBody).
		SetResponseBody(data.ResponseBody).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("save generation event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryGenerations(ctx context.Context, opts QueryOpts) ([]GenerationEvent, error) {
	q := r.client.GenerationEvent.Query()
	if !opts.Since.IsZero() {
		q = q.Where(generationevent.TimestampGTE(opts.Since))
	}
	if opts.Topic != "" {
		q = q.Where(generationevent.TopicEqualFold(opts.Topic))
	}
	if opts.FailedOnly {
		q = q.Where(generationevent.Success(false))
	}
	q = q.Order(ent.Desc(generationevent.FieldSequence))
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	rows, err := q.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query generation events: %w", err)
	}

	events := make([]GenerationEvent, 0, len(rows))
	for _, e := range rows {
		events = append(events, entGenerationToEvent(e))
	}
	return events, nil
}

func (r *eventRepo) GetGeneration(ctx context.Context, id int) (*GenerationEvent, error) {
	e, err := r.client.GenerationEvent.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get generation event %d: %w", id, err)
	}
	ev := entGenerationToEvent(e)
	return &ev, nil
}

// UsageByTopic uses raw SQL; the aggregate with a conditional count is
// simpler to express directly than through ent's GroupBy.
func (r *eventRepo) UsageByTopic(ctx context.Context) ([]TopicUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT topic,
		       COUNT(*),
		       SUM(CASE WHEN success THEN 0 ELSE 1 END),
		       CAST(AVG(latency_ms) AS INTEGER)
		FROM generation_events
		GROUP BY topic
		ORDER BY COUNT(*) DESC, topic`)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var out []TopicUsage
	for rows.Next() {
		var u TopicUsage
		if err := rows.Scan(&u.Topic, &u.Calls, &u.Failures, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// entGenerationToEvent converts an ent GenerationEvent to a store GenerationEvent.
func entGenerationToEvent(e *ent.GenerationEvent) GenerationEvent {
	return GenerationEvent{
		ID:        e.ID,
		Sequence:  e.Sequence,
		Timestamp: e.Timestamp,
		SessionID: e.SessionID,
		GenerationEventData: GenerationEventData{
			Topic:        e.Topic,
			Language:     e.Language,
			Difficulty:   e.Difficulty,
			Endpoint:     e.Endpoint,
			StatusCode:   e.StatusCode,
			LatencyMs:    e.LatencyMs,
			Success:      e.Success,
			ErrorKind:    e.ErrorKind,
			ErrorMessage: e.ErrorMessage,
			RequestBody:  e.RequestBody,
			ResponseBody: e.ResponseBody,
		},
	}
}
