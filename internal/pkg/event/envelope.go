// Package event defines the transport-agnostic envelope every domain event
// is published in. The envelope carries data only; routing and delivery are
// the bus's problem.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the uniform shape for anything published to the shared bus.
type Envelope struct {
	EventID       string         `json:"event_id"`
	EventName     string         `json:"event_name"`
	AggregateID   string         `json:"aggregate_id"`
	OccurredAt    time.Time      `json:"occurred_at"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Payload       map[string]any `json:"payload"`
}

// New stamps a fresh envelope with a time-ordered uuid-v7 event id and the
// current time. Event ids are monotonically increasing in generation time,
// which makes them usable as a duplicate-suppression tiebreaker downstream.
func New(eventName, aggregateID string, payload map[string]any, correlationID string) Envelope {
	return Envelope{
		EventID:       NewEventID(),
		EventName:     eventName,
		AggregateID:   aggregateID,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: correlationID,
		Payload:       payload,
	}
}

// NewEventID returns a uuid-v7 string. Falls back to uuid-v4 if the clock
// source fails, which keeps ids unique even if no longer time-ordered.
func NewEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (e Envelope) ToJSON() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope failed: %w", err)
	}
	return data, nil
}

func FromJSON(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope failed: %w", err)
	}
	return e, nil
}
