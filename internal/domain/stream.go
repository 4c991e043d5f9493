package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stream names
const (
	StreamGuidePlay = "stream:guide:play"
)

// PlayEvent is one accepted play-count increment waiting to be applied.
type PlayEvent struct {
	ID       uuid.UUID `json:"id"`
	GuideID  int64     `json:"guide_id"`
	Client   string    `json:"client,omitempty"`
	PlayedAt time.Time `json:"played_at"`
}

func NewPlayEvent(guideID int64, client string, at time.Time) PlayEvent {
	return PlayEvent{
		ID:       uuid.New(),
		GuideID:  guideID,
		Client:   client,
		PlayedAt: at.UTC(),
	}
}

// Valid reports whether the event can be applied.
func (e PlayEvent) Valid() bool {
	return e.GuideID > 0 && e.ID != uuid.Nil
}

// StreamMessage - message read from a Redis stream
type StreamMessage struct {
	ID   string
	Data string
}
