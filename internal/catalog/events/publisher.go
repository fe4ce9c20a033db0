package events

import (
	"context"
	"time"
)

// Change types published after a successful catalog mutation.
const (
	TypeCreated = "created"
	TypeUpdated = "updated"
	TypeDeleted = "deleted"
)

// Change is the payload of a catalog change event.
type Change struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	Kind       string    `json:"kind,omitempty"`
	BaseGameID string    `json:"base_game_id,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher delivers catalog change events to a broker.
// Implementations can be backed by Kafka, Redis Streams, or a no-op for dev.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
	Close() error
}
