package domain

import "time"

// OutboxMessage is a staged domain event awaiting publication.
// Messages are inserted in the same transaction as the state change that
// produced them and delivered at-least-once by the dispatcher.
type OutboxMessage struct {
	MessageID   string     `json:"messageID"`
	Event                  // embedded event type, time and payload
	Attempts    int        `json:"attempts"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
