package models

import "time"

// OutboxMessage represents a staged domain event row.
type OutboxMessage struct {
	MessageID   string     `db:"message_id"`
	EventType   string     `db:"event_type"`
	OccurredAt  time.Time  `db:"occurred_at"`
	Payload     []byte     `db:"payload"`
	Attempts    int        `db:"attempts"`
	PublishedAt *time.Time `db:"published_at"`
	CreatedAt   time.Time  `db:"created_at"`
}
