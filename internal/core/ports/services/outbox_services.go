package services

import (
	"context"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
)

// EventPublisher delivers domain events to downstream consumers.
// Implementations must tolerate redelivery: the dispatcher guarantees
// at-least-once, not exactly-once.
type EventPublisher interface {
	Publish(ctx context.Context, msg domain.OutboxMessage) error
}

// OutboxDispatcherSvc drains staged events from the outbox.
type OutboxDispatcherSvc interface {
	// DispatchPending publishes a batch of unpublished messages and returns
	// how many were delivered.
	DispatchPending(ctx context.Context) (int, error)
}
