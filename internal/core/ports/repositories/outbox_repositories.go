package repositories

import (
	"context"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
)

// OutboxRepository manages staged domain events awaiting publication.
// Insertion happens inside the aggregate repositories' transactions; the
// dispatcher only reads and marks.
type OutboxRepository interface {
	// FindUnpublished retrieves up to limit unpublished messages in staging order.
	FindUnpublished(ctx context.Context, limit int) ([]domain.OutboxMessage, error)

	// MarkPublished stamps messages as delivered. Messages left unmarked are
	// redelivered on the next dispatch run (at-least-once).
	MarkPublished(ctx context.Context, messageIDs []string) error

	// RecordAttempt increments the delivery attempt counter for a message.
	RecordAttempt(ctx context.Context, messageID string) error
}
