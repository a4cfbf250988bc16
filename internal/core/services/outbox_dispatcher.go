package services

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/repositories"
	portssvc "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/services"
	"github.com/samiti-tech/nonprofit_fund_app/internal/middleware"
)

const defaultDispatchBatchSize = 100

// outboxDispatcher drains staged domain events and hands them to the
// publisher. A message is marked published only after the publisher accepts
// it, so a crash mid-batch redelivers rather than drops.
type outboxDispatcher struct {
	outboxRepo portsrepo.OutboxRepository
	publisher  portssvc.EventPublisher
	batchSize  int
}

// NewOutboxDispatcher creates a new outbox dispatcher. A non-positive
// batchSize falls back to the default.
func NewOutboxDispatcher(outboxRepo portsrepo.OutboxRepository, publisher portssvc.EventPublisher, batchSize int) portssvc.OutboxDispatcherSvc {
	if batchSize <= 0 {
		batchSize = defaultDispatchBatchSize
	}
	return &outboxDispatcher{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		batchSize:  batchSize,
	}
}

var _ portssvc.OutboxDispatcherSvc = (*outboxDispatcher)(nil)

// DispatchPending publishes one batch of unpublished messages in staging
// order and returns how many were delivered.
func (s *outboxDispatcher) DispatchPending(ctx context.Context) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	messages, err := s.outboxRepo.FindUnpublished(ctx, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch unpublished messages: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	delivered := make([]string, 0, len(messages))
	for _, msg := range messages {
		if err := s.publisher.Publish(ctx, msg); err != nil {
			logger.Warn("Failed to publish outbox message",
				slog.String("message_id", msg.MessageID),
				slog.String("event_type", string(msg.EventType)),
				slog.String("error", err.Error()))
			if recErr := s.outboxRepo.RecordAttempt(ctx, msg.MessageID); recErr != nil {
				logger.Error("Failed to record delivery attempt", slog.String("message_id", msg.MessageID), slog.String("error", recErr.Error()))
			}
			// Stop at the first failure to preserve staging order for
			// consumers that care about it.
			break
		}
		delivered = append(delivered, msg.MessageID)
	}

	if len(delivered) > 0 {
		if err := s.outboxRepo.MarkPublished(ctx, delivered); err != nil {
			// The messages were accepted but not marked; they will be
			// redelivered. That is the at-least-once contract.
			logger.Error("Failed to mark messages published", slog.String("error", err.Error()), slog.Int("count", len(delivered)))
			return len(delivered), fmt.Errorf("failed to mark messages published: %w", err)
		}
		logger.Info("Outbox batch dispatched", slog.Int("delivered", len(delivered)), slog.Int("fetched", len(messages)))
	}
	return len(delivered), nil
}
