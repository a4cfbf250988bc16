package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	portsrepo "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/repositories"
	"github.com/samiti-tech/nonprofit_fund_app/internal/models"
	"github.com/samiti-tech/nonprofit_fund_app/internal/utils/mapping"
)

type PgxOutboxRepository struct {
	BaseRepository
}

// newPgxOutboxRepository creates a new repository for outbox messages.
func newPgxOutboxRepository(pool *pgxpool.Pool) portsrepo.OutboxRepository {
	return &PgxOutboxRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.OutboxRepository = (*PgxOutboxRepository)(nil)

// FindUnpublished retrieves up to limit unpublished messages in staging order.
func (r *PgxOutboxRepository) FindUnpublished(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	query := `
		SELECT message_id, event_type, occurred_at, payload, attempts, published_at, created_at
		FROM outbox_messages
		WHERE published_at IS NULL
		ORDER BY created_at, message_id
		LIMIT $1;
	`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query unpublished outbox messages", err)
	}
	defer rows.Close()

	messages := make([]domain.OutboxMessage, 0, limit)
	for rows.Next() {
		var m models.OutboxMessage
		if err := rows.Scan(
			&m.MessageID,
			&m.EventType,
			&m.OccurredAt,
			&m.Payload,
			&m.Attempts,
			&m.PublishedAt,
			&m.CreatedAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan outbox row", err)
		}
		messages = append(messages, mapping.ToDomainOutboxMessage(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating outbox rows", err)
	}

	return messages, nil
}

// MarkPublished stamps the given messages as delivered.
func (r *PgxOutboxRepository) MarkPublished(ctx context.Context, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	query := `UPDATE outbox_messages SET published_at = $2 WHERE message_id = ANY($1);`
	_, err := r.Pool.Exec(ctx, query, messageIDs, time.Now().UTC())
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark outbox messages published", err)
	}
	return nil
}

// RecordAttempt increments the delivery attempt counter for a message.
func (r *PgxOutboxRepository) RecordAttempt(ctx context.Context, messageID string) error {
	query := `UPDATE outbox_messages SET attempts = attempts + 1 WHERE message_id = $1;`
	_, err := r.Pool.Exec(ctx, query, messageID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to record outbox attempt for "+messageID, err)
	}
	return nil
}
