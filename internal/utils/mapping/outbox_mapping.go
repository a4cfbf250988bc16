package mapping

import (
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/samiti-tech/nonprofit_fund_app/internal/models"
)

// ToDomainOutboxMessage converts a model OutboxMessage to a domain OutboxMessage
func ToDomainOutboxMessage(m models.OutboxMessage) domain.OutboxMessage {
	return domain.OutboxMessage{
		MessageID: m.MessageID,
		Event: domain.Event{
			EventType:  domain.EventType(m.EventType),
			OccurredAt: m.OccurredAt,
			Payload:    m.Payload,
		},
		Attempts:    m.Attempts,
		PublishedAt: m.PublishedAt,
		CreatedAt:   m.CreatedAt,
	}
}
