package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// EventType identifies a domain event emitted by the core.
type EventType string

const (
	EventAccountCreated     EventType = "ACCOUNT_CREATED"
	EventTransactionCreated EventType = "TRANSACTION_CREATED"
	EventDonationRaised     EventType = "DONATION_RAISED"
	EventDonationPaid       EventType = "DONATION_PAID"
	EventExpenseRecorded    EventType = "EXPENSE_RECORDED"
)

// Event is a domain event staged on an aggregate during an operation.
// Events are written to the outbox in the same database transaction as the
// state change and published at-least-once by the outbox dispatcher, never
// before the write is durable.
type Event struct {
	EventType  EventType       `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// AccountCreatedPayload describes a newly created account.
type AccountCreatedPayload struct {
	AccountID    string `json:"accountID"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currencyCode"`
}

// TransactionCreatedPayload describes a single ledger line committed against an account.
type TransactionCreatedPayload struct {
	AccountID string          `json:"accountID"`
	Side      EntrySide       `json:"side"`
	Amount    decimal.Decimal `json:"amount"`
	JournalID string          `json:"journalID"`
}

// DonationRaisedPayload describes a newly raised donation.
type DonationRaisedPayload struct {
	DonationID     string          `json:"donationID"`
	DonationType   DonationType    `json:"donationType"`
	Amount         decimal.Decimal `json:"amount"`
	DonorReference string          `json:"donorReference"` // donor user ID, or guest name
}

// DonationPaidPayload describes a donation that reached PAID.
type DonationPaidPayload struct {
	DonationID string          `json:"donationID"`
	Amount     decimal.Decimal `json:"amount"`
	DonorID    string          `json:"donorID"`
}

// ExpenseRecordedPayload describes a newly recorded expense.
type ExpenseRecordedPayload struct {
	ExpenseID   string          `json:"expenseID"`
	Amount      decimal.Decimal `json:"amount"`
	RequestedBy string          `json:"requestedBy"`
}

// NewEvent marshals the payload and wraps it as an Event.
// Marshalling of the payload structs above cannot fail, so errors are dropped.
func NewEvent(eventType EventType, occurredAt time.Time, payload any) Event {
	raw, _ := json.Marshal(payload)
	return Event{
		EventType:  eventType,
		OccurredAt: occurredAt,
		Payload:    raw,
	}
}
