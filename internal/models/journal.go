package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple ledger lines.
type JournalEntry struct {
	JournalID          string          `db:"journal_id"`
	JournalDate        time.Time       `db:"journal_date"`
	Description        string          `db:"description"`
	ReferenceType      string          `db:"reference_type"`
	ReferenceID        *string         `db:"reference_id"`
	CurrencyCode       string          `db:"currency_code"`
	Status             JournalStatus   `db:"status"`
	Amount             decimal.Decimal `db:"amount"`
	OriginalJournalID  *string         `db:"original_journal_id"`
	ReversingJournalID *string         `db:"reversing_journal_id"`
	AuditFields
}
