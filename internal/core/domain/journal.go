package domain

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

// ReferenceType tags a journal entry with the business operation that produced it.
type ReferenceType string

const (
	RefManual   ReferenceType = "MANUAL"
	RefOpening  ReferenceType = "OPENING"
	RefDonation ReferenceType = "DONATION"
	RefExpense  ReferenceType = "EXPENSE"
	RefTransfer ReferenceType = "TRANSFER"
	RefAddFund  ReferenceType = "ADD_FUND"
	RefReversal ReferenceType = "REVERSAL"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple ledger lines. Entries are immutable once posted; a reversal never
// edits an existing entry, it creates a new one referencing the original.
type JournalEntry struct {
	JournalID     string          `json:"journalID"`
	JournalDate   time.Time       `json:"journalDate"`
	Description   string          `json:"description"`
	ReferenceType ReferenceType   `json:"referenceType"`
	ReferenceID   *string         `json:"referenceID,omitempty"` // donation/expense/original journal ID
	CurrencyCode  string          `json:"currencyCode"`
	Status        JournalStatus   `json:"status"`
	Amount        decimal.Decimal `json:"amount"` // economic value: the debit (= credit) sum

	// Reversal linkage. OriginalJournalID is set on the compensating entry;
	// ReversingJournalID is set on the entry that was compensated.
	OriginalJournalID  *string `json:"originalJournalID,omitempty"`
	ReversingJournalID *string `json:"reversingJournalID,omitempty"`

	Lines []LedgerLine `json:"lines,omitempty"` // often loaded separately
	AuditFields
}

// IsReversal reports whether this entry compensates another entry.
func (j *JournalEntry) IsReversal() bool {
	return j.OriginalJournalID != nil
}
