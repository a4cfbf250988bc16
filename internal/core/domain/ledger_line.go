package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntrySide indicates whether a ledger line is a debit or a credit.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// Opposite returns the mirrored side, used when building compensating entries.
func (s EntrySide) Opposite() EntrySide {
	if s == Debit {
		return Credit
	}
	return Debit
}

// LedgerLine is one row of a journal entry, naming exactly one account and
// carrying a positive amount on exactly one side.
type LedgerLine struct {
	LineID         string          `json:"lineID"`
	JournalID      string          `json:"journalID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"` // always positive
	Side           EntrySide       `json:"side"`
	CurrencyCode   string          `json:"currencyCode"`
	Notes          string          `json:"notes"`
	RunningBalance decimal.Decimal `json:"runningBalance"` // account balance after this line, in commit order
	AuditFields

	// Populated when lines are listed per account, for display.
	JournalDate        time.Time `json:"journalDate,omitempty"`
	JournalDescription string    `json:"journalDescription,omitempty"`
}

// SignedAmount returns the line's effect on its account balance:
// positive for credits, negative for debits.
func (l LedgerLine) SignedAmount() decimal.Decimal {
	if l.Side == Credit {
		return l.Amount
	}
	return l.Amount.Neg()
}
