package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntrySide indicates whether a ledger line is a Debit or a Credit.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// LedgerLine represents a single line item within a journal entry, affecting
// one account. JournalDate and JournalDescription are joined in from the
// entry for statement views; they are not columns of the lines table.
type LedgerLine struct {
	LineID         string          `db:"line_id"`
	JournalID      string          `db:"journal_id"`
	AccountID      string          `db:"account_id"`
	Amount         decimal.Decimal `db:"amount"`
	Side           EntrySide       `db:"side"`
	CurrencyCode   string          `db:"currency_code"`
	Notes          string          `db:"notes"`
	RunningBalance decimal.Decimal `db:"running_balance"`
	AuditFields

	JournalDate        time.Time `db:"-"`
	JournalDescription string    `db:"-"`
}
