package services

import (
	"context"
	"time"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostEntryLine is one line of a posting built by an orchestrating service.
type PostEntryLine struct {
	AccountID string
	Amount    decimal.Decimal
	Side      domain.EntrySide
	Notes     string
}

// PostEntryInput describes a balanced posting. Orchestrating services build
// one of these per money-moving state transition so the reference tag always
// identifies the business operation behind the entry.
type PostEntryInput struct {
	JournalDate   time.Time
	Description   string
	ReferenceType domain.ReferenceType
	ReferenceID   *string
	CurrencyCode  string
	Lines         []PostEntryLine
}

// LedgerPosterSvc is the single write path into the ledger. Every balance
// change in the system goes through PostEntry.
type LedgerPosterSvc interface {
	// PostEntry validates the posting and atomically persists the entry, its
	// lines and the balance deltas of every affected account.
	PostEntry(ctx context.Context, input PostEntryInput, userID string) (*domain.JournalEntry, error)
}
