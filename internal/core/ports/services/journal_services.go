package services

import (
	"context"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/samiti-tech/nonprofit_fund_app/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetJournalByID retrieves a specific journal, with its lines, by its ID.
	GetJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// ListJournals retrieves a paginated list of journals.
	ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// CreateJournal validates and atomically persists a balanced journal entry.
	CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.JournalEntry, error)

	// ReverseJournal creates a compensating journal for an existing journal
	// and marks the original REVERSED.
	ReverseJournal(ctx context.Context, journalID string, reason string, userID string) (*domain.JournalEntry, error)

	// UpdateJournal amends the description of a POSTED entry. Monetary
	// fields are immutable.
	UpdateJournal(ctx context.Context, journalID string, req dto.UpdateJournalRequest, userID string) (*domain.JournalEntry, error)
}

// FundMovementSvc defines the orchestrated two-line postings
type FundMovementSvc interface {
	// Transfer moves funds between two accounts in a single balanced posting.
	Transfer(ctx context.Context, req dto.TransferRequest, userID string) (*domain.JournalEntry, error)

	// AddFund credits an account against a source counter-account.
	AddFund(ctx context.Context, req dto.AddFundRequest, userID string) (*domain.JournalEntry, error)
}

// LineReaderSvc defines read operations for ledger line data
type LineReaderSvc interface {
	// ListLinesByAccount retrieves an account's statement, oldest first, with
	// running balances.
	ListLinesByAccount(ctx context.Context, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	FundMovementSvc
	LineReaderSvc
	LedgerPosterSvc
}
