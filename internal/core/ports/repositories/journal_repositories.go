package repositories

import (
	"context"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal entry data.
type JournalReader interface {
	// FindJournalByID retrieves a specific journal entry by its unique identifier.
	FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// ListJournals retrieves a paginated list of journal entries using
	// token-based pagination. Reversal pairs are excluded unless requested.
	ListJournals(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal entry data.
type JournalWriter interface {
	// SaveJournal persists a journal entry, its lines, the account balance
	// deltas and the staged events as one atomic unit. When the entry is a
	// reversal, the original entry is marked REVERSED and linked back within
	// the same transaction. Partial application must never be observable.
	SaveJournal(ctx context.Context, entry domain.JournalEntry, lines []domain.LedgerLine, balanceChanges map[string]decimal.Decimal, events []domain.Event) error

	// UpdateJournal updates non-monetary fields of an entry (description, date).
	UpdateJournal(ctx context.Context, entry domain.JournalEntry) error
}

// LedgerLineReader defines read operations for ledger line data.
type LedgerLineReader interface {
	// FindLinesByJournalID retrieves all lines of a single journal entry.
	FindLinesByJournalID(ctx context.Context, journalID string) ([]domain.LedgerLine, error)

	// FindLinesByAccountID retrieves every committed line addressed to an
	// account, in commit order. Used to fold the authoritative balance.
	FindLinesByAccountID(ctx context.Context, accountID string) ([]domain.LedgerLine, error)

	// ListLinesByAccountID retrieves a paginated list of lines for an account
	// using token-based pagination.
	ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerLine, *string, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	LedgerLineReader
}
