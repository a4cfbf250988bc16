package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgsql-backed repositories against a shared
// connection pool. The journal repository takes the account repository so a
// posting can lock and adjust account rows inside its own transaction.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(pool)
	return portsrepo.RepositoryProvider{
		AccountRepo:  accountRepo,
		JournalRepo:  newPgxJournalRepository(pool, accountRepo),
		DonationRepo: newPgxDonationRepository(pool),
		ExpenseRepo:  newPgxExpenseRepository(pool),
		OutboxRepo:   newPgxOutboxRepository(pool),
	}
}
