package services

import (
	portsrepo "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/repositories"
	portssvc "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/services"
	"github.com/samiti-tech/nonprofit_fund_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, publisher portssvc.EventPublisher) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The journal service is the posting engine; every other service that
	// moves money depends on it.
	container.Journal = NewJournalService(
		repos.JournalRepo,
		repos.AccountRepo,
		cfg.ReversalWindowDays,
		cfg.ExternalFundsAccount,
	)

	container.Account = NewAccountService(
		repos.AccountRepo,
		repos.JournalRepo,
		container.Journal,
		cfg.OpeningBalancesAccount,
	)

	container.Donation = NewDonationService(
		repos.DonationRepo,
		repos.AccountRepo,
		container.Journal,
		cfg.DonationIncomeAccount,
	)

	container.Expense = NewExpenseService(
		repos.ExpenseRepo,
		repos.AccountRepo,
		container.Journal,
		cfg.ExpenseOutflowAccount,
	)

	container.Outbox = NewOutboxDispatcher(repos.OutboxRepo, publisher, cfg.OutboxBatchSize)

	return container
}
