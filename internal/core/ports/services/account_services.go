package services

import (
	"context"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/samiti-tech/nonprofit_fund_app/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its ID.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account, posting its opening balance when
	// one is supplied.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// ActivateAccount moves an account to ACTIVE status.
	ActivateAccount(ctx context.Context, accountID string, requestingUserID string) (*domain.Account, error)

	// CloseAccount closes an account; the balance must be zero.
	CloseAccount(ctx context.Context, accountID string, requestingUserID string) error
}

// AccountMaintenanceSvc defines reconciliation operations for account data
type AccountMaintenanceSvc interface {
	// RebuildAccountBalance recomputes the derived balance from the account's
	// ledger lines and repairs the cached value if it drifted.
	RebuildAccountBalance(ctx context.Context, accountID string, requestingUserID string) (*dto.AccountBalanceResponse, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountMaintenanceSvc
}
