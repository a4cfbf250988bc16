package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	portsrepo "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/repositories"
	portssvc "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/services"
	"github.com/samiti-tech/nonprofit_fund_app/internal/dto"
	"github.com/samiti-tech/nonprofit_fund_app/internal/middleware"
	"github.com/samiti-tech/nonprofit_fund_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// accountService provides account management operations.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	journalRepo portsrepo.JournalRepositoryFacade
	ledger      portssvc.LedgerPosterSvc
	// openingBalancesAccount names the equity counter-account debited when an
	// account is created with an opening balance.
	openingBalancesAccount string
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade, ledger portssvc.LedgerPosterSvc, openingBalancesAccount string) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:            accountRepo,
		journalRepo:            journalRepo,
		ledger:                 ledger,
		openingBalancesAccount: openingBalancesAccount,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account. A positive opening balance is
// realized as an opening posting against the opening-balances equity account,
// so even the first rupee on an account has a journal trail.
// Implements portssvc.AccountWriterSvc.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.OpeningBalance != nil && req.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance cannot be negative", apperrors.ErrValidation)
	}

	var bank *domain.BankDetail
	if req.BankDetail != nil {
		bank = &domain.BankDetail{
			AccountNumber: req.BankDetail.AccountNumber,
			IFSC:          req.BankDetail.IFSC,
			BankName:      req.BankDetail.BankName,
		}
	}
	var upi *domain.UPIDetail
	if req.UPIDetail != nil {
		upi = &domain.UPIDetail{VPA: req.UPIDetail.VPA}
	}

	now := time.Now().UTC()
	account, err := domain.NewAccount(uuid.NewString(), req.Name, req.AccountType, req.CurrencyCode, req.HolderID, bank, upi, creatorUserID, now)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.SaveAccount(ctx, *account, account.TakeEvents()); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("account_name", req.Name))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	if req.OpeningBalance != nil && req.OpeningBalance.IsPositive() {
		opening, err := s.postOpeningBalance(ctx, account, *req.OpeningBalance, creatorUserID)
		if err != nil {
			logger.Error("Failed to post opening balance", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
			return nil, fmt.Errorf("account %s created but opening balance failed: %w", account.AccountID, err)
		}
		account.Balance = *req.OpeningBalance
		logger.Info("Opening balance posted", slog.String("account_id", account.AccountID), slog.String("journal_id", opening.JournalID))
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("account_type", string(account.AccountType)))
	return account, nil
}

func (s *accountService) postOpeningBalance(ctx context.Context, account *domain.Account, amount decimal.Decimal, userID string) (*domain.JournalEntry, error) {
	counter, err := s.accountRepo.FindAccountByName(ctx, s.openingBalancesAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve opening balances account %q: %w", s.openingBalancesAccount, err)
	}
	return s.ledger.PostEntry(ctx, portssvc.PostEntryInput{
		JournalDate:   time.Now().UTC(),
		Description:   fmt.Sprintf("Opening balance for %s", account.Name),
		ReferenceType: domain.RefOpening,
		ReferenceID:   &account.AccountID,
		CurrencyCode:  account.CurrencyCode,
		Lines: []portssvc.PostEntryLine{
			{AccountID: counter.AccountID, Amount: amount, Side: domain.Debit},
			{AccountID: account.AccountID, Amount: amount, Side: domain.Credit},
		},
	}, userID)
}

// ActivateAccount marks an account ACTIVE. Activating an already active
// account is a no-op; closed accounts cannot come back.
// Implements portssvc.AccountWriterSvc.
func (s *accountService) ActivateAccount(ctx context.Context, accountID string, requestingUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve account %s: %w", accountID, err)
	}
	if err := account.Activate(requestingUserID, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account status", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// CloseAccount closes an account. The balance must be zero so the account's
// history stays fully accounted for.
// Implements portssvc.AccountWriterSvc.
func (s *accountService) CloseAccount(ctx context.Context, accountID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to retrieve account %s: %w", accountID, err)
	}
	if err := account.Close(requestingUserID, time.Now().UTC()); err != nil {
		return err
	}
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to close account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to update account: %w", err)
	}
	logger.Info("Account closed", slog.String("account_id", accountID))
	return nil
}

// RebuildAccountBalance folds the account's committed lines in commit order
// and repairs the cached balance when it has drifted. The fold is the
// authoritative balance; the column is only a cache.
// Implements portssvc.AccountMaintenanceSvc.
func (s *accountService) RebuildAccountBalance(ctx context.Context, accountID string, requestingUserID string) (*dto.AccountBalanceResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve account %s: %w", accountID, err)
	}

	lines, err := s.journalRepo.FindLinesByAccountID(ctx, accountID)
	if err != nil {
		logger.Error("Failed to fetch lines for balance rebuild", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to retrieve lines for account %s: %w", accountID, err)
	}

	authoritative := accounting.FoldBalance(lines)
	repaired := !authoritative.Equal(account.Balance)
	if repaired {
		logger.Warn("Cached balance drifted from line history",
			slog.String("account_id", accountID),
			slog.String("cached", account.Balance.String()),
			slog.String("authoritative", authoritative.String()))
		if err := s.accountRepo.UpdateAccountBalance(ctx, accountID, authoritative, requestingUserID, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("failed to repair balance for account %s: %w", accountID, err)
		}
	}

	return &dto.AccountBalanceResponse{
		AccountID: accountID,
		Balance:   authoritative,
		Repaired:  repaired,
	}, nil
}

// GetAccountByID retrieves an account.
// Implements portssvc.AccountReaderSvc.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by ID", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return account, nil
}

// ListAccounts retrieves a paginated list of accounts.
// Implements portssvc.AccountReaderSvc.
func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve accounts: %w", err)
	}

	responses := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = dto.ToAccountResponse(&accounts[i])
	}
	return &dto.ListAccountsResponse{Accounts: responses}, nil
}
