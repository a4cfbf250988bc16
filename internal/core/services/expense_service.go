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
)

// expenseService orchestrates the expense lifecycle. Settlement is the only
// transition that moves money.
type expenseService struct {
	expenseRepo portsrepo.ExpenseRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	ledger      portssvc.LedgerPosterSvc
	// expenseOutflowAccount names the expense counter-account credited when a
	// settlement is posted.
	expenseOutflowAccount string
}

// NewExpenseService creates a new expense service.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, ledger portssvc.LedgerPosterSvc, expenseOutflowAccount string) portssvc.ExpenseSvcFacade {
	return &expenseService{
		expenseRepo:           expenseRepo,
		accountRepo:           accountRepo,
		ledger:                ledger,
		expenseOutflowAccount: expenseOutflowAccount,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// CreateExpense records a new draft expense with its items.
// Implements portssvc.ExpenseWriterSvc.
func (s *expenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, creatorUserID string) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	items := make([]domain.ExpenseItem, len(req.Items))
	for i, itemReq := range req.Items {
		items[i] = domain.ExpenseItem{
			ItemID:      uuid.NewString(),
			Name:        itemReq.Name,
			Description: itemReq.Description,
			Amount:      itemReq.Amount,
		}
	}

	var refID *string
	if req.ReferenceID != "" {
		refID = &req.ReferenceID
	}

	now := time.Now().UTC()
	expense, err := domain.NewExpense(uuid.NewString(), req.Name, req.Description, req.CurrencyCode,
		req.ExpenseDate, req.ReferenceType, refID, creatorUserID, req.PaidBy, items, now)
	if err != nil {
		return nil, err
	}

	if err := s.expenseRepo.SaveExpense(ctx, *expense, expense.TakeEvents()); err != nil {
		logger.Error("Failed to save expense", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	logger.Info("Expense recorded", slog.String("expense_id", expense.ExpenseID), slog.String("amount", expense.Amount.String()))
	return expense, nil
}

// UpdateExpense amends a DRAFT expense. A non-nil item set replaces the
// existing one and recomputes the derived amount.
// Implements portssvc.ExpenseWriterSvc.
func (s *expenseService) UpdateExpense(ctx context.Context, expenseID string, req dto.UpdateExpenseRequest, requestingUserID string) (*domain.Expense, error) {
	var items []domain.ExpenseItem
	if req.Items != nil {
		items = make([]domain.ExpenseItem, len(req.Items))
		for i, itemReq := range req.Items {
			items[i] = domain.ExpenseItem{
				ItemID:      uuid.NewString(),
				Name:        itemReq.Name,
				Description: itemReq.Description,
				Amount:      itemReq.Amount,
			}
		}
	}
	return s.applyTransition(ctx, expenseID, func(e *domain.Expense, now time.Time) error {
		if err := e.UpdateDraft(req.Name, req.Description, req.ExpenseDate, items, requestingUserID, now); err != nil {
			return err
		}
		if req.PaidBy != nil {
			e.PaidBy = *req.PaidBy
		}
		return nil
	})
}

// DeleteExpense tombstones an unsettled expense.
// Implements portssvc.ExpenseWriterSvc.
func (s *expenseService) DeleteExpense(ctx context.Context, expenseID string, requestingUserID string) error {
	_, err := s.applyTransition(ctx, expenseID, func(e *domain.Expense, now time.Time) error {
		return e.Delete(requestingUserID, now)
	})
	return err
}

// SubmitExpense moves a draft into review.
// Implements portssvc.ExpenseLifecycleSvc.
func (s *expenseService) SubmitExpense(ctx context.Context, expenseID string, requestingUserID string) (*domain.Expense, error) {
	return s.applyTransition(ctx, expenseID, func(e *domain.Expense, now time.Time) error {
		return e.Submit(requestingUserID, now)
	})
}

// FinalizeExpense approves a submitted expense for settlement.
// Implements portssvc.ExpenseLifecycleSvc.
func (s *expenseService) FinalizeExpense(ctx context.Context, expenseID string, requestingUserID string) (*domain.Expense, error) {
	return s.applyTransition(ctx, expenseID, func(e *domain.Expense, now time.Time) error {
		return e.Finalize(requestingUserID, now)
	})
}

// RejectExpense returns a submitted expense with remarks.
// Implements portssvc.ExpenseLifecycleSvc.
func (s *expenseService) RejectExpense(ctx context.Context, expenseID string, remarks string, requestingUserID string) (*domain.Expense, error) {
	return s.applyTransition(ctx, expenseID, func(e *domain.Expense, now time.Time) error {
		return e.Reject(requestingUserID, remarks, now)
	})
}

// SettleExpense pays a finalized expense out of the named account. The
// disbursement debits the settlement account and credits the expense
// counter-account; the posting carries the expense ID as its reference so a
// retried settlement trips the ledger's idempotency guard.
// Implements portssvc.ExpenseLifecycleSvc.
func (s *expenseService) SettleExpense(ctx context.Context, expenseID string, req dto.SettleExpenseRequest, requestingUserID string) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve expense %s: %w", expenseID, err)
	}
	if expense.Status != domain.ExpenseFinalized {
		return nil, fmt.Errorf("%w: expense %s is %s, expected %s",
			apperrors.ErrConflict, expenseID, expense.Status, domain.ExpenseFinalized)
	}

	settlementAccount, err := s.accountRepo.FindAccountByID(ctx, req.SettlementAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve settlement account %s: %w", req.SettlementAccountID, err)
	}
	if !settlementAccount.IsActive() {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountNotActive, settlementAccount.AccountID)
	}
	if settlementAccount.CurrencyCode != expense.CurrencyCode {
		return nil, fmt.Errorf("%w: account currency %s does not match expense currency %s",
			apperrors.ErrValidation, settlementAccount.CurrencyCode, expense.CurrencyCode)
	}
	if !settlementAccount.HasSufficientFunds(expense.Amount) {
		return nil, fmt.Errorf("%w: account %s has balance %s, needs %s",
			apperrors.ErrInsufficientFunds, settlementAccount.AccountID,
			settlementAccount.Balance.String(), expense.Amount.String())
	}

	outflowAccount, err := s.accountRepo.FindAccountByName(ctx, s.expenseOutflowAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve expense account %q: %w", s.expenseOutflowAccount, err)
	}

	journal, err := s.ledger.PostEntry(ctx, portssvc.PostEntryInput{
		JournalDate:   time.Now().UTC(),
		Description:   fmt.Sprintf("Settlement of expense: %s", expense.Name),
		ReferenceType: domain.RefExpense,
		ReferenceID:   &expense.ExpenseID,
		CurrencyCode:  expense.CurrencyCode,
		Lines: []portssvc.PostEntryLine{
			{AccountID: settlementAccount.AccountID, Amount: expense.Amount, Side: domain.Debit},
			{AccountID: outflowAccount.AccountID, Amount: expense.Amount, Side: domain.Credit},
		},
	}, requestingUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to post expense settlement: %w", err)
	}

	now := time.Now().UTC()
	if err := expense.Settle(requestingUserID, settlementAccount.AccountID, journal.JournalID, now); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.UpdateExpense(ctx, *expense, expense.TakeEvents()); err != nil {
		logger.Error("Failed to persist settled expense", slog.String("error", err.Error()), slog.String("expense_id", expenseID))
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	logger.Info("Expense settled", slog.String("expense_id", expenseID), slog.String("journal_id", journal.JournalID))
	return expense, nil
}

// applyTransition loads, transitions and persists an expense. Shared by the
// transitions that do not touch the ledger.
func (s *expenseService) applyTransition(ctx context.Context, expenseID string, fn func(*domain.Expense, time.Time) error) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve expense %s: %w", expenseID, err)
	}
	if err := fn(expense, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.UpdateExpense(ctx, *expense, expense.TakeEvents()); err != nil {
		logger.Error("Failed to persist expense transition", slog.String("error", err.Error()), slog.String("expense_id", expenseID))
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	logger.Info("Expense transitioned", slog.String("expense_id", expenseID), slog.String("status", string(expense.Status)))
	return expense, nil
}

// GetExpenseByID retrieves an expense with its items.
// Implements portssvc.ExpenseReaderSvc.
func (s *expenseService) GetExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find expense by ID", slog.String("error", err.Error()), slog.String("expense_id", expenseID))
		}
		return nil, fmt.Errorf("failed to find expense by ID %s: %w", expenseID, err)
	}
	return expense, nil
}

// ListExpenses retrieves a filtered, paginated list of expenses.
// Implements portssvc.ExpenseReaderSvc.
func (s *expenseService) ListExpenses(ctx context.Context, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	expenses, nextToken, err := s.expenseRepo.ListExpenses(ctx, portsrepo.ExpenseListFilter{
		Status:        params.Status,
		ReferenceType: params.ReferenceType,
		RequestedBy:   params.RequestedBy,
		Limit:         limit,
		NextToken:     params.NextToken,
	})
	if err != nil {
		logger.Error("Failed to list expenses", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve expenses: %w", err)
	}

	responses := make([]dto.ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = dto.ToExpenseResponse(&expenses[i])
	}
	return &dto.ListExpensesResponse{
		Expenses:  responses,
		NextToken: nextToken,
	}, nil
}
