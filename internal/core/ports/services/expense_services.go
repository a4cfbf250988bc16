package services

import (
	"context"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/samiti-tech/nonprofit_fund_app/internal/dto"
)

// ExpenseReaderSvc defines read operations for expense data
type ExpenseReaderSvc interface {
	// GetExpenseByID retrieves a specific expense, with its items, by its ID.
	GetExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpenses retrieves a filtered, paginated list of expenses.
	ListExpenses(ctx context.Context, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error)
}

// ExpenseWriterSvc defines write operations for expense data
type ExpenseWriterSvc interface {
	// CreateExpense records a new draft expense with its items.
	CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, creatorUserID string) (*domain.Expense, error)

	// UpdateExpense amends a DRAFT expense; a non-nil item set replaces the
	// existing one and recomputes the total.
	UpdateExpense(ctx context.Context, expenseID string, req dto.UpdateExpenseRequest, requestingUserID string) (*domain.Expense, error)

	// DeleteExpense tombstones an expense that was never settled.
	DeleteExpense(ctx context.Context, expenseID string, requestingUserID string) error
}

// ExpenseLifecycleSvc defines the expense status transitions
type ExpenseLifecycleSvc interface {
	// SubmitExpense moves a draft into review.
	SubmitExpense(ctx context.Context, expenseID string, requestingUserID string) (*domain.Expense, error)

	// FinalizeExpense approves a submitted expense for settlement.
	FinalizeExpense(ctx context.Context, expenseID string, requestingUserID string) (*domain.Expense, error)

	// RejectExpense returns a submitted expense with remarks.
	RejectExpense(ctx context.Context, expenseID string, remarks string, requestingUserID string) (*domain.Expense, error)

	// SettleExpense pays a finalized expense out of the named account and
	// posts the disbursement to the ledger.
	SettleExpense(ctx context.Context, expenseID string, req dto.SettleExpenseRequest, requestingUserID string) (*domain.Expense, error)
}

// ExpenseSvcFacade combines all expense-related service interfaces
// This is a facade for clients that need access to all operations
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
	ExpenseLifecycleSvc
}
