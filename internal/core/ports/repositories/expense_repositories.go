package repositories

import (
	"context"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
)

// ExpenseListFilter narrows expense listings. Zero values mean "any".
type ExpenseListFilter struct {
	Status        domain.ExpenseStatus
	ReferenceType domain.ExpenseRefType
	RequestedBy   string
	Limit         int
	NextToken     *string
}

// ExpenseReader defines read operations for expense data.
// Tombstoned expenses are excluded from every read.
type ExpenseReader interface {
	// FindExpenseByID retrieves a specific expense, with its items, by its
	// unique identifier.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpenses retrieves a filtered, paginated list of expenses using
	// token-based pagination. Items are not populated.
	ListExpenses(ctx context.Context, filter ExpenseListFilter) ([]domain.Expense, *string, error)
}

// ExpenseWriter defines write operations for expense data.
type ExpenseWriter interface {
	// SaveExpense persists a new expense with its items and stages its events
	// in the outbox, both within one transaction.
	SaveExpense(ctx context.Context, expense domain.Expense, events []domain.Event) error

	// UpdateExpense persists lifecycle or draft changes, replacing the item
	// set, within one transaction.
	UpdateExpense(ctx context.Context, expense domain.Expense, events []domain.Event) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces.
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
