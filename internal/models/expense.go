package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents an expense row. Items live in their own table.
type Expense struct {
	ExpenseID    string          `db:"expense_id"`
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	Amount       decimal.Decimal `db:"amount"`
	CurrencyCode string          `db:"currency_code"`
	Status       string          `db:"status"`
	ExpenseDate  time.Time       `db:"expense_date"`

	ReferenceType string  `db:"reference_type"`
	ReferenceID   *string `db:"reference_id"`

	RequestedBy string `db:"requested_by"`
	PaidBy      string `db:"paid_by"`
	FinalizedBy string `db:"finalized_by"`
	SettledBy   string `db:"settled_by"`
	RejectedBy  string `db:"rejected_by"`

	RejectionRemarks    string  `db:"rejection_remarks"`
	SettlementAccountID *string `db:"settlement_account_id"`
	JournalID           *string `db:"journal_id"`

	DeletedAt *time.Time `db:"deleted_at"`
	AuditFields
}

// ExpenseItem represents a single line item row of an expense.
type ExpenseItem struct {
	ItemID      string          `db:"item_id"`
	ExpenseID   string          `db:"expense_id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
}
