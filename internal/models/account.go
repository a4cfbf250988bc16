package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset          AccountType = "ASSET"
	Liability      AccountType = "LIABILITY"
	Equity         AccountType = "EQUITY"
	Income         AccountType = "INCOME"
	ExpenseAccount AccountType = "EXPENSE"
)

// AccountStatus is the lifecycle status of an account.
type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountClosed AccountStatus = "CLOSED"
)

// Account represents a financial account row. Bank and UPI payment details
// are stored as nullable columns rather than a separate table.
type Account struct {
	AccountID         string          `db:"account_id"`
	Name              string          `db:"name"`
	AccountType       AccountType     `db:"account_type"`
	CurrencyCode      string          `db:"currency_code"`
	Status            AccountStatus   `db:"status"`
	HolderID          string          `db:"holder_id"`
	BankAccountNumber *string         `db:"bank_account_number"`
	BankIFSC          *string         `db:"bank_ifsc"`
	BankName          *string         `db:"bank_name"`
	UPIVPA            *string         `db:"upi_vpa"`
	Balance           decimal.Decimal `db:"balance"`
	ActivatedAt       *time.Time      `db:"activated_at"`
	AuditFields
}
