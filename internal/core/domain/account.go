package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
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

// BankDetail holds optional bank payment details for an account.
type BankDetail struct {
	AccountNumber string `json:"accountNumber"`
	IFSC          string `json:"ifsc"`
	BankName      string `json:"bankName"`
}

// UPIDetail holds optional UPI payment details for an account.
type UPIDetail struct {
	VPA string `json:"vpa"`
}

// Account represents a financial account. Its balance is derived from the
// ledger lines addressed to it: balance = sum(credits) - sum(debits) in
// commit order. The balance field is a cache maintained by the posting
// engine inside the posting transaction; it is never written directly.
type Account struct {
	AccountID    string          `json:"accountID"`
	Name         string          `json:"name"`
	AccountType  AccountType     `json:"accountType"`
	CurrencyCode string          `json:"currencyCode"`
	Status       AccountStatus   `json:"status"`
	HolderID     string          `json:"holderID"` // optional reference to the holding member
	BankDetail   *BankDetail     `json:"bankDetail,omitempty"`
	UPIDetail    *UPIDetail      `json:"upiDetail,omitempty"`
	Balance      decimal.Decimal `json:"balance"`
	ActivatedAt  *time.Time      `json:"activatedAt,omitempty"` // stamped on first activation
	AuditFields

	events []Event
}

// NewAccount builds an ACTIVE account. An opening balance, if any, is
// realized by the caller as an opening journal entry; it is not applied here.
func NewAccount(accountID, name string, accountType AccountType, currencyCode string, holderID string, bank *BankDetail, upi *UPIDetail, createdBy string, now time.Time) (*Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: account name is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(currencyCode) == "" {
		return nil, fmt.Errorf("%w: currency code is required", apperrors.ErrValidation)
	}
	switch accountType {
	case Asset, Liability, Equity, Income, ExpenseAccount:
	default:
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, accountType)
	}

	activatedAt := now
	acc := &Account{
		AccountID:    accountID,
		Name:         name,
		AccountType:  accountType,
		CurrencyCode: currencyCode,
		Status:       AccountActive,
		HolderID:     holderID,
		BankDetail:   bank,
		UPIDetail:    upi,
		Balance:      decimal.Zero,
		ActivatedAt:  &activatedAt,
		AuditFields:  newAuditFields(createdBy, now),
	}
	acc.stageEvent(NewEvent(EventAccountCreated, now, AccountCreatedPayload{
		AccountID:    accountID,
		Name:         name,
		CurrencyCode: currencyCode,
	}))
	return acc, nil
}

// IsActive reports whether the account can participate in postings.
func (a *Account) IsActive() bool {
	return a.Status == AccountActive
}

// HasSufficientFunds reports whether the cached balance covers the amount.
func (a *Account) HasSufficientFunds(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// allowsOverdraft reports whether debits may drive this account negative.
// Income/expense/equity counter-accounts absorb the opposite leg of real
// money movements and are allowed to run negative; asset accounts are not.
func (a *Account) allowsOverdraft() bool {
	return a.AccountType != Asset
}

// Credit applies a credit line to the cached balance.
// This is a fold primitive for the posting engine, not a public write path.
func (a *Account) Credit(amount decimal.Decimal, by string, now time.Time) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: credit amount must be positive", apperrors.ErrValidation)
	}
	if !a.IsActive() {
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountNotActive, a.AccountID)
	}
	a.Balance = a.Balance.Add(amount)
	a.touch(by, now)
	return nil
}

// Debit applies a debit line to the cached balance. Debits on asset accounts
// fail with ErrInsufficientFunds rather than producing a negative balance.
func (a *Account) Debit(amount decimal.Decimal, by string, now time.Time) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: debit amount must be positive", apperrors.ErrValidation)
	}
	if !a.IsActive() {
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountNotActive, a.AccountID)
	}
	if !a.allowsOverdraft() && a.Balance.LessThan(amount) {
		return fmt.Errorf("%w: account %s has balance %s, needs %s",
			apperrors.ErrInsufficientFunds, a.AccountID, a.Balance.String(), amount.String())
	}
	a.Balance = a.Balance.Sub(amount)
	a.touch(by, now)
	return nil
}

// Close marks the account CLOSED. Closure requires a zero balance so the
// ledger history of the account remains fully accounted for.
func (a *Account) Close(by string, now time.Time) error {
	if a.Status == AccountClosed {
		return fmt.Errorf("%w: account %s is already closed", apperrors.ErrConflict, a.AccountID)
	}
	if !a.Balance.IsZero() {
		return fmt.Errorf("%w: account %s has non-zero balance %s", apperrors.ErrConflict, a.AccountID, a.Balance.String())
	}
	a.Status = AccountClosed
	a.touch(by, now)
	return nil
}

// Activate marks the account ACTIVE. Closed accounts cannot be reactivated.
// The first activation stamps ActivatedAt.
func (a *Account) Activate(by string, now time.Time) error {
	if a.Status == AccountClosed {
		return fmt.Errorf("%w: account %s is closed", apperrors.ErrConflict, a.AccountID)
	}
	a.Status = AccountActive
	if a.ActivatedAt == nil {
		activatedAt := now
		a.ActivatedAt = &activatedAt
	}
	a.touch(by, now)
	return nil
}

func (a *Account) stageEvent(ev Event) {
	a.events = append(a.events, ev)
}

// TakeEvents drains the events staged on the aggregate since it was loaded.
func (a *Account) TakeEvents() []Event {
	ev := a.events
	a.events = nil
	return ev
}
