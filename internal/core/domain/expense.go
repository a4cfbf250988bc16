package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ExpenseStatus is the lifecycle status of an expense.
type ExpenseStatus string

const (
	ExpenseDraft     ExpenseStatus = "DRAFT"
	ExpenseSubmitted ExpenseStatus = "SUBMITTED"
	ExpenseFinalized ExpenseStatus = "FINALIZED"
	ExpenseRejected  ExpenseStatus = "REJECTED"
	ExpenseSettled   ExpenseStatus = "SETTLED"
)

// ExpenseRefType categorizes what the expense was incurred for.
type ExpenseRefType string

const (
	ExpenseRefEvent          ExpenseRefType = "EVENT"
	ExpenseRefAdHoc          ExpenseRefType = "AD_HOC"
	ExpenseRefOperational    ExpenseRefType = "OPERATIONAL"
	ExpenseRefAdministrative ExpenseRefType = "ADMINISTRATIVE"
)

// ExpenseItem is a single line of an expense. Item amounts are always positive;
// the expense amount is derived as their sum.
type ExpenseItem struct {
	ItemID      string          `json:"itemID"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Expense is a recorded outflow request. Only DRAFT expenses are editable;
// settlement posts the money movement and is the final state.
type Expense struct {
	ExpenseID    string          `json:"expenseID"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"` // derived: sum of item amounts
	CurrencyCode string          `json:"currencyCode"`
	Status       ExpenseStatus   `json:"status"`
	ExpenseDate  time.Time       `json:"expenseDate"`

	ReferenceType ExpenseRefType `json:"referenceType"`
	ReferenceID   *string        `json:"referenceID,omitempty"` // e.g. event ID for EVENT expenses

	RequestedBy string `json:"requestedBy"`
	PaidBy      string `json:"paidBy"` // who fronted the money, if different from the requester
	FinalizedBy string `json:"finalizedBy,omitempty"`
	SettledBy   string `json:"settledBy,omitempty"`
	RejectedBy  string `json:"rejectedBy,omitempty"`

	RejectionRemarks    string  `json:"rejectionRemarks,omitempty"`
	SettlementAccountID *string `json:"settlementAccountID,omitempty"`
	JournalID           *string `json:"journalID,omitempty"`

	Items []ExpenseItem `json:"items"`

	DeletedAt *time.Time `json:"deletedAt,omitempty"` // tombstone, filtered at every read path
	AuditFields

	events []Event
}

func sumItems(items []ExpenseItem) (decimal.Decimal, error) {
	if len(items) == 0 {
		return decimal.Zero, fmt.Errorf("%w: expense requires at least one item", apperrors.ErrValidation)
	}
	total := decimal.Zero
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return decimal.Zero, fmt.Errorf("%w: expense item name is required", apperrors.ErrValidation)
		}
		if item.Amount.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, fmt.Errorf("%w: expense item %q amount must be positive", apperrors.ErrValidation, item.Name)
		}
		total = total.Add(item.Amount)
	}
	return total, nil
}

// NewExpense builds a DRAFT expense with its amount derived from the items.
func NewExpense(expenseID, name, description string, currencyCode string, expenseDate time.Time, refType ExpenseRefType, refID *string, requestedBy, paidBy string, items []ExpenseItem, now time.Time) (*Expense, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: expense name is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(currencyCode) == "" {
		return nil, fmt.Errorf("%w: currency code is required", apperrors.ErrValidation)
	}
	if requestedBy == "" {
		return nil, fmt.Errorf("%w: requesting user is required", apperrors.ErrValidation)
	}
	switch refType {
	case ExpenseRefEvent, ExpenseRefAdHoc, ExpenseRefOperational, ExpenseRefAdministrative:
	default:
		return nil, fmt.Errorf("%w: unknown expense reference type %q", apperrors.ErrValidation, refType)
	}
	total, err := sumItems(items)
	if err != nil {
		return nil, err
	}

	e := &Expense{
		ExpenseID:     expenseID,
		Name:          name,
		Description:   description,
		Amount:        total,
		CurrencyCode:  currencyCode,
		Status:        ExpenseDraft,
		ExpenseDate:   expenseDate,
		ReferenceType: refType,
		ReferenceID:   refID,
		RequestedBy:   requestedBy,
		PaidBy:        paidBy,
		Items:         items,
		AuditFields:   newAuditFields(requestedBy, now),
	}
	e.stageEvent(NewEvent(EventExpenseRecorded, now, ExpenseRecordedPayload{
		ExpenseID:   expenseID,
		Amount:      total,
		RequestedBy: requestedBy,
	}))
	return e, nil
}

// UpdateDraft edits the expense while it is still a draft. Replacing the
// items recomputes the derived amount.
func (e *Expense) UpdateDraft(name, description *string, expenseDate *time.Time, items []ExpenseItem, by string, now time.Time) error {
	if e.Status != ExpenseDraft {
		return fmt.Errorf("%w: expense %s is %s, only drafts are editable", apperrors.ErrConflict, e.ExpenseID, e.Status)
	}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return fmt.Errorf("%w: expense name is required", apperrors.ErrValidation)
		}
		e.Name = *name
	}
	if description != nil {
		e.Description = *description
	}
	if expenseDate != nil {
		e.ExpenseDate = *expenseDate
	}
	if items != nil {
		total, err := sumItems(items)
		if err != nil {
			return err
		}
		e.Items = items
		e.Amount = total
	}
	e.touch(by, now)
	return nil
}

// Submit moves a draft into review.
func (e *Expense) Submit(by string, now time.Time) error {
	if e.Status != ExpenseDraft {
		return fmt.Errorf("%w: expense %s is %s, expected %s", apperrors.ErrConflict, e.ExpenseID, e.Status, ExpenseDraft)
	}
	e.Status = ExpenseSubmitted
	e.touch(by, now)
	return nil
}

// Finalize approves a submitted expense for settlement.
func (e *Expense) Finalize(by string, now time.Time) error {
	if e.Status != ExpenseSubmitted {
		return fmt.Errorf("%w: expense %s is %s, expected %s", apperrors.ErrConflict, e.ExpenseID, e.Status, ExpenseSubmitted)
	}
	e.Status = ExpenseFinalized
	e.FinalizedBy = by
	e.touch(by, now)
	return nil
}

// Reject declines a submitted expense.
func (e *Expense) Reject(by, remarks string, now time.Time) error {
	if e.Status != ExpenseSubmitted {
		return fmt.Errorf("%w: expense %s is %s, expected %s", apperrors.ErrConflict, e.ExpenseID, e.Status, ExpenseSubmitted)
	}
	e.Status = ExpenseRejected
	e.RejectedBy = by
	e.RejectionRemarks = remarks
	e.touch(by, now)
	return nil
}

// Settle records the settlement posting against a finalized expense.
// The caller must have posted the journal entry before calling this.
func (e *Expense) Settle(by, accountID, journalID string, now time.Time) error {
	if e.Status != ExpenseFinalized {
		return fmt.Errorf("%w: expense %s is %s, expected %s", apperrors.ErrConflict, e.ExpenseID, e.Status, ExpenseFinalized)
	}
	if accountID == "" {
		return fmt.Errorf("%w: settlement account is required", apperrors.ErrValidation)
	}
	if journalID == "" {
		return fmt.Errorf("%w: settlement journal entry is required", apperrors.ErrValidation)
	}
	e.Status = ExpenseSettled
	e.SettledBy = by
	e.SettlementAccountID = &accountID
	e.JournalID = &journalID
	e.touch(by, now)
	return nil
}

// Delete tombstones the expense. Settled expenses carry a posting and cannot
// be tombstoned.
func (e *Expense) Delete(by string, now time.Time) error {
	if e.Status == ExpenseSettled {
		return fmt.Errorf("%w: expense %s is settled and cannot be deleted", apperrors.ErrConflict, e.ExpenseID)
	}
	if e.DeletedAt != nil {
		return fmt.Errorf("%w: expense %s is already deleted", apperrors.ErrConflict, e.ExpenseID)
	}
	deleted := now
	e.DeletedAt = &deleted
	e.touch(by, now)
	return nil
}

func (e *Expense) stageEvent(ev Event) {
	e.events = append(e.events, ev)
}

// TakeEvents drains the events staged on the aggregate since it was loaded.
func (e *Expense) TakeEvents() []Event {
	ev := e.events
	e.events = nil
	return ev
}
