package dto

import (
	"time"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExpenseItemRequest is a single line item on an expense.
type ExpenseItemRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// CreateExpenseRequest defines the data needed to record a draft expense.
type CreateExpenseRequest struct {
	Name          string                `json:"name" binding:"required"`
	Description   string                `json:"description"`
	CurrencyCode  string                `json:"currencyCode" binding:"required,len=3"`
	ExpenseDate   time.Time             `json:"expenseDate" binding:"required"`
	ReferenceType domain.ExpenseRefType `json:"referenceType" binding:"required,oneof=EVENT AD_HOC OPERATIONAL ADMINISTRATIVE"`
	ReferenceID   string                `json:"referenceID"`
	PaidBy        string                `json:"paidBy"`
	Items         []ExpenseItemRequest  `json:"items" binding:"required,min=1,dive"`
}

// UpdateExpenseRequest amends a DRAFT expense. A non-nil Items slice
// replaces the whole item set.
type UpdateExpenseRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	ExpenseDate *time.Time           `json:"expenseDate"`
	PaidBy      *string              `json:"paidBy"`
	Items       []ExpenseItemRequest `json:"items"`
}

// RejectExpenseRequest carries the reviewer's rejection remarks.
type RejectExpenseRequest struct {
	Remarks string `json:"remarks" binding:"required"`
}

// SettleExpenseRequest names the account the expense is paid out of.
type SettleExpenseRequest struct {
	SettlementAccountID string `json:"settlementAccountID" binding:"required"`
}

// ExpenseItemResponse defines the data returned for an expense item.
type ExpenseItemResponse struct {
	ItemID      string          `json:"itemID"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// ExpenseResponse defines the data returned for an expense.
type ExpenseResponse struct {
	ExpenseID           string                `json:"expenseID"`
	Name                string                `json:"name"`
	Description         string                `json:"description,omitempty"`
	Status              domain.ExpenseStatus  `json:"status"`
	Amount              decimal.Decimal       `json:"amount"`
	CurrencyCode        string                `json:"currencyCode"`
	ExpenseDate         time.Time             `json:"expenseDate"`
	ReferenceType       domain.ExpenseRefType `json:"referenceType"`
	ReferenceID         *string               `json:"referenceID,omitempty"`
	RequestedBy         string                `json:"requestedBy"`
	PaidBy              string                `json:"paidBy,omitempty"`
	FinalizedBy         string                `json:"finalizedBy,omitempty"`
	RejectedBy          string                `json:"rejectedBy,omitempty"`
	RejectionRemarks    string                `json:"rejectionRemarks,omitempty"`
	SettledBy           string                `json:"settledBy,omitempty"`
	SettlementAccountID *string               `json:"settlementAccountID,omitempty"`
	JournalID           *string               `json:"journalID,omitempty"`
	Items               []ExpenseItemResponse `json:"items,omitempty"`
	CreatedAt           time.Time             `json:"createdAt"`
}

// ToExpenseResponse converts a domain.Expense to its DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ExpenseID:           e.ExpenseID,
		Name:                e.Name,
		Description:         e.Description,
		Status:              e.Status,
		Amount:              e.Amount,
		CurrencyCode:        e.CurrencyCode,
		ExpenseDate:         e.ExpenseDate,
		ReferenceType:       e.ReferenceType,
		ReferenceID:         e.ReferenceID,
		RequestedBy:         e.RequestedBy,
		PaidBy:              e.PaidBy,
		FinalizedBy:         e.FinalizedBy,
		RejectedBy:          e.RejectedBy,
		RejectionRemarks:    e.RejectionRemarks,
		SettledBy:           e.SettledBy,
		SettlementAccountID: e.SettlementAccountID,
		JournalID:           e.JournalID,
		CreatedAt:           e.CreatedAt,
	}
	if len(e.Items) > 0 {
		resp.Items = make([]ExpenseItemResponse, 0, len(e.Items))
		for _, item := range e.Items {
			resp.Items = append(resp.Items, ExpenseItemResponse{
				ItemID:      item.ItemID,
				Name:        item.Name,
				Description: item.Description,
				Amount:      item.Amount,
			})
		}
	}
	return resp
}

// ListExpensesParams defines query parameters for listing expenses.
type ListExpensesParams struct {
	Status        domain.ExpenseStatus  `form:"status"`
	ReferenceType domain.ExpenseRefType `form:"referenceType"`
	RequestedBy   string                `form:"requestedBy"`
	Limit         int                   `form:"limit,default=20"`
	NextToken     *string               `form:"nextToken"`
}

// ListExpensesResponse wraps a page of expenses.
type ListExpensesResponse struct {
	Expenses  []ExpenseResponse `json:"expenses"`
	NextToken *string           `json:"nextToken,omitempty"`
}
