package mapping

import (
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/samiti-tech/nonprofit_fund_app/internal/models"
)

// ToModelExpense converts a domain Expense to a model Expense
func ToModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:           d.ExpenseID,
		Name:                d.Name,
		Description:         d.Description,
		Amount:              d.Amount,
		CurrencyCode:        d.CurrencyCode,
		Status:              string(d.Status),
		ExpenseDate:         d.ExpenseDate,
		ReferenceType:       string(d.ReferenceType),
		ReferenceID:         d.ReferenceID,
		RequestedBy:         d.RequestedBy,
		PaidBy:              d.PaidBy,
		FinalizedBy:         d.FinalizedBy,
		SettledBy:           d.SettledBy,
		RejectedBy:          d.RejectedBy,
		RejectionRemarks:    d.RejectionRemarks,
		SettlementAccountID: d.SettlementAccountID,
		JournalID:           d.JournalID,
		DeletedAt:           d.DeletedAt,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExpense converts a model Expense to a domain Expense
func ToDomainExpense(m models.Expense) domain.Expense {
	return domain.Expense{
		ExpenseID:           m.ExpenseID,
		Name:                m.Name,
		Description:         m.Description,
		Amount:              m.Amount,
		CurrencyCode:        m.CurrencyCode,
		Status:              domain.ExpenseStatus(m.Status),
		ExpenseDate:         m.ExpenseDate,
		ReferenceType:       domain.ExpenseRefType(m.ReferenceType),
		ReferenceID:         m.ReferenceID,
		RequestedBy:         m.RequestedBy,
		PaidBy:              m.PaidBy,
		FinalizedBy:         m.FinalizedBy,
		SettledBy:           m.SettledBy,
		RejectedBy:          m.RejectedBy,
		RejectionRemarks:    m.RejectionRemarks,
		SettlementAccountID: m.SettlementAccountID,
		JournalID:           m.JournalID,
		DeletedAt:           m.DeletedAt,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelExpenseItem converts a domain ExpenseItem to a model ExpenseItem
func ToModelExpenseItem(expenseID string, d domain.ExpenseItem) models.ExpenseItem {
	return models.ExpenseItem{
		ItemID:      d.ItemID,
		ExpenseID:   expenseID,
		Name:        d.Name,
		Description: d.Description,
		Amount:      d.Amount,
	}
}

// ToDomainExpenseItem converts a model ExpenseItem to a domain ExpenseItem
func ToDomainExpenseItem(m models.ExpenseItem) domain.ExpenseItem {
	return domain.ExpenseItem{
		ItemID:      m.ItemID,
		Name:        m.Name,
		Description: m.Description,
		Amount:      m.Amount,
	}
}
