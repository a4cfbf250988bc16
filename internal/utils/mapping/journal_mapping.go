package mapping

import (
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/samiti-tech/nonprofit_fund_app/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		JournalID:          d.JournalID,
		JournalDate:        d.JournalDate,
		Description:        d.Description,
		ReferenceType:      string(d.ReferenceType),
		ReferenceID:        d.ReferenceID,
		CurrencyCode:       d.CurrencyCode,
		Status:             models.JournalStatus(d.Status),
		Amount:             d.Amount,
		OriginalJournalID:  d.OriginalJournalID,
		ReversingJournalID: d.ReversingJournalID,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		JournalID:          m.JournalID,
		JournalDate:        m.JournalDate,
		Description:        m.Description,
		ReferenceType:      domain.ReferenceType(m.ReferenceType),
		ReferenceID:        m.ReferenceID,
		CurrencyCode:       m.CurrencyCode,
		Status:             domain.JournalStatus(m.Status),
		Amount:             m.Amount,
		OriginalJournalID:  m.OriginalJournalID,
		ReversingJournalID: m.ReversingJournalID,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLedgerLine converts a domain LedgerLine to a model LedgerLine
func ToModelLedgerLine(d domain.LedgerLine) models.LedgerLine {
	return models.LedgerLine{
		LineID:             d.LineID,
		JournalID:          d.JournalID,
		AccountID:          d.AccountID,
		Amount:             d.Amount,
		Side:               models.EntrySide(d.Side),
		CurrencyCode:       d.CurrencyCode,
		Notes:              d.Notes,
		RunningBalance:     d.RunningBalance,
		AuditFields:        ToModelAuditFields(d.AuditFields),
		JournalDate:        d.JournalDate,
		JournalDescription: d.JournalDescription,
	}
}

// ToDomainLedgerLine converts a model LedgerLine to a domain LedgerLine
func ToDomainLedgerLine(m models.LedgerLine) domain.LedgerLine {
	return domain.LedgerLine{
		LineID:             m.LineID,
		JournalID:          m.JournalID,
		AccountID:          m.AccountID,
		Amount:             m.Amount,
		Side:               domain.EntrySide(m.Side),
		CurrencyCode:       m.CurrencyCode,
		Notes:              m.Notes,
		RunningBalance:     m.RunningBalance,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
		JournalDate:        m.JournalDate,
		JournalDescription: m.JournalDescription,
	}
}

// ToDomainLedgerLineSlice converts a slice of model LedgerLines to domain LedgerLines
func ToDomainLedgerLineSlice(ms []models.LedgerLine) []domain.LedgerLine {
	ds := make([]domain.LedgerLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerLine(m)
	}
	return ds
}
