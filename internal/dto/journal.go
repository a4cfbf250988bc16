package dto

import (
	"time"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLineRequest is one line of a manual journal posting.
type CreateLineRequest struct {
	AccountID string           `json:"accountID" binding:"required"`
	Amount    decimal.Decimal  `json:"amount" binding:"required"`
	Side      domain.EntrySide `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Notes     string           `json:"notes"`
}

// CreateJournalRequest defines a manual double-entry posting.
type CreateJournalRequest struct {
	JournalDate  time.Time           `json:"journalDate" binding:"required"`
	Description  string              `json:"description"`
	CurrencyCode string              `json:"currencyCode" binding:"required,len=3"`
	Lines        []CreateLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// TransferRequest moves funds between two accounts in one balanced posting.
type TransferRequest struct {
	FromAccountID string          `json:"fromAccountID" binding:"required"`
	ToAccountID   string          `json:"toAccountID" binding:"required,nefield=FromAccountID"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Description   string          `json:"description"`
}

// AddFundRequest credits an account against a source counter-account.
// When SourceAccountID is empty the configured external-funds account is used.
type AddFundRequest struct {
	AccountID       string          `json:"accountID" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	SourceAccountID string          `json:"sourceAccountID"`
	Description     string          `json:"description"`
}

// ReverseJournalRequest carries the reason recorded on the reversing entry.
type ReverseJournalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// UpdateJournalRequest amends a posted entry's description. Monetary fields
// are immutable; corrections go through a reversal.
type UpdateJournalRequest struct {
	Description string `json:"description" binding:"required"`
}

// LedgerLineResponse defines the data returned for a single ledger line.
type LedgerLineResponse struct {
	LineID             string           `json:"lineID"`
	JournalID          string           `json:"journalID"`
	AccountID          string           `json:"accountID"`
	Amount             decimal.Decimal  `json:"amount"`
	Side               domain.EntrySide `json:"side"`
	CurrencyCode       string           `json:"currencyCode"`
	Notes              string           `json:"notes,omitempty"`
	RunningBalance     decimal.Decimal  `json:"runningBalance"`
	JournalDate        time.Time        `json:"journalDate"`
	JournalDescription string           `json:"journalDescription,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID          string               `json:"journalID"`
	JournalDate        time.Time            `json:"journalDate"`
	Description        string               `json:"description"`
	ReferenceType      domain.ReferenceType `json:"referenceType"`
	ReferenceID        *string              `json:"referenceID,omitempty"`
	CurrencyCode       string               `json:"currencyCode"`
	Status             domain.JournalStatus `json:"status"`
	Amount             decimal.Decimal      `json:"amount"`
	OriginalJournalID  *string              `json:"originalJournalID,omitempty"`
	ReversingJournalID *string              `json:"reversingJournalID,omitempty"`
	Lines              []LedgerLineResponse `json:"lines,omitempty"`
	CreatedAt          time.Time            `json:"createdAt"`
	CreatedBy          string               `json:"createdBy"`
}

// ToLedgerLineResponse converts a domain.LedgerLine to its DTO.
func ToLedgerLineResponse(line domain.LedgerLine) LedgerLineResponse {
	return LedgerLineResponse{
		LineID:             line.LineID,
		JournalID:          line.JournalID,
		AccountID:          line.AccountID,
		Amount:             line.Amount,
		Side:               line.Side,
		CurrencyCode:       line.CurrencyCode,
		Notes:              line.Notes,
		RunningBalance:     line.RunningBalance,
		JournalDate:        line.JournalDate,
		JournalDescription: line.JournalDescription,
		CreatedAt:          line.CreatedAt,
	}
}

// ToJournalResponse converts a domain.JournalEntry to its DTO.
func ToJournalResponse(journal *domain.JournalEntry) JournalResponse {
	resp := JournalResponse{
		JournalID:          journal.JournalID,
		JournalDate:        journal.JournalDate,
		Description:        journal.Description,
		ReferenceType:      journal.ReferenceType,
		ReferenceID:        journal.ReferenceID,
		CurrencyCode:       journal.CurrencyCode,
		Status:             journal.Status,
		Amount:             journal.Amount,
		OriginalJournalID:  journal.OriginalJournalID,
		ReversingJournalID: journal.ReversingJournalID,
		CreatedAt:          journal.CreatedAt,
		CreatedBy:          journal.CreatedBy,
	}
	if len(journal.Lines) > 0 {
		resp.Lines = make([]LedgerLineResponse, 0, len(journal.Lines))
		for _, line := range journal.Lines {
			resp.Lines = append(resp.Lines, ToLedgerLineResponse(line))
		}
	}
	return resp
}

// ListJournalsParams defines query parameters for listing journals.
type ListJournalsParams struct {
	Limit            int     `form:"limit,default=20"`
	NextToken        *string `form:"nextToken"`
	IncludeReversals bool    `form:"includeReversals,default=true"`
}

// ListJournalsResponse wraps a page of journals with its continuation token.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ListLinesParams defines query parameters for an account statement.
type ListLinesParams struct {
	Limit     int     `form:"limit,default=50"`
	NextToken *string `form:"nextToken"`
}

// ListLinesResponse wraps a page of ledger lines for one account.
type ListLinesResponse struct {
	Lines     []LedgerLineResponse `json:"lines"`
	NextToken *string              `json:"nextToken,omitempty"`
}
