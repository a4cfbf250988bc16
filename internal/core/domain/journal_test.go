package domain_test

import (
	"testing"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEntrySide_Opposite(t *testing.T) {
	assert.Equal(t, domain.Credit, domain.Debit.Opposite())
	assert.Equal(t, domain.Debit, domain.Credit.Opposite())
}

func TestLedgerLine_SignedAmount(t *testing.T) {
	credit := domain.LedgerLine{Amount: decimal.NewFromInt(100), Side: domain.Credit}
	debit := domain.LedgerLine{Amount: decimal.NewFromInt(100), Side: domain.Debit}

	assert.True(t, credit.SignedAmount().Equal(decimal.NewFromInt(100)))
	assert.True(t, debit.SignedAmount().Equal(decimal.NewFromInt(-100)))
}

func TestJournalEntry_IsReversal(t *testing.T) {
	entry := domain.JournalEntry{JournalID: "jrn-2"}
	assert.False(t, entry.IsReversal())

	originalID := "jrn-1"
	entry.OriginalJournalID = &originalID
	assert.True(t, entry.IsReversal())
}
