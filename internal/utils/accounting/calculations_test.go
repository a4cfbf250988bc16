package accounting

import (
	"testing"

	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(accountID string, amount int64, side domain.EntrySide) domain.LedgerLine {
	return domain.LedgerLine{
		AccountID:    accountID,
		Amount:       decimal.NewFromInt(amount),
		Side:         side,
		CurrencyCode: "INR",
	}
}

func TestValidateEntryBalance(t *testing.T) {
	tests := []struct {
		name    string
		lines   []domain.LedgerLine
		wantErr bool
		errMsg  string
	}{
		{
			name: "balanced two-line entry",
			lines: []domain.LedgerLine{
				line("cash", 100, domain.Debit),
				line("income", 100, domain.Credit),
			},
			wantErr: false,
		},
		{
			name: "balanced split entry",
			lines: []domain.LedgerLine{
				line("cash", 70, domain.Debit),
				line("bank", 30, domain.Debit),
				line("income", 100, domain.Credit),
			},
			wantErr: false,
		},
		{
			name:    "single line",
			lines:   []domain.LedgerLine{line("cash", 100, domain.Debit)},
			wantErr: true,
			errMsg:  "at least two lines",
		},
		{
			name: "unbalanced entry",
			lines: []domain.LedgerLine{
				line("cash", 100, domain.Debit),
				line("income", 90, domain.Credit),
			},
			wantErr: true,
			errMsg:  "debits sum to 100 but credits sum to 90",
		},
		{
			name: "zero amount line",
			lines: []domain.LedgerLine{
				line("cash", 0, domain.Debit),
				line("income", 0, domain.Credit),
			},
			wantErr: true,
			errMsg:  "amount must be positive",
		},
		{
			name: "unknown side",
			lines: []domain.LedgerLine{
				line("cash", 100, domain.Debit),
				{AccountID: "income", Amount: decimal.NewFromInt(100), Side: domain.EntrySide("BOTH"), CurrencyCode: "INR"},
			},
			wantErr: true,
			errMsg:  "unknown side",
		},
		{
			name: "mixed currencies",
			lines: []domain.LedgerLine{
				line("cash", 100, domain.Debit),
				{AccountID: "income", Amount: decimal.NewFromInt(100), Side: domain.Credit, CurrencyCode: "USD"},
			},
			wantErr: true,
			errMsg:  "mixes currencies",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntryBalance(tt.lines)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEntryAmount(t *testing.T) {
	lines := []domain.LedgerLine{
		line("cash", 70, domain.Debit),
		line("bank", 30, domain.Debit),
		line("income", 100, domain.Credit),
	}
	assert.True(t, EntryAmount(lines).Equal(decimal.NewFromInt(100)), "Entry amount should be the debit sum")
}

func TestNetChanges(t *testing.T) {
	lines := []domain.LedgerLine{
		line("cash", 100, domain.Credit),
		line("cash", 30, domain.Debit),
		line("income", 70, domain.Debit),
	}

	changes := NetChanges(lines)

	assert.Len(t, changes, 2)
	assert.True(t, changes["cash"].Equal(decimal.NewFromInt(70)), "Credits minus debits on the same account should net")
	assert.True(t, changes["income"].Equal(decimal.NewFromInt(-70)), "Debits should be negative")
}

func TestFoldBalance(t *testing.T) {
	lines := []domain.LedgerLine{
		line("cash", 500, domain.Credit),
		line("cash", 200, domain.Debit),
		line("cash", 50, domain.Credit),
	}

	assert.True(t, FoldBalance(lines).Equal(decimal.NewFromInt(350)), "Balance should fold as credits minus debits in order")
	assert.True(t, FoldBalance(nil).IsZero(), "Empty history folds to zero")
}
