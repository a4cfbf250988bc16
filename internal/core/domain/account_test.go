package domain_test

import (
	"testing"
	"time"

	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(t *testing.T, accountType domain.AccountType) *domain.Account {
	t.Helper()
	acc, err := domain.NewAccount("acc-1", "Main Cash", accountType, "INR", "", nil, nil, "user-1", time.Now().UTC())
	require.NoError(t, err)
	acc.TakeEvents()
	return acc
}

func TestNewAccount(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name        string
		accountName string
		accountType domain.AccountType
		currency    string
		wantErr     bool
	}{
		{name: "valid asset account", accountName: "Main Cash", accountType: domain.Asset, currency: "INR", wantErr: false},
		{name: "valid income account", accountName: "Donation Income", accountType: domain.Income, currency: "INR", wantErr: false},
		{name: "valid expense account", accountName: "Expense Outflow", accountType: domain.ExpenseAccount, currency: "INR", wantErr: false},
		{name: "blank name", accountName: "  ", accountType: domain.Asset, currency: "INR", wantErr: true},
		{name: "blank currency", accountName: "Main Cash", accountType: domain.Asset, currency: "", wantErr: true},
		{name: "unknown type", accountName: "Main Cash", accountType: domain.AccountType("SUSPENSE"), currency: "INR", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := domain.NewAccount("acc-1", tt.accountName, tt.accountType, tt.currency, "", nil, nil, "user-1", now)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.AccountActive, acc.Status)
			assert.True(t, acc.Balance.IsZero())
			require.NotNil(t, acc.ActivatedAt)

			events := acc.TakeEvents()
			require.Len(t, events, 1)
			assert.Equal(t, domain.EventAccountCreated, events[0].EventType)
			assert.Empty(t, acc.TakeEvents(), "events should drain once")
		})
	}
}

func TestAccount_DebitOverdraftRule(t *testing.T) {
	now := time.Now().UTC()

	t.Run("asset debit below zero fails", func(t *testing.T) {
		acc := newTestAccount(t, domain.Asset)
		acc.Balance = decimal.NewFromInt(100)

		err := acc.Debit(decimal.NewFromInt(150), "user-1", now)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
		assert.True(t, acc.Balance.Equal(decimal.NewFromInt(100)), "failed debit should not change the balance")
	})

	t.Run("income account may run negative", func(t *testing.T) {
		acc := newTestAccount(t, domain.Income)

		err := acc.Debit(decimal.NewFromInt(150), "user-1", now)
		require.NoError(t, err)
		assert.True(t, acc.Balance.Equal(decimal.NewFromInt(-150)))
	})

	t.Run("non-positive amounts rejected", func(t *testing.T) {
		acc := newTestAccount(t, domain.Asset)

		assert.ErrorIs(t, acc.Debit(decimal.Zero, "user-1", now), apperrors.ErrValidation)
		assert.ErrorIs(t, acc.Credit(decimal.NewFromInt(-5), "user-1", now), apperrors.ErrValidation)
	})

	t.Run("closed account rejects postings", func(t *testing.T) {
		acc := newTestAccount(t, domain.Asset)
		require.NoError(t, acc.Close("user-1", now))

		assert.ErrorIs(t, acc.Credit(decimal.NewFromInt(10), "user-1", now), apperrors.ErrAccountNotActive)
		assert.ErrorIs(t, acc.Debit(decimal.NewFromInt(10), "user-1", now), apperrors.ErrAccountNotActive)
	})
}

func TestAccount_Close(t *testing.T) {
	now := time.Now().UTC()

	t.Run("zero balance closes", func(t *testing.T) {
		acc := newTestAccount(t, domain.Asset)
		require.NoError(t, acc.Close("user-1", now))
		assert.Equal(t, domain.AccountClosed, acc.Status)
	})

	t.Run("non-zero balance rejected", func(t *testing.T) {
		acc := newTestAccount(t, domain.Asset)
		acc.Balance = decimal.NewFromInt(10)
		assert.ErrorIs(t, acc.Close("user-1", now), apperrors.ErrConflict)
	})

	t.Run("double close rejected", func(t *testing.T) {
		acc := newTestAccount(t, domain.Asset)
		require.NoError(t, acc.Close("user-1", now))
		assert.ErrorIs(t, acc.Close("user-1", now), apperrors.ErrConflict)
	})
}

func TestAccount_Activate(t *testing.T) {
	now := time.Now().UTC()

	t.Run("active account is a no-op", func(t *testing.T) {
		acc := newTestAccount(t, domain.Asset)
		firstActivation := acc.ActivatedAt
		require.NoError(t, acc.Activate("user-1", now))
		assert.Equal(t, domain.AccountActive, acc.Status)
		assert.Equal(t, firstActivation, acc.ActivatedAt, "ActivatedAt should stick to the first activation")
	})

	t.Run("closed account cannot reactivate", func(t *testing.T) {
		acc := newTestAccount(t, domain.Asset)
		require.NoError(t, acc.Close("user-1", now))
		assert.ErrorIs(t, acc.Activate("user-1", now), apperrors.ErrConflict)
	})
}
