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

func newTestExpense(t *testing.T) *domain.Expense {
	t.Helper()
	items := []domain.ExpenseItem{
		{ItemID: "item-1", Name: "Chairs", Amount: decimal.NewFromInt(120)},
		{ItemID: "item-2", Name: "Banners", Amount: decimal.NewFromInt(80)},
	}
	e, err := domain.NewExpense("exp-1", "Annual day setup", "", "INR",
		time.Now().UTC(), domain.ExpenseRefEvent, nil, "user-1", "", items, time.Now().UTC())
	require.NoError(t, err)
	e.TakeEvents()
	return e
}

func TestNewExpense(t *testing.T) {
	now := time.Now().UTC()
	validItems := []domain.ExpenseItem{{ItemID: "item-1", Name: "Chairs", Amount: decimal.NewFromInt(120)}}

	tests := []struct {
		name        string
		expenseName string
		refType     domain.ExpenseRefType
		requestedBy string
		items       []domain.ExpenseItem
		wantErr     bool
	}{
		{name: "valid event expense", expenseName: "Annual day setup", refType: domain.ExpenseRefEvent, requestedBy: "user-1", items: validItems, wantErr: false},
		{name: "blank name", expenseName: " ", refType: domain.ExpenseRefAdHoc, requestedBy: "user-1", items: validItems, wantErr: true},
		{name: "no items", expenseName: "Empty", refType: domain.ExpenseRefAdHoc, requestedBy: "user-1", items: nil, wantErr: true},
		{name: "no requester", expenseName: "Orphan", refType: domain.ExpenseRefAdHoc, items: validItems, wantErr: true},
		{name: "unknown reference type", expenseName: "Odd", refType: domain.ExpenseRefType("MISC"), requestedBy: "user-1", items: validItems, wantErr: true},
		{
			name:        "zero amount item",
			expenseName: "Freebie",
			refType:     domain.ExpenseRefAdHoc,
			requestedBy: "user-1",
			items:       []domain.ExpenseItem{{ItemID: "item-1", Name: "Nothing", Amount: decimal.Zero}},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := domain.NewExpense("exp-1", tt.expenseName, "", "INR", now, tt.refType, nil, tt.requestedBy, "", tt.items, now)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.ExpenseDraft, e.Status)
			assert.True(t, e.Amount.Equal(decimal.NewFromInt(120)), "amount should be derived from the items")

			events := e.TakeEvents()
			require.Len(t, events, 1)
			assert.Equal(t, domain.EventExpenseRecorded, events[0].EventType)
		})
	}
}

func TestExpense_Lifecycle(t *testing.T) {
	now := time.Now().UTC()

	t.Run("full path draft to settled", func(t *testing.T) {
		e := newTestExpense(t)

		require.NoError(t, e.Submit("user-1", now))
		assert.Equal(t, domain.ExpenseSubmitted, e.Status)

		require.NoError(t, e.Finalize("user-2", now))
		assert.Equal(t, domain.ExpenseFinalized, e.Status)
		assert.Equal(t, "user-2", e.FinalizedBy)

		require.NoError(t, e.Settle("user-2", "acc-1", "jrn-1", now))
		assert.Equal(t, domain.ExpenseSettled, e.Status)
		require.NotNil(t, e.JournalID)
		assert.Equal(t, "jrn-1", *e.JournalID)
		require.NotNil(t, e.SettlementAccountID)
		assert.Equal(t, "acc-1", *e.SettlementAccountID)
	})

	t.Run("out-of-order transitions rejected", func(t *testing.T) {
		e := newTestExpense(t)

		assert.ErrorIs(t, e.Finalize("user-2", now), apperrors.ErrConflict)
		assert.ErrorIs(t, e.Settle("user-2", "acc-1", "jrn-1", now), apperrors.ErrConflict)
		assert.ErrorIs(t, e.Reject("user-2", "too early", now), apperrors.ErrConflict)

		require.NoError(t, e.Submit("user-1", now))
		assert.ErrorIs(t, e.Submit("user-1", now), apperrors.ErrConflict)
	})

	t.Run("rejection records reviewer and remarks", func(t *testing.T) {
		e := newTestExpense(t)
		require.NoError(t, e.Submit("user-1", now))

		require.NoError(t, e.Reject("user-2", "no receipts attached", now))
		assert.Equal(t, domain.ExpenseRejected, e.Status)
		assert.Equal(t, "user-2", e.RejectedBy)
		assert.Equal(t, "no receipts attached", e.RejectionRemarks)
	})

	t.Run("settle requires account and journal", func(t *testing.T) {
		e := newTestExpense(t)
		require.NoError(t, e.Submit("user-1", now))
		require.NoError(t, e.Finalize("user-2", now))

		assert.ErrorIs(t, e.Settle("user-2", "", "jrn-1", now), apperrors.ErrValidation)
		assert.ErrorIs(t, e.Settle("user-2", "acc-1", "", now), apperrors.ErrValidation)
	})
}

func TestExpense_UpdateDraft(t *testing.T) {
	now := time.Now().UTC()

	t.Run("replacing items recomputes amount", func(t *testing.T) {
		e := newTestExpense(t)
		newItems := []domain.ExpenseItem{{ItemID: "item-3", Name: "Sound system", Amount: decimal.NewFromInt(450)}}

		require.NoError(t, e.UpdateDraft(nil, nil, nil, newItems, "user-1", now))
		assert.True(t, e.Amount.Equal(decimal.NewFromInt(450)))
		assert.Len(t, e.Items, 1)
	})

	t.Run("nil items leave amount untouched", func(t *testing.T) {
		e := newTestExpense(t)
		name := "Renamed setup"

		require.NoError(t, e.UpdateDraft(&name, nil, nil, nil, "user-1", now))
		assert.Equal(t, "Renamed setup", e.Name)
		assert.True(t, e.Amount.Equal(decimal.NewFromInt(200)))
	})

	t.Run("submitted expense is not editable", func(t *testing.T) {
		e := newTestExpense(t)
		require.NoError(t, e.Submit("user-1", now))

		name := "Too late"
		assert.ErrorIs(t, e.UpdateDraft(&name, nil, nil, nil, "user-1", now), apperrors.ErrConflict)
	})
}

func TestExpense_Delete(t *testing.T) {
	now := time.Now().UTC()

	t.Run("unsettled expense tombstones", func(t *testing.T) {
		e := newTestExpense(t)
		require.NoError(t, e.Delete("user-1", now))
		require.NotNil(t, e.DeletedAt)
		assert.ErrorIs(t, e.Delete("user-1", now), apperrors.ErrConflict)
	})

	t.Run("settled expense cannot be deleted", func(t *testing.T) {
		e := newTestExpense(t)
		require.NoError(t, e.Submit("user-1", now))
		require.NoError(t, e.Finalize("user-2", now))
		require.NoError(t, e.Settle("user-2", "acc-1", "jrn-1", now))

		assert.ErrorIs(t, e.Delete("user-1", now), apperrors.ErrConflict)
	})
}
