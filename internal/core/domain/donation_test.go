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

func newTestDonation(t *testing.T) *domain.Donation {
	t.Helper()
	d, err := domain.NewDonation("don-1", domain.DonationOneTime, decimal.NewFromInt(500), "INR",
		"", "Asha Rao", "", "", nil, nil, nil, "", "user-1", time.Now().UTC())
	require.NoError(t, err)
	d.TakeEvents()
	return d
}

func TestNewDonation(t *testing.T) {
	now := time.Now().UTC()
	periodStart := now
	periodEnd := now.AddDate(0, 1, 0)
	badEnd := now.AddDate(0, -1, 0)

	tests := []struct {
		name         string
		donationType domain.DonationType
		amount       decimal.Decimal
		donorID      string
		donorName    string
		periodStart  *time.Time
		periodEnd    *time.Time
		wantErr      bool
	}{
		{name: "guest one-time donation", donationType: domain.DonationOneTime, amount: decimal.NewFromInt(500), donorName: "Asha Rao", wantErr: false},
		{name: "member regular donation", donationType: domain.DonationRegular, amount: decimal.NewFromInt(500), donorID: "user-2", periodStart: &periodStart, periodEnd: &periodEnd, wantErr: false},
		{name: "zero amount", donationType: domain.DonationOneTime, amount: decimal.Zero, donorName: "Asha Rao", wantErr: true},
		{name: "guest without a name", donationType: domain.DonationOneTime, amount: decimal.NewFromInt(500), wantErr: true},
		{name: "regular without period", donationType: domain.DonationRegular, amount: decimal.NewFromInt(500), donorID: "user-2", wantErr: true},
		{name: "regular with inverted period", donationType: domain.DonationRegular, amount: decimal.NewFromInt(500), donorID: "user-2", periodStart: &periodStart, periodEnd: &badEnd, wantErr: true},
		{name: "unknown type", donationType: domain.DonationType("WISHFUL"), amount: decimal.NewFromInt(500), donorName: "Asha Rao", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := domain.NewDonation("don-1", tt.donationType, tt.amount, "INR",
				tt.donorID, tt.donorName, "", "", tt.periodStart, tt.periodEnd, nil, "", "user-1", now)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.DonationRaised, d.Status)

			events := d.TakeEvents()
			require.Len(t, events, 1)
			assert.Equal(t, domain.EventDonationRaised, events[0].EventType)
		})
	}
}

func TestDonation_MarkAsPaid(t *testing.T) {
	now := time.Now().UTC()

	t.Run("raised donation transitions to paid", func(t *testing.T) {
		d := newTestDonation(t)

		err := d.MarkAsPaid("acc-1", domain.PaymentCash, nil, "user-2", now, "user-2", now)
		require.NoError(t, err)
		assert.Equal(t, domain.DonationPaid, d.Status)
		require.NotNil(t, d.PaidToAccountID)
		assert.Equal(t, "acc-1", *d.PaidToAccountID)
		assert.Equal(t, "user-2", d.ConfirmedBy)

		events := d.TakeEvents()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventDonationPaid, events[0].EventType)
	})

	t.Run("paid donation cannot be paid again", func(t *testing.T) {
		d := newTestDonation(t)
		require.NoError(t, d.MarkAsPaid("acc-1", domain.PaymentCash, nil, "user-2", now, "user-2", now))

		err := d.MarkAsPaid("acc-1", domain.PaymentCash, nil, "user-2", now, "user-2", now)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("missing payment details rejected", func(t *testing.T) {
		d := newTestDonation(t)
		assert.ErrorIs(t, d.MarkAsPaid("", domain.PaymentCash, nil, "user-2", now, "user-2", now), apperrors.ErrValidation)
		assert.ErrorIs(t, d.MarkAsPaid("acc-1", "", nil, "user-2", now, "user-2", now), apperrors.ErrValidation)
		assert.ErrorIs(t, d.MarkAsPaid("acc-1", domain.PaymentCash, nil, "user-2", time.Time{}, "user-2", now), apperrors.ErrValidation)
	})
}

func TestDonation_LinkJournal(t *testing.T) {
	d := newTestDonation(t)

	require.NoError(t, d.LinkJournal("jrn-1"))
	require.NotNil(t, d.JournalID)
	assert.Equal(t, "jrn-1", *d.JournalID)

	assert.ErrorIs(t, d.LinkJournal("jrn-2"), apperrors.ErrConflict)
}

func TestDonation_CorrectionRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	d := newTestDonation(t)
	require.NoError(t, d.MarkAsPaid("acc-1", domain.PaymentCash, nil, "user-2", now, "user-2", now))
	require.NoError(t, d.LinkJournal("jrn-1"))

	require.NoError(t, d.MarkForUpdateMistake("user-2", now))
	assert.Equal(t, domain.DonationUpdateMistake, d.Status)

	require.NoError(t, d.ReopenAsRaised("user-2", now))
	assert.Equal(t, domain.DonationRaised, d.Status)
	assert.Nil(t, d.JournalID)
	assert.Nil(t, d.PaidToAccountID)
	assert.Nil(t, d.PaymentMethod)
	assert.Nil(t, d.PaidDate)
	assert.Empty(t, d.ConfirmedBy)
}

func TestDonation_Transitions(t *testing.T) {
	now := time.Now().UTC()

	t.Run("cancelled is terminal", func(t *testing.T) {
		d := newTestDonation(t)
		require.NoError(t, d.Cancel("donor withdrew", "user-1", now))
		assert.Equal(t, "donor withdrew", d.CancellationReason)

		assert.ErrorIs(t, d.MarkAsPending("user-1", now), apperrors.ErrConflict)
		assert.ErrorIs(t, d.MarkAsPaid("acc-1", domain.PaymentCash, nil, "user-2", now, "user-2", now), apperrors.ErrConflict)
	})

	t.Run("failed payment can be retried to paid", func(t *testing.T) {
		d := newTestDonation(t)
		require.NoError(t, d.MarkAsFailed("card declined", "user-1", now))
		assert.Equal(t, "card declined", d.FailureDetail)

		require.NoError(t, d.MarkAsPaid("acc-1", domain.PaymentCash, nil, "user-2", now, "user-2", now))
		assert.Equal(t, domain.DonationPaid, d.Status)
	})

	t.Run("pay later requires a reason", func(t *testing.T) {
		d := newTestDonation(t)
		assert.ErrorIs(t, d.MarkAsPayLater("  ", "user-1", now), apperrors.ErrValidation)
		require.NoError(t, d.MarkAsPayLater("salary day next week", "user-1", now))
		assert.Equal(t, domain.DonationPayLater, d.Status)
	})
}

func TestDonation_UpdateAndDelete(t *testing.T) {
	now := time.Now().UTC()

	t.Run("amount edit blocked once paid", func(t *testing.T) {
		d := newTestDonation(t)
		require.NoError(t, d.MarkAsPaid("acc-1", domain.PaymentCash, nil, "user-2", now, "user-2", now))

		amount := decimal.NewFromInt(600)
		assert.ErrorIs(t, d.Update(&amount, nil, nil, "user-1", now), apperrors.ErrConflict)
	})

	t.Run("paid donation cannot be deleted", func(t *testing.T) {
		d := newTestDonation(t)
		require.NoError(t, d.MarkAsPaid("acc-1", domain.PaymentCash, nil, "user-2", now, "user-2", now))
		assert.ErrorIs(t, d.Delete("user-1", now), apperrors.ErrConflict)
	})

	t.Run("delete tombstones once", func(t *testing.T) {
		d := newTestDonation(t)
		require.NoError(t, d.Delete("user-1", now))
		require.NotNil(t, d.DeletedAt)
		assert.ErrorIs(t, d.Delete("user-1", now), apperrors.ErrConflict)
	})
}
