package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation represents a donation row.
type Donation struct {
	DonationID   string          `db:"donation_id"`
	DonationType string          `db:"donation_type"`
	Amount       decimal.Decimal `db:"amount"`
	CurrencyCode string          `db:"currency_code"`
	Status       string          `db:"status"`

	DonorID     string `db:"donor_id"`
	DonorName   string `db:"donor_name"`
	DonorEmail  string `db:"donor_email"`
	DonorNumber string `db:"donor_number"`

	PeriodStart *time.Time `db:"period_start"`
	PeriodEnd   *time.Time `db:"period_end"`
	ForEventID  *string    `db:"for_event_id"`

	PaidToAccountID *string    `db:"paid_to_account_id"`
	PaymentMethod   *string    `db:"payment_method"`
	UPIType         *string    `db:"upi_type"`
	PaidDate        *time.Time `db:"paid_date"`
	ConfirmedBy     string     `db:"confirmed_by"`
	JournalID       *string    `db:"journal_id"`

	Remarks            string `db:"remarks"`
	FailureDetail      string `db:"failure_detail"`
	CancellationReason string `db:"cancellation_reason"`

	DeletedAt *time.Time `db:"deleted_at"`
	AuditFields
}
