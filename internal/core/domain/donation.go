package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DonationType distinguishes recurring pledges from one-off contributions.
type DonationType string

const (
	DonationRegular DonationType = "REGULAR"
	DonationOneTime DonationType = "ONE_TIME"
)

// DonationStatus is the lifecycle status of a donation.
type DonationStatus string

const (
	DonationRaised        DonationStatus = "RAISED"
	DonationPending       DonationStatus = "PENDING"
	DonationPaid          DonationStatus = "PAID"
	DonationPaymentFailed DonationStatus = "PAYMENT_FAILED"
	DonationPayLater      DonationStatus = "PAY_LATER"
	DonationCancelled     DonationStatus = "CANCELLED"
	DonationUpdateMistake DonationStatus = "UPDATE_MISTAKE"
)

// PaymentMethod is the channel through which a donation was received.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentUPI          PaymentMethod = "UPI"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCheque       PaymentMethod = "CHEQUE"
)

// UPIType is the UPI app sub-type recorded for UPI payments.
type UPIType string

const (
	UPIGooglePay UPIType = "GPAY"
	UPIPhonePe   UPIType = "PHONEPE"
	UPIPaytm     UPIType = "PAYTM"
	UPIOther     UPIType = "OTHER"
)

// donationTransitions lists the allowed target statuses per current status.
// CANCELLED is terminal.
var donationTransitions = map[DonationStatus][]DonationStatus{
	DonationRaised:        {DonationPending, DonationPaid, DonationPaymentFailed, DonationPayLater, DonationCancelled},
	DonationPending:       {DonationPaid, DonationPaymentFailed, DonationPayLater, DonationCancelled},
	DonationPaid:          {DonationUpdateMistake},
	DonationPaymentFailed: {DonationPaid},
	DonationPayLater:      {DonationPaid, DonationCancelled, DonationPaymentFailed},
	DonationUpdateMistake: {DonationRaised},
	DonationCancelled:     {},
}

// Donation is a pledged or received contribution. It is never deleted; its
// status is advanced only through the lifecycle methods below.
type Donation struct {
	DonationID   string          `json:"donationID"`
	DonationType DonationType    `json:"donationType"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
	Status       DonationStatus  `json:"status"`

	// Donor identity: either an internal user ID, or guest details.
	DonorID     string `json:"donorID"`
	DonorName   string `json:"donorName"`
	DonorEmail  string `json:"donorEmail"`
	DonorNumber string `json:"donorNumber"`

	// Pledge period, required for REGULAR donations.
	PeriodStart *time.Time `json:"periodStart,omitempty"`
	PeriodEnd   *time.Time `json:"periodEnd,omitempty"`

	ForEventID *string `json:"forEventID,omitempty"`

	// Payment details, set by MarkAsPaid.
	PaidToAccountID *string        `json:"paidToAccountID,omitempty"`
	PaymentMethod   *PaymentMethod `json:"paymentMethod,omitempty"`
	UPIType         *UPIType       `json:"upiType,omitempty"`
	PaidDate        *time.Time     `json:"paidDate,omitempty"`
	ConfirmedBy     string         `json:"confirmedBy,omitempty"`

	// JournalID links the payment posting once the donation is PAID.
	JournalID *string `json:"journalID,omitempty"`

	Remarks            string `json:"remarks"`
	FailureDetail      string `json:"failureDetail,omitempty"`
	CancellationReason string `json:"cancellationReason,omitempty"`

	DeletedAt *time.Time `json:"deletedAt,omitempty"` // tombstone, filtered at every read path
	AuditFields

	events []Event
}

// NewDonation builds a donation in RAISED status.
func NewDonation(donationID string, donationType DonationType, amount decimal.Decimal, currencyCode string, donorID, donorName, donorEmail, donorNumber string, periodStart, periodEnd *time.Time, forEventID *string, remarks string, createdBy string, now time.Time) (*Donation, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: donation amount must be positive", apperrors.ErrValidation)
	}
	if strings.TrimSpace(currencyCode) == "" {
		return nil, fmt.Errorf("%w: currency code is required", apperrors.ErrValidation)
	}
	switch donationType {
	case DonationRegular:
		if donorID == "" {
			return nil, fmt.Errorf("%w: regular donations require a donor user", apperrors.ErrValidation)
		}
		if periodStart == nil || periodEnd == nil {
			return nil, fmt.Errorf("%w: regular donations require a period start and end", apperrors.ErrValidation)
		}
		if periodEnd.Before(*periodStart) {
			return nil, fmt.Errorf("%w: period end precedes period start", apperrors.ErrValidation)
		}
	case DonationOneTime:
		if donorID == "" && strings.TrimSpace(donorName) == "" {
			return nil, fmt.Errorf("%w: guest donations require a donor name", apperrors.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown donation type %q", apperrors.ErrValidation, donationType)
	}

	d := &Donation{
		DonationID:   donationID,
		DonationType: donationType,
		Amount:       amount,
		CurrencyCode: currencyCode,
		Status:       DonationRaised,
		DonorID:      donorID,
		DonorName:    donorName,
		DonorEmail:   donorEmail,
		DonorNumber:  donorNumber,
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		ForEventID:   forEventID,
		Remarks:      remarks,
		AuditFields:  newAuditFields(createdBy, now),
	}
	d.stageEvent(NewEvent(EventDonationRaised, now, DonationRaisedPayload{
		DonationID:     donationID,
		DonationType:   donationType,
		Amount:         amount,
		DonorReference: d.DonorReference(),
	}))
	return d, nil
}

// DonorReference returns the donor user ID, or the guest name for guest donations.
func (d *Donation) DonorReference() string {
	if d.DonorID != "" {
		return d.DonorID
	}
	return d.DonorName
}

func (d *Donation) canTransitionTo(target DonationStatus) bool {
	for _, allowed := range donationTransitions[d.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (d *Donation) transition(target DonationStatus, by string, now time.Time) error {
	if !d.canTransitionTo(target) {
		return fmt.Errorf("%w: donation %s cannot move from %s to %s",
			apperrors.ErrConflict, d.DonationID, d.Status, target)
	}
	d.Status = target
	d.touch(by, now)
	return nil
}

// MarkAsPaid records payment details and moves the donation to PAID.
// The caller is responsible for posting the payment journal entry and then
// linking it via LinkJournal.
func (d *Donation) MarkAsPaid(paidToAccountID string, method PaymentMethod, upiType *UPIType, confirmedBy string, paidDate time.Time, by string, now time.Time) error {
	if paidToAccountID == "" {
		return fmt.Errorf("%w: paid-to account is required", apperrors.ErrValidation)
	}
	if method == "" {
		return fmt.Errorf("%w: payment method is required", apperrors.ErrValidation)
	}
	if confirmedBy == "" {
		return fmt.Errorf("%w: confirming user is required", apperrors.ErrValidation)
	}
	if paidDate.IsZero() {
		return fmt.Errorf("%w: paid date is required", apperrors.ErrValidation)
	}
	if err := d.transition(DonationPaid, by, now); err != nil {
		return err
	}
	d.PaidToAccountID = &paidToAccountID
	d.PaymentMethod = &method
	d.UPIType = upiType
	d.ConfirmedBy = confirmedBy
	paid := paidDate
	d.PaidDate = &paid
	d.stageEvent(NewEvent(EventDonationPaid, now, DonationPaidPayload{
		DonationID: d.DonationID,
		Amount:     d.Amount,
		DonorID:    d.DonorID,
	}))
	return nil
}

// LinkJournal attaches the payment journal entry. Set once per payment.
func (d *Donation) LinkJournal(journalID string) error {
	if d.JournalID != nil {
		return fmt.Errorf("%w: donation %s is already linked to journal %s",
			apperrors.ErrConflict, d.DonationID, *d.JournalID)
	}
	d.JournalID = &journalID
	return nil
}

// Cancel moves the donation to its terminal CANCELLED status.
func (d *Donation) Cancel(reason string, by string, now time.Time) error {
	if err := d.transition(DonationCancelled, by, now); err != nil {
		return err
	}
	d.CancellationReason = reason
	return nil
}

// MarkAsFailed records a failed payment attempt.
func (d *Donation) MarkAsFailed(detail string, by string, now time.Time) error {
	if err := d.transition(DonationPaymentFailed, by, now); err != nil {
		return err
	}
	d.FailureDetail = detail
	return nil
}

// MarkAsPending marks the donation as awaiting payment confirmation.
func (d *Donation) MarkAsPending(by string, now time.Time) error {
	return d.transition(DonationPending, by, now)
}

// MarkAsPayLater defers the donation; a reason is required.
func (d *Donation) MarkAsPayLater(reason string, by string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: pay-later reason is required", apperrors.ErrValidation)
	}
	if err := d.transition(DonationPayLater, by, now); err != nil {
		return err
	}
	d.Remarks = reason
	return nil
}

// MarkForUpdateMistake flags a PAID donation whose posting must be reversed.
// The caller must then reverse the linked journal entry and unlink it.
func (d *Donation) MarkForUpdateMistake(by string, now time.Time) error {
	return d.transition(DonationUpdateMistake, by, now)
}

// ReopenAsRaised returns a mistake-flagged donation to RAISED with its
// payment details cleared, so it can be corrected and paid again.
func (d *Donation) ReopenAsRaised(by string, now time.Time) error {
	if err := d.transition(DonationRaised, by, now); err != nil {
		return err
	}
	d.PaidToAccountID = nil
	d.PaymentMethod = nil
	d.UPIType = nil
	d.PaidDate = nil
	d.ConfirmedBy = ""
	d.JournalID = nil
	return nil
}

// Update edits mutable fields. Amount changes are forbidden once PAID and
// the amount must stay positive.
func (d *Donation) Update(amount *decimal.Decimal, remarks *string, forEventID *string, by string, now time.Time) error {
	if amount != nil {
		if d.Status == DonationPaid {
			return fmt.Errorf("%w: donation %s amount cannot change once paid", apperrors.ErrConflict, d.DonationID)
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: donation amount must be positive", apperrors.ErrValidation)
		}
		d.Amount = *amount
	}
	if remarks != nil {
		d.Remarks = *remarks
	}
	if forEventID != nil {
		d.ForEventID = forEventID
	}
	d.touch(by, now)
	return nil
}

// Delete tombstones the donation. Paid donations carry a posting and cannot
// be tombstoned; they must be corrected through the reversal flow.
func (d *Donation) Delete(by string, now time.Time) error {
	if d.Status == DonationPaid {
		return fmt.Errorf("%w: donation %s is paid and cannot be deleted", apperrors.ErrConflict, d.DonationID)
	}
	if d.DeletedAt != nil {
		return fmt.Errorf("%w: donation %s is already deleted", apperrors.ErrConflict, d.DonationID)
	}
	deleted := now
	d.DeletedAt = &deleted
	d.touch(by, now)
	return nil
}

func (d *Donation) stageEvent(ev Event) {
	d.events = append(d.events, ev)
}

// TakeEvents drains the events staged on the aggregate since it was loaded.
func (d *Donation) TakeEvents() []Event {
	ev := d.events
	d.events = nil
	return ev
}
