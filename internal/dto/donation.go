package dto

import (
	"time"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateDonationRequest defines the data needed to raise a donation.
// Either DonorID or the guest fields identify the donor; REGULAR donations
// additionally require a period.
type CreateDonationRequest struct {
	DonationType     domain.DonationType `json:"donationType" binding:"required,oneof=REGULAR ONE_TIME"`
	Amount           decimal.Decimal     `json:"amount" binding:"required"`
	CurrencyCode     string              `json:"currencyCode" binding:"required,len=3"`
	DonorID          string              `json:"donorID"`
	GuestDonorName   string              `json:"guestDonorName"`
	GuestDonorEmail  string              `json:"guestDonorEmail" binding:"omitempty,email"`
	GuestDonorNumber string              `json:"guestDonorNumber"`
	PeriodStart      *time.Time          `json:"periodStart"`
	PeriodEnd        *time.Time          `json:"periodEnd"`
	ForEventID       string              `json:"forEventID"`
	Remarks          string              `json:"remarks"`
}

// MarkDonationPaidRequest records payment confirmation for a donation.
type MarkDonationPaidRequest struct {
	PaidToAccountID string               `json:"paidToAccountID" binding:"required"`
	PaymentMethod   domain.PaymentMethod `json:"paymentMethod" binding:"required,oneof=CASH UPI BANK_TRANSFER CHEQUE"`
	UPIType         domain.UPIType       `json:"upiType" binding:"omitempty,oneof=GPAY PHONEPE PAYTM OTHER"`
	PaidDate        time.Time            `json:"paidDate" binding:"required"`
}

// UpdateDonationRequest amends a donation's mutable fields. Amount changes
// are rejected once the donation is PAID.
type UpdateDonationRequest struct {
	Amount     *decimal.Decimal `json:"amount"`
	Remarks    *string          `json:"remarks"`
	ForEventID *string          `json:"forEventID"`
}

// DonationStatusRequest carries the operator-supplied note that lifecycle
// transitions record (cancellation reason, failure detail, pay-later reason).
type DonationStatusRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// DonationResponse defines the data returned for a donation.
type DonationResponse struct {
	DonationID         string                `json:"donationID"`
	DonationType       domain.DonationType   `json:"donationType"`
	Status             domain.DonationStatus `json:"status"`
	Amount             decimal.Decimal       `json:"amount"`
	CurrencyCode       string                `json:"currencyCode"`
	DonorID            string                `json:"donorID,omitempty"`
	GuestDonorName     string                `json:"guestDonorName,omitempty"`
	GuestDonorEmail    string                `json:"guestDonorEmail,omitempty"`
	GuestDonorNumber   string                `json:"guestDonorNumber,omitempty"`
	PeriodStart        *time.Time            `json:"periodStart,omitempty"`
	PeriodEnd          *time.Time            `json:"periodEnd,omitempty"`
	ForEventID         *string               `json:"forEventID,omitempty"`
	Remarks            string                `json:"remarks,omitempty"`
	FailureDetail      string                `json:"failureDetail,omitempty"`
	CancellationReason string                `json:"cancellationReason,omitempty"`
	PaidToAccountID    *string               `json:"paidToAccountID,omitempty"`
	PaymentMethod      *domain.PaymentMethod `json:"paymentMethod,omitempty"`
	UPIType            *domain.UPIType       `json:"upiType,omitempty"`
	PaidDate           *time.Time            `json:"paidDate,omitempty"`
	ConfirmedBy        string                `json:"confirmedBy,omitempty"`
	JournalID          *string               `json:"journalID,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	CreatedBy          string                `json:"createdBy"`
}

// ToDonationResponse converts a domain.Donation to its DTO.
func ToDonationResponse(d *domain.Donation) DonationResponse {
	return DonationResponse{
		DonationID:         d.DonationID,
		DonationType:       d.DonationType,
		Status:             d.Status,
		Amount:             d.Amount,
		CurrencyCode:       d.CurrencyCode,
		DonorID:            d.DonorID,
		GuestDonorName:     d.DonorName,
		GuestDonorEmail:    d.DonorEmail,
		GuestDonorNumber:   d.DonorNumber,
		PeriodStart:        d.PeriodStart,
		PeriodEnd:          d.PeriodEnd,
		ForEventID:         d.ForEventID,
		Remarks:            d.Remarks,
		FailureDetail:      d.FailureDetail,
		CancellationReason: d.CancellationReason,
		PaidToAccountID:    d.PaidToAccountID,
		PaymentMethod:      d.PaymentMethod,
		UPIType:            d.UPIType,
		PaidDate:           d.PaidDate,
		ConfirmedBy:        d.ConfirmedBy,
		JournalID:          d.JournalID,
		CreatedAt:          d.CreatedAt,
		CreatedBy:          d.CreatedBy,
	}
}

// ListDonationsParams defines query parameters for listing donations.
type ListDonationsParams struct {
	Status       domain.DonationStatus `form:"status"`
	DonationType domain.DonationType   `form:"donationType"`
	DonorID      string                `form:"donorID"`
	Limit        int                   `form:"limit,default=20"`
	NextToken    *string               `form:"nextToken"`
}

// ListDonationsResponse wraps a page of donations.
type ListDonationsResponse struct {
	Donations []DonationResponse `json:"donations"`
	NextToken *string            `json:"nextToken,omitempty"`
}
