package services

import (
	"context"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/samiti-tech/nonprofit_fund_app/internal/dto"
)

// DonationReaderSvc defines read operations for donation data
type DonationReaderSvc interface {
	// GetDonationByID retrieves a specific donation by its ID.
	GetDonationByID(ctx context.Context, donationID string) (*domain.Donation, error)

	// ListDonations retrieves a filtered, paginated list of donations.
	ListDonations(ctx context.Context, params dto.ListDonationsParams) (*dto.ListDonationsResponse, error)
}

// DonationWriterSvc defines write operations for donation data
type DonationWriterSvc interface {
	// CreateDonation raises a new donation.
	CreateDonation(ctx context.Context, req dto.CreateDonationRequest, creatorUserID string) (*domain.Donation, error)

	// UpdateDonation amends a donation's mutable fields.
	UpdateDonation(ctx context.Context, donationID string, req dto.UpdateDonationRequest, requestingUserID string) (*domain.Donation, error)

	// DeleteDonation tombstones a donation that was never paid.
	DeleteDonation(ctx context.Context, donationID string, requestingUserID string) error
}

// DonationLifecycleSvc defines the donation status transitions
type DonationLifecycleSvc interface {
	// MarkDonationPaid confirms payment and posts the receipt to the ledger.
	MarkDonationPaid(ctx context.Context, donationID string, req dto.MarkDonationPaidRequest, confirmedBy string) (*domain.Donation, error)

	// CancelDonation cancels an unpaid donation.
	CancelDonation(ctx context.Context, donationID string, reason string, requestingUserID string) (*domain.Donation, error)

	// MarkDonationFailed records a failed payment attempt.
	MarkDonationFailed(ctx context.Context, donationID string, detail string, requestingUserID string) (*domain.Donation, error)

	// MarkDonationPending moves a donation into payment processing.
	MarkDonationPending(ctx context.Context, donationID string, requestingUserID string) (*domain.Donation, error)

	// MarkDonationPayLater defers collection with a recorded reason.
	MarkDonationPayLater(ctx context.Context, donationID string, reason string, requestingUserID string) (*domain.Donation, error)

	// CorrectDonation unwinds a mistakenly paid donation: the linked journal
	// is reversed and the donation reopens as RAISED for re-entry.
	CorrectDonation(ctx context.Context, donationID string, reason string, requestingUserID string) (*domain.Donation, error)
}

// DonationSvcFacade combines all donation-related service interfaces
// This is a facade for clients that need access to all operations
type DonationSvcFacade interface {
	DonationReaderSvc
	DonationWriterSvc
	DonationLifecycleSvc
}
