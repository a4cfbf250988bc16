package repositories

import (
	"context"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
)

// DonationListFilter narrows donation listings. Zero values mean "any".
type DonationListFilter struct {
	Status       domain.DonationStatus
	DonationType domain.DonationType
	DonorID      string
	Limit        int
	NextToken    *string
}

// DonationReader defines read operations for donation data.
// Tombstoned donations are excluded from every read.
type DonationReader interface {
	// FindDonationByID retrieves a specific donation by its unique identifier.
	FindDonationByID(ctx context.Context, donationID string) (*domain.Donation, error)

	// ListDonations retrieves a filtered, paginated list of donations using
	// token-based pagination.
	ListDonations(ctx context.Context, filter DonationListFilter) ([]domain.Donation, *string, error)
}

// DonationWriter defines write operations for donation data.
type DonationWriter interface {
	// SaveDonation persists a new donation and stages its events in the
	// outbox, both within one transaction.
	SaveDonation(ctx context.Context, donation domain.Donation, events []domain.Event) error

	// UpdateDonation persists lifecycle changes to a donation and stages any
	// events in the outbox, both within one transaction.
	UpdateDonation(ctx context.Context, donation domain.Donation, events []domain.Event) error
}

// DonationRepositoryFacade combines all donation-related repository interfaces.
type DonationRepositoryFacade interface {
	DonationReader
	DonationWriter
}
