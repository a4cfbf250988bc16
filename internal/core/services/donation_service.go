package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	portsrepo "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/repositories"
	portssvc "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/services"
	"github.com/samiti-tech/nonprofit_fund_app/internal/dto"
	"github.com/samiti-tech/nonprofit_fund_app/internal/middleware"
)

// donationService orchestrates the donation lifecycle. The only transition
// that moves money is MarkDonationPaid; everything else is status bookkeeping
// on the aggregate.
type donationService struct {
	donationRepo portsrepo.DonationRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	journalSvc   portssvc.JournalSvcFacade
	// donationIncomeAccount names the income counter-account debited when a
	// donation payment is posted.
	donationIncomeAccount string
}

// NewDonationService creates a new donation service.
func NewDonationService(donationRepo portsrepo.DonationRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, journalSvc portssvc.JournalSvcFacade, donationIncomeAccount string) portssvc.DonationSvcFacade {
	return &donationService{
		donationRepo:          donationRepo,
		accountRepo:           accountRepo,
		journalSvc:            journalSvc,
		donationIncomeAccount: donationIncomeAccount,
	}
}

var _ portssvc.DonationSvcFacade = (*donationService)(nil)

// CreateDonation raises a new donation.
// Implements portssvc.DonationWriterSvc.
func (s *donationService) CreateDonation(ctx context.Context, req dto.CreateDonationRequest, creatorUserID string) (*domain.Donation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var forEventID *string
	if req.ForEventID != "" {
		forEventID = &req.ForEventID
	}

	now := time.Now().UTC()
	donation, err := domain.NewDonation(uuid.NewString(), req.DonationType, req.Amount, req.CurrencyCode,
		req.DonorID, req.GuestDonorName, req.GuestDonorEmail, req.GuestDonorNumber,
		req.PeriodStart, req.PeriodEnd, forEventID, req.Remarks, creatorUserID, now)
	if err != nil {
		return nil, err
	}

	if err := s.donationRepo.SaveDonation(ctx, *donation, donation.TakeEvents()); err != nil {
		logger.Error("Failed to save donation", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save donation: %w", err)
	}

	logger.Info("Donation raised", slog.String("donation_id", donation.DonationID), slog.String("donation_type", string(donation.DonationType)))
	return donation, nil
}

// MarkDonationPaid confirms payment: the aggregate transitions to PAID, the
// receipt is posted (credit the receiving account, debit donation income)
// and the posting is linked back onto the donation. The posting carries the
// donation ID as its reference, so a retried confirmation trips the ledger's
// idempotency guard instead of double-counting the money.
// Implements portssvc.DonationLifecycleSvc.
func (s *donationService) MarkDonationPaid(ctx context.Context, donationID string, req dto.MarkDonationPaidRequest, confirmedBy string) (*domain.Donation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	donation, err := s.donationRepo.FindDonationByID(ctx, donationID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve donation %s: %w", donationID, err)
	}

	paidTo, err := s.accountRepo.FindAccountByID(ctx, req.PaidToAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve paid-to account %s: %w", req.PaidToAccountID, err)
	}
	if !paidTo.IsActive() {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountNotActive, paidTo.AccountID)
	}
	if paidTo.CurrencyCode != donation.CurrencyCode {
		return nil, fmt.Errorf("%w: account currency %s does not match donation currency %s",
			apperrors.ErrValidation, paidTo.CurrencyCode, donation.CurrencyCode)
	}

	incomeAccount, err := s.accountRepo.FindAccountByName(ctx, s.donationIncomeAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve donation income account %q: %w", s.donationIncomeAccount, err)
	}

	var upiType *domain.UPIType
	if req.UPIType != "" {
		t := req.UPIType
		upiType = &t
	}
	if req.PaymentMethod == domain.PaymentUPI && upiType == nil {
		return nil, fmt.Errorf("%w: UPI payments require a UPI type", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	if err := donation.MarkAsPaid(req.PaidToAccountID, req.PaymentMethod, upiType, confirmedBy, req.PaidDate, confirmedBy, now); err != nil {
		return nil, err
	}

	journal, err := s.journalSvc.PostEntry(ctx, portssvc.PostEntryInput{
		JournalDate:   req.PaidDate,
		Description:   fmt.Sprintf("Donation received from %s", donation.DonorReference()),
		ReferenceType: domain.RefDonation,
		ReferenceID:   &donation.DonationID,
		CurrencyCode:  donation.CurrencyCode,
		Lines: []portssvc.PostEntryLine{
			{AccountID: incomeAccount.AccountID, Amount: donation.Amount, Side: domain.Debit},
			{AccountID: paidTo.AccountID, Amount: donation.Amount, Side: domain.Credit},
		},
	}, confirmedBy)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Donation payment already posted", slog.String("donation_id", donationID))
		}
		return nil, fmt.Errorf("failed to post donation payment: %w", err)
	}

	if err := donation.LinkJournal(journal.JournalID); err != nil {
		return nil, err
	}

	if err := s.donationRepo.UpdateDonation(ctx, *donation, donation.TakeEvents()); err != nil {
		logger.Error("Failed to persist paid donation", slog.String("error", err.Error()), slog.String("donation_id", donationID))
		return nil, fmt.Errorf("failed to update donation: %w", err)
	}

	logger.Info("Donation marked paid", slog.String("donation_id", donationID), slog.String("journal_id", journal.JournalID))
	return donation, nil
}

// CorrectDonation unwinds a mistakenly recorded payment. The linked journal
// is reversed through the posting engine and the donation reopens as RAISED
// with its payment details cleared, ready to be re-entered correctly.
// Implements portssvc.DonationLifecycleSvc.
func (s *donationService) CorrectDonation(ctx context.Context, donationID string, reason string, requestingUserID string) (*domain.Donation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	donation, err := s.donationRepo.FindDonationByID(ctx, donationID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve donation %s: %w", donationID, err)
	}
	if donation.JournalID == nil {
		return nil, fmt.Errorf("%w: donation %s has no linked posting to reverse", apperrors.ErrConflict, donationID)
	}

	now := time.Now().UTC()
	if err := donation.MarkForUpdateMistake(requestingUserID, now); err != nil {
		return nil, err
	}

	if _, err := s.journalSvc.ReverseJournal(ctx, *donation.JournalID, reason, requestingUserID); err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyReversed) {
			return nil, fmt.Errorf("failed to reverse donation posting: %w", err)
		}
		// A previous attempt reversed the posting but failed before the
		// donation was persisted. The money is already unwound, so finish
		// the reopen instead of stranding the donation in PAID.
		logger.Warn("Donation posting already reversed, completing correction", slog.String("donation_id", donationID))
	}

	if err := donation.ReopenAsRaised(requestingUserID, now); err != nil {
		return nil, err
	}
	if err := s.donationRepo.UpdateDonation(ctx, *donation, donation.TakeEvents()); err != nil {
		logger.Error("Failed to persist corrected donation", slog.String("error", err.Error()), slog.String("donation_id", donationID))
		return nil, fmt.Errorf("failed to update donation: %w", err)
	}

	logger.Info("Donation correction applied", slog.String("donation_id", donationID))
	return donation, nil
}

// CancelDonation cancels an unpaid donation.
// Implements portssvc.DonationLifecycleSvc.
func (s *donationService) CancelDonation(ctx context.Context, donationID string, reason string, requestingUserID string) (*domain.Donation, error) {
	return s.applyTransition(ctx, donationID, func(d *domain.Donation, now time.Time) error {
		return d.Cancel(reason, requestingUserID, now)
	})
}

// MarkDonationFailed records a failed payment attempt.
// Implements portssvc.DonationLifecycleSvc.
func (s *donationService) MarkDonationFailed(ctx context.Context, donationID string, detail string, requestingUserID string) (*domain.Donation, error) {
	return s.applyTransition(ctx, donationID, func(d *domain.Donation, now time.Time) error {
		return d.MarkAsFailed(detail, requestingUserID, now)
	})
}

// MarkDonationPending moves a donation into payment processing.
// Implements portssvc.DonationLifecycleSvc.
func (s *donationService) MarkDonationPending(ctx context.Context, donationID string, requestingUserID string) (*domain.Donation, error) {
	return s.applyTransition(ctx, donationID, func(d *domain.Donation, now time.Time) error {
		return d.MarkAsPending(requestingUserID, now)
	})
}

// MarkDonationPayLater defers collection with a recorded reason.
// Implements portssvc.DonationLifecycleSvc.
func (s *donationService) MarkDonationPayLater(ctx context.Context, donationID string, reason string, requestingUserID string) (*domain.Donation, error) {
	return s.applyTransition(ctx, donationID, func(d *domain.Donation, now time.Time) error {
		return d.MarkAsPayLater(reason, requestingUserID, now)
	})
}

// applyTransition loads, transitions and persists a donation. Shared by the
// transitions that do not touch the ledger.
func (s *donationService) applyTransition(ctx context.Context, donationID string, fn func(*domain.Donation, time.Time) error) (*domain.Donation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	donation, err := s.donationRepo.FindDonationByID(ctx, donationID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve donation %s: %w", donationID, err)
	}
	if err := fn(donation, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.donationRepo.UpdateDonation(ctx, *donation, donation.TakeEvents()); err != nil {
		logger.Error("Failed to persist donation transition", slog.String("error", err.Error()), slog.String("donation_id", donationID))
		return nil, fmt.Errorf("failed to update donation: %w", err)
	}
	logger.Info("Donation transitioned", slog.String("donation_id", donationID), slog.String("status", string(donation.Status)))
	return donation, nil
}

// UpdateDonation amends a donation's mutable fields.
// Implements portssvc.DonationWriterSvc.
func (s *donationService) UpdateDonation(ctx context.Context, donationID string, req dto.UpdateDonationRequest, requestingUserID string) (*domain.Donation, error) {
	return s.applyTransition(ctx, donationID, func(d *domain.Donation, now time.Time) error {
		return d.Update(req.Amount, req.Remarks, req.ForEventID, requestingUserID, now)
	})
}

// DeleteDonation tombstones an unpaid donation.
// Implements portssvc.DonationWriterSvc.
func (s *donationService) DeleteDonation(ctx context.Context, donationID string, requestingUserID string) error {
	_, err := s.applyTransition(ctx, donationID, func(d *domain.Donation, now time.Time) error {
		return d.Delete(requestingUserID, now)
	})
	return err
}

// GetDonationByID retrieves a donation.
// Implements portssvc.DonationReaderSvc.
func (s *donationService) GetDonationByID(ctx context.Context, donationID string) (*domain.Donation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	donation, err := s.donationRepo.FindDonationByID(ctx, donationID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find donation by ID", slog.String("error", err.Error()), slog.String("donation_id", donationID))
		}
		return nil, fmt.Errorf("failed to find donation by ID %s: %w", donationID, err)
	}
	return donation, nil
}

// ListDonations retrieves a filtered, paginated list of donations.
// Implements portssvc.DonationReaderSvc.
func (s *donationService) ListDonations(ctx context.Context, params dto.ListDonationsParams) (*dto.ListDonationsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	donations, nextToken, err := s.donationRepo.ListDonations(ctx, portsrepo.DonationListFilter{
		Status:       params.Status,
		DonationType: params.DonationType,
		DonorID:      params.DonorID,
		Limit:        limit,
		NextToken:    params.NextToken,
	})
	if err != nil {
		logger.Error("Failed to list donations", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve donations: %w", err)
	}

	responses := make([]dto.DonationResponse, len(donations))
	for i := range donations {
		responses[i] = dto.ToDonationResponse(&donations[i])
	}
	return &dto.ListDonationsResponse{
		Donations: responses,
		NextToken: nextToken,
	}, nil
}
