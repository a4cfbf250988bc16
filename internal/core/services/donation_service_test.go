package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	portssvc "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/services"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/services"
	"github.com/samiti-tech/nonprofit_fund_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testDonationIncomeName = "Donation Income"

type DonationServiceTestSuite struct {
	suite.Suite
	mockDonationRepo *MockDonationRepository
	mockAccountRepo  *MockAccountRepository
	mockJournalSvc   *MockJournalService
	service          portssvc.DonationSvcFacade
	cashAccount      domain.Account
	userID           string
}

func (suite *DonationServiceTestSuite) SetupTest() {
	suite.mockDonationRepo = new(MockDonationRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockJournalSvc = new(MockJournalService)
	suite.service = services.NewDonationService(suite.mockDonationRepo, suite.mockAccountRepo, suite.mockJournalSvc, testDonationIncomeName)

	suite.userID = uuid.NewString()
	suite.cashAccount = domain.Account{
		AccountID:    uuid.NewString(),
		Name:         "Main Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "INR",
		Status:       domain.AccountActive,
	}
}

func (suite *DonationServiceTestSuite) raisedDonation() *domain.Donation {
	donation, err := domain.NewDonation(uuid.NewString(), domain.DonationOneTime, decimal.NewFromInt(500), "INR",
		"", "Asha Rao", "asha@example.com", "", nil, nil, nil, "", suite.userID, time.Now().UTC())
	suite.Require().NoError(err)
	donation.TakeEvents() // creation event is not under test here
	return donation
}

func (suite *DonationServiceTestSuite) TestCreateDonation_GuestOneTime() {
	ctx := context.Background()
	req := dto.CreateDonationRequest{
		DonationType:   domain.DonationOneTime,
		Amount:         decimal.NewFromInt(500),
		CurrencyCode:   "INR",
		GuestDonorName: "Asha Rao",
	}

	suite.mockDonationRepo.On("SaveDonation", ctx, mock.AnythingOfType("domain.Donation"), mock.AnythingOfType("[]domain.Event")).Return(nil).Once()

	donation, err := suite.service.CreateDonation(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DonationRaised, donation.Status)
	suite.Equal("Asha Rao", donation.DonorName)

	savedEvents := suite.mockDonationRepo.Calls[0].Arguments.Get(2).([]domain.Event)
	suite.Require().Len(savedEvents, 1)
	suite.Equal(domain.EventDonationRaised, savedEvents[0].EventType)
	suite.mockDonationRepo.AssertExpectations(suite.T())
}

func (suite *DonationServiceTestSuite) TestCreateDonation_RegularWithoutPeriodRejected() {
	ctx := context.Background()
	req := dto.CreateDonationRequest{
		DonationType: domain.DonationRegular,
		Amount:       decimal.NewFromInt(500),
		CurrencyCode: "INR",
		DonorID:      uuid.NewString(),
	}

	_, err := suite.service.CreateDonation(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockDonationRepo.AssertNotCalled(suite.T(), "SaveDonation")
}

func (suite *DonationServiceTestSuite) TestMarkDonationPaid_PostsReceiptAndLinksJournal() {
	ctx := context.Background()
	donation := suite.raisedDonation()
	incomeAccount := domain.Account{
		AccountID:    uuid.NewString(),
		Name:         testDonationIncomeName,
		AccountType:  domain.Income,
		CurrencyCode: "INR",
		Status:       domain.AccountActive,
	}
	journalID := uuid.NewString()
	req := dto.MarkDonationPaidRequest{
		PaidToAccountID: suite.cashAccount.AccountID,
		PaymentMethod:   domain.PaymentCash,
		PaidDate:        time.Now().UTC(),
	}

	suite.mockDonationRepo.On("FindDonationByID", ctx, donation.DonationID).Return(donation, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.cashAccount.AccountID).Return(&suite.cashAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByName", ctx, testDonationIncomeName).Return(&incomeAccount, nil).Once()
	suite.mockJournalSvc.On("PostEntry", ctx, mock.AnythingOfType("services.PostEntryInput"), suite.userID).
		Return(&domain.JournalEntry{JournalID: journalID, Status: domain.Posted}, nil).Once()
	suite.mockDonationRepo.On("UpdateDonation", ctx, mock.AnythingOfType("domain.Donation"), mock.AnythingOfType("[]domain.Event")).Return(nil).Once()

	updated, err := suite.service.MarkDonationPaid(ctx, donation.DonationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DonationPaid, updated.Status)
	suite.Require().NotNil(updated.JournalID)
	suite.Equal(journalID, *updated.JournalID)

	postedInput := suite.mockJournalSvc.Calls[0].Arguments.Get(1).(portssvc.PostEntryInput)
	suite.Equal(domain.RefDonation, postedInput.ReferenceType)
	suite.Require().NotNil(postedInput.ReferenceID)
	suite.Equal(donation.DonationID, *postedInput.ReferenceID)
	suite.Require().Len(postedInput.Lines, 2)
	suite.Equal(incomeAccount.AccountID, postedInput.Lines[0].AccountID)
	suite.Equal(domain.Debit, postedInput.Lines[0].Side)
	suite.Equal(suite.cashAccount.AccountID, postedInput.Lines[1].AccountID)
	suite.Equal(domain.Credit, postedInput.Lines[1].Side)

	suite.mockDonationRepo.AssertExpectations(suite.T())
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *DonationServiceTestSuite) TestMarkDonationPaid_UPIWithoutTypeRejected() {
	ctx := context.Background()
	donation := suite.raisedDonation()
	incomeAccount := domain.Account{
		AccountID:    uuid.NewString(),
		Name:         testDonationIncomeName,
		AccountType:  domain.Income,
		CurrencyCode: "INR",
		Status:       domain.AccountActive,
	}
	req := dto.MarkDonationPaidRequest{
		PaidToAccountID: suite.cashAccount.AccountID,
		PaymentMethod:   domain.PaymentUPI,
		PaidDate:        time.Now().UTC(),
	}

	suite.mockDonationRepo.On("FindDonationByID", ctx, donation.DonationID).Return(donation, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.cashAccount.AccountID).Return(&suite.cashAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByName", ctx, testDonationIncomeName).Return(&incomeAccount, nil).Once()

	_, err := suite.service.MarkDonationPaid(ctx, donation.DonationID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "PostEntry")
}

func (suite *DonationServiceTestSuite) TestMarkDonationPaid_CurrencyMismatchRejected() {
	ctx := context.Background()
	donation := suite.raisedDonation()
	usdAccount := suite.cashAccount
	usdAccount.CurrencyCode = "USD"
	req := dto.MarkDonationPaidRequest{
		PaidToAccountID: usdAccount.AccountID,
		PaymentMethod:   domain.PaymentCash,
		PaidDate:        time.Now().UTC(),
	}

	suite.mockDonationRepo.On("FindDonationByID", ctx, donation.DonationID).Return(donation, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, usdAccount.AccountID).Return(&usdAccount, nil).Once()

	_, err := suite.service.MarkDonationPaid(ctx, donation.DonationID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *DonationServiceTestSuite) TestMarkDonationPaid_AlreadyPaidRejected() {
	ctx := context.Background()
	donation := suite.raisedDonation()
	donation.Status = domain.DonationPaid
	incomeAccount := domain.Account{
		AccountID:    uuid.NewString(),
		Name:         testDonationIncomeName,
		AccountType:  domain.Income,
		CurrencyCode: "INR",
		Status:       domain.AccountActive,
	}
	req := dto.MarkDonationPaidRequest{
		PaidToAccountID: suite.cashAccount.AccountID,
		PaymentMethod:   domain.PaymentCash,
		PaidDate:        time.Now().UTC(),
	}

	suite.mockDonationRepo.On("FindDonationByID", ctx, donation.DonationID).Return(donation, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.cashAccount.AccountID).Return(&suite.cashAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByName", ctx, testDonationIncomeName).Return(&incomeAccount, nil).Once()

	_, err := suite.service.MarkDonationPaid(ctx, donation.DonationID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "PostEntry")
}

func (suite *DonationServiceTestSuite) TestCorrectDonation_ReversesAndReopens() {
	ctx := context.Background()
	donation := suite.raisedDonation()
	journalID := uuid.NewString()
	paidTo := suite.cashAccount.AccountID
	method := domain.PaymentCash
	donation.Status = domain.DonationPaid
	donation.JournalID = &journalID
	donation.PaidToAccountID = &paidTo
	donation.PaymentMethod = &method

	suite.mockDonationRepo.On("FindDonationByID", ctx, donation.DonationID).Return(donation, nil).Once()
	suite.mockJournalSvc.On("ReverseJournal", ctx, journalID, "wrong account", suite.userID).
		Return(&domain.JournalEntry{JournalID: uuid.NewString(), ReferenceType: domain.RefReversal}, nil).Once()
	suite.mockDonationRepo.On("UpdateDonation", ctx, mock.AnythingOfType("domain.Donation"), mock.AnythingOfType("[]domain.Event")).Return(nil).Once()

	updated, err := suite.service.CorrectDonation(ctx, donation.DonationID, "wrong account", suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DonationRaised, updated.Status)
	suite.Nil(updated.JournalID)
	suite.Nil(updated.PaidToAccountID)
	suite.Nil(updated.PaymentMethod)
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *DonationServiceTestSuite) TestCorrectDonation_RetryAfterPartialFailure() {
	// A previous correction attempt reversed the posting but died before the
	// donation was persisted, leaving it PAID with the journal still linked.
	// The retry finds the journal already reversed and must still complete
	// the reopen rather than stranding the donation.
	ctx := context.Background()
	donation := suite.raisedDonation()
	journalID := uuid.NewString()
	paidTo := suite.cashAccount.AccountID
	method := domain.PaymentCash
	donation.Status = domain.DonationPaid
	donation.JournalID = &journalID
	donation.PaidToAccountID = &paidTo
	donation.PaymentMethod = &method

	suite.mockDonationRepo.On("FindDonationByID", ctx, donation.DonationID).Return(donation, nil).Once()
	suite.mockJournalSvc.On("ReverseJournal", ctx, journalID, "wrong account", suite.userID).
		Return(nil, fmt.Errorf("%w: journal %s", apperrors.ErrAlreadyReversed, journalID)).Once()
	suite.mockDonationRepo.On("UpdateDonation", ctx, mock.AnythingOfType("domain.Donation"), mock.AnythingOfType("[]domain.Event")).Return(nil).Once()

	updated, err := suite.service.CorrectDonation(ctx, donation.DonationID, "wrong account", suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DonationRaised, updated.Status)
	suite.Nil(updated.JournalID)
	suite.mockDonationRepo.AssertExpectations(suite.T())
}

func (suite *DonationServiceTestSuite) TestCorrectDonation_RepaymentAfterCorrection() {
	// Full cycle against a ledger enforcing the one-POSTED-posting-per-
	// document rule: mark paid, correct the mistake, mark paid again. The
	// reversal frees the donation's reference slot, so the re-payment must
	// post a fresh journal instead of tripping the duplicate guard.
	ctx := context.Background()
	ledger := newReferenceSlotLedger()
	service := services.NewDonationService(suite.mockDonationRepo, suite.mockAccountRepo, ledger, testDonationIncomeName)

	donation := suite.raisedDonation()
	incomeAccount := domain.Account{
		AccountID:    uuid.NewString(),
		Name:         testDonationIncomeName,
		AccountType:  domain.Income,
		CurrencyCode: "INR",
		Status:       domain.AccountActive,
	}
	req := dto.MarkDonationPaidRequest{
		PaidToAccountID: suite.cashAccount.AccountID,
		PaymentMethod:   domain.PaymentCash,
		PaidDate:        time.Now().UTC(),
	}

	// The repo hands back the same aggregate across the calls, as the
	// database would after each persisted transition.
	suite.mockDonationRepo.On("FindDonationByID", ctx, donation.DonationID).Return(donation, nil).Times(3)
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.cashAccount.AccountID).Return(&suite.cashAccount, nil).Twice()
	suite.mockAccountRepo.On("FindAccountByName", ctx, testDonationIncomeName).Return(&incomeAccount, nil).Twice()
	suite.mockDonationRepo.On("UpdateDonation", ctx, mock.AnythingOfType("domain.Donation"), mock.AnythingOfType("[]domain.Event")).Return(nil).Times(3)

	paid, err := service.MarkDonationPaid(ctx, donation.DonationID, req, suite.userID)
	suite.Require().NoError(err)
	suite.Require().NotNil(paid.JournalID)
	firstJournalID := *paid.JournalID

	corrected, err := service.CorrectDonation(ctx, donation.DonationID, "wrong account", suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.DonationRaised, corrected.Status)

	repaid, err := service.MarkDonationPaid(ctx, donation.DonationID, req, suite.userID)
	suite.Require().NoError(err, "re-payment after correction must not collide with the reversed posting")
	suite.Equal(domain.DonationPaid, repaid.Status)
	suite.Require().NotNil(repaid.JournalID)
	suite.NotEqual(firstJournalID, *repaid.JournalID)
}

func (suite *DonationServiceTestSuite) TestCorrectDonation_NoLinkedJournalRejected() {
	ctx := context.Background()
	donation := suite.raisedDonation()

	suite.mockDonationRepo.On("FindDonationByID", ctx, donation.DonationID).Return(donation, nil).Once()

	_, err := suite.service.CorrectDonation(ctx, donation.DonationID, "nothing to undo", suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "ReverseJournal")
}

func (suite *DonationServiceTestSuite) TestCancelDonation_RecordsReason() {
	ctx := context.Background()
	donation := suite.raisedDonation()

	suite.mockDonationRepo.On("FindDonationByID", ctx, donation.DonationID).Return(donation, nil).Once()
	suite.mockDonationRepo.On("UpdateDonation", ctx, mock.AnythingOfType("domain.Donation"), mock.AnythingOfType("[]domain.Event")).Return(nil).Once()

	updated, err := suite.service.CancelDonation(ctx, donation.DonationID, "donor withdrew", suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DonationCancelled, updated.Status)
	suite.Equal("donor withdrew", updated.CancellationReason)
}

func (suite *DonationServiceTestSuite) TestCancelDonation_CancelledIsTerminal() {
	ctx := context.Background()
	donation := suite.raisedDonation()
	donation.Status = domain.DonationCancelled

	suite.mockDonationRepo.On("FindDonationByID", ctx, donation.DonationID).Return(donation, nil).Once()

	_, err := suite.service.MarkDonationPending(ctx, donation.DonationID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockDonationRepo.AssertNotCalled(suite.T(), "UpdateDonation")
}

func (suite *DonationServiceTestSuite) TestDeleteDonation_PaidRejected() {
	ctx := context.Background()
	donation := suite.raisedDonation()
	donation.Status = domain.DonationPaid

	suite.mockDonationRepo.On("FindDonationByID", ctx, donation.DonationID).Return(donation, nil).Once()

	err := suite.service.DeleteDonation(ctx, donation.DonationID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

// referenceSlotLedger is an in-memory posting engine that enforces the
// ledger schema's uniqueness rule: at most one POSTED posting per
// donation/expense reference, with reversal freeing the slot.
type referenceSlotLedger struct {
	posted map[string]string // reference key -> journal ID of the POSTED posting
}

var _ portssvc.JournalSvcFacade = (*referenceSlotLedger)(nil)

func newReferenceSlotLedger() *referenceSlotLedger {
	return &referenceSlotLedger{posted: make(map[string]string)}
}

func (l *referenceSlotLedger) PostEntry(_ context.Context, input portssvc.PostEntryInput, _ string) (*domain.JournalEntry, error) {
	entry := &domain.JournalEntry{
		JournalID:     uuid.NewString(),
		JournalDate:   input.JournalDate,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
		CurrencyCode:  input.CurrencyCode,
		Status:        domain.Posted,
	}
	if input.ReferenceType == domain.RefDonation || input.ReferenceType == domain.RefExpense {
		key := string(input.ReferenceType) + "/" + *input.ReferenceID
		if _, exists := l.posted[key]; exists {
			return nil, fmt.Errorf("%w: a posting for %s %s already exists", apperrors.ErrDuplicate, input.ReferenceType, *input.ReferenceID)
		}
		l.posted[key] = entry.JournalID
	}
	return entry, nil
}

func (l *referenceSlotLedger) ReverseJournal(_ context.Context, journalID string, _ string, _ string) (*domain.JournalEntry, error) {
	for key, id := range l.posted {
		if id == journalID {
			delete(l.posted, key)
			return &domain.JournalEntry{
				JournalID:         uuid.NewString(),
				ReferenceType:     domain.RefReversal,
				OriginalJournalID: &journalID,
				Status:            domain.Posted,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: journal %s", apperrors.ErrAlreadyReversed, journalID)
}

func (l *referenceSlotLedger) CreateJournal(context.Context, dto.CreateJournalRequest, string) (*domain.JournalEntry, error) {
	return nil, apperrors.ErrNotFound
}

func (l *referenceSlotLedger) UpdateJournal(context.Context, string, dto.UpdateJournalRequest, string) (*domain.JournalEntry, error) {
	return nil, apperrors.ErrNotFound
}

func (l *referenceSlotLedger) Transfer(context.Context, dto.TransferRequest, string) (*domain.JournalEntry, error) {
	return nil, apperrors.ErrNotFound
}

func (l *referenceSlotLedger) AddFund(context.Context, dto.AddFundRequest, string) (*domain.JournalEntry, error) {
	return nil, apperrors.ErrNotFound
}

func (l *referenceSlotLedger) GetJournalByID(context.Context, string) (*domain.JournalEntry, error) {
	return nil, apperrors.ErrNotFound
}

func (l *referenceSlotLedger) ListJournals(context.Context, dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	return nil, apperrors.ErrNotFound
}

func (l *referenceSlotLedger) ListLinesByAccount(context.Context, string, dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	return nil, apperrors.ErrNotFound
}

func TestDonationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DonationServiceTestSuite))
}
