package services_test

import (
	"context"
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

const testExpenseOutflowName = "Expense Outflow"

type ExpenseServiceTestSuite struct {
	suite.Suite
	mockExpenseRepo *MockExpenseRepository
	mockAccountRepo *MockAccountRepository
	mockLedger      *MockLedgerPoster
	service         portssvc.ExpenseSvcFacade
	userID          string
}

func (suite *ExpenseServiceTestSuite) SetupTest() {
	suite.mockExpenseRepo = new(MockExpenseRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockLedger = new(MockLedgerPoster)
	suite.service = services.NewExpenseService(suite.mockExpenseRepo, suite.mockAccountRepo, suite.mockLedger, testExpenseOutflowName)
	suite.userID = uuid.NewString()
}

func (suite *ExpenseServiceTestSuite) draftExpense() *domain.Expense {
	items := []domain.ExpenseItem{
		{ItemID: uuid.NewString(), Name: "Chairs", Amount: decimal.NewFromInt(120)},
		{ItemID: uuid.NewString(), Name: "Banners", Amount: decimal.NewFromInt(80)},
	}
	expense, err := domain.NewExpense(uuid.NewString(), "Annual day setup", "", "INR",
		time.Now().UTC(), domain.ExpenseRefEvent, nil, suite.userID, "", items, time.Now().UTC())
	suite.Require().NoError(err)
	expense.TakeEvents()
	return expense
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_AmountDerivedFromItems() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		Name:          "Annual day setup",
		CurrencyCode:  "INR",
		ExpenseDate:   time.Now().UTC(),
		ReferenceType: domain.ExpenseRefEvent,
		Items: []dto.ExpenseItemRequest{
			{Name: "Chairs", Amount: decimal.NewFromInt(120)},
			{Name: "Banners", Amount: decimal.NewFromInt(80)},
		},
	}

	suite.mockExpenseRepo.On("SaveExpense", ctx, mock.AnythingOfType("domain.Expense"), mock.AnythingOfType("[]domain.Event")).Return(nil).Once()

	expense, err := suite.service.CreateExpense(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExpenseDraft, expense.Status)
	suite.True(expense.Amount.Equal(decimal.NewFromInt(200)))
	suite.Len(expense.Items, 2)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_ZeroItemAmountRejected() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		Name:          "Empty handed",
		CurrencyCode:  "INR",
		ExpenseDate:   time.Now().UTC(),
		ReferenceType: domain.ExpenseRefAdHoc,
		Items: []dto.ExpenseItemRequest{
			{Name: "Nothing", Amount: decimal.Zero},
		},
	}

	_, err := suite.service.CreateExpense(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "SaveExpense")
}

func (suite *ExpenseServiceTestSuite) TestSubmitThenFinalize() {
	ctx := context.Background()
	expense := suite.draftExpense()

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Twice()
	suite.mockExpenseRepo.On("UpdateExpense", ctx, mock.AnythingOfType("domain.Expense"), mock.AnythingOfType("[]domain.Event")).Return(nil).Twice()

	submitted, err := suite.service.SubmitExpense(ctx, expense.ExpenseID, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.ExpenseSubmitted, submitted.Status)

	finalized, err := suite.service.FinalizeExpense(ctx, expense.ExpenseID, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.ExpenseFinalized, finalized.Status)
	suite.Equal(suite.userID, finalized.FinalizedBy)
}

func (suite *ExpenseServiceTestSuite) TestFinalizeExpense_DraftRejected() {
	ctx := context.Background()
	expense := suite.draftExpense()

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()

	_, err := suite.service.FinalizeExpense(ctx, expense.ExpenseID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "UpdateExpense")
}

func (suite *ExpenseServiceTestSuite) TestRejectExpense_RecordsRemarks() {
	ctx := context.Background()
	expense := suite.draftExpense()
	expense.Status = domain.ExpenseSubmitted

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("UpdateExpense", ctx, mock.AnythingOfType("domain.Expense"), mock.AnythingOfType("[]domain.Event")).Return(nil).Once()

	rejected, err := suite.service.RejectExpense(ctx, expense.ExpenseID, "no receipts attached", suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExpenseRejected, rejected.Status)
	suite.Equal("no receipts attached", rejected.RejectionRemarks)
	suite.Equal(suite.userID, rejected.RejectedBy)
}

func (suite *ExpenseServiceTestSuite) TestSettleExpense_PostsDisbursement() {
	ctx := context.Background()
	expense := suite.draftExpense()
	expense.Status = domain.ExpenseFinalized
	settlementAccount := domain.Account{
		AccountID:    uuid.NewString(),
		Name:         "Main Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "INR",
		Status:       domain.AccountActive,
		Balance:      decimal.NewFromInt(1000),
	}
	outflowAccount := domain.Account{
		AccountID:    uuid.NewString(),
		Name:         testExpenseOutflowName,
		AccountType:  domain.ExpenseAccount,
		CurrencyCode: "INR",
		Status:       domain.AccountActive,
	}
	journalID := uuid.NewString()
	req := dto.SettleExpenseRequest{SettlementAccountID: settlementAccount.AccountID}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, settlementAccount.AccountID).Return(&settlementAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByName", ctx, testExpenseOutflowName).Return(&outflowAccount, nil).Once()
	suite.mockLedger.On("PostEntry", ctx, mock.AnythingOfType("services.PostEntryInput"), suite.userID).
		Return(&domain.JournalEntry{JournalID: journalID, Status: domain.Posted}, nil).Once()
	suite.mockExpenseRepo.On("UpdateExpense", ctx, mock.AnythingOfType("domain.Expense"), mock.AnythingOfType("[]domain.Event")).Return(nil).Once()

	settled, err := suite.service.SettleExpense(ctx, expense.ExpenseID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExpenseSettled, settled.Status)
	suite.Require().NotNil(settled.JournalID)
	suite.Equal(journalID, *settled.JournalID)
	suite.Require().NotNil(settled.SettlementAccountID)
	suite.Equal(settlementAccount.AccountID, *settled.SettlementAccountID)

	postedInput := suite.mockLedger.Calls[0].Arguments.Get(1).(portssvc.PostEntryInput)
	suite.Equal(domain.RefExpense, postedInput.ReferenceType)
	suite.Require().NotNil(postedInput.ReferenceID)
	suite.Equal(expense.ExpenseID, *postedInput.ReferenceID)
	suite.Require().Len(postedInput.Lines, 2)
	suite.Equal(settlementAccount.AccountID, postedInput.Lines[0].AccountID)
	suite.Equal(domain.Debit, postedInput.Lines[0].Side)
	suite.Equal(outflowAccount.AccountID, postedInput.Lines[1].AccountID)
	suite.Equal(domain.Credit, postedInput.Lines[1].Side)

	suite.mockLedger.AssertExpectations(suite.T())
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestSettleExpense_NotFinalizedRejected() {
	ctx := context.Background()
	expense := suite.draftExpense()
	req := dto.SettleExpenseRequest{SettlementAccountID: uuid.NewString()}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()

	_, err := suite.service.SettleExpense(ctx, expense.ExpenseID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockLedger.AssertNotCalled(suite.T(), "PostEntry")
}

func (suite *ExpenseServiceTestSuite) TestSettleExpense_InsufficientFundsRejected() {
	ctx := context.Background()
	expense := suite.draftExpense() // amount 200
	expense.Status = domain.ExpenseFinalized
	settlementAccount := domain.Account{
		AccountID:    uuid.NewString(),
		Name:         "Thin Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "INR",
		Status:       domain.AccountActive,
		Balance:      decimal.NewFromInt(150),
	}
	req := dto.SettleExpenseRequest{SettlementAccountID: settlementAccount.AccountID}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, settlementAccount.AccountID).Return(&settlementAccount, nil).Once()

	_, err := suite.service.SettleExpense(ctx, expense.ExpenseID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockLedger.AssertNotCalled(suite.T(), "PostEntry")
}

func (suite *ExpenseServiceTestSuite) TestDeleteExpense_SettledRejected() {
	ctx := context.Background()
	expense := suite.draftExpense()
	expense.Status = domain.ExpenseSettled

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()

	err := suite.service.DeleteExpense(ctx, expense.ExpenseID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "UpdateExpense")
}

func (suite *ExpenseServiceTestSuite) TestUpdateExpense_ReplacingItemsRecomputesAmount() {
	ctx := context.Background()
	expense := suite.draftExpense()

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("UpdateExpense", ctx, mock.AnythingOfType("domain.Expense"), mock.AnythingOfType("[]domain.Event")).Return(nil).Once()

	updated, err := suite.service.UpdateExpense(ctx, expense.ExpenseID, dto.UpdateExpenseRequest{
		Items: []dto.ExpenseItemRequest{
			{Name: "Chairs", Amount: decimal.NewFromInt(300)},
		},
	}, suite.userID)

	suite.Require().NoError(err)
	suite.True(updated.Amount.Equal(decimal.NewFromInt(300)))
	suite.Len(updated.Items, 1)
}

func TestExpenseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExpenseServiceTestSuite))
}
