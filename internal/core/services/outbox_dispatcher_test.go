package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	portssvc "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/services"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type OutboxDispatcherTestSuite struct {
	suite.Suite
	mockOutboxRepo *MockOutboxRepository
	mockPublisher  *MockEventPublisher
	dispatcher     portssvc.OutboxDispatcherSvc
}

func (suite *OutboxDispatcherTestSuite) SetupTest() {
	suite.mockOutboxRepo = new(MockOutboxRepository)
	suite.mockPublisher = new(MockEventPublisher)
	suite.dispatcher = services.NewOutboxDispatcher(suite.mockOutboxRepo, suite.mockPublisher, 10)
}

func (suite *OutboxDispatcherTestSuite) stagedMessage() domain.OutboxMessage {
	return domain.OutboxMessage{
		MessageID: uuid.NewString(),
		Event: domain.NewEvent(domain.EventTransactionCreated, time.Now().UTC(), domain.TransactionCreatedPayload{
			AccountID: uuid.NewString(),
			Side:      domain.Credit,
			Amount:    decimal.NewFromInt(100),
			JournalID: uuid.NewString(),
		}),
		CreatedAt: time.Now().UTC(),
	}
}

func (suite *OutboxDispatcherTestSuite) TestDispatchPending_DeliversBatch() {
	ctx := context.Background()
	msgs := []domain.OutboxMessage{suite.stagedMessage(), suite.stagedMessage()}

	suite.mockOutboxRepo.On("FindUnpublished", ctx, 10).Return(msgs, nil).Once()
	suite.mockPublisher.On("Publish", ctx, msgs[0]).Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, msgs[1]).Return(nil).Once()
	suite.mockOutboxRepo.On("MarkPublished", ctx, []string{msgs[0].MessageID, msgs[1].MessageID}).Return(nil).Once()

	delivered, err := suite.dispatcher.DispatchPending(ctx)

	suite.Require().NoError(err)
	suite.Equal(2, delivered)
	suite.mockOutboxRepo.AssertExpectations(suite.T())
	suite.mockPublisher.AssertExpectations(suite.T())
}

func (suite *OutboxDispatcherTestSuite) TestDispatchPending_EmptyOutboxIsNoop() {
	ctx := context.Background()

	suite.mockOutboxRepo.On("FindUnpublished", ctx, 10).Return([]domain.OutboxMessage{}, nil).Once()

	delivered, err := suite.dispatcher.DispatchPending(ctx)

	suite.Require().NoError(err)
	suite.Zero(delivered)
	suite.mockPublisher.AssertNotCalled(suite.T(), "Publish")
}

func (suite *OutboxDispatcherTestSuite) TestDispatchPending_StopsAtFirstFailure() {
	ctx := context.Background()
	msgs := []domain.OutboxMessage{suite.stagedMessage(), suite.stagedMessage(), suite.stagedMessage()}

	suite.mockOutboxRepo.On("FindUnpublished", ctx, 10).Return(msgs, nil).Once()
	suite.mockPublisher.On("Publish", ctx, msgs[0]).Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, msgs[1]).Return(errors.New("broker unavailable")).Once()
	suite.mockOutboxRepo.On("RecordAttempt", ctx, msgs[1].MessageID).Return(nil).Once()
	suite.mockOutboxRepo.On("MarkPublished", ctx, []string{msgs[0].MessageID}).Return(nil).Once()

	delivered, err := suite.dispatcher.DispatchPending(ctx)

	suite.Require().NoError(err)
	suite.Equal(1, delivered)
	// The third message is never attempted once the second fails.
	suite.mockPublisher.AssertNumberOfCalls(suite.T(), "Publish", 2)
	suite.mockOutboxRepo.AssertExpectations(suite.T())
}

func (suite *OutboxDispatcherTestSuite) TestDispatchPending_MarkFailureSurfacesError() {
	ctx := context.Background()
	msgs := []domain.OutboxMessage{suite.stagedMessage()}

	suite.mockOutboxRepo.On("FindUnpublished", ctx, 10).Return(msgs, nil).Once()
	suite.mockPublisher.On("Publish", ctx, msgs[0]).Return(nil).Once()
	suite.mockOutboxRepo.On("MarkPublished", ctx, []string{msgs[0].MessageID}).Return(errors.New("connection reset")).Once()

	delivered, err := suite.dispatcher.DispatchPending(ctx)

	// Delivered but unmarked: the message will be redelivered next tick.
	suite.Require().Error(err)
	suite.Equal(1, delivered)
}

func (suite *OutboxDispatcherTestSuite) TestDispatchPending_FetchErrorPropagates() {
	ctx := context.Background()

	suite.mockOutboxRepo.On("FindUnpublished", ctx, 10).Return(nil, errors.New("relation does not exist")).Once()

	_, err := suite.dispatcher.DispatchPending(ctx)

	suite.Require().Error(err)
	suite.mockPublisher.AssertNotCalled(suite.T(), "Publish")
}

func TestOutboxDispatcherTestSuite(t *testing.T) {
	suite.Run(t, new(OutboxDispatcherTestSuite))
}
