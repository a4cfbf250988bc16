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
	"github.com/samiti-tech/nonprofit_fund_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// journalService is the posting engine. Every balance change in the system,
// whatever operation triggered it, flows through PostEntry.
type journalService struct {
	journalRepo    portsrepo.JournalRepositoryFacade
	accountRepo    portsrepo.AccountRepositoryFacade
	reversalWindow time.Duration
	// externalFundsAccount names the counter-account credited against when
	// AddFund is called without a source account.
	externalFundsAccount string
}

// NewJournalService creates a new journal service.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, reversalWindowDays int, externalFundsAccount string) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo:          journalRepo,
		accountRepo:          accountRepo,
		reversalWindow:       time.Duration(reversalWindowDays) * 24 * time.Hour,
		externalFundsAccount: externalFundsAccount,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// PostEntry validates and atomically persists a balanced journal entry.
// Implements portssvc.LedgerPosterSvc.
func (s *journalService) PostEntry(ctx context.Context, input portssvc.PostEntryInput, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(input.Lines) < 2 {
		return nil, fmt.Errorf("%w: journal entry must have at least two lines", apperrors.ErrValidation)
	}

	// Resolve every referenced account before looking at the line shapes, so
	// an unknown account is reported ahead of an unbalanced entry.
	accountIDs := make([]string, 0, len(input.Lines))
	for _, line := range input.Lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	uniqueAccountIDs := uniqueStrings(accountIDs)
	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, uniqueAccountIDs)
	if err != nil {
		logger.Error("Failed to fetch accounts for posting", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range uniqueAccountIDs {
		acc, found := accountsMap[id]
		if !found {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s", id))
		}
		if !acc.IsActive() {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountNotActive, id)
		}
	}

	now := time.Now().UTC()
	journalID := uuid.NewString()

	domainLines := make([]domain.LedgerLine, len(input.Lines))
	for i, lineReq := range input.Lines {
		domainLines[i] = domain.LedgerLine{
			LineID:       uuid.NewString(),
			JournalID:    journalID,
			AccountID:    lineReq.AccountID,
			Amount:       lineReq.Amount,
			Side:         lineReq.Side,
			CurrencyCode: input.CurrencyCode,
			Notes:        lineReq.Notes,
			AuditFields:  domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID},
			// RunningBalance is computed by the repository inside the
			// posting transaction, where the lock order is known.
		}
	}

	if err := accounting.ValidateEntryBalance(domainLines); err != nil {
		return nil, err
	}

	for _, id := range uniqueAccountIDs {
		if acc := accountsMap[id]; acc.CurrencyCode != input.CurrencyCode {
			return nil, fmt.Errorf("%w: account %s currency %s does not match entry currency %s",
				apperrors.ErrValidation, id, acc.CurrencyCode, input.CurrencyCode)
		}
	}

	// Replay the entry against in-memory copies of the accounts. This applies
	// the overdraft rule per line and fails fast; the repository re-applies
	// the deltas under row locks so a concurrent posting cannot slip below
	// zero between this check and the commit.
	balanceChanges := accounting.NetChanges(domainLines)
	for _, line := range domainLines {
		acc := accountsMap[line.AccountID]
		if line.Side == domain.Credit {
			err = acc.Credit(line.Amount, userID, now)
		} else {
			err = acc.Debit(line.Amount, userID, now)
		}
		if err != nil {
			return nil, err
		}
		accountsMap[line.AccountID] = acc
	}

	entry := domain.JournalEntry{
		JournalID:     journalID,
		JournalDate:   input.JournalDate,
		Description:   input.Description,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
		CurrencyCode:  input.CurrencyCode,
		Status:        domain.Posted,
		Amount:        accounting.EntryAmount(domainLines),
		AuditFields:   domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID},
	}
	if input.ReferenceType == domain.RefReversal {
		// The repository marks the referenced entry REVERSED in the same
		// transaction as this insert.
		entry.OriginalJournalID = input.ReferenceID
	}

	events := make([]domain.Event, 0, len(domainLines))
	for _, line := range domainLines {
		events = append(events, domain.NewEvent(domain.EventTransactionCreated, now, domain.TransactionCreatedPayload{
			AccountID: line.AccountID,
			Side:      line.Side,
			Amount:    line.Amount,
			JournalID: journalID,
		}))
	}

	if err := s.journalRepo.SaveJournal(ctx, entry, domainLines, balanceChanges, events); err != nil {
		logger.Error("Failed to save journal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}

	logger.Info("Journal posted", slog.String("journal_id", journalID), slog.String("reference_type", string(entry.ReferenceType)))
	entry.Lines = domainLines
	return &entry, nil
}

// CreateJournal persists a manual posting built from an API request.
// Implements portssvc.JournalWriterSvc.
func (s *journalService) CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.JournalEntry, error) {
	lines := make([]portssvc.PostEntryLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		lines[i] = portssvc.PostEntryLine{
			AccountID: lineReq.AccountID,
			Amount:    lineReq.Amount,
			Side:      lineReq.Side,
			Notes:     lineReq.Notes,
		}
	}
	return s.PostEntry(ctx, portssvc.PostEntryInput{
		JournalDate:   req.JournalDate,
		Description:   req.Description,
		ReferenceType: domain.RefManual,
		CurrencyCode:  req.CurrencyCode,
		Lines:         lines,
	}, creatorUserID)
}

// ReverseJournal creates a compensating entry mirroring the original and
// marks the original REVERSED within the same posting transaction.
// Implements portssvc.JournalWriterSvc.
func (s *journalService) ReverseJournal(ctx context.Context, journalID string, reason string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to fetch journal for reversal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		}
		return nil, fmt.Errorf("failed to retrieve journal %s: %w", journalID, err)
	}

	if original.Status == domain.Reversed {
		return nil, fmt.Errorf("%w: journal %s", apperrors.ErrAlreadyReversed, journalID)
	}
	if original.IsReversal() {
		// A reversal compensates; compensating the compensation would be a
		// re-posting of the original, which callers must do explicitly.
		return nil, fmt.Errorf("%w: journal %s is itself a reversal", apperrors.ErrAlreadyReversed, journalID)
	}
	now := time.Now().UTC()
	if now.Sub(original.JournalDate) > s.reversalWindow {
		return nil, fmt.Errorf("%w: journal %s is dated %s, outside the %s lookback window",
			apperrors.ErrReversalNotEligible, journalID, original.JournalDate.Format(time.RFC3339), s.reversalWindow)
	}

	originalLines, err := s.journalRepo.FindLinesByJournalID(ctx, journalID)
	if err != nil {
		logger.Error("Failed to fetch lines for reversal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve lines for journal %s: %w", journalID, err)
	}

	description := fmt.Sprintf("Reversal of: %s", original.Description)
	if reason != "" {
		description = fmt.Sprintf("%s (%s)", description, reason)
	}

	mirrored := make([]portssvc.PostEntryLine, len(originalLines))
	for i, line := range originalLines {
		mirrored[i] = portssvc.PostEntryLine{
			AccountID: line.AccountID,
			Amount:    line.Amount,
			Side:      line.Side.Opposite(),
			Notes:     line.Notes,
		}
	}

	reversal, err := s.PostEntry(ctx, portssvc.PostEntryInput{
		JournalDate:   now,
		Description:   description,
		ReferenceType: domain.RefReversal,
		ReferenceID:   &original.JournalID,
		CurrencyCode:  original.CurrencyCode,
		Lines:         mirrored,
	}, userID)
	if err != nil {
		return nil, err
	}

	logger.Info("Journal reversed", slog.String("original_journal_id", journalID), slog.String("reversing_journal_id", reversal.JournalID))
	return reversal, nil
}

// UpdateJournal amends the description of a POSTED entry. Reversed entries
// and reversals are part of an audit pair and stay as written.
// Implements portssvc.JournalWriterSvc.
func (s *journalService) UpdateJournal(ctx context.Context, journalID string, req dto.UpdateJournalRequest, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to fetch journal for update", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		}
		return nil, fmt.Errorf("failed to retrieve journal %s: %w", journalID, err)
	}

	if journal.Status != domain.Posted || journal.IsReversal() {
		return nil, fmt.Errorf("%w: journal %s is not an editable posted entry", apperrors.ErrConflict, journalID)
	}

	journal.Description = req.Description
	journal.LastUpdatedAt = time.Now().UTC()
	journal.LastUpdatedBy = userID

	if err := s.journalRepo.UpdateJournal(ctx, *journal); err != nil {
		logger.Error("Failed to update journal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to update journal %s: %w", journalID, err)
	}

	logger.Info("Journal updated", slog.String("journal_id", journalID))
	return journal, nil
}

// Transfer moves funds between two accounts as one balanced posting: the
// source is debited, the destination credited.
// Implements portssvc.FundMovementSvc.
func (s *journalService) Transfer(ctx context.Context, req dto.TransferRequest, userID string) (*domain.JournalEntry, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: transfer amount must be positive", apperrors.ErrValidation)
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, fmt.Errorf("%w: transfer source and destination must differ", apperrors.ErrValidation)
	}

	from, err := s.accountRepo.FindAccountByID(ctx, req.FromAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve source account: %w", err)
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Transfer from %s to %s", req.FromAccountID, req.ToAccountID)
	}

	return s.PostEntry(ctx, portssvc.PostEntryInput{
		JournalDate:   time.Now().UTC(),
		Description:   description,
		ReferenceType: domain.RefTransfer,
		CurrencyCode:  from.CurrencyCode,
		Lines: []portssvc.PostEntryLine{
			{AccountID: req.FromAccountID, Amount: req.Amount, Side: domain.Debit},
			{AccountID: req.ToAccountID, Amount: req.Amount, Side: domain.Credit},
		},
	}, userID)
}

// AddFund credits an account against a source counter-account. When the
// request names no source, the configured external-funds account is used.
// Implements portssvc.FundMovementSvc.
func (s *journalService) AddFund(ctx context.Context, req dto.AddFundRequest, userID string) (*domain.JournalEntry, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: fund amount must be positive", apperrors.ErrValidation)
	}

	target, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve target account: %w", err)
	}

	sourceAccountID := req.SourceAccountID
	if sourceAccountID == "" {
		source, err := s.accountRepo.FindAccountByName(ctx, s.externalFundsAccount)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve external funds account %q: %w", s.externalFundsAccount, err)
		}
		sourceAccountID = source.AccountID
	}
	if sourceAccountID == req.AccountID {
		return nil, fmt.Errorf("%w: fund source and destination must differ", apperrors.ErrValidation)
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Funds added to %s", target.Name)
	}

	return s.PostEntry(ctx, portssvc.PostEntryInput{
		JournalDate:   time.Now().UTC(),
		Description:   description,
		ReferenceType: domain.RefAddFund,
		CurrencyCode:  target.CurrencyCode,
		Lines: []portssvc.PostEntryLine{
			{AccountID: sourceAccountID, Amount: req.Amount, Side: domain.Debit},
			{AccountID: req.AccountID, Amount: req.Amount, Side: domain.Credit},
		},
	}, userID)
}

// GetJournalByID retrieves a journal entry with its lines.
// Implements portssvc.JournalReaderSvc.
func (s *journalService) GetJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find journal by ID", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		}
		return nil, fmt.Errorf("failed to find journal by ID %s: %w", journalID, err)
	}

	lines, err := s.journalRepo.FindLinesByJournalID(ctx, journalID)
	if err != nil {
		logger.Error("Failed to fetch lines for journal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve lines for journal %s: %w", journalID, apperrors.ErrInternal)
	}
	for i := range lines {
		lines[i].JournalDate = journal.JournalDate
		lines[i].JournalDescription = journal.Description
	}
	journal.Lines = lines

	return journal, nil
}

// ListJournals retrieves a paginated list of journals.
// Implements portssvc.JournalReaderSvc.
func (s *journalService) ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	journals, nextToken, err := s.journalRepo.ListJournals(ctx, limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		logger.Error("Failed to list journals from repository", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve journals: %w", err)
	}

	journalResponses := make([]dto.JournalResponse, len(journals))
	for i, journal := range journals {
		journalResponses[i] = dto.ToJournalResponse(&journal)
	}

	return &dto.ListJournalsResponse{
		Journals:  journalResponses,
		NextToken: nextToken,
	}, nil
}

// ListLinesByAccount retrieves an account statement page, oldest first.
// Implements portssvc.LineReaderSvc.
func (s *journalService) ListLinesByAccount(ctx context.Context, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to retrieve account %s: %w", accountID, err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	lines, nextToken, err := s.journalRepo.ListLinesByAccountID(ctx, accountID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list lines by account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to retrieve lines: %w", err)
	}

	lineResponses := make([]dto.LedgerLineResponse, len(lines))
	for i, line := range lines {
		lineResponses[i] = dto.ToLedgerLineResponse(line)
	}

	return &dto.ListLinesResponse{
		Lines:     lineResponses,
		NextToken: nextToken,
	}, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
