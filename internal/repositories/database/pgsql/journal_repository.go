package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	portsrepo "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/repositories"
	"github.com/samiti-tech/nonprofit_fund_app/internal/models"
	"github.com/samiti-tech/nonprofit_fund_app/internal/utils/mapping"
	"github.com/samiti-tech/nonprofit_fund_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const journalColumns = `journal_id, journal_date, description, reference_type, reference_id,
	currency_code, status, amount, original_journal_id, reversing_journal_id,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxJournalRepository creates a new repository for journal and ledger line data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// SaveJournal persists the entry, its lines, the balance deltas and the
// staged events as one transaction. Reversal entries additionally mark the
// original entry REVERSED before the commit, so the reversal pair can never
// be half-applied.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, entry domain.JournalEntry, lines []domain.LedgerLine, balanceChanges map[string]decimal.Decimal, events []domain.Event) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := entry.CreatedAt
	userID := entry.CreatedBy

	// 1. Insert the journal entry. The partial unique index on
	// (reference_type, reference_id) over POSTED entries turns a retried
	// donation or expense posting into ErrDuplicate here instead of a
	// double-count; reversing the posting frees the slot.
	m := mapping.ToModelJournalEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, entryQuery,
		m.JournalID,
		m.JournalDate,
		m.Description,
		m.ReferenceType,
		m.ReferenceID,
		m.CurrencyCode,
		m.Status,
		m.Amount,
		m.OriginalJournalID,
		m.ReversingJournalID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			refID := ""
			if m.ReferenceID != nil {
				refID = *m.ReferenceID
			}
			return fmt.Errorf("%w: a posting for %s %s already exists", apperrors.ErrDuplicate, m.ReferenceType, refID)
		}
		return apperrors.NewAppError(500, "failed to insert journal "+m.JournalID, err)
	}

	// 2. Lock affected accounts in a stable order.
	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	sort.Strings(accountIDs)

	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to lock accounts for update", err)
	}

	// 3. Re-check the posting guards against the locked rows. The service
	// already checked against an unlocked read; this closes the race with
	// concurrent postings and closes.
	if err := recheckPostingGuards(lockedAccounts, balanceChanges); err != nil {
		return err
	}

	// 4. Apply the balance deltas.
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances", err)
	}

	// 5. Insert lines with running balances computed from the locked
	// pre-posting balances.
	currentRunningBalances := make(map[string]decimal.Decimal, len(lockedAccounts))
	for accID, lockedAcc := range lockedAccounts {
		currentRunningBalances[accID] = lockedAcc.Balance
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].LineID < lines[j].LineID
	})

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO ledger_lines (line_id, journal_id, account_id, amount, side, currency_code, notes, running_balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for _, line := range lines {
		newRunningBalance := currentRunningBalances[line.AccountID].Add(line.SignedAmount())
		currentRunningBalances[line.AccountID] = newRunningBalance

		ml := mapping.ToModelLedgerLine(line)
		ml.RunningBalance = newRunningBalance

		batch.Queue(lineQuery,
			ml.LineID,
			ml.JournalID,
			ml.AccountID,
			ml.Amount,
			ml.Side,
			ml.CurrencyCode,
			ml.Notes,
			ml.RunningBalance,
			now,
			userID,
			now,
			userID,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute line batch for journal "+m.JournalID, err)
	}

	// 6. For reversals, mark the original REVERSED in the same transaction.
	// The status guard catches a concurrent reversal of the same entry.
	if entry.OriginalJournalID != nil {
		markQuery := `
			UPDATE journal_entries
			SET status = $2, reversing_journal_id = $3, last_updated_at = $4, last_updated_by = $5
			WHERE journal_id = $1 AND status = $6;
		`
		cmdTag, err := tx.Exec(ctx, markQuery,
			*entry.OriginalJournalID,
			models.Reversed,
			m.JournalID,
			now,
			userID,
			models.Posted,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to mark journal "+*entry.OriginalJournalID+" reversed", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: journal %s", apperrors.ErrAlreadyReversed, *entry.OriginalJournalID)
		}
	}

	// 7. Stage the entry's events in the outbox.
	if err := insertOutboxMessages(ctx, tx, events); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// recheckPostingGuards re-validates the locked accounts before the balance
// deltas are applied: every account must still be ACTIVE, and an asset
// account must not drop below zero. A close or posting committed between the
// service's unlocked read and the row locks is caught here.
func recheckPostingGuards(lockedAccounts map[string]domain.Account, balanceChanges map[string]decimal.Decimal) error {
	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	sort.Strings(accountIDs)

	for _, accID := range accountIDs {
		acc, found := lockedAccounts[accID]
		if !found {
			return apperrors.NewNotFoundError(fmt.Sprintf("account %s", accID))
		}
		if !acc.IsActive() {
			return fmt.Errorf("%w: account %s", apperrors.ErrAccountNotActive, accID)
		}
		newBalance := acc.Balance.Add(balanceChanges[accID])
		if acc.AccountType == domain.Asset && newBalance.IsNegative() {
			return fmt.Errorf("%w: account %s would drop to %s",
				apperrors.ErrInsufficientFunds, accID, newBalance.String())
		}
	}
	return nil
}

func scanJournalEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.JournalID,
		&m.JournalDate,
		&m.Description,
		&m.ReferenceType,
		&m.ReferenceID,
		&m.CurrencyCode,
		&m.Status,
		&m.Amount,
		&m.OriginalJournalID,
		&m.ReversingJournalID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindJournalByID retrieves a journal entry by its ID.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE journal_id = $1;`

	m, err := scanJournalEntry(r.Pool.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal by ID "+journalID, err)
	}

	entry := mapping.ToDomainJournalEntry(m)
	return &entry, nil
}

// UpdateJournal updates non-monetary fields of an entry.
func (r *PgxJournalRepository) UpdateJournal(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	query := `
		UPDATE journal_entries
		SET journal_date = $2,
		    description = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE journal_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.JournalID,
		m.JournalDate,
		m.Description,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update journal "+m.JournalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("journal " + m.JournalID + " not found for update")
	}
	return nil
}

// ListJournals retrieves a paginated list of journal entries, newest first.
// Reversal pairs (reversed entries and their compensating entries) are
// excluded unless requested.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + journalColumns + ` FROM journal_entries`
	filterClause := ``
	if !includeReversals {
		filterClause = `WHERE status != 'REVERSED' AND original_journal_id IS NULL`
	}
	orderByClause := `ORDER BY journal_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `(journal_date, created_at) < ($1, $2)`
		if filterClause == "" {
			cursorClause = "WHERE " + cursorClause
		} else {
			cursorClause = filterClause + " AND " + cursorClause
		}
		args = append(args, lastDate, lastCreatedAt)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $1;"
		rows, err = r.Pool.Query(ctx, query, fetchLimit)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journals", err)
	}
	defer rows.Close()

	modelEntries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanJournalEntry(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal row", scanErr)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal rows", err)
	}

	var nextTokenVal *string
	results := modelEntries
	if len(modelEntries) > limit {
		last := modelEntries[limit-1]
		newToken := pagination.EncodeToken(last.JournalDate, last.CreatedAt)
		nextTokenVal = &newToken
		results = modelEntries[:limit]
	}

	entries := make([]domain.JournalEntry, len(results))
	for i, m := range results {
		entries[i] = mapping.ToDomainJournalEntry(m)
	}
	return entries, nextTokenVal, nil
}

// FindLinesByJournalID retrieves all lines of a single journal entry.
func (r *PgxJournalRepository) FindLinesByJournalID(ctx context.Context, journalID string) ([]domain.LedgerLine, error) {
	query := `
		SELECT line_id, journal_id, account_id, amount, side, currency_code, notes, running_balance,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM ledger_lines
		WHERE journal_id = $1
		ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, query, journalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for journal "+journalID, err)
	}
	defer rows.Close()

	lines := []models.LedgerLine{}
	for rows.Next() {
		var l models.LedgerLine
		if err := rows.Scan(
			&l.LineID,
			&l.JournalID,
			&l.AccountID,
			&l.Amount,
			&l.Side,
			&l.CurrencyCode,
			&l.Notes,
			&l.RunningBalance,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for journal "+journalID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for journal "+journalID, err)
	}

	return mapping.ToDomainLedgerLineSlice(lines), nil
}

// FindLinesByAccountID retrieves every committed line addressed to an
// account, in commit order. Used to fold the authoritative balance, so it
// must not filter or paginate.
func (r *PgxJournalRepository) FindLinesByAccountID(ctx context.Context, accountID string) ([]domain.LedgerLine, error) {
	query := `
		SELECT line_id, journal_id, account_id, amount, side, currency_code, notes, running_balance,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM ledger_lines
		WHERE account_id = $1
		ORDER BY created_at, line_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for account "+accountID, err)
	}
	defer rows.Close()

	lines := []models.LedgerLine{}
	for rows.Next() {
		var l models.LedgerLine
		if err := rows.Scan(
			&l.LineID,
			&l.JournalID,
			&l.AccountID,
			&l.Amount,
			&l.Side,
			&l.CurrencyCode,
			&l.Notes,
			&l.RunningBalance,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for account "+accountID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for account "+accountID, err)
	}

	return mapping.ToDomainLedgerLineSlice(lines), nil
}

// ListLinesByAccountID retrieves a paginated account statement, oldest first,
// with the entry date and description joined in from the journal.
func (r *PgxJournalRepository) ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerLine, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT l.line_id, l.journal_id, l.account_id, l.amount, l.side, l.currency_code, l.notes, l.running_balance,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by, j.journal_date, j.description
		FROM ledger_lines l
		JOIN journal_entries j ON l.journal_id = j.journal_id
		WHERE l.account_id = $1
	`
	orderByClause := `ORDER BY l.created_at, l.line_id`

	var rows pgx.Rows
	var err error
	args := []interface{}{accountID}

	if nextToken != nil && *nextToken != "" {
		fields, decodeErr := pagination.DecodeMultiFieldToken(*nextToken)
		if decodeErr != nil || len(fields) != 2 {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		lastCreatedAt, parseErr := time.Parse(time.RFC3339Nano, fields[0])
		if parseErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", parseErr)
		}
		lastLineID := fields[1]

		cursorClause := `AND (l.created_at, l.line_id) > ($2, $3)`
		args = append(args, lastCreatedAt, lastLineID)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $2;"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query lines for account "+accountID, err)
	}
	defer rows.Close()

	modelLines := make([]models.LedgerLine, 0, fetchLimit)
	for rows.Next() {
		var l models.LedgerLine
		if err := rows.Scan(
			&l.LineID,
			&l.JournalID,
			&l.AccountID,
			&l.Amount,
			&l.Side,
			&l.CurrencyCode,
			&l.Notes,
			&l.RunningBalance,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
			&l.JournalDate,
			&l.JournalDescription,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan statement row for account "+accountID, err)
		}
		modelLines = append(modelLines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating statement rows for account "+accountID, err)
	}

	var nextTokenVal *string
	results := modelLines
	if len(modelLines) > limit {
		last := modelLines[limit-1]
		newToken := pagination.EncodeMultiFieldToken(last.CreatedAt.Format(time.RFC3339Nano), last.LineID)
		nextTokenVal = &newToken
		results = modelLines[:limit]
	}

	return mapping.ToDomainLedgerLineSlice(results), nextTokenVal, nil
}
