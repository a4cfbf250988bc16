package pgsql

import (
	"context"
	"errors"
	"fmt"
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
)

const expenseColumns = `expense_id, name, description, amount, currency_code, status, expense_date,
	reference_type, reference_id,
	requested_by, paid_by, finalized_by, settled_by, rejected_by,
	rejection_remarks, settlement_account_id, journal_id, deleted_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxExpenseRepository struct {
	BaseRepository
}

// newPgxExpenseRepository creates a new repository for expense data.
func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

func scanExpense(row pgx.Row) (models.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID,
		&m.Name,
		&m.Description,
		&m.Amount,
		&m.CurrencyCode,
		&m.Status,
		&m.ExpenseDate,
		&m.ReferenceType,
		&m.ReferenceID,
		&m.RequestedBy,
		&m.PaidBy,
		&m.FinalizedBy,
		&m.SettledBy,
		&m.RejectedBy,
		&m.RejectionRemarks,
		&m.SettlementAccountID,
		&m.JournalID,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func insertExpenseItems(ctx context.Context, tx pgx.Tx, expenseID string, items []domain.ExpenseItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO expense_items (item_id, expense_id, name, description, amount)
		VALUES ($1, $2, $3, $4, $5);
	`
	for _, item := range items {
		mi := mapping.ToModelExpenseItem(expenseID, item)
		batch.Queue(query, mi.ItemID, mi.ExpenseID, mi.Name, mi.Description, mi.Amount)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert items for expense "+expenseID, err)
	}
	return nil
}

// SaveExpense persists a new expense, its items and its staged events within
// one transaction.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense, events []domain.Event) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelExpense(expense)
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err = tx.Exec(ctx, query,
		m.ExpenseID,
		m.Name,
		m.Description,
		m.Amount,
		m.CurrencyCode,
		m.Status,
		m.ExpenseDate,
		m.ReferenceType,
		m.ReferenceID,
		m.RequestedBy,
		m.PaidBy,
		m.FinalizedBy,
		m.SettledBy,
		m.RejectedBy,
		m.RejectionRemarks,
		m.SettlementAccountID,
		m.JournalID,
		m.DeletedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: expense %s", apperrors.ErrDuplicate, m.ExpenseID)
		}
		return apperrors.NewAppError(500, "failed to insert expense "+m.ExpenseID, err)
	}

	if err := insertExpenseItems(ctx, tx, expense.ExpenseID, expense.Items); err != nil {
		return err
	}

	if err := insertOutboxMessages(ctx, tx, events); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateExpense persists lifecycle or draft changes. The item set is replaced
// wholesale, which keeps draft edits simple at the cost of item-level churn.
func (r *PgxExpenseRepository) UpdateExpense(ctx context.Context, expense domain.Expense, events []domain.Event) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelExpense(expense)
	query := `
		UPDATE expenses
		SET name = $2,
		    description = $3,
		    amount = $4,
		    status = $5,
		    expense_date = $6,
		    paid_by = $7,
		    finalized_by = $8,
		    settled_by = $9,
		    rejected_by = $10,
		    rejection_remarks = $11,
		    settlement_account_id = $12,
		    journal_id = $13,
		    deleted_at = $14,
		    last_updated_at = $15,
		    last_updated_by = $16
		WHERE expense_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.ExpenseID,
		m.Name,
		m.Description,
		m.Amount,
		m.Status,
		m.ExpenseDate,
		m.PaidBy,
		m.FinalizedBy,
		m.SettledBy,
		m.RejectedBy,
		m.RejectionRemarks,
		m.SettlementAccountID,
		m.JournalID,
		m.DeletedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update expense "+m.ExpenseID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("expense " + m.ExpenseID + " not found for update")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM expense_items WHERE expense_id = $1;`, expense.ExpenseID); err != nil {
		return apperrors.NewAppError(500, "failed to clear items for expense "+expense.ExpenseID, err)
	}
	if err := insertExpenseItems(ctx, tx, expense.ExpenseID, expense.Items); err != nil {
		return err
	}

	if err := insertOutboxMessages(ctx, tx, events); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FindExpenseByID retrieves an expense with its items. Tombstoned expenses
// are treated as absent.
func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_id = $1 AND deleted_at IS NULL;`

	m, err := scanExpense(r.Pool.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find expense by ID "+expenseID, err)
	}

	itemsQuery := `
		SELECT item_id, expense_id, name, description, amount
		FROM expense_items
		WHERE expense_id = $1
		ORDER BY item_id;
	`
	rows, err := r.Pool.Query(ctx, itemsQuery, expenseID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query items for expense "+expenseID, err)
	}
	defer rows.Close()

	expense := mapping.ToDomainExpense(m)
	for rows.Next() {
		var mi models.ExpenseItem
		if err := rows.Scan(&mi.ItemID, &mi.ExpenseID, &mi.Name, &mi.Description, &mi.Amount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan item row for expense "+expenseID, err)
		}
		expense.Items = append(expense.Items, mapping.ToDomainExpenseItem(mi))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating item rows for expense "+expenseID, err)
	}

	return &expense, nil
}

// ListExpenses retrieves a filtered, paginated list of expenses, newest
// first. Items are not populated on listings.
func (r *PgxExpenseRepository) ListExpenses(ctx context.Context, filter portsrepo.ExpenseListFilter) ([]domain.Expense, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE deleted_at IS NULL`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.ReferenceType != "" {
		args = append(args, string(filter.ReferenceType))
		query += ` AND reference_type = $` + strconv.Itoa(len(args))
	}
	if filter.RequestedBy != "" {
		args = append(args, filter.RequestedBy)
		query += ` AND requested_by = $` + strconv.Itoa(len(args))
	}

	if filter.NextToken != nil && *filter.NextToken != "" {
		fields, decodeErr := pagination.DecodeMultiFieldToken(*filter.NextToken)
		if decodeErr != nil || len(fields) != 2 {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		lastCreatedAt, parseErr := time.Parse(time.RFC3339Nano, fields[0])
		if parseErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", parseErr)
		}
		args = append(args, lastCreatedAt, fields[1])
		query += ` AND (created_at, expense_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY created_at DESC, expense_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query expenses", err)
	}
	defer rows.Close()

	modelExpenses := make([]models.Expense, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanExpense(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan expense row", scanErr)
		}
		modelExpenses = append(modelExpenses, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating expense rows", err)
	}

	var nextTokenVal *string
	results := modelExpenses
	if len(modelExpenses) > limit {
		last := modelExpenses[limit-1]
		newToken := pagination.EncodeMultiFieldToken(last.CreatedAt.Format(time.RFC3339Nano), last.ExpenseID)
		nextTokenVal = &newToken
		results = modelExpenses[:limit]
	}

	expenses := make([]domain.Expense, len(results))
	for i, m := range results {
		expenses[i] = mapping.ToDomainExpense(m)
	}
	return expenses, nextTokenVal, nil
}
