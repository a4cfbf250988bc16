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

const donationColumns = `donation_id, donation_type, amount, currency_code, status,
	donor_id, donor_name, donor_email, donor_number,
	period_start, period_end, for_event_id,
	paid_to_account_id, payment_method, upi_type, paid_date, confirmed_by, journal_id,
	remarks, failure_detail, cancellation_reason, deleted_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxDonationRepository struct {
	BaseRepository
}

// newPgxDonationRepository creates a new repository for donation data.
func newPgxDonationRepository(pool *pgxpool.Pool) portsrepo.DonationRepositoryFacade {
	return &PgxDonationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.DonationRepositoryFacade = (*PgxDonationRepository)(nil)

func scanDonation(row pgx.Row) (models.Donation, error) {
	var m models.Donation
	err := row.Scan(
		&m.DonationID,
		&m.DonationType,
		&m.Amount,
		&m.CurrencyCode,
		&m.Status,
		&m.DonorID,
		&m.DonorName,
		&m.DonorEmail,
		&m.DonorNumber,
		&m.PeriodStart,
		&m.PeriodEnd,
		&m.ForEventID,
		&m.PaidToAccountID,
		&m.PaymentMethod,
		&m.UPIType,
		&m.PaidDate,
		&m.ConfirmedBy,
		&m.JournalID,
		&m.Remarks,
		&m.FailureDetail,
		&m.CancellationReason,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveDonation persists a new donation and stages its events in the outbox
// within one transaction.
func (r *PgxDonationRepository) SaveDonation(ctx context.Context, donation domain.Donation, events []domain.Event) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelDonation(donation)
	query := `
		INSERT INTO donations (` + donationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26);
	`
	_, err = tx.Exec(ctx, query,
		m.DonationID,
		m.DonationType,
		m.Amount,
		m.CurrencyCode,
		m.Status,
		m.DonorID,
		m.DonorName,
		m.DonorEmail,
		m.DonorNumber,
		m.PeriodStart,
		m.PeriodEnd,
		m.ForEventID,
		m.PaidToAccountID,
		m.PaymentMethod,
		m.UPIType,
		m.PaidDate,
		m.ConfirmedBy,
		m.JournalID,
		m.Remarks,
		m.FailureDetail,
		m.CancellationReason,
		m.DeletedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: donation %s", apperrors.ErrDuplicate, m.DonationID)
		}
		return apperrors.NewAppError(500, "failed to insert donation "+m.DonationID, err)
	}

	if err := insertOutboxMessages(ctx, tx, events); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateDonation persists lifecycle changes to a donation and stages any
// events in the outbox within one transaction.
func (r *PgxDonationRepository) UpdateDonation(ctx context.Context, donation domain.Donation, events []domain.Event) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelDonation(donation)
	query := `
		UPDATE donations
		SET amount = $2,
		    status = $3,
		    period_start = $4,
		    period_end = $5,
		    for_event_id = $6,
		    paid_to_account_id = $7,
		    payment_method = $8,
		    upi_type = $9,
		    paid_date = $10,
		    confirmed_by = $11,
		    journal_id = $12,
		    remarks = $13,
		    failure_detail = $14,
		    cancellation_reason = $15,
		    deleted_at = $16,
		    last_updated_at = $17,
		    last_updated_by = $18
		WHERE donation_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.DonationID,
		m.Amount,
		m.Status,
		m.PeriodStart,
		m.PeriodEnd,
		m.ForEventID,
		m.PaidToAccountID,
		m.PaymentMethod,
		m.UPIType,
		m.PaidDate,
		m.ConfirmedBy,
		m.JournalID,
		m.Remarks,
		m.FailureDetail,
		m.CancellationReason,
		m.DeletedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update donation "+m.DonationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("donation " + m.DonationID + " not found for update")
	}

	if err := insertOutboxMessages(ctx, tx, events); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FindDonationByID retrieves a donation by its ID. Tombstoned donations are
// treated as absent.
func (r *PgxDonationRepository) FindDonationByID(ctx context.Context, donationID string) (*domain.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE donation_id = $1 AND deleted_at IS NULL;`

	m, err := scanDonation(r.Pool.QueryRow(ctx, query, donationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find donation by ID "+donationID, err)
	}

	donation := mapping.ToDomainDonation(m)
	return &donation, nil
}

// ListDonations retrieves a filtered, paginated list of donations, newest
// first.
func (r *PgxDonationRepository) ListDonations(ctx context.Context, filter portsrepo.DonationListFilter) ([]domain.Donation, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + donationColumns + ` FROM donations WHERE deleted_at IS NULL`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.DonationType != "" {
		args = append(args, string(filter.DonationType))
		query += ` AND donation_type = $` + strconv.Itoa(len(args))
	}
	if filter.DonorID != "" {
		args = append(args, filter.DonorID)
		query += ` AND donor_id = $` + strconv.Itoa(len(args))
	}

	// Cursor on (created_at, donation_id) descending.
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
		query += ` AND (created_at, donation_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY created_at DESC, donation_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query donations", err)
	}
	defer rows.Close()

	modelDonations := make([]models.Donation, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanDonation(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan donation row", scanErr)
		}
		modelDonations = append(modelDonations, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating donation rows", err)
	}

	var nextTokenVal *string
	results := modelDonations
	if len(modelDonations) > limit {
		last := modelDonations[limit-1]
		newToken := pagination.EncodeMultiFieldToken(last.CreatedAt.Format(time.RFC3339Nano), last.DonationID)
		nextTokenVal = &newToken
		results = modelDonations[:limit]
	}

	donations := make([]domain.Donation, len(results))
	for i, m := range results {
		donations[i] = mapping.ToDomainDonation(m)
	}
	return donations, nextTokenVal, nil
}
