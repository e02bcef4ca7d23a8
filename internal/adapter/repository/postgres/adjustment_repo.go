package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
)

// AdjustmentRepository implements usecase.AdjustmentRepository. Adjustments
// are append-only records linking an account to the journal entry that moved
// its funds.
type AdjustmentRepository struct {
	pool *pgxpool.Pool
}

// NewAdjustmentRepository creates a new AdjustmentRepository.
func NewAdjustmentRepository(pool *pgxpool.Pool) *AdjustmentRepository {
	return &AdjustmentRepository{pool: pool}
}

// Create persists an adjustment inside the caller's transaction.
func (r *AdjustmentRepository) Create(ctx context.Context, tx usecase.Transaction, adjustment *domain.Adjustment) error {
	_, err := txQuerier(tx).Exec(ctx,
		`INSERT INTO adjustments (id, account_id, journal_entry_id, type, amount, currency, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		adjustment.ID, adjustment.AccountID, adjustment.JournalEntryID,
		string(adjustment.Type),
		decimalToNumeric(adjustment.Amount.Amount), adjustment.Amount.Currency,
		timeToPgTimestamptz(adjustment.CreatedAt))

	return err
}

const selectAdjustmentSQL = `
	SELECT id, account_id, journal_entry_id, type, amount, currency, created_at
	FROM adjustments
`

// GetByID retrieves an adjustment by ID.
func (r *AdjustmentRepository) GetByID(ctx context.Context, id string) (*domain.Adjustment, error) {
	row := r.pool.QueryRow(ctx, selectAdjustmentSQL+" WHERE id = $1", id)

	adjustment, err := scanAdjustment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdjustmentNotFound
		}

		return nil, err
	}

	return adjustment, nil
}

// ListByAccount lists an account's adjustments, most recent first.
func (r *AdjustmentRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Adjustment, error) {
	rows, err := r.pool.Query(ctx,
		selectAdjustmentSQL+" WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []*domain.Adjustment
	for rows.Next() {
		adjustment, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}

		adjustments = append(adjustments, adjustment)
	}

	return adjustments, rows.Err()
}

func scanAdjustment(row pgx.Row) (*domain.Adjustment, error) {
	var (
		adjustment     domain.Adjustment
		adjustmentType string
		amount         = decimalToNumeric(decimal.Zero)
	)

	err := row.Scan(
		&adjustment.ID, &adjustment.AccountID, &adjustment.JournalEntryID,
		&adjustmentType, &amount, &adjustment.Amount.Currency, &adjustment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	adjustment.Type = domain.AdjustmentType(adjustmentType)
	adjustment.Amount.Amount = numericToDecimal(amount)

	return &adjustment, nil
}
