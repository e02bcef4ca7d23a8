package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
)

// HoldRepository implements usecase.HoldRepository.
type HoldRepository struct {
	pool *pgxpool.Pool
}

// NewHoldRepository creates a new HoldRepository.
func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{pool: pool}
}

// Create persists a hold inside the caller's transaction.
func (r *HoldRepository) Create(ctx context.Context, tx usecase.Transaction, hold *domain.Hold) error {
	_, err := txQuerier(tx).Exec(ctx,
		`INSERT INTO holds (id, account_id, external_ref, amount, currency, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		hold.ID, hold.AccountID, hold.ExternalRef,
		decimalToNumeric(hold.Amount.Amount), hold.Amount.Currency,
		string(hold.Status),
		timeToPgTimestamptz(hold.CreatedAt), timeToPgTimestamptz(hold.UpdatedAt))

	return err
}

const selectHoldSQL = `
	SELECT id, account_id, external_ref, amount, currency, status, created_at, updated_at
	FROM holds
`

// GetByID retrieves a hold by ID.
func (r *HoldRepository) GetByID(ctx context.Context, id string) (*domain.Hold, error) {
	row := r.pool.QueryRow(ctx, selectHoldSQL+" WHERE id = $1", id)

	hold, err := scanHold(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHoldNotFound
		}

		return nil, err
	}

	return hold, nil
}

// GetActiveByExternalRefForUpdate locks and returns the active hold for an
// authorization chain. At most one active hold exists per external
// reference.
func (r *HoldRepository) GetActiveByExternalRefForUpdate(ctx context.Context, tx usecase.Transaction, externalRef string) (*domain.Hold, error) {
	row := txQuerier(tx).QueryRow(ctx,
		selectHoldSQL+" WHERE external_ref = $1 AND status = $2 FOR UPDATE",
		externalRef, string(domain.HoldStatusActive))

	hold, err := scanHold(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHoldNotFound
		}

		return nil, err
	}

	return hold, nil
}

// UpdateAmount resizes an active hold.
func (r *HoldRepository) UpdateAmount(ctx context.Context, tx usecase.Transaction, id string, amount domain.Money, updatedAt time.Time) error {
	tag, err := txQuerier(tx).Exec(ctx,
		`UPDATE holds SET amount = $2, currency = $3, updated_at = $4
		 WHERE id = $1 AND status = $5`,
		id, decimalToNumeric(amount.Amount), amount.Currency,
		timeToPgTimestamptz(updatedAt), string(domain.HoldStatusActive))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrHoldNotActive
	}

	return nil
}

// UpdateStatus transitions a hold out of ACTIVE. Terminal states never
// transition again.
func (r *HoldRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.HoldStatus, updatedAt time.Time) error {
	tag, err := txQuerier(tx).Exec(ctx,
		`UPDATE holds SET status = $2, updated_at = $3
		 WHERE id = $1 AND status = $4`,
		id, string(status), timeToPgTimestamptz(updatedAt), string(domain.HoldStatusActive))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrHoldNotActive
	}

	return nil
}

// ListByAccount lists an account's holds, most recent first.
func (r *HoldRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Hold, error) {
	rows, err := r.pool.Query(ctx,
		selectHoldSQL+" WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holds []*domain.Hold
	for rows.Next() {
		hold, err := scanHold(rows)
		if err != nil {
			return nil, err
		}

		holds = append(holds, hold)
	}

	return holds, rows.Err()
}

func scanHold(row pgx.Row) (*domain.Hold, error) {
	var (
		hold   domain.Hold
		status string
		amount = decimalToNumeric(decimal.Zero)
	)

	err := row.Scan(
		&hold.ID, &hold.AccountID, &hold.ExternalRef,
		&amount, &hold.Amount.Currency, &status,
		&hold.CreatedAt, &hold.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	hold.Status = domain.HoldStatus(status)
	hold.Amount.Amount = numericToDecimal(amount)

	return &hold, nil
}
