package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
)

// NetworkMessageRepository implements usecase.NetworkMessageRepository.
// Messages are append-only; the unique index on (external_ref, type) backs
// the idempotency guarantee at the storage level.
type NetworkMessageRepository struct {
	pool *pgxpool.Pool
}

// NewNetworkMessageRepository creates a new NetworkMessageRepository.
func NewNetworkMessageRepository(pool *pgxpool.Pool) *NetworkMessageRepository {
	return &NetworkMessageRepository{pool: pool}
}

const insertNetworkMessageSQL = `
	INSERT INTO network_messages (
		id, type, external_ref, card_id, account_id, amount, currency,
		mcc, channel, decline_reason, hold_id, adjustment_id, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

// Create persists a network message.
func (r *NetworkMessageRepository) Create(ctx context.Context, message *domain.NetworkMessage) error {
	_, err := r.pool.Exec(ctx, insertNetworkMessageSQL, networkMessageArgs(message)...)
	return mapInsertError(err)
}

// CreateTx persists a network message inside the caller's transaction.
func (r *NetworkMessageRepository) CreateTx(ctx context.Context, tx usecase.Transaction, message *domain.NetworkMessage) error {
	_, err := txQuerier(tx).Exec(ctx, insertNetworkMessageSQL, networkMessageArgs(message)...)
	return mapInsertError(err)
}

// mapInsertError surfaces the (external_ref, type) uniqueness as a domain
// error so a racing duplicate delivery can be answered from the recorded
// message instead of a raw constraint violation.
func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return domain.ErrDuplicateNetworkMessage
	}

	return err
}

func networkMessageArgs(message *domain.NetworkMessage) []any {
	var declineReason *string
	if message.DeclineReason != nil {
		s := string(*message.DeclineReason)
		declineReason = &s
	}

	return []any{
		message.ID, string(message.Type), message.ExternalRef,
		message.CardID, message.AccountID,
		decimalToNumeric(message.Amount.Amount), message.Amount.Currency,
		message.MCC, message.Channel, declineReason,
		message.HoldID, message.AdjustmentID,
		timeToPgTimestamptz(message.CreatedAt),
	}
}

const selectNetworkMessageSQL = `
	SELECT id, type, external_ref, card_id, account_id, amount, currency,
	       mcc, channel, decline_reason, hold_id, adjustment_id, created_at
	FROM network_messages
`

// GetLatestByExternalRefAndType returns the most recent message of one type
// in an authorization chain.
func (r *NetworkMessageRepository) GetLatestByExternalRefAndType(ctx context.Context, externalRef string, messageType domain.NetworkMessageType) (*domain.NetworkMessage, error) {
	row := r.pool.QueryRow(ctx,
		selectNetworkMessageSQL+" WHERE external_ref = $1 AND type = $2 ORDER BY created_at DESC LIMIT 1",
		externalRef, string(messageType))

	message, err := scanNetworkMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNetworkMessageNotFound
		}

		return nil, err
	}

	return message, nil
}

// ListByExternalRef returns the full chain for an authorization, most recent
// first.
func (r *NetworkMessageRepository) ListByExternalRef(ctx context.Context, externalRef string) ([]*domain.NetworkMessage, error) {
	rows, err := r.pool.Query(ctx,
		selectNetworkMessageSQL+" WHERE external_ref = $1 ORDER BY created_at DESC", externalRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.NetworkMessage
	for rows.Next() {
		message, err := scanNetworkMessage(rows)
		if err != nil {
			return nil, err
		}

		messages = append(messages, message)
	}

	return messages, rows.Err()
}

// SumApprovedAmountSince sums a card's approved authorization amounts inside
// the rolling limit window.
func (r *NetworkMessageRepository) SumApprovedAmountSince(ctx context.Context, cardID string, since time.Time) (decimal.Decimal, error) {
	sum := decimalToNumeric(decimal.Zero)

	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM network_messages
		 WHERE card_id = $1 AND type = $2 AND decline_reason IS NULL AND created_at > $3`,
		cardID, string(domain.NetworkMessageTypeAuthRequest), timeToPgTimestamptz(since)).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

// CountApprovedSince counts a card's approved authorizations inside the
// rolling limit window.
func (r *NetworkMessageRepository) CountApprovedSince(ctx context.Context, cardID string, since time.Time) (int64, error) {
	var count int64

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM network_messages
		 WHERE card_id = $1 AND type = $2 AND decline_reason IS NULL AND created_at > $3`,
		cardID, string(domain.NetworkMessageTypeAuthRequest), timeToPgTimestamptz(since)).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func scanNetworkMessage(row pgx.Row) (*domain.NetworkMessage, error) {
	var (
		message       domain.NetworkMessage
		messageType   string
		declineReason *string
		amount        = decimalToNumeric(decimal.Zero)
	)

	err := row.Scan(
		&message.ID, &messageType, &message.ExternalRef,
		&message.CardID, &message.AccountID,
		&amount, &message.Amount.Currency,
		&message.MCC, &message.Channel, &declineReason,
		&message.HoldID, &message.AdjustmentID, &message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	message.Type = domain.NetworkMessageType(messageType)
	message.Amount.Amount = numericToDecimal(amount)

	if declineReason != nil {
		reason := domain.DeclineReason(*declineReason)
		message.DeclineReason = &reason
	}

	return &message, nil
}
