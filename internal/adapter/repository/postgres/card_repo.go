package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finvola/cardledger/internal/domain"
)

// CardRepository implements usecase.CardRepository. Limits and controls are
// stored as JSONB documents since their shape evolves with the card
// collaborator.
type CardRepository struct {
	pool *pgxpool.Pool
}

// NewCardRepository creates a new CardRepository.
func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{pool: pool}
}

type cardLimitsDoc struct {
	DailyAmount *string `json:"daily_amount,omitempty"`
	DailyCount  *int64  `json:"daily_count,omitempty"`
}

type cardControlsDoc struct {
	BlockedMCCs     []string `json:"blocked_mccs,omitempty"`
	BlockedChannels []string `json:"blocked_channels,omitempty"`
}

// Create persists a card read model row.
func (r *CardRepository) Create(ctx context.Context, card *domain.Card) error {
	limits, err := marshalLimits(card.Limits)
	if err != nil {
		return err
	}

	controls, err := json.Marshal(cardControlsDoc{
		BlockedMCCs:     card.Controls.BlockedMCCs,
		BlockedChannels: card.Controls.BlockedChannels,
	})
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO cards (id, account_id, status, limits, controls, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		card.ID, card.AccountID, string(card.Status), limits, controls,
		timeToPgTimestamptz(card.CreatedAt), timeToPgTimestamptz(card.UpdatedAt))

	return err
}

// GetByID retrieves a card by ID.
func (r *CardRepository) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	var (
		card        domain.Card
		status      string
		limitsRaw   []byte
		controlsRaw []byte
	)

	err := r.pool.QueryRow(ctx,
		`SELECT id, account_id, status, limits, controls, created_at, updated_at
		 FROM cards WHERE id = $1`, id).
		Scan(&card.ID, &card.AccountID, &status, &limitsRaw, &controlsRaw, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}

		return nil, err
	}

	card.Status = domain.CardStatus(status)

	limits, err := unmarshalLimits(limitsRaw)
	if err != nil {
		return nil, err
	}
	card.Limits = limits

	var controls cardControlsDoc
	if len(controlsRaw) > 0 {
		if err := json.Unmarshal(controlsRaw, &controls); err != nil {
			return nil, err
		}
	}
	card.Controls = domain.SpendControls{
		BlockedMCCs:     controls.BlockedMCCs,
		BlockedChannels: controls.BlockedChannels,
	}

	return &card, nil
}

// UpdateStatus transitions the card's issuance state.
func (r *CardRepository) UpdateStatus(ctx context.Context, id string, status domain.CardStatus, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cards SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrCardNotFound
	}

	return nil
}

func marshalLimits(limits domain.SpendLimits) ([]byte, error) {
	doc := cardLimitsDoc{DailyCount: limits.DailyCount}
	if limits.DailyAmount != nil {
		s := limits.DailyAmount.String()
		doc.DailyAmount = &s
	}

	return json.Marshal(doc)
}

func unmarshalLimits(raw []byte) (domain.SpendLimits, error) {
	var limits domain.SpendLimits

	if len(raw) == 0 {
		return limits, nil
	}

	var doc cardLimitsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return limits, err
	}

	limits.DailyCount = doc.DailyCount

	if doc.DailyAmount != nil {
		d, err := decimal.NewFromString(*doc.DailyAmount)
		if err != nil {
			return limits, err
		}

		limits.DailyAmount = &d
	}

	return limits, nil
}
