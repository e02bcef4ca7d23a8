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

// JournalRepository implements usecase.JournalRepository. The journal tables
// are append-only: postings are never updated or deleted.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// CreateWithPostings persists the entry and all of its postings inside the
// caller's transaction. Postings go through one batch so the round trips
// stay constant regardless of entry size.
func (r *JournalRepository) CreateWithPostings(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	q := txQuerier(tx)

	if _, err := q.Exec(ctx,
		`INSERT INTO journal_entries (id, created_at) VALUES ($1, $2)`,
		entry.ID, timeToPgTimestamptz(entry.CreatedAt)); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, p := range entry.Postings {
		batch.Queue(
			`INSERT INTO postings (id, journal_entry_id, ledger_account_id, amount, currency, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.JournalEntryID, p.LedgerAccountID,
			decimalToNumeric(p.Amount.Amount), p.Amount.Currency,
			timeToPgTimestamptz(p.CreatedAt),
		)
	}

	results := q.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range entry.Postings {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return results.Close()
}

// GetByID retrieves a journal entry with its postings.
func (r *JournalRepository) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	entry := &domain.JournalEntry{}

	err := r.pool.QueryRow(ctx,
		`SELECT id, created_at FROM journal_entries WHERE id = $1`, id).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJournalEntryNotFound
		}

		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, journal_entry_id, ledger_account_id, amount, currency, created_at
		 FROM postings WHERE journal_entry_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p      domain.Posting
			amount = decimalToNumeric(decimal.Zero)
		)

		if err := rows.Scan(&p.ID, &p.JournalEntryID, &p.LedgerAccountID, &amount, &p.Amount.Currency, &p.CreatedAt); err != nil {
			return nil, err
		}

		p.Amount.Amount = numericToDecimal(amount)
		entry.Postings = append(entry.Postings, p)
	}

	return entry, rows.Err()
}

// SumPostings derives a ledger account's balance from its postings.
func (r *JournalRepository) SumPostings(ctx context.Context, ledgerAccountID string) (decimal.Decimal, error) {
	sum := decimalToNumeric(decimal.Zero)

	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM postings WHERE ledger_account_id = $1`,
		ledgerAccountID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

// SumPostingsByCurrency sums every posting grouped by currency. A balanced
// ledger returns zero for each currency.
func (r *JournalRepository) SumPostingsByCurrency(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT currency, COALESCE(SUM(amount), 0) FROM postings GROUP BY currency`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			currency string
			sum      = decimalToNumeric(decimal.Zero)
		)

		if err := rows.Scan(&currency, &sum); err != nil {
			return nil, err
		}

		sums[currency] = numericToDecimal(sum)
	}

	return sums, rows.Err()
}
