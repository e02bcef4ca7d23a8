package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
)

// LedgerAccountRepository implements usecase.LedgerAccountRepository.
type LedgerAccountRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerAccountRepository creates a new LedgerAccountRepository.
func NewLedgerAccountRepository(pool *pgxpool.Pool) *LedgerAccountRepository {
	return &LedgerAccountRepository{pool: pool}
}

const insertLedgerAccountSQL = `
	INSERT INTO ledger_accounts (id, type, currency, created_at)
	VALUES ($1, $2, $3, $4)
`

// Create creates a new ledger account.
func (r *LedgerAccountRepository) Create(ctx context.Context, account *domain.LedgerAccount) error {
	_, err := r.pool.Exec(ctx, insertLedgerAccountSQL,
		account.ID, string(account.Type), account.Currency, timeToPgTimestamptz(account.CreatedAt))

	return err
}

// CreateTx creates a new ledger account inside a transaction.
func (r *LedgerAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.LedgerAccount) error {
	_, err := txQuerier(tx).Exec(ctx, insertLedgerAccountSQL,
		account.ID, string(account.Type), account.Currency, timeToPgTimestamptz(account.CreatedAt))

	return err
}

const selectLedgerAccountSQL = `
	SELECT id, type, currency, created_at
	FROM ledger_accounts
`

// GetByID retrieves a ledger account by ID.
func (r *LedgerAccountRepository) GetByID(ctx context.Context, id string) (*domain.LedgerAccount, error) {
	row := r.pool.QueryRow(ctx, selectLedgerAccountSQL+" WHERE id = $1", id)

	account, err := scanLedgerAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnknownLedgerAccount
		}

		return nil, err
	}

	return account, nil
}

// GetByIDs retrieves multiple ledger accounts by IDs.
func (r *LedgerAccountRepository) GetByIDs(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.LedgerAccount, error) {
	rows, err := txQuerier(tx).Query(ctx, selectLedgerAccountSQL+" WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.LedgerAccount
	for rows.Next() {
		account, err := scanLedgerAccount(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// GetOrCreate resolves the singleton ledger account for a (type, currency)
// pair. The partial unique index on (type, currency) makes concurrent
// creates collapse into one row; ON CONFLICT DO NOTHING plus a re-read keeps
// the operation race-free.
func (r *LedgerAccountRepository) GetOrCreate(ctx context.Context, tx usecase.Transaction, id string, accountType domain.LedgerAccountType, currency string) (*domain.LedgerAccount, error) {
	q := txQuerier(tx)

	row := q.QueryRow(ctx, selectLedgerAccountSQL+" WHERE type = $1 AND currency = $2 ORDER BY created_at LIMIT 1",
		string(accountType), currency)

	account, err := scanLedgerAccount(row)
	if err == nil {
		return account, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if _, err := q.Exec(ctx, insertLedgerAccountSQL+" ON CONFLICT DO NOTHING",
		id, string(accountType), currency, timeToPgTimestamptz(nowUTC())); err != nil {
		return nil, err
	}

	row = q.QueryRow(ctx, selectLedgerAccountSQL+" WHERE type = $1 AND currency = $2 ORDER BY created_at LIMIT 1",
		string(accountType), currency)

	return scanLedgerAccount(row)
}

func scanLedgerAccount(row pgx.Row) (*domain.LedgerAccount, error) {
	var (
		account     domain.LedgerAccount
		accountType string
	)

	if err := row.Scan(&account.ID, &accountType, &account.Currency, &account.CreatedAt); err != nil {
		return nil, err
	}

	account.Type = domain.LedgerAccountType(accountType)

	return &account, nil
}
