package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const insertAccountSQL = `
	INSERT INTO accounts (
		id, business_id, allocation_id, ledger_account_id, owner_id, type,
		currency, ledger_balance, hold_total, version, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, insertAccountSQL, accountInsertArgs(account)...)
	return err
}

// CreateTx creates a new account inside a transaction.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	_, err := txQuerier(tx).Exec(ctx, insertAccountSQL, accountInsertArgs(account)...)
	return err
}

func accountInsertArgs(account *domain.Account) []any {
	return []any{
		account.ID, account.BusinessID, account.AllocationID,
		account.LedgerAccountID, account.OwnerID, string(account.Type),
		account.Currency,
		decimalToNumeric(account.LedgerBalance.Amount),
		decimalToNumeric(account.HoldTotal.Amount),
		account.Version,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	}
}

const selectAccountSQL = `
	SELECT id, business_id, allocation_id, ledger_account_id, owner_id, type,
	       currency, ledger_balance, hold_total, version, created_at, updated_at
	FROM accounts
`

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, selectAccountSQL+" WHERE id = $1", id)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	row := txQuerier(tx).QueryRow(ctx, selectAccountSQL+" WHERE id = $1 FOR UPDATE", id)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

// GetByIDsForUpdate retrieves multiple accounts with FOR UPDATE locks.
// Callers pass IDs pre-sorted so every transaction acquires locks in the
// same order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	rows, err := txQuerier(tx).Query(ctx,
		selectAccountSQL+" WHERE id = ANY($1) ORDER BY id FOR UPDATE", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// GetBusinessAccount retrieves the top-level account of a business.
func (r *AccountRepository) GetBusinessAccount(ctx context.Context, businessID string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		selectAccountSQL+" WHERE business_id = $1 AND type = $2", businessID, string(domain.AccountTypeBusiness))

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

// GetByLedgerAccountIDsForUpdate locks the accounts wrapping the given
// ledger accounts. Ledger accounts with no account row (clearing buckets)
// simply do not appear in the result.
func (r *AccountRepository) GetByLedgerAccountIDsForUpdate(ctx context.Context, tx usecase.Transaction, ledgerAccountIDs []string) ([]*domain.Account, error) {
	rows, err := txQuerier(tx).Query(ctx,
		selectAccountSQL+" WHERE ledger_account_id = ANY($1) ORDER BY id FOR UPDATE", ledgerAccountIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// UpdateBalances writes the cached posted balance and hold total together.
func (r *AccountRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, id string, ledgerBalance, holdTotal domain.Money, updatedAt time.Time) error {
	_, err := txQuerier(tx).Exec(ctx,
		`UPDATE accounts
		 SET ledger_balance = $2, hold_total = $3, version = version + 1, updated_at = $4
		 WHERE id = $1`,
		id, decimalToNumeric(ledgerBalance.Amount), decimalToNumeric(holdTotal.Amount),
		timeToPgTimestamptz(updatedAt))

	return err
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		selectAccountSQL+" ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account       domain.Account
		accountType   string
		ledgerBalance = decimalToNumeric(domain.ZeroMoney("").Amount)
		holdTotal     = decimalToNumeric(domain.ZeroMoney("").Amount)
	)

	err := row.Scan(
		&account.ID, &account.BusinessID, &account.AllocationID,
		&account.LedgerAccountID, &account.OwnerID, &accountType,
		&account.Currency, &ledgerBalance, &holdTotal, &account.Version,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Type = domain.AccountType(accountType)
	account.LedgerBalance = domain.NewMoney(numericToDecimal(ledgerBalance), account.Currency)
	account.HoldTotal = domain.NewMoney(numericToDecimal(holdTotal), account.Currency)

	return &account, nil
}

func scanAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}
