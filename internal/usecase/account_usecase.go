package usecase

import (
	"context"
	"time"

	"github.com/finvola/cardledger/internal/domain"
)

// AccountUseCase serves account lifecycle and reads. Balance mutation lives
// with the adjustment and network usecases; this one only creates and
// queries.
type AccountUseCase struct {
	txManager         TransactionManager
	accountRepo       AccountRepository
	ledgerAccountRepo LedgerAccountRepository
	holdRepo          HoldRepository
	idGen             IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	ledgerAccountRepo LedgerAccountRepository,
	holdRepo HoldRepository,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:         txManager,
		accountRepo:       accountRepo,
		ledgerAccountRepo: ledgerAccountRepo,
		holdRepo:          holdRepo,
		idGen:             idGen,
	}
}

// CreateBusinessAccountInput represents input for onboarding a business.
type CreateBusinessAccountInput struct {
	BusinessID string
	OwnerID    string
	Currency   string
}

// CreateBusinessAccount creates the top-level account for a business along
// with its backing ledger account. Every business has exactly one.
func (uc *AccountUseCase) CreateBusinessAccount(ctx context.Context, input CreateBusinessAccountInput) (*domain.Account, error) {
	now := time.Now().UTC()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	ledgerAccount := &domain.LedgerAccount{
		ID:        uc.idGen.Generate(),
		Type:      domain.LedgerAccountTypeBusiness,
		Currency:  input.Currency,
		CreatedAt: now,
	}
	if err := uc.ledgerAccountRepo.CreateTx(txCtx, tx, ledgerAccount); err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:              uc.idGen.Generate(),
		BusinessID:      input.BusinessID,
		LedgerAccountID: ledgerAccount.ID,
		OwnerID:         input.OwnerID,
		Type:            domain.AccountTypeBusiness,
		Currency:        input.Currency,
		LedgerBalance:   domain.ZeroMoney(input.Currency),
		HoldTotal:       domain.ZeroMoney(input.Currency),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.accountRepo.CreateTx(txCtx, tx, account); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}

	if limit > 100 {
		limit = 100
	}

	return uc.accountRepo.List(ctx, limit, offset)
}

// ListHolds lists an account's holds with pagination.
func (uc *AccountUseCase) ListHolds(ctx context.Context, accountID string, limit, offset int) ([]*domain.Hold, error) {
	if limit <= 0 {
		limit = 20
	}

	if limit > 100 {
		limit = 100
	}

	return uc.holdRepo.ListByAccount(ctx, accountID, limit, offset)
}
