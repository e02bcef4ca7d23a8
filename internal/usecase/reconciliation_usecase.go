package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finvola/cardledger/internal/domain"
)

// ReconciliationUseCase cross-checks the cached balances against the
// postings, which are the source of truth.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	journalRepo JournalRepository
	logger      zerolog.Logger
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	journalRepo JournalRepository,
	logger zerolog.Logger,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		logger:      logger,
	}
}

// AccountReconciliation is the result of comparing one account's cached
// balance to the sum of its postings.
type AccountReconciliation struct {
	AccountID       string
	LedgerAccountID string
	CachedBalance   domain.Money
	DerivedBalance  domain.Money
	Difference      decimal.Decimal
	Consistent      bool
	CheckedAt       time.Time
}

// ReconcileAccount recomputes an account's balance from its postings and
// compares it to the cached row.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*AccountReconciliation, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	sum, err := uc.journalRepo.SumPostings(ctx, account.LedgerAccountID)
	if err != nil {
		return nil, err
	}

	derived := domain.NewMoney(sum, account.Currency)
	difference := account.LedgerBalance.Amount.Sub(sum)

	result := &AccountReconciliation{
		AccountID:       account.ID,
		LedgerAccountID: account.LedgerAccountID,
		CachedBalance:   account.LedgerBalance,
		DerivedBalance:  derived,
		Difference:      difference,
		Consistent:      difference.IsZero(),
		CheckedAt:       time.Now().UTC(),
	}

	if !result.Consistent {
		uc.logger.Error().
			Str("account_id", account.ID).
			Str("ledger_account_id", account.LedgerAccountID).
			Str("cached", account.LedgerBalance.Amount.String()).
			Str("derived", sum.String()).
			Msg("cached balance drifted from postings")
	}

	return result, nil
}

// ConsistencyReport is the outcome of the whole-ledger zero-sum check.
type ConsistencyReport struct {
	Consistent bool
	// SumsByCurrency holds the per-currency sum over every posting in the
	// ledger. A consistent ledger sums to zero in each currency.
	SumsByCurrency map[string]decimal.Decimal
	CheckedAt      time.Time
}

// CheckLedgerConsistency verifies the global invariant: across all postings,
// each currency sums to zero.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) (*ConsistencyReport, error) {
	sums, err := uc.journalRepo.SumPostingsByCurrency(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		Consistent:     true,
		SumsByCurrency: sums,
		CheckedAt:      time.Now().UTC(),
	}

	for currency, sum := range sums {
		if !sum.IsZero() {
			report.Consistent = false

			uc.logger.Error().
				Str("currency", currency).
				Str("sum", sum.String()).
				Msg("ledger postings do not sum to zero")
		}
	}

	return report, nil
}
