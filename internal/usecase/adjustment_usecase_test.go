package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
	"github.com/finvola/cardledger/internal/usecase/mocks"
)

func TestAdjustmentUseCase_DebitCredit(t *testing.T) {
	f := newFixture()
	account := f.seedAccount(t, "acc-1", domain.AccountTypeBusiness, "biz-1", "USD", "100.00")

	result, err := f.adjustments.Debit(context.Background(), account.ID, mustMoney(t, "30", "USD"))
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	if !result.Balance.Equal(mustMoney(t, "70", "USD")) {
		t.Errorf("expected balance 70 USD, got %s", result.Balance)
	}

	if result.Adjustment.Type != domain.AdjustmentTypeWithdraw {
		t.Errorf("expected WITHDRAW adjustment, got %s", result.Adjustment.Type)
	}

	if !result.Adjustment.Amount.Equal(mustMoney(t, "-30", "USD")) {
		t.Errorf("expected adjustment amount -30, got %s", result.Adjustment.Amount)
	}

	// A second debit exceeding the remaining balance leaves no trace.
	entriesBefore := f.journalRepo.EntryCount()

	if _, err := f.adjustments.Debit(context.Background(), account.ID, mustMoney(t, "80", "USD")); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if f.journalRepo.EntryCount() != entriesBefore {
		t.Error("failed debit wrote a journal entry")
	}

	updated, err := f.accounts.GetAccount(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}

	if !updated.LedgerBalance.Equal(mustMoney(t, "70", "USD")) {
		t.Errorf("expected balance unchanged at 70 USD, got %s", updated.LedgerBalance)
	}

	// Credit tops the account back up.
	result, err = f.adjustments.Credit(context.Background(), account.ID, mustMoney(t, "30", "USD"))
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	if !result.Balance.Equal(mustMoney(t, "100", "USD")) {
		t.Errorf("expected balance 100 USD, got %s", result.Balance)
	}
}

func TestAdjustmentUseCase_LedgerStaysBalanced(t *testing.T) {
	f := newFixture()
	account := f.seedAccount(t, "acc-1", domain.AccountTypeBusiness, "biz-1", "USD", "100.00")

	if _, err := f.adjustments.Debit(context.Background(), account.ID, mustMoney(t, "25.50", "USD")); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	if _, err := f.adjustments.Credit(context.Background(), account.ID, mustMoney(t, "10.25", "USD")); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	report, err := f.reconciliation.CheckLedgerConsistency(context.Background())
	if err != nil {
		t.Fatalf("consistency check failed: %v", err)
	}

	if !report.Consistent {
		t.Errorf("ledger out of balance: %v", report.SumsByCurrency)
	}
}

func TestAdjustmentUseCase_AllocationOffsetsAgainstBusiness(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "acc-biz", domain.AccountTypeBusiness, "biz-1", "USD", "200.00")
	allocAccount := f.seedAccount(t, "acc-alloc", domain.AccountTypeAllocation, "biz-1", "USD", "0.00")

	result, err := f.adjustments.Credit(context.Background(), allocAccount.ID, mustMoney(t, "75", "USD"))
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	if !result.Balance.Equal(mustMoney(t, "75", "USD")) {
		t.Errorf("expected allocation balance 75 USD, got %s", result.Balance)
	}

	business, err := f.accounts.GetAccount(context.Background(), "acc-biz")
	if err != nil {
		t.Fatalf("get business account: %v", err)
	}

	if !business.LedgerBalance.Equal(mustMoney(t, "125", "USD")) {
		t.Errorf("expected business balance 125 USD, got %s", business.LedgerBalance)
	}
}

func TestAdjustmentUseCase_AllocationDefundInsufficientBusinessFunds(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "acc-biz", domain.AccountTypeBusiness, "biz-1", "USD", "10.00")
	allocAccount := f.seedAccount(t, "acc-alloc", domain.AccountTypeAllocation, "biz-1", "USD", "0.00")

	// Funding the allocation debits the business account, so the business
	// side's overdraft policy gates it.
	_, err := f.adjustments.Credit(context.Background(), allocAccount.ID, mustMoney(t, "50", "USD"))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestAdjustmentUseCase_Validation(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		wantErr  error
	}{
		{name: "zero amount", amount: "0", currency: "USD", wantErr: domain.ErrInvalidAmount},
		{name: "negative amount", amount: "-5", currency: "USD", wantErr: domain.ErrInvalidAmount},
		{name: "currency mismatch", amount: "5", currency: "EUR", wantErr: domain.ErrCurrencyMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			account := f.seedAccount(t, "acc-1", domain.AccountTypeBusiness, "biz-1", "USD", "100.00")

			_, err := f.adjustments.Debit(context.Background(), account.ID, mustMoney(t, tt.amount, tt.currency))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAdjustmentUseCase_OverdraftPolicyAllowsNegative(t *testing.T) {
	f := newFixture()
	account := f.seedAccount(t, "acc-1", domain.AccountTypeBusiness, "biz-1", "USD", "10.00")

	permissive := usecase.NewAdjustmentUseCase(
		f.txManager, f.accountRepo, f.ledgerAccountRepo, f.journalRepo,
		f.adjustmentRepo, f.outboxRepo, f.auditRepo, f.idGen, f.cache,
		nil, nil, usecase.OverdraftPolicy{string(domain.AccountTypeBusiness): true},
	)

	result, err := permissive.Debit(context.Background(), account.ID, mustMoney(t, "25", "USD"))
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	if !result.Balance.Equal(mustMoney(t, "-15", "USD")) {
		t.Errorf("expected balance -15 USD, got %s", result.Balance)
	}
}

func TestAdjustmentUseCase_ConcurrentDebitsCannotOverdraw(t *testing.T) {
	f := newFixture()
	account := f.seedAccount(t, "acc-1", domain.AccountTypeBusiness, "biz-1", "USD", "100.00")

	// Row-lock emulation: each transaction takes per-account locks in the
	// requested order and releases them on commit or rollback, so the
	// balance check and the write run under the same lock like FOR UPDATE.
	rowLocks := map[string]*sync.Mutex{account.ID: {}}

	var heldByTx sync.Map

	f.txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		tx := &mocks.MockTransaction{}

		release := func(ctx context.Context) error {
			if held, ok := heldByTx.LoadAndDelete(tx); ok {
				for _, id := range held.([]string) {
					rowLocks[id].Unlock()
				}
			}
			return nil
		}
		tx.CommitFunc = release
		tx.RollbackFunc = release

		return tx, nil
	}

	f.accountRepo.GetByIDsForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
		accounts := make([]*domain.Account, 0, len(ids))

		for _, id := range ids {
			rowLocks[id].Lock()

			stored, err := f.accountRepo.GetByID(ctx, id)
			if err != nil {
				rowLocks[id].Unlock()
				return nil, err
			}

			// Locked rows are snapshots, as a row read under FOR UPDATE is.
			snapshot := *stored
			accounts = append(accounts, &snapshot)
		}

		heldByTx.Store(tx, ids)

		return accounts, nil
	}

	const workers = 8

	debit := mustMoney(t, "30", "USD")

	var (
		wg           sync.WaitGroup
		countMu      sync.Mutex
		succeeded    int
		insufficient int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := f.adjustments.Debit(context.Background(), account.ID, debit)

			countMu.Lock()
			defer countMu.Unlock()

			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientFunds):
				insufficient++
			default:
				t.Errorf("unexpected debit error: %v", err)
			}
		}()
	}
	wg.Wait()

	// 100 USD funds exactly three 30 USD debits.
	if succeeded != 3 {
		t.Errorf("expected 3 debits to succeed, got %d", succeeded)
	}

	if insufficient != workers-3 {
		t.Errorf("expected %d insufficient-funds declines, got %d", workers-3, insufficient)
	}

	updated, err := f.accounts.GetAccount(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}

	if !updated.LedgerBalance.Equal(mustMoney(t, "10", "USD")) {
		t.Errorf("expected final balance 10 USD, got %s", updated.LedgerBalance)
	}

	// One seed entry plus one per successful debit.
	if f.journalRepo.EntryCount() != 4 {
		t.Errorf("expected 4 journal entries, got %d", f.journalRepo.EntryCount())
	}
}

func TestAdjustmentUseCase_ListAdjustments(t *testing.T) {
	f := newFixture()
	account := f.seedAccount(t, "acc-1", domain.AccountTypeBusiness, "biz-1", "USD", "100.00")

	if _, err := f.adjustments.Debit(context.Background(), account.ID, mustMoney(t, "10", "USD")); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	if _, err := f.adjustments.Credit(context.Background(), account.ID, mustMoney(t, "5", "USD")); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	adjustments, err := f.adjustments.ListAdjustmentsByAccount(context.Background(), usecase.ListAdjustmentsByAccountInput{AccountID: account.ID})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(adjustments) != 2 {
		t.Errorf("expected 2 adjustments, got %d", len(adjustments))
	}
}
