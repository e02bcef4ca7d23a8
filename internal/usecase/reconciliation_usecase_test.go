package usecase_test

import (
	"context"
	"testing"

	"github.com/finvola/cardledger/internal/domain"
)

func TestReconciliationUseCase_ReconcileAccount(t *testing.T) {
	f := newFixture()
	account := f.seedAccount(t, "acc-1", domain.AccountTypeBusiness, "biz-1", "USD", "100.00")

	result, err := f.reconciliation.ReconcileAccount(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	if !result.Consistent {
		t.Errorf("expected consistent account, difference %s", result.Difference)
	}

	if !result.DerivedBalance.Equal(mustMoney(t, "100", "USD")) {
		t.Errorf("expected derived balance 100 USD, got %s", result.DerivedBalance)
	}
}

func TestReconciliationUseCase_DetectsDrift(t *testing.T) {
	f := newFixture()
	account := f.seedAccount(t, "acc-1", domain.AccountTypeBusiness, "biz-1", "USD", "100.00")

	// Corrupt the cached balance without touching the postings.
	account.LedgerBalance = mustMoney(t, "90", "USD")

	result, err := f.reconciliation.ReconcileAccount(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	if result.Consistent {
		t.Error("drifted balance reported as consistent")
	}

	if !result.Difference.Equal(decimalFromString(t, "-10")) {
		t.Errorf("expected difference -10, got %s", result.Difference)
	}
}

func TestReconciliationUseCase_StaysConsistentThroughOperations(t *testing.T) {
	f := newFixture()
	account := f.seedAccount(t, "acc-1", domain.AccountTypeBusiness, "biz-1", "USD", "100.00")
	card := f.seedCard(t, "card-1", account.ID, domain.CardStatusActive)

	if _, err := f.adjustments.Debit(context.Background(), account.ID, mustMoney(t, "20", "USD")); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	if _, err := f.network.ProcessNetworkMessage(context.Background(), authRequest("X1", card.ID, mustMoney(t, "30", "USD"))); err != nil {
		t.Fatalf("authorize failed: %v", err)
	}

	settle := domain.NetworkEvent{
		ExternalRef: "X1",
		Type:        domain.NetworkMessageTypeTransactionCreated,
		CardID:      card.ID,
		Amount:      mustMoney(t, "30", "USD"),
	}
	if _, err := f.network.ProcessNetworkMessage(context.Background(), settle); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	result, err := f.reconciliation.ReconcileAccount(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	if !result.Consistent {
		t.Errorf("cached balance drifted: cached %s derived %s", result.CachedBalance, result.DerivedBalance)
	}

	report, err := f.reconciliation.CheckLedgerConsistency(context.Background())
	if err != nil {
		t.Fatalf("consistency check: %v", err)
	}

	if !report.Consistent {
		t.Errorf("ledger out of balance: %v", report.SumsByCurrency)
	}
}
