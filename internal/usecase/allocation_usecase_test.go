package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
)

func TestAllocationUseCase_Reallocate(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "acc-b", domain.AccountTypeAllocation, "biz-1", "USD", "200.00")
	f.seedAccount(t, "acc-a", domain.AccountTypeAllocation, "biz-1", "USD", "0.00")
	allocB := f.seedAllocation(t, "alloc-b", "biz-1", "acc-b", nil)
	allocA := f.seedAllocation(t, "alloc-a", "biz-1", "acc-a", nil)

	entriesBefore := f.journalRepo.EntryCount()

	result, err := f.allocations.Reallocate(context.Background(), usecase.ReallocateInput{
		FromAllocationID: allocB.ID,
		ToAllocationID:   allocA.ID,
		Amount:           mustMoney(t, "50", "USD"),
	})
	if err != nil {
		t.Fatalf("reallocate failed: %v", err)
	}

	// One entry, two postings, two mirrored adjustments.
	if f.journalRepo.EntryCount() != entriesBefore+1 {
		t.Errorf("expected exactly one new journal entry, got %d", f.journalRepo.EntryCount()-entriesBefore)
	}

	if len(result.JournalEntry.Postings) != 2 {
		t.Errorf("expected 2 postings, got %d", len(result.JournalEntry.Postings))
	}

	if !result.FromAdjustment.Amount.Equal(mustMoney(t, "-50", "USD")) {
		t.Errorf("expected source adjustment -50, got %s", result.FromAdjustment.Amount)
	}

	if !result.ToAdjustment.Amount.Equal(mustMoney(t, "50", "USD")) {
		t.Errorf("expected destination adjustment 50, got %s", result.ToAdjustment.Amount)
	}

	if result.FromAdjustment.Type != domain.AdjustmentTypeReallocate || result.ToAdjustment.Type != domain.AdjustmentTypeReallocate {
		t.Error("expected REALLOCATE adjustments on both sides")
	}

	if result.FromAdjustment.JournalEntryID != result.JournalEntry.ID || result.ToAdjustment.JournalEntryID != result.JournalEntry.ID {
		t.Error("adjustments not linked to the journal entry")
	}

	source, _ := f.accounts.GetAccount(context.Background(), "acc-b")
	dest, _ := f.accounts.GetAccount(context.Background(), "acc-a")

	if !source.LedgerBalance.Equal(mustMoney(t, "150", "USD")) {
		t.Errorf("expected source balance 150 USD, got %s", source.LedgerBalance)
	}

	if !dest.LedgerBalance.Equal(mustMoney(t, "50", "USD")) {
		t.Errorf("expected destination balance 50 USD, got %s", dest.LedgerBalance)
	}

	report, err := f.reconciliation.CheckLedgerConsistency(context.Background())
	if err != nil {
		t.Fatalf("consistency check: %v", err)
	}

	if !report.Consistent {
		t.Errorf("ledger out of balance after reallocation: %v", report.SumsByCurrency)
	}
}

func TestAllocationUseCase_ReallocateSameAllocation(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "acc-a", domain.AccountTypeAllocation, "biz-1", "USD", "100.00")
	alloc := f.seedAllocation(t, "alloc-a", "biz-1", "acc-a", nil)

	_, err := f.allocations.Reallocate(context.Background(), usecase.ReallocateInput{
		FromAllocationID: alloc.ID,
		ToAllocationID:   alloc.ID,
		Amount:           mustMoney(t, "10", "USD"),
	})
	if !errors.Is(err, domain.ErrSameAllocation) {
		t.Fatalf("expected ErrSameAllocation, got %v", err)
	}
}

func TestAllocationUseCase_ReallocateInsufficientFunds(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "acc-b", domain.AccountTypeAllocation, "biz-1", "USD", "20.00")
	f.seedAccount(t, "acc-a", domain.AccountTypeAllocation, "biz-1", "USD", "0.00")
	allocB := f.seedAllocation(t, "alloc-b", "biz-1", "acc-b", nil)
	allocA := f.seedAllocation(t, "alloc-a", "biz-1", "acc-a", nil)

	entriesBefore := f.journalRepo.EntryCount()

	_, err := f.allocations.Reallocate(context.Background(), usecase.ReallocateInput{
		FromAllocationID: allocB.ID,
		ToAllocationID:   allocA.ID,
		Amount:           mustMoney(t, "50", "USD"),
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if f.journalRepo.EntryCount() != entriesBefore {
		t.Error("failed reallocation wrote a journal entry")
	}
}

func TestAllocationUseCase_ReallocateAcrossBusinesses(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "acc-b", domain.AccountTypeAllocation, "biz-1", "USD", "100.00")
	f.seedAccount(t, "acc-a", domain.AccountTypeAllocation, "biz-2", "USD", "0.00")
	allocB := f.seedAllocation(t, "alloc-b", "biz-1", "acc-b", nil)
	allocA := f.seedAllocation(t, "alloc-a", "biz-2", "acc-a", nil)

	_, err := f.allocations.Reallocate(context.Background(), usecase.ReallocateInput{
		FromAllocationID: allocB.ID,
		ToAllocationID:   allocA.ID,
		Amount:           mustMoney(t, "10", "USD"),
	})
	if !errors.Is(err, domain.ErrAllocationNotFound) {
		t.Fatalf("expected ErrAllocationNotFound, got %v", err)
	}
}

func TestAllocationUseCase_CreateAllocation(t *testing.T) {
	f := newFixture()

	root, err := f.allocations.CreateAllocation(context.Background(), usecase.CreateAllocationInput{
		BusinessID: "biz-1",
		OwnerID:    "user-1",
		Name:       "Operations",
		Currency:   "USD",
	})
	if err != nil {
		t.Fatalf("create root failed: %v", err)
	}

	child, err := f.allocations.CreateAllocation(context.Background(), usecase.CreateAllocationInput{
		BusinessID:         "biz-1",
		ParentAllocationID: &root.ID,
		OwnerID:            "user-1",
		Name:               "Travel",
		Currency:           "USD",
	})
	if err != nil {
		t.Fatalf("create child failed: %v", err)
	}

	account, err := f.accounts.GetAccount(context.Background(), child.AccountID)
	if err != nil {
		t.Fatalf("get allocation account: %v", err)
	}

	if account.Type != domain.AccountTypeAllocation {
		t.Errorf("expected ALLOCATION account, got %s", account.Type)
	}

	if !account.LedgerBalance.IsZero() {
		t.Errorf("new allocation must start at zero, got %s", account.LedgerBalance)
	}

	children, err := f.allocations.GetChildren(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("get children: %v", err)
	}

	if len(children) != 1 || children[0].ID != child.ID {
		t.Error("child not reachable from its parent")
	}
}

func TestAllocationUseCase_CreateAllocationValidation(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.CreateAllocationInput
	}{
		{
			name: "empty name",
			input: usecase.CreateAllocationInput{
				BusinessID: "biz-1",
				Name:       "   ",
				Currency:   "USD",
			},
		},
		{
			name: "unknown parent",
			input: usecase.CreateAllocationInput{
				BusinessID:         "biz-1",
				ParentAllocationID: strPtr("missing"),
				Name:               "Travel",
				Currency:           "USD",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			if _, err := f.allocations.CreateAllocation(context.Background(), tt.input); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestAllocationUseCase_FundAndDefund(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "acc-biz", domain.AccountTypeBusiness, "biz-1", "USD", "200.00")
	f.seedAccount(t, "acc-alloc", domain.AccountTypeAllocation, "biz-1", "USD", "0.00")
	alloc := f.seedAllocation(t, "alloc-a", "biz-1", "acc-alloc", nil)

	result, err := f.allocations.FundAllocation(context.Background(), alloc.ID, mustMoney(t, "80", "USD"))
	if err != nil {
		t.Fatalf("fund failed: %v", err)
	}

	if !result.Balance.Equal(mustMoney(t, "80", "USD")) {
		t.Errorf("expected allocation balance 80 USD, got %s", result.Balance)
	}

	result, err = f.allocations.DefundAllocation(context.Background(), alloc.ID, mustMoney(t, "30", "USD"))
	if err != nil {
		t.Fatalf("defund failed: %v", err)
	}

	if !result.Balance.Equal(mustMoney(t, "50", "USD")) {
		t.Errorf("expected allocation balance 50 USD, got %s", result.Balance)
	}

	business, _ := f.accounts.GetAccount(context.Background(), "acc-biz")
	if !business.LedgerBalance.Equal(mustMoney(t, "150", "USD")) {
		t.Errorf("expected business balance 150 USD, got %s", business.LedgerBalance)
	}
}

func TestAllocationUseCase_GetPermissions(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "acc-root", domain.AccountTypeAllocation, "biz-1", "USD", "0.00")
	f.seedAccount(t, "acc-mid", domain.AccountTypeAllocation, "biz-1", "USD", "0.00")
	f.seedAccount(t, "acc-leaf", domain.AccountTypeAllocation, "biz-1", "USD", "0.00")

	root := f.seedAllocation(t, "alloc-root", "biz-1", "acc-root", nil)
	mid := f.seedAllocation(t, "alloc-mid", "biz-1", "acc-mid", &root.ID)
	leaf := f.seedAllocation(t, "alloc-leaf", "biz-1", "acc-leaf", &mid.ID)

	perms, err := f.allocations.GetPermissions(context.Background(), leaf.ID)
	if err != nil {
		t.Fatalf("get permissions: %v", err)
	}

	if len(perms.AncestorIDs) != 2 {
		t.Fatalf("expected 2 ancestors, got %d", len(perms.AncestorIDs))
	}

	if perms.AncestorIDs[0] != mid.ID || perms.AncestorIDs[1] != root.ID {
		t.Errorf("ancestors not nearest-first: %v", perms.AncestorIDs)
	}

	if !perms.InheritsFrom(root.ID) {
		t.Error("leaf must inherit from the root")
	}

	if perms.InheritsFrom(leaf.ID) {
		t.Error("an allocation does not inherit from itself")
	}
}

func strPtr(s string) *string {
	return &s
}
