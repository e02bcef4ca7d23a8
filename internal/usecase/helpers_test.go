package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
	"github.com/finvola/cardledger/internal/usecase/mocks"
)

// fixture wires every usecase over shared in-memory mocks so scenarios can
// span operations: fund an account, authorize against it, settle, reconcile.
type fixture struct {
	txManager         *mocks.MockTransactionManager
	ledgerAccountRepo *mocks.MockLedgerAccountRepository
	journalRepo       *mocks.MockJournalRepository
	accountRepo       *mocks.MockAccountRepository
	adjustmentRepo    *mocks.MockAdjustmentRepository
	holdRepo          *mocks.MockHoldRepository
	messageRepo       *mocks.MockNetworkMessageRepository
	allocationRepo    *mocks.MockAllocationRepository
	cardRepo          *mocks.MockCardRepository
	outboxRepo        *mocks.MockOutboxRepository
	auditRepo         *mocks.MockAuditRepository
	idGen             *mocks.MockIDGenerator
	cache             *mocks.MockBalanceCache

	ledger         *usecase.LedgerUseCase
	accounts       *usecase.AccountUseCase
	adjustments    *usecase.AdjustmentUseCase
	network        *usecase.NetworkUseCase
	allocations    *usecase.AllocationUseCase
	reconciliation *usecase.ReconciliationUseCase
}

func newFixture() *fixture {
	f := &fixture{
		txManager:         mocks.NewMockTransactionManager(),
		ledgerAccountRepo: mocks.NewMockLedgerAccountRepository(),
		journalRepo:       mocks.NewMockJournalRepository(),
		accountRepo:       mocks.NewMockAccountRepository(),
		adjustmentRepo:    mocks.NewMockAdjustmentRepository(),
		holdRepo:          mocks.NewMockHoldRepository(),
		messageRepo:       mocks.NewMockNetworkMessageRepository(),
		allocationRepo:    mocks.NewMockAllocationRepository(),
		cardRepo:          mocks.NewMockCardRepository(),
		outboxRepo:        mocks.NewMockOutboxRepository(),
		auditRepo:         mocks.NewMockAuditRepository(),
		idGen:             mocks.NewMockIDGenerator(),
		cache:             mocks.NewMockBalanceCache(),
	}

	overdraft := usecase.OverdraftPolicy{}

	f.ledger = usecase.NewLedgerUseCase(
		f.txManager, f.ledgerAccountRepo, f.journalRepo, f.accountRepo,
		f.outboxRepo, f.idGen, f.cache, nil,
	)
	f.accounts = usecase.NewAccountUseCase(
		f.txManager, f.accountRepo, f.ledgerAccountRepo, f.holdRepo, f.idGen,
	)
	f.adjustments = usecase.NewAdjustmentUseCase(
		f.txManager, f.accountRepo, f.ledgerAccountRepo, f.journalRepo,
		f.adjustmentRepo, f.outboxRepo, f.auditRepo, f.idGen, f.cache,
		&mocks.MockRetrier{}, nil, overdraft,
	)
	f.network = usecase.NewNetworkUseCase(
		f.txManager, f.cardRepo, f.accountRepo, f.ledgerAccountRepo,
		f.journalRepo, f.adjustmentRepo, f.holdRepo, f.messageRepo,
		f.outboxRepo, f.auditRepo, f.idGen, f.cache, nil,
	)
	f.allocations = usecase.NewAllocationUseCase(
		f.txManager, f.allocationRepo, f.accountRepo, f.ledgerAccountRepo,
		f.journalRepo, f.adjustmentRepo, f.outboxRepo, f.auditRepo, f.idGen,
		f.cache, &mocks.MockRetrier{}, nil, overdraft, f.adjustments,
	)
	f.reconciliation = usecase.NewReconciliationUseCase(
		f.accountRepo, f.journalRepo, zerolog.Nop(),
	)

	return f
}

func mustMoney(t *testing.T, amount, currency string) domain.Money {
	t.Helper()

	m, err := domain.NewMoneyFromString(amount, currency)
	if err != nil {
		t.Fatalf("bad amount %q: %v", amount, err)
	}

	return m
}

// seedAccount registers a ledger account and an account over it with the
// given posted balance. The balance is backed by a real seed journal entry
// against the network clearing account so the ledger stays zero-sum.
func (f *fixture) seedAccount(t *testing.T, id string, accountType domain.AccountType, businessID, currency, balance string) *domain.Account {
	t.Helper()

	now := time.Now().UTC()

	ledgerAccountType := domain.LedgerAccountTypeBusiness
	if accountType == domain.AccountTypeAllocation {
		ledgerAccountType = domain.LedgerAccountTypeAllocation
	}

	ledgerAccount := &domain.LedgerAccount{
		ID:        "la-" + id,
		Type:      ledgerAccountType,
		Currency:  currency,
		CreatedAt: now,
	}
	if err := f.ledgerAccountRepo.Create(context.Background(), ledgerAccount); err != nil {
		t.Fatalf("seed ledger account: %v", err)
	}

	account := &domain.Account{
		ID:              id,
		BusinessID:      businessID,
		LedgerAccountID: ledgerAccount.ID,
		OwnerID:         "owner-" + businessID,
		Type:            accountType,
		Currency:        currency,
		LedgerBalance:   mustMoney(t, balance, currency),
		HoldTotal:       domain.ZeroMoney(currency),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := f.accountRepo.Create(context.Background(), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	amount := mustMoney(t, balance, currency)
	if !amount.IsZero() {
		clearing, err := f.ledgerAccountRepo.GetOrCreate(context.Background(), nil, "la-clearing-"+currency, domain.LedgerAccountTypeNetwork, currency)
		if err != nil {
			t.Fatalf("seed clearing account: %v", err)
		}

		entry := &domain.JournalEntry{ID: "seed-" + id, CreatedAt: now}
		entry.Postings = []domain.Posting{
			{ID: "seed-" + id + "-1", JournalEntryID: entry.ID, LedgerAccountID: ledgerAccount.ID, Amount: amount, CreatedAt: now},
			{ID: "seed-" + id + "-2", JournalEntryID: entry.ID, LedgerAccountID: clearing.ID, Amount: amount.Neg(), CreatedAt: now},
		}
		if err := f.journalRepo.CreateWithPostings(context.Background(), nil, entry); err != nil {
			t.Fatalf("seed journal entry: %v", err)
		}
	}

	return account
}

// seedAllocation creates an allocation node pointing at an already-seeded
// account.
func (f *fixture) seedAllocation(t *testing.T, id, businessID, accountID string, parentID *string) *domain.Allocation {
	t.Helper()

	allocation := &domain.Allocation{
		ID:                 id,
		BusinessID:         businessID,
		ParentAllocationID: parentID,
		AccountID:          accountID,
		Name:               id,
		CreatedAt:          time.Now().UTC(),
	}
	if err := f.allocationRepo.Create(context.Background(), nil, allocation); err != nil {
		t.Fatalf("seed allocation: %v", err)
	}

	return allocation
}

func (f *fixture) seedCard(t *testing.T, id, accountID string, status domain.CardStatus) *domain.Card {
	t.Helper()

	now := time.Now().UTC()
	card := &domain.Card{
		ID:        id,
		AccountID: accountID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.cardRepo.Create(context.Background(), card); err != nil {
		t.Fatalf("seed card: %v", err)
	}

	return card
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}

	return d
}
