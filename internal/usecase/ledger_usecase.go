package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/infrastructure/metrics"
)

// LedgerUseCase is the posting engine: it commits balanced journal entries
// atomically and serves derived balances.
type LedgerUseCase struct {
	txManager         TransactionManager
	ledgerAccountRepo LedgerAccountRepository
	journalRepo       JournalRepository
	accountRepo       AccountRepository
	outboxRepo        OutboxRepository
	idGen             IDGenerator
	cache             BalanceCache
	metrics           *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	ledgerAccountRepo LedgerAccountRepository,
	journalRepo JournalRepository,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache BalanceCache,
	metrics *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:         txManager,
		ledgerAccountRepo: ledgerAccountRepo,
		journalRepo:       journalRepo,
		accountRepo:       accountRepo,
		outboxRepo:        outboxRepo,
		idGen:             idGen,
		cache:             cache,
		metrics:           metrics,
	}
}

// PostingInput is one proposed posting line.
type PostingInput struct {
	LedgerAccountID string
	Amount          domain.Money
}

// CreateJournalEntryInput represents input for committing a journal entry.
type CreateJournalEntryInput struct {
	Postings []PostingInput
}

// CreateJournalEntry validates and commits a balanced journal entry. The
// entry, its postings, and the cached balances of every touched account are
// written in one transaction; on any failure nothing is written.
func (uc *LedgerUseCase) CreateJournalEntry(ctx context.Context, input CreateJournalEntryInput) (*domain.JournalEntry, error) {
	start := time.Now()
	now := start.UTC()

	entry := &domain.JournalEntry{
		ID:        uc.idGen.Generate(),
		CreatedAt: now,
	}

	for _, p := range input.Postings {
		entry.Postings = append(entry.Postings, domain.Posting{
			ID:              uc.idGen.Generate(),
			JournalEntryID:  entry.ID,
			LedgerAccountID: p.LedgerAccountID,
			Amount:          p.Amount,
			CreatedAt:       now,
		})
	}

	// Reject imbalance before touching storage.
	if err := entry.Validate(); err != nil {
		if uc.metrics != nil {
			uc.metrics.LedgerImbalances.Inc()
		}

		return nil, err
	}

	// Sorted lock order prevents deadlocks between concurrent entries.
	ledgerAccountIDs := entry.LedgerAccountIDs()
	sort.Strings(ledgerAccountIDs)

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	ledgerAccounts, err := uc.ledgerAccountRepo.GetByIDs(txCtx, tx, ledgerAccountIDs)
	if err != nil {
		return nil, err
	}

	if len(ledgerAccounts) != len(ledgerAccountIDs) {
		return nil, domain.ErrUnknownLedgerAccount
	}

	ledgerAccountByID := make(map[string]*domain.LedgerAccount, len(ledgerAccounts))
	for _, la := range ledgerAccounts {
		ledgerAccountByID[la.ID] = la
	}

	for _, p := range entry.Postings {
		la := ledgerAccountByID[p.LedgerAccountID]
		if la.Currency != p.Amount.Currency {
			return nil, fmt.Errorf("%w: posting in %s against %s ledger account %s",
				domain.ErrCurrencyMismatch, p.Amount.Currency, la.Currency, la.ID)
		}
	}

	// Lock the wrapping accounts (if any) and apply the cached-balance
	// deltas alongside the postings.
	accounts, err := uc.accountRepo.GetByLedgerAccountIDsForUpdate(txCtx, tx, ledgerAccountIDs)
	if err != nil {
		return nil, err
	}

	if err := uc.journalRepo.CreateWithPostings(txCtx, tx, entry); err != nil {
		return nil, err
	}

	deltas := entry.BalanceDeltas()
	for _, account := range accounts {
		delta := deltas[account.LedgerAccountID]
		newBalance := domain.NewMoney(account.LedgerBalance.Amount.Add(delta), account.Currency)

		if err := uc.accountRepo.UpdateBalances(txCtx, tx, account.ID, newBalance, account.HoldTotal, now); err != nil {
			return nil, err
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeJournalEntry,
		EventType:     domain.EventTypeJournalEntryCreated,
		Payload: map[string]any{
			"journal_entry_id": entry.ID,
			"postings":         len(entry.Postings),
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateBalances(ctx, ledgerAccountIDs...)

	if uc.metrics != nil {
		uc.metrics.JournalEntriesCreated.Inc()
		uc.metrics.PostingsCreated.Add(float64(len(entry.Postings)))
		uc.metrics.JournalEntryDuration.Observe(time.Since(start).Seconds())
	}

	return entry, nil
}

// GetBalance returns the derived balance of a ledger account: the sum of all
// committed postings referencing it. Reads go through the balance cache;
// commits invalidate it, so a hit is never stale past BalanceCacheTTL.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, ledgerAccountID string) (domain.Money, error) {
	ledgerAccount, err := uc.ledgerAccountRepo.GetByID(ctx, ledgerAccountID)
	if err != nil {
		return domain.Money{}, err
	}

	if uc.cache != nil {
		if cached, ok, err := uc.cache.Get(ctx, ledgerAccountID); err == nil && ok {
			if uc.metrics != nil {
				uc.metrics.BalanceCacheHits.Inc()
			}

			return domain.NewMoney(cached, ledgerAccount.Currency), nil
		}

		if uc.metrics != nil {
			uc.metrics.BalanceCacheMisses.Inc()
		}
	}

	sum, err := uc.journalRepo.SumPostings(ctx, ledgerAccountID)
	if err != nil {
		return domain.Money{}, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, ledgerAccountID, sum, BalanceCacheTTL)
	}

	return domain.NewMoney(sum, ledgerAccount.Currency), nil
}

// GetJournalEntry retrieves a journal entry with its postings.
func (uc *LedgerUseCase) GetJournalEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return uc.journalRepo.GetByID(ctx, id)
}

// CreateLedgerAccountInput represents input for creating a ledger account.
type CreateLedgerAccountInput struct {
	Type     domain.LedgerAccountType
	Currency string
}

// CreateLedgerAccount creates a new ledger account.
func (uc *LedgerUseCase) CreateLedgerAccount(ctx context.Context, input CreateLedgerAccountInput) (*domain.LedgerAccount, error) {
	ledgerAccount := &domain.LedgerAccount{
		ID:        uc.idGen.Generate(),
		Type:      input.Type,
		Currency:  input.Currency,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.ledgerAccountRepo.Create(ctx, ledgerAccount); err != nil {
		return nil, err
	}

	return ledgerAccount, nil
}

func (uc *LedgerUseCase) invalidateBalances(ctx context.Context, ledgerAccountIDs ...string) {
	if uc.cache == nil {
		return
	}

	_ = uc.cache.Delete(ctx, ledgerAccountIDs...)
}
