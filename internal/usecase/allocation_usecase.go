package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/infrastructure/metrics"
)

// AllocationUseCase manages a business's fund-allocation tree: creating
// nodes, funding them from the business account, and moving funds between
// them with balanced postings.
type AllocationUseCase struct {
	txManager         TransactionManager
	allocationRepo    AllocationRepository
	accountRepo       AccountRepository
	ledgerAccountRepo LedgerAccountRepository
	journalRepo       JournalRepository
	adjustmentRepo    AdjustmentRepository
	outboxRepo        OutboxRepository
	auditRepo         AuditRepository
	idGen             IDGenerator
	cache             BalanceCache
	retrier           Retrier
	metrics           *metrics.Metrics
	overdraft         OverdraftPolicy
	adjustments       *AdjustmentUseCase
}

// NewAllocationUseCase creates a new AllocationUseCase.
func NewAllocationUseCase(
	txManager TransactionManager,
	allocationRepo AllocationRepository,
	accountRepo AccountRepository,
	ledgerAccountRepo LedgerAccountRepository,
	journalRepo JournalRepository,
	adjustmentRepo AdjustmentRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache BalanceCache,
	retrier Retrier,
	metrics *metrics.Metrics,
	overdraft OverdraftPolicy,
	adjustments *AdjustmentUseCase,
) *AllocationUseCase {
	return &AllocationUseCase{
		txManager:         txManager,
		allocationRepo:    allocationRepo,
		accountRepo:       accountRepo,
		ledgerAccountRepo: ledgerAccountRepo,
		journalRepo:       journalRepo,
		adjustmentRepo:    adjustmentRepo,
		outboxRepo:        outboxRepo,
		auditRepo:         auditRepo,
		idGen:             idGen,
		cache:             cache,
		retrier:           retrier,
		metrics:           metrics,
		overdraft:         overdraft,
		adjustments:       adjustments,
	}
}

// CreateAllocationInput represents input for creating an allocation node.
type CreateAllocationInput struct {
	BusinessID         string
	ParentAllocationID *string
	OwnerID            string
	Name               string
	Currency           string
}

// CreateAllocation creates an allocation node together with its dedicated
// ledger account and account. The three rows commit atomically; a new node
// always starts at zero.
func (uc *AllocationUseCase) CreateAllocation(ctx context.Context, input CreateAllocationInput) (*domain.Allocation, error) {
	if err := domain.ValidateAllocationName(input.Name); err != nil {
		return nil, err
	}

	if input.ParentAllocationID != nil {
		parent, err := uc.allocationRepo.GetByID(ctx, *input.ParentAllocationID)
		if err != nil {
			return nil, err
		}

		if parent.BusinessID != input.BusinessID {
			return nil, domain.ErrAllocationNotFound
		}
	}

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
		Type:      domain.LedgerAccountTypeAllocation,
		Currency:  input.Currency,
		CreatedAt: now,
	}
	if err := uc.ledgerAccountRepo.CreateTx(txCtx, tx, ledgerAccount); err != nil {
		return nil, err
	}

	allocation := &domain.Allocation{
		ID:                 uc.idGen.Generate(),
		BusinessID:         input.BusinessID,
		ParentAllocationID: input.ParentAllocationID,
		Name:               input.Name,
		CreatedAt:          now,
	}

	account := &domain.Account{
		ID:              uc.idGen.Generate(),
		BusinessID:      input.BusinessID,
		AllocationID:    &allocation.ID,
		LedgerAccountID: ledgerAccount.ID,
		OwnerID:         input.OwnerID,
		Type:            domain.AccountTypeAllocation,
		Currency:        input.Currency,
		LedgerBalance:   domain.ZeroMoney(input.Currency),
		HoldTotal:       domain.ZeroMoney(input.Currency),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	allocation.AccountID = account.ID

	if err := uc.accountRepo.CreateTx(txCtx, tx, account); err != nil {
		return nil, err
	}

	if err := uc.allocationRepo.Create(txCtx, tx, allocation); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      input.OwnerID,
			Action:       string(domain.AuditActionAllocationCreate),
			ResourceType: "allocation",
			ResourceID:   allocation.ID,
			AfterState:   domain.MarshalState(allocation),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return allocation, nil
}

// ReallocateInput represents input for moving funds between two allocations.
type ReallocateInput struct {
	FromAllocationID string
	ToAllocationID   string
	Amount           domain.Money
}

// ReallocateResult carries the outcome of a reallocation: one journal entry
// and the mirrored adjustment on each side.
type ReallocateResult struct {
	JournalEntry   *domain.JournalEntry
	FromAdjustment *domain.Adjustment
	ToAdjustment   *domain.Adjustment
}

// Reallocate moves funds between two allocations of the same business. The
// move is one two-posting journal entry plus a withdrawal-shaped adjustment
// on the source and a deposit-shaped one on the destination, all committed
// atomically. Moving an allocation onto itself is rejected before any reads.
func (uc *AllocationUseCase) Reallocate(ctx context.Context, input ReallocateInput) (*ReallocateResult, error) {
	if input.FromAllocationID == input.ToAllocationID {
		return nil, domain.ErrSameAllocation
	}

	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	from, err := uc.allocationRepo.GetByID(ctx, input.FromAllocationID)
	if err != nil {
		return nil, err
	}

	to, err := uc.allocationRepo.GetByID(ctx, input.ToAllocationID)
	if err != nil {
		return nil, err
	}

	if from.BusinessID != to.BusinessID {
		return nil, domain.ErrAllocationNotFound
	}

	lockIDs := []string{from.AccountID, to.AccountID}
	sort.Strings(lockIDs)

	var result *ReallocateResult

	operation := func() error {
		var opErr error
		result, opErr = uc.reallocateTx(ctx, from, to, lockIDs, input.Amount)
		return opErr
	}

	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, operation)
	} else {
		err = operation()
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Reallocations.Inc()
	}

	return result, nil
}

func (uc *AllocationUseCase) reallocateTx(
	ctx context.Context,
	from, to *domain.Allocation,
	lockIDs []string,
	amount domain.Money,
) (*ReallocateResult, error) {
	now := time.Now().UTC()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	accounts, err := uc.accountRepo.GetByIDsForUpdate(txCtx, tx, lockIDs)
	if err != nil {
		return nil, err
	}

	accountByID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		a.AllowOverdraft = uc.overdraft.Allows(string(a.Type))
		accountByID[a.ID] = a
	}

	fromAccount := accountByID[from.AccountID]
	toAccount := accountByID[to.AccountID]
	if fromAccount == nil || toAccount == nil {
		return nil, domain.ErrAccountNotFound
	}

	if fromAccount.Currency != amount.Currency || toAccount.Currency != amount.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	if err := fromAccount.ValidateDebit(amount); err != nil {
		return nil, err
	}

	if err := toAccount.ValidateCredit(amount); err != nil {
		return nil, err
	}

	entry := &domain.JournalEntry{
		ID:        uc.idGen.Generate(),
		CreatedAt: now,
	}
	entry.Postings = []domain.Posting{
		{
			ID:              uc.idGen.Generate(),
			JournalEntryID:  entry.ID,
			LedgerAccountID: fromAccount.LedgerAccountID,
			Amount:          amount.Neg(),
			CreatedAt:       now,
		},
		{
			ID:              uc.idGen.Generate(),
			JournalEntryID:  entry.ID,
			LedgerAccountID: toAccount.LedgerAccountID,
			Amount:          amount,
			CreatedAt:       now,
		},
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := uc.journalRepo.CreateWithPostings(txCtx, tx, entry); err != nil {
		return nil, err
	}

	fromBalance, err := fromAccount.LedgerBalance.Sub(amount)
	if err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalances(txCtx, tx, fromAccount.ID, fromBalance, fromAccount.HoldTotal, now); err != nil {
		return nil, err
	}

	toBalance, err := toAccount.LedgerBalance.Add(amount)
	if err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalances(txCtx, tx, toAccount.ID, toBalance, toAccount.HoldTotal, now); err != nil {
		return nil, err
	}

	fromAdjustment := &domain.Adjustment{
		ID:             uc.idGen.Generate(),
		AccountID:      fromAccount.ID,
		JournalEntryID: entry.ID,
		Type:           domain.AdjustmentTypeReallocate,
		Amount:         amount.Neg(),
		CreatedAt:      now,
	}
	if err := uc.adjustmentRepo.Create(txCtx, tx, fromAdjustment); err != nil {
		return nil, err
	}

	toAdjustment := &domain.Adjustment{
		ID:             uc.idGen.Generate(),
		AccountID:      toAccount.ID,
		JournalEntryID: entry.ID,
		Type:           domain.AdjustmentTypeReallocate,
		Amount:         amount,
		CreatedAt:      now,
	}
	if err := uc.adjustmentRepo.Create(txCtx, tx, toAdjustment); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeAllocation,
		EventType:     domain.EventTypeFundsReallocated,
		Payload: map[string]any{
			"journal_entry_id":   entry.ID,
			"from_allocation_id": from.ID,
			"to_allocation_id":   to.ID,
			"amount":             amount.Amount.String(),
			"currency":           amount.Currency,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      "api",
			Action:       string(domain.AuditActionAllocationReallocate),
			ResourceType: "journal_entry",
			ResourceID:   entry.ID,
			AfterState:   domain.MarshalState(entry),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, fromAccount.LedgerAccountID, toAccount.LedgerAccountID)
	}

	return &ReallocateResult{
		JournalEntry:   entry,
		FromAdjustment: fromAdjustment,
		ToAdjustment:   toAdjustment,
	}, nil
}

// FundAllocation moves funds from the business account into the allocation.
func (uc *AllocationUseCase) FundAllocation(ctx context.Context, allocationID string, amount domain.Money) (*AdjustmentResult, error) {
	allocation, err := uc.allocationRepo.GetByID(ctx, allocationID)
	if err != nil {
		return nil, err
	}

	return uc.adjustments.Credit(ctx, allocation.AccountID, amount)
}

// DefundAllocation returns funds from the allocation to the business account.
func (uc *AllocationUseCase) DefundAllocation(ctx context.Context, allocationID string, amount domain.Money) (*AdjustmentResult, error) {
	allocation, err := uc.allocationRepo.GetByID(ctx, allocationID)
	if err != nil {
		return nil, err
	}

	return uc.adjustments.Debit(ctx, allocation.AccountID, amount)
}

// GetAllocation retrieves an allocation by ID.
func (uc *AllocationUseCase) GetAllocation(ctx context.Context, id string) (*domain.Allocation, error) {
	return uc.allocationRepo.GetByID(ctx, id)
}

// GetChildren lists the direct children of an allocation.
func (uc *AllocationUseCase) GetChildren(ctx context.Context, id string) ([]*domain.Allocation, error) {
	return uc.allocationRepo.GetChildren(ctx, id)
}

// GetPermissions assembles the inherited-permission read model from the
// allocation's ancestor chain.
func (uc *AllocationUseCase) GetPermissions(ctx context.Context, id string) (*domain.AllocationPermissions, error) {
	if _, err := uc.allocationRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	ancestors, err := uc.allocationRepo.GetAncestorIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.AllocationPermissions{
		AllocationID: id,
		AncestorIDs:  ancestors,
	}, nil
}
