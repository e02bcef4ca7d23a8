package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/infrastructure/metrics"
)

// AdjustmentUseCase serves the debit/credit operations on business-facing
// accounts. Each operation is a two-leg journal entry between the account's
// ledger account and its offset account: the business's own ledger account
// for allocation funding, the network clearing account for business-level
// money in and out of the program.
type AdjustmentUseCase struct {
	txManager         TransactionManager
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
}

// NewAdjustmentUseCase creates a new AdjustmentUseCase.
func NewAdjustmentUseCase(
	txManager TransactionManager,
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
) *AdjustmentUseCase {
	return &AdjustmentUseCase{
		txManager:         txManager,
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
	}
}

// AdjustmentResult carries the adjustment and the account's balance after it.
type AdjustmentResult struct {
	Adjustment *domain.Adjustment
	Balance    domain.Money
}

// Debit removes funds from the account. Fails with ErrInsufficientFunds when
// the account's type disallows overdraft and available balance is short; in
// that case nothing is written.
func (uc *AdjustmentUseCase) Debit(ctx context.Context, accountID string, amount domain.Money) (*AdjustmentResult, error) {
	return uc.adjust(ctx, accountID, amount, domain.AdjustmentTypeWithdraw)
}

// Credit adds funds to the account. The offset side is debited and validated
// against its own overdraft policy.
func (uc *AdjustmentUseCase) Credit(ctx context.Context, accountID string, amount domain.Money) (*AdjustmentResult, error) {
	return uc.adjust(ctx, accountID, amount, domain.AdjustmentTypeDeposit)
}

func (uc *AdjustmentUseCase) adjust(ctx context.Context, accountID string, amount domain.Money, adjustmentType domain.AdjustmentType) (*AdjustmentResult, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	// Unlocked pre-read to learn which rows to lock; state is re-read under
	// the locks inside the transaction.
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.Currency != amount.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	lockIDs := []string{account.ID}

	var offsetAccountID string
	if account.Type == domain.AccountTypeAllocation {
		businessAccount, err := uc.accountRepo.GetBusinessAccount(ctx, account.BusinessID)
		if err != nil {
			return nil, err
		}

		offsetAccountID = businessAccount.ID
		lockIDs = append(lockIDs, businessAccount.ID)
	}

	sort.Strings(lockIDs)

	var result *AdjustmentResult

	operation := func() error {
		var opErr error
		result, opErr = uc.adjustTx(ctx, account.ID, offsetAccountID, lockIDs, amount, adjustmentType)
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
		uc.metrics.AdjustmentsCreated.WithLabelValues(string(adjustmentType)).Inc()
		uc.metrics.AdjustmentAmount.Observe(amount.Amount.Abs().InexactFloat64())
	}

	return result, nil
}

func (uc *AdjustmentUseCase) adjustTx(
	ctx context.Context,
	accountID, offsetAccountID string,
	lockIDs []string,
	amount domain.Money,
	adjustmentType domain.AdjustmentType,
) (*AdjustmentResult, error) {
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

	account := accountByID[accountID]
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}

	// Resolve the offset ledger account. Business-level operations offset
	// against the network clearing bucket, which has no Account row.
	var offsetAccount *domain.Account

	offsetLedgerAccountID := ""
	if offsetAccountID != "" {
		offsetAccount = accountByID[offsetAccountID]
		if offsetAccount == nil {
			return nil, domain.ErrAccountNotFound
		}

		offsetLedgerAccountID = offsetAccount.LedgerAccountID
	} else {
		clearing, err := uc.ledgerAccountRepo.GetOrCreate(txCtx, tx, uc.idGen.Generate(), domain.LedgerAccountTypeNetwork, amount.Currency)
		if err != nil {
			return nil, err
		}

		offsetLedgerAccountID = clearing.ID
	}

	// The debited side is validated against its overdraft policy; clearing
	// buckets absorb any sign.
	debited, credited := account, offsetAccount
	if adjustmentType == domain.AdjustmentTypeDeposit {
		debited, credited = offsetAccount, account
	}

	if debited != nil {
		if err := debited.ValidateDebit(amount); err != nil {
			return nil, err
		}
	}

	if credited != nil {
		if err := credited.ValidateCredit(amount); err != nil {
			return nil, err
		}
	}

	signed := amount.Neg()
	if adjustmentType == domain.AdjustmentTypeDeposit {
		signed = amount
	}

	entry := &domain.JournalEntry{
		ID:        uc.idGen.Generate(),
		CreatedAt: now,
	}
	entry.Postings = []domain.Posting{
		{
			ID:              uc.idGen.Generate(),
			JournalEntryID:  entry.ID,
			LedgerAccountID: account.LedgerAccountID,
			Amount:          signed,
			CreatedAt:       now,
		},
		{
			ID:              uc.idGen.Generate(),
			JournalEntryID:  entry.ID,
			LedgerAccountID: offsetLedgerAccountID,
			Amount:          signed.Neg(),
			CreatedAt:       now,
		},
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := uc.journalRepo.CreateWithPostings(txCtx, tx, entry); err != nil {
		return nil, err
	}

	newBalance, err := account.LedgerBalance.Add(signed)
	if err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalances(txCtx, tx, account.ID, newBalance, account.HoldTotal, now); err != nil {
		return nil, err
	}

	if offsetAccount != nil {
		offsetBalance, err := offsetAccount.LedgerBalance.Sub(signed)
		if err != nil {
			return nil, err
		}

		if err := uc.accountRepo.UpdateBalances(txCtx, tx, offsetAccount.ID, offsetBalance, offsetAccount.HoldTotal, now); err != nil {
			return nil, err
		}
	}

	adjustment := &domain.Adjustment{
		ID:             uc.idGen.Generate(),
		AccountID:      account.ID,
		JournalEntryID: entry.ID,
		Type:           adjustmentType,
		Amount:         signed,
		CreatedAt:      now,
	}

	if err := uc.adjustmentRepo.Create(txCtx, tx, adjustment); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   adjustment.ID,
		AggregateType: domain.AggregateTypeAdjustment,
		EventType:     domain.EventTypeAdjustmentCreated,
		Payload: map[string]any{
			"adjustment_id":    adjustment.ID,
			"account_id":       account.ID,
			"journal_entry_id": entry.ID,
			"type":             string(adjustmentType),
			"amount":           signed.Amount.String(),
			"currency":         signed.Currency,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		action := domain.AuditActionAdjustmentDebit
		if adjustmentType == domain.AdjustmentTypeDeposit {
			action = domain.AuditActionAdjustmentCredit
		}

		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      "api",
			Action:       string(action),
			ResourceType: "adjustment",
			ResourceID:   adjustment.ID,
			AfterState:   domain.MarshalState(adjustment),
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
		_ = uc.cache.Delete(ctx, account.LedgerAccountID, offsetLedgerAccountID)
	}

	return &AdjustmentResult{Adjustment: adjustment, Balance: newBalance}, nil
}

// GetAdjustment retrieves an adjustment by ID.
func (uc *AdjustmentUseCase) GetAdjustment(ctx context.Context, id string) (*domain.Adjustment, error) {
	return uc.adjustmentRepo.GetByID(ctx, id)
}

// ListAdjustmentsByAccountInput represents input for listing adjustments.
type ListAdjustmentsByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListAdjustmentsByAccount lists adjustments for an account.
func (uc *AdjustmentUseCase) ListAdjustmentsByAccount(ctx context.Context, input ListAdjustmentsByAccountInput) ([]*domain.Adjustment, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.adjustmentRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}
