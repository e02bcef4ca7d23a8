package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvola/cardledger/internal/domain"
)

// LedgerAccountRepository defines data access for ledger accounts.
// Ledger accounts are append-only: there are no update or delete operations.
type LedgerAccountRepository interface {
	Create(ctx context.Context, account *domain.LedgerAccount) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.LedgerAccount) error
	GetByID(ctx context.Context, id string) (*domain.LedgerAccount, error)
	GetByIDs(ctx context.Context, tx Transaction, ids []string) ([]*domain.LedgerAccount, error)
	// GetOrCreate resolves the singleton ledger account for a (type, currency)
	// pair, creating it with the given ID when absent.
	GetOrCreate(ctx context.Context, tx Transaction, id string, accountType domain.LedgerAccountType, currency string) (*domain.LedgerAccount, error)
}

// JournalRepository defines data access for journal entries and their
// postings. An entry and its postings are persisted together or not at all.
type JournalRepository interface {
	CreateWithPostings(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetByID(ctx context.Context, id string) (*domain.JournalEntry, error)
	SumPostings(ctx context.Context, ledgerAccountID string) (decimal.Decimal, error)
	SumPostingsByCurrency(ctx context.Context) (map[string]decimal.Decimal, error)
}

// AccountRepository defines data access for business-facing accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	GetBusinessAccount(ctx context.Context, businessID string) (*domain.Account, error)
	GetByLedgerAccountIDsForUpdate(ctx context.Context, tx Transaction, ledgerAccountIDs []string) ([]*domain.Account, error)
	UpdateBalances(ctx context.Context, tx Transaction, id string, ledgerBalance, holdTotal domain.Money, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// AdjustmentRepository defines data access for adjustments.
type AdjustmentRepository interface {
	Create(ctx context.Context, tx Transaction, adjustment *domain.Adjustment) error
	GetByID(ctx context.Context, id string) (*domain.Adjustment, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Adjustment, error)
}

// HoldRepository defines data access for authorization holds.
type HoldRepository interface {
	Create(ctx context.Context, tx Transaction, hold *domain.Hold) error
	GetByID(ctx context.Context, id string) (*domain.Hold, error)
	GetActiveByExternalRefForUpdate(ctx context.Context, tx Transaction, externalRef string) (*domain.Hold, error)
	UpdateAmount(ctx context.Context, tx Transaction, id string, amount domain.Money, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.HoldStatus, updatedAt time.Time) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Hold, error)
}

// NetworkMessageRepository defines data access for network messages.
// Messages are append-only; the chain for one authorization is read by
// external reference, most recent first.
type NetworkMessageRepository interface {
	Create(ctx context.Context, message *domain.NetworkMessage) error
	CreateTx(ctx context.Context, tx Transaction, message *domain.NetworkMessage) error
	GetLatestByExternalRefAndType(ctx context.Context, externalRef string, messageType domain.NetworkMessageType) (*domain.NetworkMessage, error)
	ListByExternalRef(ctx context.Context, externalRef string) ([]*domain.NetworkMessage, error)
	SumApprovedAmountSince(ctx context.Context, cardID string, since time.Time) (decimal.Decimal, error)
	CountApprovedSince(ctx context.Context, cardID string, since time.Time) (int64, error)
}

// AllocationRepository defines data access for the allocation tree.
type AllocationRepository interface {
	Create(ctx context.Context, tx Transaction, allocation *domain.Allocation) error
	GetByID(ctx context.Context, id string) (*domain.Allocation, error)
	GetChildren(ctx context.Context, id string) ([]*domain.Allocation, error)
	GetAncestorIDs(ctx context.Context, id string) ([]string, error)
}

// CardRepository defines data access for the card read model.
type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) error
	GetByID(ctx context.Context, id string) (*domain.Card, error)
	UpdateStatus(ctx context.Context, id string, status domain.CardStatus, updatedAt time.Time) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// BalanceCache caches derived ledger balances. The ledger store stays
// authoritative: every journal commit deletes the touched keys.
type BalanceCache interface {
	Get(ctx context.Context, ledgerAccountID string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, ledgerAccountID string, balance decimal.Decimal, ttl time.Duration) error
	Delete(ctx context.Context, ledgerAccountIDs ...string) error
}

// IdempotencyStore handles idempotency key storage for the HTTP surface.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Retrier retries an operation that failed with a transient storage error
// (deadlock, serialization failure).
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
