package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
)

// MockLedgerAccountRepository is a mock implementation of LedgerAccountRepository.
type MockLedgerAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.LedgerAccount

	CreateFunc      func(ctx context.Context, account *domain.LedgerAccount) error
	CreateTxFunc    func(ctx context.Context, tx usecase.Transaction, account *domain.LedgerAccount) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.LedgerAccount, error)
	GetByIDsFunc    func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.LedgerAccount, error)
	GetOrCreateFunc func(ctx context.Context, tx usecase.Transaction, id string, accountType domain.LedgerAccountType, currency string) (*domain.LedgerAccount, error)
}

func NewMockLedgerAccountRepository() *MockLedgerAccountRepository {
	return &MockLedgerAccountRepository{
		accounts: make(map[string]*domain.LedgerAccount),
	}
}

func (m *MockLedgerAccountRepository) Create(ctx context.Context, account *domain.LedgerAccount) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockLedgerAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.LedgerAccount) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	return m.Create(ctx, account)
}

func (m *MockLedgerAccountRepository) GetByID(ctx context.Context, id string) (*domain.LedgerAccount, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if la, ok := m.accounts[id]; ok {
		return la, nil
	}
	return nil, domain.ErrUnknownLedgerAccount
}

func (m *MockLedgerAccountRepository) GetByIDs(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.LedgerAccount, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.LedgerAccount
	for _, id := range ids {
		if la, ok := m.accounts[id]; ok {
			accounts = append(accounts, la)
		}
	}
	return accounts, nil
}

func (m *MockLedgerAccountRepository) GetOrCreate(ctx context.Context, tx usecase.Transaction, id string, accountType domain.LedgerAccountType, currency string) (*domain.LedgerAccount, error) {
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, tx, id, accountType, currency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, la := range m.accounts {
		if la.Type == accountType && la.Currency == currency {
			return la, nil
		}
	}
	la := &domain.LedgerAccount{
		ID:        id,
		Type:      accountType,
		Currency:  currency,
		CreatedAt: time.Now().UTC(),
	}
	m.accounts[la.ID] = la
	return la, nil
}

// MockJournalRepository is a mock implementation of JournalRepository.
type MockJournalRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.JournalEntry

	CreateWithPostingsFunc    func(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error
	GetByIDFunc               func(ctx context.Context, id string) (*domain.JournalEntry, error)
	SumPostingsFunc           func(ctx context.Context, ledgerAccountID string) (decimal.Decimal, error)
	SumPostingsByCurrencyFunc func(ctx context.Context) (map[string]decimal.Decimal, error)
}

func NewMockJournalRepository() *MockJournalRepository {
	return &MockJournalRepository{
		entries: make(map[string]*domain.JournalEntry),
	}
}

func (m *MockJournalRepository) CreateWithPostings(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if m.CreateWithPostingsFunc != nil {
		return m.CreateWithPostingsFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockJournalRepository) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if entry, ok := m.entries[id]; ok {
		return entry, nil
	}
	return nil, domain.ErrJournalEntryNotFound
}

func (m *MockJournalRepository) SumPostings(ctx context.Context, ledgerAccountID string) (decimal.Decimal, error) {
	if m.SumPostingsFunc != nil {
		return m.SumPostingsFunc(ctx, ledgerAccountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, entry := range m.entries {
		for _, p := range entry.Postings {
			if p.LedgerAccountID == ledgerAccountID {
				sum = sum.Add(p.Amount.Amount)
			}
		}
	}
	return sum, nil
}

func (m *MockJournalRepository) SumPostingsByCurrency(ctx context.Context) (map[string]decimal.Decimal, error) {
	if m.SumPostingsByCurrencyFunc != nil {
		return m.SumPostingsByCurrencyFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sums := make(map[string]decimal.Decimal)
	for _, entry := range m.entries {
		for _, p := range entry.Postings {
			sums[p.Amount.Currency] = sums[p.Amount.Currency].Add(p.Amount.Amount)
		}
	}
	return sums, nil
}

// EntryCount reports how many journal entries have been committed.
func (m *MockJournalRepository) EntryCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc                         func(ctx context.Context, account *domain.Account) error
	CreateTxFunc                       func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc                        func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc               func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc              func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	GetBusinessAccountFunc             func(ctx context.Context, businessID string) (*domain.Account, error)
	GetByLedgerAccountIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ledgerAccountIDs []string) ([]*domain.Account, error)
	UpdateBalancesFunc                 func(ctx context.Context, tx usecase.Transaction, id string, ledgerBalance, holdTotal domain.Money, updatedAt time.Time) error
	ListFunc                           func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	return m.Create(ctx, account)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) GetBusinessAccount(ctx context.Context, businessID string) (*domain.Account, error) {
	if m.GetBusinessAccountFunc != nil {
		return m.GetBusinessAccountFunc(ctx, businessID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.BusinessID == businessID && acc.Type == domain.AccountTypeBusiness {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByLedgerAccountIDsForUpdate(ctx context.Context, tx usecase.Transaction, ledgerAccountIDs []string) ([]*domain.Account, error) {
	if m.GetByLedgerAccountIDsForUpdateFunc != nil {
		return m.GetByLedgerAccountIDsForUpdateFunc(ctx, tx, ledgerAccountIDs)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ledgerAccountIDs {
		for _, acc := range m.accounts {
			if acc.LedgerAccountID == id {
				accounts = append(accounts, acc)
			}
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, id string, ledgerBalance, holdTotal domain.Money, updatedAt time.Time) error {
	if m.UpdateBalancesFunc != nil {
		return m.UpdateBalancesFunc(ctx, tx, id, ledgerBalance, holdTotal, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.LedgerBalance = ledgerBalance
		acc.HoldTotal = holdTotal
		acc.Version++
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	if offset >= len(accounts) {
		return nil, nil
	}
	accounts = accounts[offset:]
	if limit > 0 && limit < len(accounts) {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

// MockAdjustmentRepository is a mock implementation of AdjustmentRepository.
type MockAdjustmentRepository struct {
	mu          sync.RWMutex
	adjustments map[string]*domain.Adjustment

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, adjustment *domain.Adjustment) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Adjustment, error)
	ListByAccountFunc func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Adjustment, error)
}

func NewMockAdjustmentRepository() *MockAdjustmentRepository {
	return &MockAdjustmentRepository{
		adjustments: make(map[string]*domain.Adjustment),
	}
}

func (m *MockAdjustmentRepository) Create(ctx context.Context, tx usecase.Transaction, adjustment *domain.Adjustment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, adjustment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustments[adjustment.ID] = adjustment
	return nil
}

func (m *MockAdjustmentRepository) GetByID(ctx context.Context, id string) (*domain.Adjustment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if adj, ok := m.adjustments[id]; ok {
		return adj, nil
	}
	return nil, domain.ErrAdjustmentNotFound
}

func (m *MockAdjustmentRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Adjustment, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var adjustments []*domain.Adjustment
	for _, adj := range m.adjustments {
		if adj.AccountID == accountID {
			adjustments = append(adjustments, adj)
		}
	}
	return adjustments, nil
}

// MockHoldRepository is a mock implementation of HoldRepository.
type MockHoldRepository struct {
	mu    sync.RWMutex
	holds map[string]*domain.Hold

	CreateFunc                          func(ctx context.Context, tx usecase.Transaction, hold *domain.Hold) error
	GetByIDFunc                         func(ctx context.Context, id string) (*domain.Hold, error)
	GetActiveByExternalRefForUpdateFunc func(ctx context.Context, tx usecase.Transaction, externalRef string) (*domain.Hold, error)
	UpdateAmountFunc                    func(ctx context.Context, tx usecase.Transaction, id string, amount domain.Money, updatedAt time.Time) error
	UpdateStatusFunc                    func(ctx context.Context, tx usecase.Transaction, id string, status domain.HoldStatus, updatedAt time.Time) error
	ListByAccountFunc                   func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Hold, error)
}

func NewMockHoldRepository() *MockHoldRepository {
	return &MockHoldRepository{
		holds: make(map[string]*domain.Hold),
	}
}

func (m *MockHoldRepository) Create(ctx context.Context, tx usecase.Transaction, hold *domain.Hold) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, hold)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holds[hold.ID] = hold
	return nil
}

func (m *MockHoldRepository) GetByID(ctx context.Context, id string) (*domain.Hold, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if hold, ok := m.holds[id]; ok {
		return hold, nil
	}
	return nil, domain.ErrHoldNotFound
}

func (m *MockHoldRepository) GetActiveByExternalRefForUpdate(ctx context.Context, tx usecase.Transaction, externalRef string) (*domain.Hold, error) {
	if m.GetActiveByExternalRefForUpdateFunc != nil {
		return m.GetActiveByExternalRefForUpdateFunc(ctx, tx, externalRef)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, hold := range m.holds {
		if hold.ExternalRef == externalRef && hold.Status == domain.HoldStatusActive {
			return hold, nil
		}
	}
	return nil, domain.ErrHoldNotFound
}

func (m *MockHoldRepository) UpdateAmount(ctx context.Context, tx usecase.Transaction, id string, amount domain.Money, updatedAt time.Time) error {
	if m.UpdateAmountFunc != nil {
		return m.UpdateAmountFunc(ctx, tx, id, amount, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if hold, ok := m.holds[id]; ok {
		hold.Amount = amount
		hold.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrHoldNotFound
}

func (m *MockHoldRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.HoldStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if hold, ok := m.holds[id]; ok {
		hold.Status = status
		hold.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrHoldNotFound
}

func (m *MockHoldRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Hold, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var holds []*domain.Hold
	for _, hold := range m.holds {
		if hold.AccountID == accountID {
			holds = append(holds, hold)
		}
	}
	return holds, nil
}

// MockNetworkMessageRepository is a mock implementation of NetworkMessageRepository.
type MockNetworkMessageRepository struct {
	mu       sync.RWMutex
	messages []*domain.NetworkMessage

	CreateFunc                        func(ctx context.Context, message *domain.NetworkMessage) error
	CreateTxFunc                      func(ctx context.Context, tx usecase.Transaction, message *domain.NetworkMessage) error
	GetLatestByExternalRefAndTypeFunc func(ctx context.Context, externalRef string, messageType domain.NetworkMessageType) (*domain.NetworkMessage, error)
	ListByExternalRefFunc             func(ctx context.Context, externalRef string) ([]*domain.NetworkMessage, error)
	SumApprovedAmountSinceFunc        func(ctx context.Context, cardID string, since time.Time) (decimal.Decimal, error)
	CountApprovedSinceFunc            func(ctx context.Context, cardID string, since time.Time) (int64, error)
}

func NewMockNetworkMessageRepository() *MockNetworkMessageRepository {
	return &MockNetworkMessageRepository{}
}

func (m *MockNetworkMessageRepository) Create(ctx context.Context, message *domain.NetworkMessage) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Emulates the unique constraint on (external_ref, type).
	for _, existing := range m.messages {
		if existing.ExternalRef == message.ExternalRef && existing.Type == message.Type {
			return domain.ErrDuplicateNetworkMessage
		}
	}
	m.messages = append(m.messages, message)
	return nil
}

func (m *MockNetworkMessageRepository) CreateTx(ctx context.Context, tx usecase.Transaction, message *domain.NetworkMessage) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, message)
	}
	return m.Create(ctx, message)
}

func (m *MockNetworkMessageRepository) GetLatestByExternalRefAndType(ctx context.Context, externalRef string, messageType domain.NetworkMessageType) (*domain.NetworkMessage, error) {
	if m.GetLatestByExternalRefAndTypeFunc != nil {
		return m.GetLatestByExternalRefAndTypeFunc(ctx, externalRef, messageType)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.ExternalRef == externalRef && msg.Type == messageType {
			return msg, nil
		}
	}
	return nil, domain.ErrNetworkMessageNotFound
}

func (m *MockNetworkMessageRepository) ListByExternalRef(ctx context.Context, externalRef string) ([]*domain.NetworkMessage, error) {
	if m.ListByExternalRefFunc != nil {
		return m.ListByExternalRefFunc(ctx, externalRef)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var messages []*domain.NetworkMessage
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].ExternalRef == externalRef {
			messages = append(messages, m.messages[i])
		}
	}
	return messages, nil
}

func (m *MockNetworkMessageRepository) SumApprovedAmountSince(ctx context.Context, cardID string, since time.Time) (decimal.Decimal, error) {
	if m.SumApprovedAmountSinceFunc != nil {
		return m.SumApprovedAmountSinceFunc(ctx, cardID, since)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, msg := range m.messages {
		if msg.CardID == cardID && msg.Type == domain.NetworkMessageTypeAuthRequest && msg.Approved() && msg.CreatedAt.After(since) {
			sum = sum.Add(msg.Amount.Amount)
		}
	}
	return sum, nil
}

func (m *MockNetworkMessageRepository) CountApprovedSince(ctx context.Context, cardID string, since time.Time) (int64, error) {
	if m.CountApprovedSinceFunc != nil {
		return m.CountApprovedSinceFunc(ctx, cardID, since)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, msg := range m.messages {
		if msg.CardID == cardID && msg.Type == domain.NetworkMessageTypeAuthRequest && msg.Approved() && msg.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

// MessageCount reports how many messages have been recorded.
func (m *MockNetworkMessageRepository) MessageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// MockAllocationRepository is a mock implementation of AllocationRepository.
type MockAllocationRepository struct {
	mu          sync.RWMutex
	allocations map[string]*domain.Allocation

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, allocation *domain.Allocation) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.Allocation, error)
	GetChildrenFunc    func(ctx context.Context, id string) ([]*domain.Allocation, error)
	GetAncestorIDsFunc func(ctx context.Context, id string) ([]string, error)
}

func NewMockAllocationRepository() *MockAllocationRepository {
	return &MockAllocationRepository{
		allocations: make(map[string]*domain.Allocation),
	}
}

func (m *MockAllocationRepository) Create(ctx context.Context, tx usecase.Transaction, allocation *domain.Allocation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, allocation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocations[allocation.ID] = allocation
	return nil
}

func (m *MockAllocationRepository) GetByID(ctx context.Context, id string) (*domain.Allocation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if alloc, ok := m.allocations[id]; ok {
		return alloc, nil
	}
	return nil, domain.ErrAllocationNotFound
}

func (m *MockAllocationRepository) GetChildren(ctx context.Context, id string) ([]*domain.Allocation, error) {
	if m.GetChildrenFunc != nil {
		return m.GetChildrenFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var children []*domain.Allocation
	for _, alloc := range m.allocations {
		if alloc.ParentAllocationID != nil && *alloc.ParentAllocationID == id {
			children = append(children, alloc)
		}
	}
	return children, nil
}

func (m *MockAllocationRepository) GetAncestorIDs(ctx context.Context, id string) ([]string, error) {
	if m.GetAncestorIDsFunc != nil {
		return m.GetAncestorIDsFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ancestors []string
	current, ok := m.allocations[id]
	if !ok {
		return nil, domain.ErrAllocationNotFound
	}
	for current.ParentAllocationID != nil {
		parent, ok := m.allocations[*current.ParentAllocationID]
		if !ok {
			break
		}
		ancestors = append(ancestors, parent.ID)
		current = parent
	}
	return ancestors, nil
}

// MockCardRepository is a mock implementation of CardRepository.
type MockCardRepository struct {
	mu    sync.RWMutex
	cards map[string]*domain.Card

	CreateFunc       func(ctx context.Context, card *domain.Card) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.Card, error)
	UpdateStatusFunc func(ctx context.Context, id string, status domain.CardStatus, updatedAt time.Time) error
}

func NewMockCardRepository() *MockCardRepository {
	return &MockCardRepository{
		cards: make(map[string]*domain.Card),
	}
}

func (m *MockCardRepository) Create(ctx context.Context, card *domain.Card) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, card)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[card.ID] = card
	return nil
}

func (m *MockCardRepository) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if card, ok := m.cards[id]; ok {
		return card, nil
	}
	return nil, domain.ErrCardNotFound
}

func (m *MockCardRepository) UpdateStatus(ctx context.Context, id string, status domain.CardStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if card, ok := m.cards[id]; ok {
		card.Status = status
		card.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrCardNotFound
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
			if len(events) == limit {
				break
			}
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var remaining []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			remaining = append(remaining, e)
		}
	}
	m.events = remaining
	return nil
}

// Events returns a snapshot of the recorded events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := make([]*domain.OutboxEvent, len(m.events))
	copy(events, m.events)
	return events
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc   func(ctx context.Context, log *domain.AuditLog) error
	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
	ListFunc     func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := make([]*domain.AuditLog, len(m.logs))
	copy(logs, m.logs)
	return logs, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator is a mock implementation of IDGenerator. IDs are
// sequential so lock-ordering assertions stay deterministic.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%06d", m.counter)
}

// MockBalanceCache is a mock implementation of BalanceCache.
type MockBalanceCache struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal

	GetFunc    func(ctx context.Context, ledgerAccountID string) (decimal.Decimal, bool, error)
	SetFunc    func(ctx context.Context, ledgerAccountID string, balance decimal.Decimal, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, ledgerAccountIDs ...string) error
}

func NewMockBalanceCache() *MockBalanceCache {
	return &MockBalanceCache{
		balances: make(map[string]decimal.Decimal),
	}
}

func (m *MockBalanceCache) Get(ctx context.Context, ledgerAccountID string) (decimal.Decimal, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, ledgerAccountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	balance, ok := m.balances[ledgerAccountID]
	return balance, ok, nil
}

func (m *MockBalanceCache) Set(ctx context.Context, ledgerAccountID string, balance decimal.Decimal, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, ledgerAccountID, balance, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[ledgerAccountID] = balance
	return nil
}

func (m *MockBalanceCache) Delete(ctx context.Context, ledgerAccountIDs ...string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ledgerAccountIDs...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ledgerAccountIDs {
		delete(m.balances, id)
	}
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu     sync.Mutex
	values map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		values: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.values[key]; ok {
		return true, existing, nil
	}
	m.values[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = response
	return nil
}

// MockRetrier is a mock implementation of Retrier that runs the operation
// once without retries.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
