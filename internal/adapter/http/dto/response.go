package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LedgerAccountResponse represents a ledger account in API responses.
type LedgerAccountResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// LedgerAccountFromDomain converts a domain ledger account to a response.
func LedgerAccountFromDomain(la *domain.LedgerAccount) *LedgerAccountResponse {
	return &LedgerAccountResponse{
		ID:        la.ID,
		Type:      string(la.Type),
		Currency:  la.Currency,
		CreatedAt: la.CreatedAt,
	}
}

// BalanceResponse represents a derived ledger account balance.
type BalanceResponse struct {
	LedgerAccountID string          `json:"ledger_account_id"`
	Balance         decimal.Decimal `json:"balance"`
	Currency        string          `json:"currency"`
}

// PostingResponse represents a posting in API responses.
type PostingResponse struct {
	ID              string          `json:"id"`
	LedgerAccountID string          `json:"ledger_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	CreatedAt       time.Time       `json:"created_at"`
}

// JournalEntryResponse represents a journal entry with its postings.
type JournalEntryResponse struct {
	ID        string            `json:"id"`
	Postings  []PostingResponse `json:"postings"`
	CreatedAt time.Time         `json:"created_at"`
}

// JournalEntryFromDomain converts a domain journal entry to a response.
func JournalEntryFromDomain(e *domain.JournalEntry) *JournalEntryResponse {
	resp := &JournalEntryResponse{
		ID:        e.ID,
		Postings:  make([]PostingResponse, len(e.Postings)),
		CreatedAt: e.CreatedAt,
	}

	for i, p := range e.Postings {
		resp.Postings[i] = PostingResponse{
			ID:              p.ID,
			LedgerAccountID: p.LedgerAccountID,
			Amount:          p.Amount.Amount,
			Currency:        p.Amount.Currency,
			CreatedAt:       p.CreatedAt,
		}
	}

	return resp
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID               string          `json:"id"`
	BusinessID       string          `json:"business_id"`
	AllocationID     *string         `json:"allocation_id,omitempty"`
	LedgerAccountID  string          `json:"ledger_account_id"`
	OwnerID          string          `json:"owner_id"`
	Type             string          `json:"type"`
	Currency         string          `json:"currency"`
	LedgerBalance    decimal.Decimal `json:"ledger_balance"`
	HoldTotal        decimal.Decimal `json:"hold_total"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:               a.ID,
		BusinessID:       a.BusinessID,
		AllocationID:     a.AllocationID,
		LedgerAccountID:  a.LedgerAccountID,
		OwnerID:          a.OwnerID,
		Type:             string(a.Type),
		Currency:         a.Currency,
		LedgerBalance:    a.LedgerBalance.Amount,
		HoldTotal:        a.HoldTotal.Amount,
		AvailableBalance: a.AvailableBalance().Amount,
		Version:          a.Version,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// AdjustmentResponse represents an adjustment in API responses.
type AdjustmentResponse struct {
	ID             string          `json:"id"`
	AccountID      string          `json:"account_id"`
	JournalEntryID string          `json:"journal_entry_id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AdjustmentFromDomain converts a domain adjustment to a response.
func AdjustmentFromDomain(a *domain.Adjustment) *AdjustmentResponse {
	return &AdjustmentResponse{
		ID:             a.ID,
		AccountID:      a.AccountID,
		JournalEntryID: a.JournalEntryID,
		Type:           string(a.Type),
		Amount:         a.Amount.Amount,
		Currency:       a.Amount.Currency,
		CreatedAt:      a.CreatedAt,
	}
}

// AdjustmentsFromDomain converts domain adjustments to responses.
func AdjustmentsFromDomain(adjustments []*domain.Adjustment) []*AdjustmentResponse {
	result := make([]*AdjustmentResponse, len(adjustments))
	for i, a := range adjustments {
		result[i] = AdjustmentFromDomain(a)
	}
	return result
}

// AdjustmentResultResponse carries an adjustment with the balance after it.
type AdjustmentResultResponse struct {
	Adjustment *AdjustmentResponse `json:"adjustment"`
	Balance    decimal.Decimal     `json:"balance"`
	Currency   string              `json:"currency"`
}

// AdjustmentResultFromUseCase converts a use case result to a response.
func AdjustmentResultFromUseCase(r *usecase.AdjustmentResult) *AdjustmentResultResponse {
	return &AdjustmentResultResponse{
		Adjustment: AdjustmentFromDomain(r.Adjustment),
		Balance:    r.Balance.Amount,
		Currency:   r.Balance.Currency,
	}
}

// HoldResponse represents a hold in API responses.
type HoldResponse struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	ExternalRef string          `json:"external_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// HoldFromDomain converts a domain hold to a response.
func HoldFromDomain(h *domain.Hold) *HoldResponse {
	return &HoldResponse{
		ID:          h.ID,
		AccountID:   h.AccountID,
		ExternalRef: h.ExternalRef,
		Amount:      h.Amount.Amount,
		Currency:    h.Amount.Currency,
		Status:      string(h.Status),
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

// HoldsFromDomain converts domain holds to responses.
func HoldsFromDomain(holds []*domain.Hold) []*HoldResponse {
	result := make([]*HoldResponse, len(holds))
	for i, h := range holds {
		result[i] = HoldFromDomain(h)
	}
	return result
}

// AllocationResponse represents an allocation node in API responses.
type AllocationResponse struct {
	ID                 string    `json:"id"`
	BusinessID         string    `json:"business_id"`
	ParentAllocationID *string   `json:"parent_allocation_id,omitempty"`
	AccountID          string    `json:"account_id"`
	Name               string    `json:"name"`
	CreatedAt          time.Time `json:"created_at"`
}

// AllocationFromDomain converts a domain allocation to a response.
func AllocationFromDomain(a *domain.Allocation) *AllocationResponse {
	return &AllocationResponse{
		ID:                 a.ID,
		BusinessID:         a.BusinessID,
		ParentAllocationID: a.ParentAllocationID,
		AccountID:          a.AccountID,
		Name:               a.Name,
		CreatedAt:          a.CreatedAt,
	}
}

// AllocationsFromDomain converts domain allocations to responses.
func AllocationsFromDomain(allocations []*domain.Allocation) []*AllocationResponse {
	result := make([]*AllocationResponse, len(allocations))
	for i, a := range allocations {
		result[i] = AllocationFromDomain(a)
	}
	return result
}

// AllocationPermissionsResponse represents the inherited-permission chain.
type AllocationPermissionsResponse struct {
	AllocationID string   `json:"allocation_id"`
	AncestorIDs  []string `json:"ancestor_ids"`
}

// ReallocateResponse carries the outcome of a reallocation.
type ReallocateResponse struct {
	JournalEntry   *JournalEntryResponse `json:"journal_entry"`
	FromAdjustment *AdjustmentResponse   `json:"from_adjustment"`
	ToAdjustment   *AdjustmentResponse   `json:"to_adjustment"`
}

// NetworkMessageResponse represents a processed network message.
type NetworkMessageResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	ExternalRef   string          `json:"external_ref"`
	CardID        string          `json:"card_id"`
	AccountID     string          `json:"account_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	MCC           string          `json:"mcc,omitempty"`
	Channel       string          `json:"channel,omitempty"`
	DeclineReason *string         `json:"decline_reason,omitempty"`
	HoldID        *string         `json:"hold_id,omitempty"`
	AdjustmentID  *string         `json:"adjustment_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NetworkMessageFromDomain converts a domain network message to a response.
func NetworkMessageFromDomain(m *domain.NetworkMessage) *NetworkMessageResponse {
	resp := &NetworkMessageResponse{
		ID:           m.ID,
		Type:         string(m.Type),
		ExternalRef:  m.ExternalRef,
		CardID:       m.CardID,
		AccountID:    m.AccountID,
		Amount:       m.Amount.Amount,
		Currency:     m.Amount.Currency,
		MCC:          m.MCC,
		Channel:      m.Channel,
		HoldID:       m.HoldID,
		AdjustmentID: m.AdjustmentID,
		CreatedAt:    m.CreatedAt,
	}

	if m.DeclineReason != nil {
		reason := string(*m.DeclineReason)
		resp.DeclineReason = &reason
	}

	return resp
}

// NetworkMessagesFromDomain converts domain network messages to responses.
func NetworkMessagesFromDomain(messages []*domain.NetworkMessage) []*NetworkMessageResponse {
	result := make([]*NetworkMessageResponse, len(messages))
	for i, m := range messages {
		result[i] = NetworkMessageFromDomain(m)
	}
	return result
}

// DecisionResponse is the synchronous answer to a network event.
type DecisionResponse struct {
	Approved      bool                    `json:"approved"`
	DeclineReason string                  `json:"decline_reason,omitempty"`
	Replayed      bool                    `json:"replayed,omitempty"`
	Message       *NetworkMessageResponse `json:"message"`
}

// DecisionFromResult converts a processor result to a response.
func DecisionFromResult(r *usecase.ProcessResult) *DecisionResponse {
	return &DecisionResponse{
		Approved:      r.Decision.Approved,
		DeclineReason: string(r.Decision.DeclineReason),
		Replayed:      r.Replayed,
		Message:       NetworkMessageFromDomain(r.Message),
	}
}

// ReconciliationResponse represents one account's reconciliation result.
type ReconciliationResponse struct {
	AccountID       string          `json:"account_id"`
	LedgerAccountID string          `json:"ledger_account_id"`
	CachedBalance   decimal.Decimal `json:"cached_balance"`
	DerivedBalance  decimal.Decimal `json:"derived_balance"`
	Difference      decimal.Decimal `json:"difference"`
	Consistent      bool            `json:"consistent"`
	CheckedAt       time.Time       `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to a response.
func ReconciliationFromUseCase(r *usecase.AccountReconciliation) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:       r.AccountID,
		LedgerAccountID: r.LedgerAccountID,
		CachedBalance:   r.CachedBalance.Amount,
		DerivedBalance:  r.DerivedBalance.Amount,
		Difference:      r.Difference,
		Consistent:      r.Consistent,
		CheckedAt:       r.CheckedAt,
	}
}

// ConsistencyResponse represents the ledger-wide zero-sum check.
type ConsistencyResponse struct {
	Consistent     bool                       `json:"consistent"`
	SumsByCurrency map[string]decimal.Decimal `json:"sums_by_currency"`
	CheckedAt      time.Time                  `json:"checked_at"`
}

// ConsistencyFromUseCase converts a consistency report to a response.
func ConsistencyFromUseCase(r *usecase.ConsistencyReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		Consistent:     r.Consistent,
		SumsByCurrency: r.SumsByCurrency,
		CheckedAt:      r.CheckedAt,
	}
}
