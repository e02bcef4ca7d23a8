package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finvola/cardledger/internal/adapter/http/dto"
	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CreateLedgerAccount(ctx context.Context, input usecase.CreateLedgerAccountInput) (*domain.LedgerAccount, error)
	GetBalance(ctx context.Context, ledgerAccountID string) (domain.Money, error)
	CreateJournalEntry(ctx context.Context, input usecase.CreateJournalEntryInput) (*domain.JournalEntry, error)
	GetJournalEntry(ctx context.Context, id string) (*domain.JournalEntry, error)
}

// LedgerHandler handles ledger-account and journal-entry HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// CreateLedgerAccount creates a new ledger account.
func (h *LedgerHandler) CreateLedgerAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLedgerAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	ledgerAccount, err := h.ledgerUC.CreateLedgerAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create ledger account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LedgerAccountFromDomain(ledgerAccount))
}

// GetBalance returns the derived balance of a ledger account.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing ledger account ID", "")
		return
	}

	balance, err := h.ledgerUC.GetBalance(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		LedgerAccountID: id,
		Balance:         balance.Amount,
		Currency:        balance.Currency,
	})
}

// CreateJournalEntry commits a balanced journal entry.
func (h *LedgerHandler) CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateJournalEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid posting amount", err.Error())
		return
	}

	entry, err := h.ledgerUC.CreateJournalEntry(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create journal entry", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.JournalEntryFromDomain(entry))
}

// GetJournalEntry retrieves a journal entry with its postings.
func (h *LedgerHandler) GetJournalEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing journal entry ID", "")
		return
	}

	entry, err := h.ledgerUC.GetJournalEntry(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get journal entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalEntryFromDomain(entry))
}
