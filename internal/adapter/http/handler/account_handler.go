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

// AccountService defines the account behavior needed by AccountHandler.
type AccountService interface {
	CreateBusinessAccount(ctx context.Context, input usecase.CreateBusinessAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListHolds(ctx context.Context, accountID string, limit, offset int) ([]*domain.Hold, error)
}

// AdjustmentService defines the balance-mutation behavior needed by
// AccountHandler.
type AdjustmentService interface {
	Debit(ctx context.Context, accountID string, amount domain.Money) (*usecase.AdjustmentResult, error)
	Credit(ctx context.Context, accountID string, amount domain.Money) (*usecase.AdjustmentResult, error)
	GetAdjustment(ctx context.Context, id string) (*domain.Adjustment, error)
	ListAdjustmentsByAccount(ctx context.Context, input usecase.ListAdjustmentsByAccountInput) ([]*domain.Adjustment, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC    AccountService
	adjustmentUC AdjustmentService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, adjustmentUC AdjustmentService) *AccountHandler {
	return &AccountHandler{
		accountUC:    accountUC,
		adjustmentUC: adjustmentUC,
	}
}

// Create onboards a business account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBusinessAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	account, err := h.accountUC.CreateBusinessAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accountUC.ListAccounts(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Debit removes funds from an account.
func (h *AccountHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.adjustmentUC.Debit)
}

// Credit adds funds to an account.
func (h *AccountHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.adjustmentUC.Credit)
}

func (h *AccountHandler) adjust(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, accountID string, amount domain.Money) (*usecase.AdjustmentResult, error),
) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	amount, err := req.ToMoney()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	result, err := op(r.Context(), id, amount)
	if err != nil {
		writeError(w, mapDomainError(err), "adjustment failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AdjustmentResultFromUseCase(result))
}

// ListAdjustments lists an account's adjustments.
func (h *AccountHandler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	adjustments, err := h.adjustmentUC.ListAdjustmentsByAccount(r.Context(), usecase.ListAdjustmentsByAccountInput{
		AccountID: id,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list adjustments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AdjustmentsFromDomain(adjustments))
}

// GetAdjustment retrieves one adjustment by ID.
func (h *AccountHandler) GetAdjustment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing adjustment ID", "")
		return
	}

	adjustment, err := h.adjustmentUC.GetAdjustment(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get adjustment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AdjustmentFromDomain(adjustment))
}

// ListHolds lists an account's holds.
func (h *AccountHandler) ListHolds(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	holds, err := h.accountUC.ListHolds(r.Context(), id, parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list holds", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.HoldsFromDomain(holds))
}
