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

// AllocationService defines the behavior needed by AllocationHandler.
type AllocationService interface {
	CreateAllocation(ctx context.Context, input usecase.CreateAllocationInput) (*domain.Allocation, error)
	GetAllocation(ctx context.Context, id string) (*domain.Allocation, error)
	GetChildren(ctx context.Context, id string) ([]*domain.Allocation, error)
	GetPermissions(ctx context.Context, id string) (*domain.AllocationPermissions, error)
	Reallocate(ctx context.Context, input usecase.ReallocateInput) (*usecase.ReallocateResult, error)
	FundAllocation(ctx context.Context, allocationID string, amount domain.Money) (*usecase.AdjustmentResult, error)
	DefundAllocation(ctx context.Context, allocationID string, amount domain.Money) (*usecase.AdjustmentResult, error)
}

// AllocationHandler handles allocation-related HTTP requests.
type AllocationHandler struct {
	allocationUC AllocationService
}

// NewAllocationHandler creates a new AllocationHandler.
func NewAllocationHandler(allocationUC AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationUC: allocationUC}
}

// Create creates a new allocation node.
func (h *AllocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	allocation, err := h.allocationUC.CreateAllocation(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create allocation", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AllocationFromDomain(allocation))
}

// Get retrieves an allocation by ID.
func (h *AllocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing allocation ID", "")
		return
	}

	allocation, err := h.allocationUC.GetAllocation(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get allocation", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AllocationFromDomain(allocation))
}

// ListChildren lists the direct children of an allocation.
func (h *AllocationHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing allocation ID", "")
		return
	}

	children, err := h.allocationUC.GetChildren(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list children", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AllocationsFromDomain(children))
}

// GetPermissions returns the inherited-permission chain of an allocation.
func (h *AllocationHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing allocation ID", "")
		return
	}

	permissions, err := h.allocationUC.GetPermissions(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get permissions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AllocationPermissionsResponse{
		AllocationID: permissions.AllocationID,
		AncestorIDs:  permissions.AncestorIDs,
	})
}

// Reallocate moves funds between two allocations.
func (h *AllocationHandler) Reallocate(w http.ResponseWriter, r *http.Request) {
	var req dto.ReallocateRequest
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
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	result, err := h.allocationUC.Reallocate(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "reallocation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ReallocateResponse{
		JournalEntry:   dto.JournalEntryFromDomain(result.JournalEntry),
		FromAdjustment: dto.AdjustmentFromDomain(result.FromAdjustment),
		ToAdjustment:   dto.AdjustmentFromDomain(result.ToAdjustment),
	})
}

// Fund moves funds from the business account into the allocation.
func (h *AllocationHandler) Fund(w http.ResponseWriter, r *http.Request) {
	h.fund(w, r, h.allocationUC.FundAllocation)
}

// Defund returns funds from the allocation to the business account.
func (h *AllocationHandler) Defund(w http.ResponseWriter, r *http.Request) {
	h.fund(w, r, h.allocationUC.DefundAllocation)
}

func (h *AllocationHandler) fund(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, allocationID string, amount domain.Money) (*usecase.AdjustmentResult, error),
) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing allocation ID", "")
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
		writeError(w, mapDomainError(err), "funding operation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AdjustmentResultFromUseCase(result))
}
