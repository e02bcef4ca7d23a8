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

// NetworkService defines the behavior needed by NetworkHandler.
type NetworkService interface {
	ProcessNetworkMessage(ctx context.Context, event domain.NetworkEvent) (*usecase.ProcessResult, error)
	ListMessagesByExternalRef(ctx context.Context, externalRef string) ([]*domain.NetworkMessage, error)
}

// NetworkHandler receives card-network events and answers with the
// authorization decision. Declines are 200s carrying approved=false; only
// malformed requests and infrastructure failures are errors.
type NetworkHandler struct {
	networkUC NetworkService
}

// NewNetworkHandler creates a new NetworkHandler.
func NewNetworkHandler(networkUC NetworkService) *NetworkHandler {
	return &NetworkHandler{networkUC: networkUC}
}

// Process processes one inbound network event.
func (h *NetworkHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req dto.NetworkEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	event, err := req.ToDomainEvent()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	result, err := h.networkUC.ProcessNetworkMessage(r.Context(), event)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to process network message", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DecisionFromResult(result))
}

// ListByExternalRef returns the full message chain for one authorization,
// most recent first.
func (h *NetworkHandler) ListByExternalRef(w http.ResponseWriter, r *http.Request) {
	externalRef := chi.URLParam(r, "externalRef")
	if externalRef == "" {
		writeError(w, http.StatusBadRequest, "missing external reference", "")
		return
	}

	messages, err := h.networkUC.ListMessagesByExternalRef(r.Context(), externalRef)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list messages", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.NetworkMessagesFromDomain(messages))
}
