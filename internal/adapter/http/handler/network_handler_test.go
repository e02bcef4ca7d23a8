package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finvola/cardledger/internal/adapter/http/dto"
	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
)

type networkServiceStub struct {
	processFn func(ctx context.Context, event domain.NetworkEvent) (*usecase.ProcessResult, error)
	listFn    func(ctx context.Context, externalRef string) ([]*domain.NetworkMessage, error)
}

func (s *networkServiceStub) ProcessNetworkMessage(ctx context.Context, event domain.NetworkEvent) (*usecase.ProcessResult, error) {
	return s.processFn(ctx, event)
}

func (s *networkServiceStub) ListMessagesByExternalRef(ctx context.Context, externalRef string) ([]*domain.NetworkMessage, error) {
	return s.listFn(ctx, externalRef)
}

func authRequestBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(dto.NetworkEventRequest{
		ExternalRef: "auth-1",
		Type:        "AUTH_REQUEST",
		CardID:      "card-1",
		Amount:      "40",
		Currency:    "USD",
		MCC:         "5411",
		Channel:     "POS",
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	return body
}

func TestNetworkHandler_Process_Approved(t *testing.T) {
	holdID := "hold-1"
	message := &domain.NetworkMessage{
		ID:          "msg-1",
		Type:        domain.NetworkMessageTypeAuthRequest,
		ExternalRef: "auth-1",
		CardID:      "card-1",
		AccountID:   "acc-1",
		Amount:      domain.NewMoney(decimal.NewFromInt(40), "USD"),
		HoldID:      &holdID,
	}

	var captured domain.NetworkEvent
	handler := NewNetworkHandler(&networkServiceStub{
		processFn: func(ctx context.Context, event domain.NetworkEvent) (*usecase.ProcessResult, error) {
			captured = event
			return &usecase.ProcessResult{Decision: domain.Approved(), Message: message}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/network/messages", bytes.NewReader(authRequestBody(t)))
	rec := httptest.NewRecorder()

	handler.Process(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.ExternalRef != "auth-1" || captured.Type != domain.NetworkMessageTypeAuthRequest {
		t.Fatalf("expected event to match request, got %+v", captured)
	}

	var resp dto.DecisionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Approved {
		t.Fatalf("expected approval, got %+v", resp)
	}
	if resp.Message == nil || resp.Message.HoldID == nil || *resp.Message.HoldID != "hold-1" {
		t.Fatalf("expected message with hold-1, got %+v", resp.Message)
	}
}

func TestNetworkHandler_Process_DeclineIsOK(t *testing.T) {
	reason := domain.DeclineReasonInsufficientFunds
	message := &domain.NetworkMessage{
		ID:            "msg-1",
		Type:          domain.NetworkMessageTypeAuthRequest,
		ExternalRef:   "auth-1",
		CardID:        "card-1",
		Amount:        domain.NewMoney(decimal.NewFromInt(40), "USD"),
		DeclineReason: &reason,
	}

	handler := NewNetworkHandler(&networkServiceStub{
		processFn: func(ctx context.Context, event domain.NetworkEvent) (*usecase.ProcessResult, error) {
			return &usecase.ProcessResult{Decision: domain.Declined(reason), Message: message}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/network/messages", bytes.NewReader(authRequestBody(t)))
	rec := httptest.NewRecorder()

	handler.Process(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("declines are decisions, expected 200, got %d", rec.Code)
	}

	var resp dto.DecisionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Approved || resp.DeclineReason != string(domain.DeclineReasonInsufficientFunds) {
		t.Fatalf("expected insufficient-funds decline, got %+v", resp)
	}
}

func TestNetworkHandler_Process_Replayed(t *testing.T) {
	message := &domain.NetworkMessage{
		ID:          "msg-1",
		Type:        domain.NetworkMessageTypeTransactionCreated,
		ExternalRef: "auth-1",
		CardID:      "card-1",
		Amount:      domain.NewMoney(decimal.NewFromInt(40), "USD"),
	}

	handler := NewNetworkHandler(&networkServiceStub{
		processFn: func(ctx context.Context, event domain.NetworkEvent) (*usecase.ProcessResult, error) {
			return &usecase.ProcessResult{Decision: domain.Approved(), Message: message, Replayed: true}, nil
		},
	})

	body, _ := json.Marshal(dto.NetworkEventRequest{
		ExternalRef: "auth-1",
		Type:        "TRANSACTION_CREATED",
		CardID:      "card-1",
		Amount:      "40",
		Currency:    "USD",
	})

	req := httptest.NewRequest(http.MethodPost, "/network/messages", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Process(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.DecisionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Replayed {
		t.Fatalf("expected replayed flag, got %+v", resp)
	}
}

func TestNetworkHandler_Process_UnknownType(t *testing.T) {
	handler := NewNetworkHandler(&networkServiceStub{
		processFn: func(ctx context.Context, event domain.NetworkEvent) (*usecase.ProcessResult, error) {
			t.Fatal("usecase should not be called")
			return nil, nil
		},
	})

	body := []byte(`{"external_ref":"auth-1","type":"AUTH_VOIDED","card_id":"card-1","amount":"40","currency":"USD"}`)
	req := httptest.NewRequest(http.MethodPost, "/network/messages", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Process(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown message type, got %d", rec.Code)
	}
}

func TestNetworkHandler_ListByExternalRef(t *testing.T) {
	messages := []*domain.NetworkMessage{
		{ID: "msg-2", Type: domain.NetworkMessageTypeTransactionCreated, ExternalRef: "auth-1", Amount: domain.NewMoney(decimal.NewFromInt(40), "USD")},
		{ID: "msg-1", Type: domain.NetworkMessageTypeAuthRequest, ExternalRef: "auth-1", Amount: domain.NewMoney(decimal.NewFromInt(40), "USD")},
	}

	handler := NewNetworkHandler(&networkServiceStub{
		listFn: func(ctx context.Context, externalRef string) ([]*domain.NetworkMessage, error) {
			if externalRef != "auth-1" {
				t.Fatalf("expected external ref auth-1, got %s", externalRef)
			}
			return messages, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/network/messages/auth-1", nil)
	req = withURLParam(req, "externalRef", "auth-1")
	rec := httptest.NewRecorder()

	handler.ListByExternalRef(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*dto.NetworkMessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 || resp[0].ID != "msg-2" {
		t.Fatalf("expected chain most recent first, got %+v", resp)
	}
}
