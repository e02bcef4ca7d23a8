package dto

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finvola/cardledger/internal/domain"
)

func TestValidateCreateBusinessAccountRequest(t *testing.T) {
	tests := []struct {
		name    string
		request CreateBusinessAccountRequest
		wantErr bool
	}{
		{
			name:    "valid",
			request: CreateBusinessAccountRequest{BusinessID: "biz-1", OwnerID: "user-1", Currency: "USD"},
		},
		{
			name:    "missing business",
			request: CreateBusinessAccountRequest{OwnerID: "user-1", Currency: "USD"},
			wantErr: true,
		},
		{
			name:    "bad currency length",
			request: CreateBusinessAccountRequest{BusinessID: "biz-1", OwnerID: "user-1", Currency: "USDX"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.request)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNetworkEventRequest(t *testing.T) {
	valid := NetworkEventRequest{
		ExternalRef: "auth-1",
		Type:        "AUTH_REQUEST",
		CardID:      "card-1",
		Amount:      "25.00",
		Currency:    "USD",
	}
	if err := Validate(&valid); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	unknownType := valid
	unknownType.Type = "AUTH_VOIDED"
	if err := Validate(&unknownType); err == nil {
		t.Fatalf("expected unknown message type to fail validation")
	}
}

func TestNetworkEventRequestToDomainEvent(t *testing.T) {
	req := NetworkEventRequest{
		ExternalRef: "auth-1",
		Type:        "AUTH_REQUEST",
		CardID:      "card-1",
		Amount:      "25.50",
		Currency:    "USD",
		MCC:         "5411",
		Channel:     "POS",
	}

	event, err := req.ToDomainEvent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.Type != domain.NetworkMessageTypeAuthRequest {
		t.Fatalf("expected AUTH_REQUEST, got %s", event.Type)
	}
	if !event.Amount.Equal(domain.NewMoney(decimal.RequireFromString("25.50"), "USD")) {
		t.Fatalf("expected 25.50 USD, got %s", event.Amount)
	}

	req.Amount = "not-a-number"
	if _, err := req.ToDomainEvent(); err == nil {
		t.Fatalf("expected parse error for bad amount")
	}
}

func TestCreateJournalEntryRequestToUseCaseInput(t *testing.T) {
	req := CreateJournalEntryRequest{
		Postings: []PostingRequest{
			{LedgerAccountID: "la-1", Amount: "-10", Currency: "USD"},
			{LedgerAccountID: "la-2", Amount: "10", Currency: "USD"},
		},
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(input.Postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(input.Postings))
	}
	if !input.Postings[0].Amount.Amount.Equal(decimal.NewFromInt(-10)) {
		t.Fatalf("expected -10, got %s", input.Postings[0].Amount.Amount)
	}

	req.Postings[1].Amount = "ten"
	if _, err := req.ToUseCaseInput(); err == nil {
		t.Fatalf("expected parse error for bad posting amount")
	}
}

func TestReallocateRequestToUseCaseInput(t *testing.T) {
	req := ReallocateRequest{
		FromAllocationID: "alloc-1",
		ToAllocationID:   "alloc-2",
		Amount:           "50",
		Currency:         "USD",
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if input.FromAllocationID != "alloc-1" || input.ToAllocationID != "alloc-2" {
		t.Fatalf("expected allocation IDs to carry over, got %+v", input)
	}
	if !input.Amount.Equal(domain.NewMoney(decimal.NewFromInt(50), "USD")) {
		t.Fatalf("expected 50 USD, got %s", input.Amount)
	}
}
