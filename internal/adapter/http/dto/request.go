package dto

import (
	"github.com/go-playground/validator/v10"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
)

var validate = validator.New()

// Validate runs struct-tag validation on a request.
func Validate(req any) error {
	return validate.Struct(req)
}

// CreateLedgerAccountRequest represents a request to create a ledger account.
type CreateLedgerAccountRequest struct {
	Type     string `json:"type" validate:"required,oneof=BUSINESS ALLOCATION NETWORK FEE"`
	Currency string `json:"currency" validate:"required,len=3"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLedgerAccountRequest) ToUseCaseInput() usecase.CreateLedgerAccountInput {
	return usecase.CreateLedgerAccountInput{
		Type:     domain.LedgerAccountType(r.Type),
		Currency: r.Currency,
	}
}

// PostingRequest is one posting line of a journal entry request.
type PostingRequest struct {
	LedgerAccountID string `json:"ledger_account_id" validate:"required"`
	Amount          string `json:"amount" validate:"required"`
	Currency        string `json:"currency" validate:"required,len=3"`
}

// CreateJournalEntryRequest represents a request to commit a journal entry.
type CreateJournalEntryRequest struct {
	Postings []PostingRequest `json:"postings" validate:"required,min=2,dive"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateJournalEntryRequest) ToUseCaseInput() (usecase.CreateJournalEntryInput, error) {
	input := usecase.CreateJournalEntryInput{
		Postings: make([]usecase.PostingInput, 0, len(r.Postings)),
	}

	for _, p := range r.Postings {
		amount, err := domain.NewMoneyFromString(p.Amount, p.Currency)
		if err != nil {
			return usecase.CreateJournalEntryInput{}, err
		}

		input.Postings = append(input.Postings, usecase.PostingInput{
			LedgerAccountID: p.LedgerAccountID,
			Amount:          amount,
		})
	}

	return input, nil
}

// CreateBusinessAccountRequest represents a request to onboard a business.
type CreateBusinessAccountRequest struct {
	BusinessID string `json:"business_id" validate:"required"`
	OwnerID    string `json:"owner_id" validate:"required"`
	Currency   string `json:"currency" validate:"required,len=3"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateBusinessAccountRequest) ToUseCaseInput() usecase.CreateBusinessAccountInput {
	return usecase.CreateBusinessAccountInput{
		BusinessID: r.BusinessID,
		OwnerID:    r.OwnerID,
		Currency:   r.Currency,
	}
}

// AdjustmentRequest represents a debit or credit request against an account.
type AdjustmentRequest struct {
	Amount   string `json:"amount" validate:"required"`
	Currency string `json:"currency" validate:"required,len=3"`
}

// ToMoney parses the request amount.
func (r *AdjustmentRequest) ToMoney() (domain.Money, error) {
	return domain.NewMoneyFromString(r.Amount, r.Currency)
}

// CreateAllocationRequest represents a request to create an allocation node.
type CreateAllocationRequest struct {
	BusinessID         string  `json:"business_id" validate:"required"`
	ParentAllocationID *string `json:"parent_allocation_id,omitempty"`
	OwnerID            string  `json:"owner_id" validate:"required"`
	Name               string  `json:"name" validate:"required"`
	Currency           string  `json:"currency" validate:"required,len=3"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAllocationRequest) ToUseCaseInput() usecase.CreateAllocationInput {
	return usecase.CreateAllocationInput{
		BusinessID:         r.BusinessID,
		ParentAllocationID: r.ParentAllocationID,
		OwnerID:            r.OwnerID,
		Name:               r.Name,
		Currency:           r.Currency,
	}
}

// ReallocateRequest represents a request to move funds between allocations.
type ReallocateRequest struct {
	FromAllocationID string `json:"from_allocation_id" validate:"required"`
	ToAllocationID   string `json:"to_allocation_id" validate:"required"`
	Amount           string `json:"amount" validate:"required"`
	Currency         string `json:"currency" validate:"required,len=3"`
}

// ToUseCaseInput converts to use case input.
func (r *ReallocateRequest) ToUseCaseInput() (usecase.ReallocateInput, error) {
	amount, err := domain.NewMoneyFromString(r.Amount, r.Currency)
	if err != nil {
		return usecase.ReallocateInput{}, err
	}

	return usecase.ReallocateInput{
		FromAllocationID: r.FromAllocationID,
		ToAllocationID:   r.ToAllocationID,
		Amount:           amount,
	}, nil
}

// NetworkEventRequest represents one inbound card-network event.
type NetworkEventRequest struct {
	ExternalRef string `json:"external_ref" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=AUTH_REQUEST AUTH_CREATED AUTH_UPDATED TRANSACTION_CREATED"`
	CardID      string `json:"card_id" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	Currency    string `json:"currency" validate:"required,len=3"`
	MCC         string `json:"mcc,omitempty"`
	Channel     string `json:"channel,omitempty"`
}

// ToDomainEvent converts to the domain event consumed by the processor.
func (r *NetworkEventRequest) ToDomainEvent() (domain.NetworkEvent, error) {
	amount, err := domain.NewMoneyFromString(r.Amount, r.Currency)
	if err != nil {
		return domain.NetworkEvent{}, err
	}

	return domain.NetworkEvent{
		ExternalRef: r.ExternalRef,
		Type:        domain.NetworkMessageType(r.Type),
		CardID:      r.CardID,
		Amount:      amount,
		MCC:         r.MCC,
		Channel:     r.Channel,
	}, nil
}
