package domain

import "time"

// Event types
const (
	EventTypeJournalEntryCreated = "journal_entry.created"
	EventTypeAdjustmentCreated   = "adjustment.created"
	EventTypeHoldCreated         = "hold.created"
	EventTypeHoldReleased        = "hold.released"
	EventTypeHoldCaptured        = "hold.captured"
	EventTypeAuthDeclined        = "authorization.declined"
	EventTypeFundsReallocated    = "allocation.reallocated"
)

// Aggregate types
const (
	AggregateTypeJournalEntry   = "journal_entry"
	AggregateTypeAdjustment     = "adjustment"
	AggregateTypeHold           = "hold"
	AggregateTypeNetworkMessage = "network_message"
	AggregateTypeAllocation     = "allocation"
)

// OutboxEvent is written in the same transaction as the state change it
// describes and published asynchronously by the event publisher.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// AdjustmentCreatedEvent payload
type AdjustmentCreatedEvent struct {
	AdjustmentID   string `json:"adjustment_id"`
	AccountID      string `json:"account_id"`
	JournalEntryID string `json:"journal_entry_id"`
	Type           string `json:"type"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
}

// HoldCreatedEvent payload
type HoldCreatedEvent struct {
	HoldID      string `json:"hold_id"`
	AccountID   string `json:"account_id"`
	ExternalRef string `json:"external_ref"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

// HoldCapturedEvent payload
type HoldCapturedEvent struct {
	HoldID         string `json:"hold_id"`
	AdjustmentID   string `json:"adjustment_id"`
	ExternalRef    string `json:"external_ref"`
	SettledAmount  string `json:"settled_amount"`
	OriginalAmount string `json:"original_amount"`
}

// AuthDeclinedEvent payload
type AuthDeclinedEvent struct {
	MessageID     string `json:"message_id"`
	ExternalRef   string `json:"external_ref"`
	CardID        string `json:"card_id"`
	DeclineReason string `json:"decline_reason"`
	Amount        string `json:"amount"`
}

// FundsReallocatedEvent payload
type FundsReallocatedEvent struct {
	JournalEntryID   string `json:"journal_entry_id"`
	FromAllocationID string `json:"from_allocation_id"`
	ToAllocationID   string `json:"to_allocation_id"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
}
