package domain

import "time"

// NetworkMessageType is the kind of card-network event being processed.
type NetworkMessageType string

const (
	NetworkMessageTypeAuthRequest        NetworkMessageType = "AUTH_REQUEST"
	NetworkMessageTypeAuthCreated        NetworkMessageType = "AUTH_CREATED"
	NetworkMessageTypeAuthUpdated        NetworkMessageType = "AUTH_UPDATED"
	NetworkMessageTypeTransactionCreated NetworkMessageType = "TRANSACTION_CREATED"
)

// DeclineReason enumerates why an authorization was refused. Declines are
// decisions, not faults: the processor records them and answers the network
// synchronously.
type DeclineReason string

const (
	DeclineReasonCardNotFound           DeclineReason = "CARD_NOT_FOUND"
	DeclineReasonInvalidCardStatus      DeclineReason = "INVALID_CARD_STATUS"
	DeclineReasonLimitExceeded          DeclineReason = "LIMIT_EXCEEDED"
	DeclineReasonOperationLimitExceeded DeclineReason = "OPERATION_LIMIT_EXCEEDED"
	DeclineReasonSpendControlViolated   DeclineReason = "SPEND_CONTROL_VIOLATED"
	DeclineReasonInsufficientFunds      DeclineReason = "INSUFFICIENT_FUNDS"
)

// NetworkMessage is the append-only record of one processed network event.
// Messages sharing an ExternalRef form the chain request -> approval ->
// updates -> settlement; the chain is read most-recent-first to find the
// prior state for an authorization.
type NetworkMessage struct {
	ID            string
	Type          NetworkMessageType
	ExternalRef   string
	CardID        string
	AccountID     string
	Amount        Money
	MCC           string
	Channel       string
	DeclineReason *DeclineReason
	HoldID        *string
	AdjustmentID  *string
	CreatedAt     time.Time
}

// Approved reports whether the recorded message carried an approval.
func (m *NetworkMessage) Approved() bool {
	return m.DeclineReason == nil
}

// Decision reconstructs the decision recorded with the message, used to
// answer retried deliveries without reprocessing.
func (m *NetworkMessage) Decision() AuthDecision {
	if m.DeclineReason != nil {
		return Declined(*m.DeclineReason)
	}

	return Approved()
}

// NetworkEvent is the already-parsed inbound event handed over by the
// webhook collaborator.
type NetworkEvent struct {
	ExternalRef string
	Type        NetworkMessageType
	CardID      string
	Amount      Money
	MCC         string
	Channel     string
}

// AuthDecision is the synchronous answer returned to the webhook layer.
// Decline paths are ordinary data, never errors.
type AuthDecision struct {
	Approved      bool
	DeclineReason DeclineReason
}

// Approved builds an approval decision.
func Approved() AuthDecision {
	return AuthDecision{Approved: true}
}

// Declined builds a decline decision with its reason.
func Declined(reason DeclineReason) AuthDecision {
	return AuthDecision{Approved: false, DeclineReason: reason}
}
