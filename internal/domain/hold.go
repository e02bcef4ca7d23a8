package domain

import "time"

// HoldStatus is the lifecycle state of an authorization hold.
type HoldStatus string

const (
	HoldStatusActive   HoldStatus = "ACTIVE"
	HoldStatusReleased HoldStatus = "RELEASED"
	HoldStatusCaptured HoldStatus = "CAPTURED"
)

// Hold is a provisional reservation of funds for an authorized card
// transaction. Holds live outside the general ledger: they raise the
// account's HoldTotal but create no postings until settlement captures them.
// ExternalRef links the hold to the card network's correlation ID.
type Hold struct {
	ID          string
	AccountID   string
	ExternalRef string
	Amount      Money
	Status      HoldStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the hold amount.
func (h *Hold) Validate() error {
	if !h.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	return nil
}
