package domain

import "time"

// AdjustmentType records which business operation changed the balance.
type AdjustmentType string

const (
	AdjustmentTypeDeposit    AdjustmentType = "DEPOSIT"
	AdjustmentTypeWithdraw   AdjustmentType = "WITHDRAW"
	AdjustmentTypeReallocate AdjustmentType = "REALLOCATE"
	AdjustmentTypeNetwork    AdjustmentType = "NETWORK"
)

// Adjustment is the business-facing record of one balance-affecting
// operation on an account. It references the journal entry that produced it
// and is immutable once created. Declined operations never create one.
type Adjustment struct {
	ID             string
	AccountID      string
	JournalEntryID string
	Type           AdjustmentType
	Amount         Money
	CreatedAt      time.Time
}
