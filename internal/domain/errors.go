package domain

import "errors"

var (
	// Money errors
	ErrCurrencyMismatch = errors.New("operand currencies differ")
	ErrInvalidAmount    = errors.New("amount must be positive")

	// Ledger errors
	ErrLedgerImbalance      = errors.New("postings do not sum to zero per currency")
	ErrUnknownLedgerAccount = errors.New("ledger account not found")
	ErrJournalEntryNotFound = errors.New("journal entry not found")

	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient available balance")

	// Adjustment errors
	ErrAdjustmentNotFound = errors.New("adjustment not found")

	// Allocation errors
	ErrAllocationNotFound = errors.New("allocation not found")
	ErrSameAllocation     = errors.New("cannot reallocate to the same allocation")

	// Card / network errors
	ErrCardNotFound            = errors.New("card not found")
	ErrHoldNotFound            = errors.New("hold not found")
	ErrHoldNotActive           = errors.New("hold is not active")
	ErrNetworkMessageNotFound  = errors.New("network message not found")
	ErrDuplicateNetworkMessage = errors.New("message already recorded for this external ref and type")
)
