package domain

import (
	"time"
)

// AccountType mirrors the ledger account type of the account's backing
// ledger account. Overdraft policy is configured per type.
type AccountType string

const (
	AccountTypeBusiness   AccountType = "BUSINESS"
	AccountTypeAllocation AccountType = "ALLOCATION"
)

// Account is the business-facing view over one ledger account. LedgerBalance
// is a cached projection of the posting sum, maintained in the same
// transaction as every journal entry commit; HoldTotal tracks authorization
// holds that have not settled and therefore have no postings yet.
type Account struct {
	ID              string
	BusinessID      string
	AllocationID    *string
	LedgerAccountID string
	OwnerID         string
	Type            AccountType
	Currency        string
	LedgerBalance   Money
	HoldTotal       Money
	AllowOverdraft  bool
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AvailableBalance is the posted balance minus outstanding holds.
func (a *Account) AvailableBalance() Money {
	available, _ := a.LedgerBalance.Sub(a.HoldTotal)
	return available
}

// ValidateDebit checks whether the account can be debited by amount without
// violating its overdraft policy. The check runs against the available
// balance so active holds count against spendable funds.
func (a *Account) ValidateDebit(amount Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if a.AllowOverdraft {
		return nil
	}

	remaining, err := a.AvailableBalance().Sub(amount)
	if err != nil {
		return err
	}

	if remaining.IsNegative() {
		return ErrInsufficientFunds
	}

	return nil
}

// ValidateCredit checks whether the account can be credited by amount.
func (a *Account) ValidateCredit(amount Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	return a.LedgerBalance.assertSameCurrency(amount)
}
