package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerAccountType classifies the internal bookkeeping bucket a ledger
// account represents.
type LedgerAccountType string

const (
	LedgerAccountTypeBusiness   LedgerAccountType = "BUSINESS"
	LedgerAccountTypeAllocation LedgerAccountType = "ALLOCATION"
	LedgerAccountTypeNetwork    LedgerAccountType = "NETWORK"
	LedgerAccountTypeFee        LedgerAccountType = "FEE"
)

// LedgerAccount is an internal bookkeeping bucket. It is created once and
// never mutated; its balance is derived by summing its postings.
type LedgerAccount struct {
	ID        string
	Type      LedgerAccountType
	Currency  string
	CreatedAt time.Time
}

// Posting is one signed line item against a ledger account. It is immutable
// and belongs to exactly one journal entry.
type Posting struct {
	ID              string
	JournalEntryID  string
	LedgerAccountID string
	Amount          Money
	CreatedAt       time.Time
}

// JournalEntry is an atomic, balanced group of postings. It is committed
// together with all of its postings or not at all.
type JournalEntry struct {
	ID        string
	CreatedAt time.Time
	Postings  []Posting
}

// Validate enforces the double-entry invariant: at least two postings, and
// the signed amounts sum to zero within every currency present.
func (j *JournalEntry) Validate() error {
	if len(j.Postings) < 2 {
		return fmt.Errorf("%w: journal entry needs at least two postings", ErrLedgerImbalance)
	}

	sums := make(map[string]decimal.Decimal)
	for _, p := range j.Postings {
		sums[p.Amount.Currency] = sums[p.Amount.Currency].Add(p.Amount.Amount)
	}

	for currency, sum := range sums {
		if !sum.IsZero() {
			return fmt.Errorf("%w: %s postings sum to %s", ErrLedgerImbalance, currency, sum.String())
		}
	}

	return nil
}

// LedgerAccountIDs returns the distinct ledger accounts the entry touches.
func (j *JournalEntry) LedgerAccountIDs() []string {
	seen := make(map[string]bool)

	var ids []string
	for _, p := range j.Postings {
		if !seen[p.LedgerAccountID] {
			seen[p.LedgerAccountID] = true
			ids = append(ids, p.LedgerAccountID)
		}
	}

	return ids
}

// BalanceDeltas returns the signed net effect of the entry per ledger account.
// Postings within one entry share a currency per account, so the deltas are
// plain decimals keyed by ledger account ID.
func (j *JournalEntry) BalanceDeltas() map[string]decimal.Decimal {
	deltas := make(map[string]decimal.Decimal)
	for _, p := range j.Postings {
		deltas[p.LedgerAccountID] = deltas[p.LedgerAccountID].Add(p.Amount.Amount)
	}

	return deltas
}
