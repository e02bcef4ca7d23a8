package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds every balance-affecting database
	// transaction so a stuck caller cannot pin row locks.
	DefaultTransactionTimeout = 10 * time.Second

	// SpendLimitWindow is the rolling window spend limits are evaluated over.
	SpendLimitWindow = 24 * time.Hour

	// BalanceCacheTTL bounds staleness of cached derived balances. Commits
	// invalidate eagerly; the TTL only covers missed invalidations.
	BalanceCacheTTL = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)

// OverdraftPolicy is the per-account-type overdraft configuration flag.
type OverdraftPolicy map[string]bool

// Allows reports whether the account type may post a negative balance.
func (p OverdraftPolicy) Allows(accountType string) bool {
	return p[accountType]
}
