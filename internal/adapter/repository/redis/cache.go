package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// BalanceCache implements usecase.BalanceCache using Redis. Postings stay
// the source of truth: journal commits delete the touched keys, the TTL
// covers anything a crash leaves behind.
type BalanceCache struct {
	client *redis.Client
	prefix string
}

// NewBalanceCache creates a new BalanceCache.
func NewBalanceCache(client *redis.Client) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "balance:",
	}
}

// Get retrieves a cached balance. The second return reports whether the key
// was present.
func (c *BalanceCache) Get(ctx context.Context, ledgerAccountID string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+ledgerAccountID).Result()
	if err != nil {
		if err == redis.Nil {
			return decimal.Zero, false, nil
		}

		return decimal.Zero, false, err
	}

	d, err := decimal.NewFromString(val)
	if err != nil {
		// A corrupt entry reads as a miss; the caller recomputes and
		// overwrites it.
		return decimal.Zero, false, nil
	}

	return d, true, nil
}

// Set stores a derived balance with TTL.
func (c *BalanceCache) Set(ctx context.Context, ledgerAccountID string, balance decimal.Decimal, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+ledgerAccountID, balance.String(), ttl).Err()
}

// Delete removes the cached balances of the given ledger accounts.
func (c *BalanceCache) Delete(ctx context.Context, ledgerAccountIDs ...string) error {
	if len(ledgerAccountIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(ledgerAccountIDs))
	for _, id := range ledgerAccountIDs {
		keys = append(keys, c.prefix+id)
	}

	return c.client.Del(ctx, keys...).Err()
}
