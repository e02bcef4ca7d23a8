package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardStatus is the issuance state of a card as reported by the card
// collaborator.
type CardStatus string

const (
	CardStatusActive    CardStatus = "ACTIVE"
	CardStatusFrozen    CardStatus = "FROZEN"
	CardStatusCancelled CardStatus = "CANCELLED"
)

// SpendLimits caps spend over a rolling 24h window. A nil/zero field means
// the limit is not configured.
type SpendLimits struct {
	DailyAmount *decimal.Decimal
	DailyCount  *int64
}

// SpendControls blocks categories of spend outright.
type SpendControls struct {
	BlockedMCCs     []string
	BlockedChannels []string
}

// Card is the read model the network message processor consumes. The
// issuing-side lifecycle belongs to an external collaborator; the processor
// only needs status, limits, and controls.
type Card struct {
	ID        string
	AccountID string
	Status    CardStatus
	Limits    SpendLimits
	Controls  SpendControls
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MCCBlocked reports whether the merchant category code is blocked.
func (c *Card) MCCBlocked(mcc string) bool {
	for _, blocked := range c.Controls.BlockedMCCs {
		if blocked == mcc {
			return true
		}
	}

	return false
}

// ChannelBlocked reports whether the acquisition channel is blocked.
func (c *Card) ChannelBlocked(channel string) bool {
	for _, blocked := range c.Controls.BlockedChannels {
		if blocked == channel {
			return true
		}
	}

	return false
}
