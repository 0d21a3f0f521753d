package entities

import "time"

// RefillInterval is the minimum time between two tier refills
const RefillInterval = 30 * 24 * time.Hour

// LedgerEntry is a user's coin account within a guild
type LedgerEntry struct {
	UserID        int64      `db:"user_id"`
	GuildID       int64      `db:"guild_id"`
	Coins         int64      `db:"coins"`
	VeilsUnveiled int        `db:"veils_unveiled"`
	LastRefillAt  *time.Time `db:"last_refill_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// CanAfford checks if the entry holds at least amount coins
func (e *LedgerEntry) CanAfford(amount int64) bool {
	return e.Coins >= amount
}

// NextRefillAt returns when the next refill becomes available.
// A nil result means a refill is available now.
func (e *LedgerEntry) NextRefillAt() *time.Time {
	if e.LastRefillAt == nil {
		return nil
	}
	next := e.LastRefillAt.Add(RefillInterval)
	return &next
}

// RefillDue reports whether a refill would apply at now
func (e *LedgerEntry) RefillDue(now time.Time) bool {
	next := e.NextRefillAt()
	return next == nil || !now.Before(*next)
}
