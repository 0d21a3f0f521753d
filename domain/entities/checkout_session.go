package entities

import "time"

// CheckoutSession tracks a coin purchase started through the payment provider
type CheckoutSession struct {
	SessionID   string     `db:"session_id"`
	UserID      int64      `db:"user_id"`
	GuildID     int64      `db:"guild_id"`
	Coins       int64      `db:"coins"`
	PriceCents  int64      `db:"price_cents"`
	CreatedAt   time.Time  `db:"created_at"`
	FulfilledAt *time.Time `db:"fulfilled_at"`
}

// IsFulfilled reports whether the coins have been credited
func (s *CheckoutSession) IsFulfilled() bool {
	return s.FulfilledAt != nil
}
