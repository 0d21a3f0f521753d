package dto

// CheckoutRequest asks the payment provider for a coin pack checkout
type CheckoutRequest struct {
	GuildID    int64
	UserID     int64
	Coins      int64
	PriceCents int64
}

// CheckoutLink is a checkout session the member can open to pay
type CheckoutLink struct {
	SessionID  string
	URL        string
	Coins      int64
	PriceCents int64
}
