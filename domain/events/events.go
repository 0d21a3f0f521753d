package events

import "veilbot/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeVeilPosted     EventType = "veil_posted"
	EventTypeVeilUnveiled   EventType = "veil_unveiled"
	EventTypeGuessSettled   EventType = "guess_settled"
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeCoinsPurchased EventType = "coins_purchased"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeReason explains why coins moved
type BalanceChangeReason string

const (
	ReasonGuessCost   BalanceChangeReason = "guess_cost"
	ReasonGuessRefund BalanceChangeReason = "guess_refund"
	ReasonWinReward   BalanceChangeReason = "win_reward"
	ReasonRefill      BalanceChangeReason = "refill"
	ReasonPurchase    BalanceChangeReason = "purchase"
	ReasonAdminGrant  BalanceChangeReason = "admin_grant"
)

// VeilPostedEvent is published after a veil row and its latest pointer are committed
type VeilPostedEvent struct {
	GuildID    int64 `json:"guild_id"`
	ChannelID  int64 `json:"channel_id"`
	VeilID     int64 `json:"veil_id"`
	VeilNumber int64 `json:"veil_number"`
	AuthorID   int64 `json:"author_id"`
	IsPhoto    bool  `json:"is_photo"`
}

func (e VeilPostedEvent) Type() EventType {
	return EventTypeVeilPosted
}

// VeilUnveiledEvent is published when the first correct guess flips a veil
type VeilUnveiledEvent struct {
	GuildID    int64 `json:"guild_id"`
	ChannelID  int64 `json:"channel_id"`
	VeilID     int64 `json:"veil_id"`
	VeilNumber int64 `json:"veil_number"`
	AuthorID   int64 `json:"author_id"`
	WinnerID   int64 `json:"winner_id"`
	Reward     int64 `json:"reward"`
}

func (e VeilUnveiledEvent) Type() EventType {
	return EventTypeVeilUnveiled
}

// GuessSettledEvent records the outcome of every settled guess
type GuessSettledEvent struct {
	GuildID     int64                 `json:"guild_id"`
	VeilID      int64                 `json:"veil_id"`
	GuesserID   int64                 `json:"guesser_id"`
	CandidateID int64                 `json:"candidate_id"`
	Outcome     entities.GuessOutcome `json:"outcome"`
	GuessCount  int                   `json:"guess_count"`
	GuessCap    int                   `json:"guess_cap"`
}

func (e GuessSettledEvent) Type() EventType {
	return EventTypeGuessSettled
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID       int64               `json:"user_id"`
	GuildID      int64               `json:"guild_id"`
	ChangeAmount int64               `json:"change_amount"`
	NewBalance   int64               `json:"new_balance"`
	Reason       BalanceChangeReason `json:"reason"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// CoinsPurchasedEvent is delivered by the payment provider once a checkout completes
type CoinsPurchasedEvent struct {
	SessionID string `json:"session_id" validate:"required"`
	UserID    int64  `json:"user_id" validate:"required"`
	GuildID   int64  `json:"guild_id" validate:"required"`
	Coins     int64  `json:"coins" validate:"required,gt=0"`
}

func (e CoinsPurchasedEvent) Type() EventType {
	return EventTypeCoinsPurchased
}
