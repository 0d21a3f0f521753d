package interfaces

import (
	"context"

	"veilbot/domain/entities"
	"veilbot/domain/events"
)

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher holds events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}

// LedgerService defines coin operations for a single guild
type LedgerService interface {
	// EnsureAccount returns the user's entry, creating it if needed
	EnsureAccount(ctx context.Context, userID int64) (*entities.LedgerEntry, error)

	// Refill applies the tier refill if the window has elapsed
	Refill(ctx context.Context, userID int64, tier entities.Tier) (bool, error)

	// Debit removes coins if the balance covers amount
	Debit(ctx context.Context, userID, amount int64, reason events.BalanceChangeReason) (bool, error)

	// Credit adds coins and returns the new balance
	Credit(ctx context.Context, userID, amount int64, reason events.BalanceChangeReason) (int64, error)

	// RecordUnveil increments the user's unveil counter
	RecordUnveil(ctx context.Context, userID int64) error

	// GetAccount returns the user's entry, or nil
	GetAccount(ctx context.Context, userID int64) (*entities.LedgerEntry, error)
}

// GuessSubmission is an attribution attempt coming from the gateway
type GuessSubmission struct {
	GuildID     int64
	VeilID      int64
	GuesserID   int64
	CandidateID int64
}

// SettlementResult describes how a guess was settled
type SettlementResult struct {
	Outcome    entities.GuessOutcome
	Veil       *entities.Veil // State after settlement, nil when not found
	GuessCount int
	GuessCap   int
	Spent      int64 // Coins kept by the house for this guess
	Reward     int64 // Coins credited to the winner
	Tier       entities.Tier
}
