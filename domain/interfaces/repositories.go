package interfaces

import (
	"context"
	"time"

	"veilbot/domain/entities"
)

// VeilRepository defines the interface for veil data access
type VeilRepository interface {
	// Create inserts a new veil in the current guild
	Create(ctx context.Context, veil *entities.Veil) error

	// GetByID retrieves a veil, returning nil when it does not exist
	GetByID(ctx context.Context, veilID int64) (*entities.Veil, error)

	// GetPhoto returns the original photo bytes of a photo veil, nil otherwise
	GetPhoto(ctx context.Context, veilID int64) ([]byte, error)

	// CountInGuild returns how many veils were posted in the guild
	CountInGuild(ctx context.Context) (int64, error)

	// TryUnveil flips is_unveiled and increments guess_count in a single conditional
	// statement. applied is false when the veil was already unveiled or exhausted.
	TryUnveil(ctx context.Context, veilID, winnerID int64, guessCap int) (guessCount int, applied bool, err error)

	// IncrementGuessCount adds one to guess_count while the veil is still open
	IncrementGuessCount(ctx context.Context, veilID int64, guessCap int) (guessCount int, applied bool, err error)

	// IncrementGuessCountCapped adds one to guess_count without exceeding guessCap
	IncrementGuessCountCapped(ctx context.Context, veilID int64, guessCap int) (int, error)
}

// GuessRepository defines the interface for guess data access
type GuessRepository interface {
	// Exists reports whether the user has already guessed the veil
	Exists(ctx context.Context, veilID, guesserID int64) (bool, error)

	// Insert records a guess, returning false if one already existed for (veil, guesser)
	Insert(ctx context.Context, guess *entities.Guess) (bool, error)

	// MarkIncorrect clears the correctness flag of a guess that lost the unveil race
	MarkIncorrect(ctx context.Context, veilID, guesserID int64) error

	// Delete removes a guess recorded earlier in the same transaction
	Delete(ctx context.Context, veilID, guesserID int64) error

	// CountIncorrectByGuesser returns how many wrong guesses the user made in the guild
	CountIncorrectByGuesser(ctx context.Context, guesserID int64) (int64, error)

	// CountCorrect returns how many guesses in the guild unveiled a veil
	CountCorrect(ctx context.Context) (int64, error)

	// GetLeaderboard returns the top guessers in the guild by correct guesses
	GetLeaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error)
}

// LedgerRepository defines the interface for coin balances
type LedgerRepository interface {
	// Ensure creates an empty ledger entry for the user if none exists
	Ensure(ctx context.Context, userID int64) error

	// Get returns the user's entry, or nil if none exists
	Get(ctx context.Context, userID int64) (*entities.LedgerEntry, error)

	// Debit subtracts amount only if the balance covers it
	Debit(ctx context.Context, userID, amount int64) (newBalance int64, applied bool, err error)

	// Credit adds amount, creating the entry if needed
	Credit(ctx context.Context, userID, amount int64) (int64, error)

	// Refill adds amount if no refill happened within interval before now
	Refill(ctx context.Context, userID, amount int64, now time.Time, interval time.Duration) (newBalance int64, applied bool, err error)

	// IncrementUnveiled bumps the user's unveil counter
	IncrementUnveiled(ctx context.Context, userID int64) error
}

// ChannelCounterRepository defines the interface for per-channel veil numbering
type ChannelCounterRepository interface {
	// ClaimNext atomically increments and returns the channel's veil number
	ClaimNext(ctx context.Context, channelID int64) (int64, error)
}

// LatestPointerRepository defines the interface for per-channel latest veil pointers
type LatestPointerRepository interface {
	// Set points the channel at veilID and returns the previously latest veil, if any
	Set(ctx context.Context, channelID, veilID int64) (*int64, error)

	// Get returns the channel's pointer, or nil if none exists
	Get(ctx context.Context, channelID int64) (*entities.LatestPointer, error)

	// ListHydrationTargets returns every latest veil across all guilds with its guess cap
	ListHydrationTargets(ctx context.Context) ([]*entities.HydrationTarget, error)
}

// GuildSettingsRepository defines the interface for guild settings
type GuildSettingsRepository interface {
	// GetOrCreateGuildSettings retrieves settings or creates defaults
	GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error)

	// UpdateGuildSettings persists changed settings
	UpdateGuildSettings(ctx context.Context, settings *entities.GuildSettings) error
}

// CheckoutSessionRepository defines the interface for coin checkout sessions
type CheckoutSessionRepository interface {
	// Create stores a new checkout session in the current guild
	Create(ctx context.Context, session *entities.CheckoutSession) error

	// MarkFulfilled flags a matching unfulfilled session as fulfilled.
	// Returns false when the session is unknown, mismatched or already fulfilled.
	MarkFulfilled(ctx context.Context, sessionID string, userID, coins int64) (bool, error)

	// DeleteStaleUnfulfilled removes unfulfilled sessions created before olderThan in all guilds
	DeleteStaleUnfulfilled(ctx context.Context, olderThan time.Time) (int64, error)
}
