package application

import (
	"context"

	"veilbot/domain/interfaces"
)

// SystemScope is the guild ID used for maintenance work that spans every guild
const SystemScope int64 = 0

// UnitOfWork manages one database transaction and the events raised inside it
type UnitOfWork interface {
	// Begin starts a new transaction bounded by the store's transaction timeout
	Begin(ctx context.Context) error

	// Commit commits the transaction and then flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Context returns the transaction-bounded context; statements run with it
	// are cancelled when the transaction timeout expires
	Context() context.Context

	// Repository getters
	VeilRepository() interfaces.VeilRepository
	GuessRepository() interfaces.GuessRepository
	LedgerRepository() interfaces.LedgerRepository
	ChannelCounterRepository() interfaces.ChannelCounterRepository
	LatestPointerRepository() interfaces.LatestPointerRepository
	GuildSettingsRepository() interfaces.GuildSettingsRepository
	CheckoutSessionRepository() interfaces.CheckoutSessionRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForGuild creates a new UnitOfWork instance scoped to a specific guild
	CreateForGuild(guildID int64) UnitOfWork
}
