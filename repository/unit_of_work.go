package repository

import (
	"context"
	"errors"
	"fmt"

	"veilbot/application"
	"veilbot/database"
	"veilbot/domain/interfaces"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

const notStartedPanic = "unit of work not started - call Begin() first"

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	cancel                 context.CancelFunc
	guildID                int64
	transactionalPublisher interfaces.TransactionalEventPublisher
	veilRepo               interfaces.VeilRepository
	guessRepo              interfaces.GuessRepository
	ledgerRepo             interfaces.LedgerRepository
	counterRepo            interfaces.ChannelCounterRepository
	pointerRepo            interfaces.LatestPointerRepository
	guildSettingsRepo      interfaces.GuildSettingsRepository
	checkoutRepo           interfaces.CheckoutSessionRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		db: db,
	}
}

// UnitOfWorkFactory builds guild-scoped units of work over a shared connection
type UnitOfWorkFactory struct {
	db *database.DB
}

// CreateForGuildWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *UnitOfWorkFactory) CreateForGuildWithPublisher(guildID int64, transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		guildID:                guildID,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	txCtx, cancel := context.WithTimeout(ctx, u.db.TxTimeout())
	tx, err := u.db.Begin(txCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = txCtx
	u.cancel = cancel

	// Create guild-scoped repositories with the transaction
	u.veilRepo = NewVeilRepositoryScoped(tx, u.guildID)
	u.guessRepo = NewGuessRepositoryScoped(tx, u.guildID)
	u.ledgerRepo = NewLedgerRepositoryScoped(tx, u.guildID)
	u.counterRepo = NewChannelCounterRepository(tx)
	u.pointerRepo = NewLatestPointerRepositoryScoped(tx, u.guildID)
	u.guildSettingsRepo = NewGuildSettingsRepositoryWithTx(tx) // Guild settings don't need scoping
	u.checkoutRepo = NewCheckoutSessionRepositoryScoped(tx, u.guildID)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	defer u.release()

	if err := u.tx.Commit(u.ctx); err != nil {
		if u.transactionalPublisher != nil {
			u.transactionalPublisher.Discard()
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalPublisher != nil {
		if err := u.transactionalPublisher.Flush(context.Background()); err != nil {
			log.WithError(err).WithField("guild_id", u.guildID).Error("Failed to flush events after commit")
		}
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}
	defer u.release()

	// The transaction context may already be past its deadline
	err := u.tx.Rollback(context.Background())
	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// Context returns the context bounded by the transaction timeout
func (u *unitOfWork) Context() context.Context {
	if u.ctx == nil {
		panic(notStartedPanic)
	}
	return u.ctx
}

func (u *unitOfWork) release() {
	u.tx = nil
	if u.cancel != nil {
		u.cancel()
		u.cancel = nil
	}
}

// VeilRepository returns the veil repository for this unit of work
func (u *unitOfWork) VeilRepository() interfaces.VeilRepository {
	if u.veilRepo == nil {
		panic(notStartedPanic)
	}
	return u.veilRepo
}

// GuessRepository returns the guess repository for this unit of work
func (u *unitOfWork) GuessRepository() interfaces.GuessRepository {
	if u.guessRepo == nil {
		panic(notStartedPanic)
	}
	return u.guessRepo
}

// LedgerRepository returns the ledger repository for this unit of work
func (u *unitOfWork) LedgerRepository() interfaces.LedgerRepository {
	if u.ledgerRepo == nil {
		panic(notStartedPanic)
	}
	return u.ledgerRepo
}

// ChannelCounterRepository returns the channel counter repository for this unit of work
func (u *unitOfWork) ChannelCounterRepository() interfaces.ChannelCounterRepository {
	if u.counterRepo == nil {
		panic(notStartedPanic)
	}
	return u.counterRepo
}

// LatestPointerRepository returns the latest pointer repository for this unit of work
func (u *unitOfWork) LatestPointerRepository() interfaces.LatestPointerRepository {
	if u.pointerRepo == nil {
		panic(notStartedPanic)
	}
	return u.pointerRepo
}

// GuildSettingsRepository returns the guild settings repository for this unit of work
func (u *unitOfWork) GuildSettingsRepository() interfaces.GuildSettingsRepository {
	if u.guildSettingsRepo == nil {
		panic(notStartedPanic)
	}
	return u.guildSettingsRepo
}

// CheckoutSessionRepository returns the checkout session repository for this unit of work
func (u *unitOfWork) CheckoutSessionRepository() interfaces.CheckoutSessionRepository {
	if u.checkoutRepo == nil {
		panic(notStartedPanic)
	}
	return u.checkoutRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic(notStartedPanic)
	}
	return u.transactionalPublisher
}
