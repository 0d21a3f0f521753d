package application

import (
	"context"
	"fmt"
	"time"

	"veilbot/domain/entities"
	"veilbot/domain/events"
	"veilbot/domain/services"

	log "github.com/sirupsen/logrus"
)

// AdminOperations are operator actions run from the command line
type AdminOperations struct {
	uowFactory UnitOfWorkFactory
}

// NewAdminOperations creates a new AdminOperations
func NewAdminOperations(uowFactory UnitOfWorkFactory) *AdminOperations {
	return &AdminOperations{uowFactory: uowFactory}
}

// GrantCoins credits coins to a member and returns the new balance
func (a *AdminOperations) GrantCoins(ctx context.Context, guildID, userID, amount int64) (int64, error) {
	uow := a.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledger := services.NewLedgerService(uow.LedgerRepository(), uow.EventBus(), guildID)
	balance, err := ledger.Credit(uow.Context(), userID, amount, events.ReasonAdminGrant)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit coin grant: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"user_id":  userID,
		"amount":   amount,
		"balance":  balance,
	}).Info("Coins granted")
	return balance, nil
}

// SetTier changes a guild's subscription tier. A zero duration leaves no renewal date.
func (a *AdminOperations) SetTier(ctx context.Context, guildID int64, tier entities.Tier, duration time.Duration) (*entities.GuildSettings, error) {
	var renewsAt *time.Time
	if duration > 0 {
		t := time.Now().UTC().Add(duration)
		renewsAt = &t
	}

	uow := a.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := services.NewGuildSettingsService(uow.GuildSettingsRepository()).SetTier(uow.Context(), guildID, tier, renewsAt)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tier change: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id":  guildID,
		"tier":      tier,
		"renews_at": renewsAt,
	}).Info("Guild tier updated")
	return settings, nil
}
