package services

import (
	"context"
	"fmt"
	"time"

	"veilbot/domain/entities"
	"veilbot/domain/events"
	"veilbot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ledgerService implements the LedgerService interface
type ledgerService struct {
	ledgerRepo     interfaces.LedgerRepository
	eventPublisher interfaces.EventPublisher
	guildID        int64
	now            func() time.Time
}

// NewLedgerService creates a new ledger service scoped to a guild
func NewLedgerService(ledgerRepo interfaces.LedgerRepository, eventPublisher interfaces.EventPublisher, guildID int64) interfaces.LedgerService {
	return &ledgerService{
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
		guildID:        guildID,
		now:            time.Now,
	}
}

// EnsureAccount returns the user's ledger entry, creating an empty one if needed
func (s *ledgerService) EnsureAccount(ctx context.Context, userID int64) (*entities.LedgerEntry, error) {
	if err := s.ledgerRepo.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger entry: %w", err)
	}

	entry, err := s.ledgerRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	if entry == nil {
		return nil, fmt.Errorf("ledger entry for user %d missing after ensure", userID)
	}

	return entry, nil
}

// Refill grants the tier's monthly coins when the refill window has elapsed.
// Unlimited tiers never touch balances.
func (s *ledgerService) Refill(ctx context.Context, userID int64, tier entities.Tier) (bool, error) {
	policy := tier.Policy()
	if policy.Unlimited || policy.RefillAmount <= 0 {
		return false, nil
	}

	newBalance, applied, err := s.ledgerRepo.Refill(ctx, userID, policy.RefillAmount, s.now().UTC(), entities.RefillInterval)
	if err != nil {
		return false, fmt.Errorf("failed to refill ledger: %w", err)
	}

	if applied {
		log.WithFields(log.Fields{
			"user_id":  userID,
			"guild_id": s.guildID,
			"tier":     tier,
			"amount":   policy.RefillAmount,
		}).Info("Ledger refilled")
		s.publishBalanceChange(userID, policy.RefillAmount, newBalance, events.ReasonRefill)
	}

	return applied, nil
}

// Debit removes amount coins if the balance covers it. A false result means the
// balance was insufficient and nothing changed.
func (s *ledgerService) Debit(ctx context.Context, userID, amount int64, reason events.BalanceChangeReason) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	newBalance, applied, err := s.ledgerRepo.Debit(ctx, userID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to debit ledger: %w", err)
	}

	if applied {
		s.publishBalanceChange(userID, -amount, newBalance, reason)
	}

	return applied, nil
}

// Credit adds amount coins and returns the resulting balance
func (s *ledgerService) Credit(ctx context.Context, userID, amount int64, reason events.BalanceChangeReason) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	newBalance, err := s.ledgerRepo.Credit(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to credit ledger: %w", err)
	}

	s.publishBalanceChange(userID, amount, newBalance, reason)
	return newBalance, nil
}

// RecordUnveil increments the user's unveil counter
func (s *ledgerService) RecordUnveil(ctx context.Context, userID int64) error {
	if err := s.ledgerRepo.IncrementUnveiled(ctx, userID); err != nil {
		return fmt.Errorf("failed to record unveil: %w", err)
	}
	return nil
}

// GetAccount returns the user's entry without creating it
func (s *ledgerService) GetAccount(ctx context.Context, userID int64) (*entities.LedgerEntry, error) {
	entry, err := s.ledgerRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return entry, nil
}

func (s *ledgerService) publishBalanceChange(userID, change, newBalance int64, reason events.BalanceChangeReason) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(events.BalanceChangeEvent{
		UserID:       userID,
		GuildID:      s.guildID,
		ChangeAmount: change,
		NewBalance:   newBalance,
		Reason:       reason,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish balance change event")
	}
}
