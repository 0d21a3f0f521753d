package services

import (
	"context"
	"fmt"

	"veilbot/domain/entities"
	"veilbot/domain/events"
	"veilbot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// CoinPurchaseService records checkout sessions and fulfils completed purchases
type CoinPurchaseService struct {
	checkoutRepo interfaces.CheckoutSessionRepository
	ledger       interfaces.LedgerService
}

// NewCoinPurchaseService creates a new coin purchase service
func NewCoinPurchaseService(checkoutRepo interfaces.CheckoutSessionRepository, ledger interfaces.LedgerService) *CoinPurchaseService {
	return &CoinPurchaseService{
		checkoutRepo: checkoutRepo,
		ledger:       ledger,
	}
}

// RecordCheckout stores a checkout session created with the payment provider
func (s *CoinPurchaseService) RecordCheckout(ctx context.Context, session *entities.CheckoutSession) error {
	if session.SessionID == "" {
		return fmt.Errorf("checkout session ID is required")
	}
	if _, ok := entities.FindCoinPack(session.Coins); !ok {
		return fmt.Errorf("no coin pack with %d coins", session.Coins)
	}
	if err := s.checkoutRepo.Create(ctx, session); err != nil {
		return fmt.Errorf("failed to record checkout session: %w", err)
	}
	return nil
}

// Fulfil credits the coins of a completed checkout exactly once. Redelivered or
// unknown purchases return false without touching the ledger.
func (s *CoinPurchaseService) Fulfil(ctx context.Context, purchase events.CoinsPurchasedEvent) (bool, error) {
	fulfilled, err := s.checkoutRepo.MarkFulfilled(ctx, purchase.SessionID, purchase.UserID, purchase.Coins)
	if err != nil {
		return false, fmt.Errorf("failed to mark checkout session fulfilled: %w", err)
	}

	logger := log.WithFields(log.Fields{
		"session_id": purchase.SessionID,
		"user_id":    purchase.UserID,
		"guild_id":   purchase.GuildID,
		"coins":      purchase.Coins,
	})

	if !fulfilled {
		logger.Warn("Ignoring coin purchase for unknown or already fulfilled session")
		return false, nil
	}

	if _, err := s.ledger.Credit(ctx, purchase.UserID, purchase.Coins, events.ReasonPurchase); err != nil {
		return false, err
	}

	logger.Info("Coin purchase fulfilled")
	return true, nil
}
