package application

import (
	"context"
	"errors"
	"fmt"

	"veilbot/application/dto"
	"veilbot/domain/entities"
	"veilbot/domain/events"
	"veilbot/domain/services"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// ErrInvalidPurchase is returned when a CoinsPurchased payload is malformed
var ErrInvalidPurchase = errors.New("invalid coin purchase")

// ErrCheckoutUnavailable is returned when no payment provider is configured
var ErrCheckoutUnavailable = errors.New("checkout is not configured")

// CoinStore sells coin packs through the payment provider and fulfils completed purchases
type CoinStore struct {
	uowFactory UnitOfWorkFactory
	provider   PaymentProvider
	validate   *validator.Validate
}

// NewCoinStore creates a new coin store
// A nil provider disables checkout; purchases can still be fulfilled.
func NewCoinStore(uowFactory UnitOfWorkFactory, provider PaymentProvider) *CoinStore {
	return &CoinStore{
		uowFactory: uowFactory,
		provider:   provider,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// StartCheckout opens a checkout session for a coin pack and records it
func (s *CoinStore) StartCheckout(ctx context.Context, guildID, userID, coins int64) (*dto.CheckoutLink, error) {
	if s.provider == nil {
		return nil, ErrCheckoutUnavailable
	}

	pack, ok := entities.FindCoinPack(coins)
	if !ok {
		return nil, fmt.Errorf("no coin pack with %d coins", coins)
	}

	link, err := s.provider.CreateCheckoutSession(ctx, dto.CheckoutRequest{
		GuildID:    guildID,
		UserID:     userID,
		Coins:      pack.Coins,
		PriceCents: pack.PriceCents,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledger := services.NewLedgerService(uow.LedgerRepository(), uow.EventBus(), guildID)
	purchases := services.NewCoinPurchaseService(uow.CheckoutSessionRepository(), ledger)
	if err := purchases.RecordCheckout(uow.Context(), &entities.CheckoutSession{
		SessionID:  link.SessionID,
		UserID:     userID,
		GuildID:    guildID,
		Coins:      pack.Coins,
		PriceCents: pack.PriceCents,
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout session: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id":   guildID,
		"user_id":    userID,
		"coins":      pack.Coins,
		"session_id": link.SessionID,
	}).Info("Checkout session started")

	return link, nil
}

// HandleCoinsPurchased fulfils a CoinsPurchased event. Redeliveries are no-ops.
func (s *CoinStore) HandleCoinsPurchased(ctx context.Context, event events.Event) error {
	purchase, err := AssertEventType[events.CoinsPurchasedEvent](event, "CoinsPurchasedEvent")
	if err != nil {
		return err
	}
	_, err = s.Fulfil(ctx, purchase)
	return err
}

// Fulfil credits a completed purchase and reports whether coins were added
func (s *CoinStore) Fulfil(ctx context.Context, purchase events.CoinsPurchasedEvent) (bool, error) {
	if err := s.validate.Struct(purchase); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidPurchase, err)
	}

	uow := s.uowFactory.CreateForGuild(purchase.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledger := services.NewLedgerService(uow.LedgerRepository(), uow.EventBus(), purchase.GuildID)
	fulfilled, err := services.NewCoinPurchaseService(uow.CheckoutSessionRepository(), ledger).Fulfil(uow.Context(), purchase)
	if err != nil {
		return false, err
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit coin purchase: %w", err)
	}
	return fulfilled, nil
}
