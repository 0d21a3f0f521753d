package services

import (
	"context"
	"testing"

	"veilbot/domain/entities"
	"veilbot/domain/events"
	"veilbot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCoinPurchaseService_RecordCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("known pack is recorded", func(t *testing.T) {
		repo := new(testhelpers.MockCheckoutSessionRepository)
		session := &entities.CheckoutSession{SessionID: "cs_1", UserID: testGuesserID, GuildID: testGuildID, Coins: 250, PriceCents: 200}
		repo.On("Create", ctx, session).Return(nil)

		service := NewCoinPurchaseService(repo, new(testhelpers.MockLedgerService))
		require.NoError(t, service.RecordCheckout(ctx, session))
		repo.AssertExpectations(t)
	})

	t.Run("unknown pack is rejected", func(t *testing.T) {
		repo := new(testhelpers.MockCheckoutSessionRepository)
		service := NewCoinPurchaseService(repo, new(testhelpers.MockLedgerService))

		err := service.RecordCheckout(ctx, &entities.CheckoutSession{SessionID: "cs_2", Coins: 333})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCoinPurchaseService_Fulfil(t *testing.T) {
	ctx := context.Background()
	purchase := events.CoinsPurchasedEvent{SessionID: "cs_1", UserID: testGuesserID, GuildID: testGuildID, Coins: 500}

	t.Run("first delivery credits coins", func(t *testing.T) {
		repo := new(testhelpers.MockCheckoutSessionRepository)
		ledger := new(testhelpers.MockLedgerService)
		repo.On("MarkFulfilled", ctx, "cs_1", testGuesserID, int64(500)).Return(true, nil)
		ledger.On("Credit", ctx, testGuesserID, int64(500), events.ReasonPurchase).Return(int64(505), nil)

		service := NewCoinPurchaseService(repo, ledger)
		credited, err := service.Fulfil(ctx, purchase)

		require.NoError(t, err)
		assert.True(t, credited)
		ledger.AssertExpectations(t)
	})

	t.Run("redelivery is ignored", func(t *testing.T) {
		repo := new(testhelpers.MockCheckoutSessionRepository)
		ledger := new(testhelpers.MockLedgerService)
		repo.On("MarkFulfilled", ctx, "cs_1", testGuesserID, int64(500)).Return(false, nil)

		service := NewCoinPurchaseService(repo, ledger)
		credited, err := service.Fulfil(ctx, purchase)

		require.NoError(t, err)
		assert.False(t, credited)
		ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
