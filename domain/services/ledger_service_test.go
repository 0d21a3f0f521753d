package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"veilbot/domain/entities"
	"veilbot/domain/events"
	"veilbot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLedgerService(repo *testhelpers.MockLedgerRepository, publisher *testhelpers.MockEventPublisher, now time.Time) *ledgerService {
	s := NewLedgerService(repo, publisher, testGuildID).(*ledgerService)
	s.now = func() time.Time { return now }
	return s
}

func TestLedgerService_Refill(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		tier        entities.Tier
		setupMock   func(*testhelpers.MockLedgerRepository)
		wantApplied bool
		wantEvent   bool
	}{
		{
			name: "free tier refill applied",
			tier: entities.TierFree,
			setupMock: func(repo *testhelpers.MockLedgerRepository) {
				repo.On("Refill", mock.Anything, testGuesserID, int64(100), now, entities.RefillInterval).Return(int64(100), true, nil)
			},
			wantApplied: true,
			wantEvent:   true,
		},
		{
			name: "premium refill not yet due",
			tier: entities.TierPremium,
			setupMock: func(repo *testhelpers.MockLedgerRepository) {
				repo.On("Refill", mock.Anything, testGuesserID, int64(1000), now, entities.RefillInterval).Return(int64(0), false, nil)
			},
			wantApplied: false,
		},
		{
			name:        "unlimited tier never refills",
			tier:        entities.TierElite,
			setupMock:   func(repo *testhelpers.MockLedgerRepository) {},
			wantApplied: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(testhelpers.MockLedgerRepository)
			publisher := new(testhelpers.MockEventPublisher)
			publisher.On("Publish", mock.Anything).Return(nil).Maybe()
			tt.setupMock(repo)

			service := newTestLedgerService(repo, publisher, now)
			applied, err := service.Refill(context.Background(), testGuesserID, tt.tier)

			require.NoError(t, err)
			assert.Equal(t, tt.wantApplied, applied)
			if tt.wantEvent {
				require.Len(t, publisher.Published(), 1)
				event := publisher.Published()[0].(events.BalanceChangeEvent)
				assert.Equal(t, events.ReasonRefill, event.Reason)
				assert.Equal(t, testGuildID, event.GuildID)
			} else {
				assert.Empty(t, publisher.Published())
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestLedgerService_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("covered balance is debited", func(t *testing.T) {
		repo := new(testhelpers.MockLedgerRepository)
		publisher := new(testhelpers.MockEventPublisher)
		repo.On("Debit", ctx, testGuesserID, int64(5)).Return(int64(95), true, nil)
		publisher.On("Publish", events.BalanceChangeEvent{
			UserID:       testGuesserID,
			GuildID:      testGuildID,
			ChangeAmount: -5,
			NewBalance:   95,
			Reason:       events.ReasonGuessCost,
		}).Return(nil)

		service := NewLedgerService(repo, publisher, testGuildID)
		applied, err := service.Debit(ctx, testGuesserID, 5, events.ReasonGuessCost)

		require.NoError(t, err)
		assert.True(t, applied)
		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("insufficient balance leaves ledger untouched", func(t *testing.T) {
		repo := new(testhelpers.MockLedgerRepository)
		publisher := new(testhelpers.MockEventPublisher)
		repo.On("Debit", ctx, testGuesserID, int64(5)).Return(int64(0), false, nil)

		service := NewLedgerService(repo, publisher, testGuildID)
		applied, err := service.Debit(ctx, testGuesserID, 5, events.ReasonGuessCost)

		require.NoError(t, err)
		assert.False(t, applied)
		publisher.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		service := NewLedgerService(new(testhelpers.MockLedgerRepository), nil, testGuildID)
		_, err := service.Debit(ctx, testGuesserID, 0, events.ReasonGuessCost)
		assert.Error(t, err)
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		repo := new(testhelpers.MockLedgerRepository)
		repo.On("Debit", ctx, testGuesserID, int64(5)).Return(int64(0), false, errors.New("deadlock detected"))

		service := NewLedgerService(repo, nil, testGuildID)
		_, err := service.Debit(ctx, testGuesserID, 5, events.ReasonGuessCost)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to debit ledger")
	})
}

func TestLedgerService_Credit(t *testing.T) {
	ctx := context.Background()
	repo := new(testhelpers.MockLedgerRepository)
	publisher := new(testhelpers.MockEventPublisher)
	repo.On("Credit", ctx, testGuesserID, int64(250)).Return(int64(300), nil)
	publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)

	service := NewLedgerService(repo, publisher, testGuildID)
	balance, err := service.Credit(ctx, testGuesserID, 250, events.ReasonPurchase)

	require.NoError(t, err)
	assert.Equal(t, int64(300), balance)
	event := publisher.Published()[0].(events.BalanceChangeEvent)
	assert.Equal(t, int64(250), event.ChangeAmount)
	assert.Equal(t, events.ReasonPurchase, event.Reason)

	_, err = service.Credit(ctx, testGuesserID, -1, events.ReasonPurchase)
	assert.Error(t, err)
}

func TestLedgerService_EnsureAccount(t *testing.T) {
	ctx := context.Background()
	repo := new(testhelpers.MockLedgerRepository)
	repo.On("Ensure", ctx, testGuesserID).Return(nil)
	repo.On("Get", ctx, testGuesserID).Return(&entities.LedgerEntry{UserID: testGuesserID, GuildID: testGuildID}, nil)

	service := NewLedgerService(repo, nil, testGuildID)
	entry, err := service.EnsureAccount(ctx, testGuesserID)

	require.NoError(t, err)
	assert.Equal(t, int64(0), entry.Coins)
	assert.Equal(t, testGuildID, entry.GuildID)
	repo.AssertExpectations(t)
}
