package testhelpers

import (
	"context"
	"time"

	"veilbot/domain/entities"
	"veilbot/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockVeilRepository is a mock implementation of VeilRepository
type MockVeilRepository struct {
	mock.Mock
}

func (m *MockVeilRepository) Create(ctx context.Context, veil *entities.Veil) error {
	args := m.Called(ctx, veil)
	return args.Error(0)
}

func (m *MockVeilRepository) GetByID(ctx context.Context, veilID int64) (*entities.Veil, error) {
	args := m.Called(ctx, veilID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Veil), args.Error(1)
}

func (m *MockVeilRepository) GetPhoto(ctx context.Context, veilID int64) ([]byte, error) {
	args := m.Called(ctx, veilID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockVeilRepository) CountInGuild(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVeilRepository) TryUnveil(ctx context.Context, veilID, winnerID int64, guessCap int) (int, bool, error) {
	args := m.Called(ctx, veilID, winnerID, guessCap)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockVeilRepository) IncrementGuessCount(ctx context.Context, veilID int64, guessCap int) (int, bool, error) {
	args := m.Called(ctx, veilID, guessCap)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockVeilRepository) IncrementGuessCountCapped(ctx context.Context, veilID int64, guessCap int) (int, error) {
	args := m.Called(ctx, veilID, guessCap)
	return args.Int(0), args.Error(1)
}

// MockGuessRepository is a mock implementation of GuessRepository
type MockGuessRepository struct {
	mock.Mock
}

func (m *MockGuessRepository) Exists(ctx context.Context, veilID, guesserID int64) (bool, error) {
	args := m.Called(ctx, veilID, guesserID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuessRepository) Insert(ctx context.Context, guess *entities.Guess) (bool, error) {
	args := m.Called(ctx, guess)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuessRepository) MarkIncorrect(ctx context.Context, veilID, guesserID int64) error {
	args := m.Called(ctx, veilID, guesserID)
	return args.Error(0)
}

func (m *MockGuessRepository) Delete(ctx context.Context, veilID, guesserID int64) error {
	args := m.Called(ctx, veilID, guesserID)
	return args.Error(0)
}

func (m *MockGuessRepository) CountIncorrectByGuesser(ctx context.Context, guesserID int64) (int64, error) {
	args := m.Called(ctx, guesserID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGuessRepository) CountCorrect(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGuessRepository) GetLeaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeaderboardEntry), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Ensure(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockLedgerRepository) Get(ctx context.Context, userID int64) (*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) Debit(ctx context.Context, userID, amount int64) (int64, bool, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockLedgerRepository) Credit(ctx context.Context, userID, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) Refill(ctx context.Context, userID, amount int64, now time.Time, interval time.Duration) (int64, bool, error) {
	args := m.Called(ctx, userID, amount, now, interval)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockLedgerRepository) IncrementUnveiled(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockChannelCounterRepository is a mock implementation of ChannelCounterRepository
type MockChannelCounterRepository struct {
	mock.Mock
}

func (m *MockChannelCounterRepository) ClaimNext(ctx context.Context, channelID int64) (int64, error) {
	args := m.Called(ctx, channelID)
	return args.Get(0).(int64), args.Error(1)
}

// MockLatestPointerRepository is a mock implementation of LatestPointerRepository
type MockLatestPointerRepository struct {
	mock.Mock
}

func (m *MockLatestPointerRepository) Set(ctx context.Context, channelID, veilID int64) (*int64, error) {
	args := m.Called(ctx, channelID, veilID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int64), args.Error(1)
}

func (m *MockLatestPointerRepository) Get(ctx context.Context, channelID int64) (*entities.LatestPointer, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LatestPointer), args.Error(1)
}

func (m *MockLatestPointerRepository) ListHydrationTargets(ctx context.Context) ([]*entities.HydrationTarget, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.HydrationTarget), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *entities.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockCheckoutSessionRepository is a mock implementation of CheckoutSessionRepository
type MockCheckoutSessionRepository struct {
	mock.Mock
}

func (m *MockCheckoutSessionRepository) Create(ctx context.Context, session *entities.CheckoutSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockCheckoutSessionRepository) MarkFulfilled(ctx context.Context, sessionID string, userID, coins int64) (bool, error) {
	args := m.Called(ctx, sessionID, userID, coins)
	return args.Bool(0), args.Error(1)
}

func (m *MockCheckoutSessionRepository) DeleteStaleUnfulfilled(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) EnsureAccount(ctx context.Context, userID int64) (*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) Refill(ctx context.Context, userID int64, tier entities.Tier) (bool, error) {
	args := m.Called(ctx, userID, tier)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerService) Debit(ctx context.Context, userID, amount int64, reason events.BalanceChangeReason) (bool, error) {
	args := m.Called(ctx, userID, amount, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerService) Credit(ctx context.Context, userID, amount int64, reason events.BalanceChangeReason) (int64, error) {
	args := m.Called(ctx, userID, amount, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) RecordUnveil(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockLedgerService) GetAccount(ctx context.Context, userID int64) (*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LedgerEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// Published returns every event passed to Publish, in order
func (m *MockEventPublisher) Published() []events.Event {
	published := make([]events.Event, 0, len(m.Calls))
	for _, call := range m.Calls {
		if call.Method == "Publish" {
			published = append(published, call.Arguments.Get(0).(events.Event))
		}
	}
	return published
}
