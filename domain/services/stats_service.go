package services

import (
	"context"
	"fmt"

	"veilbot/domain/entities"
	"veilbot/domain/interfaces"
)

// DefaultLeaderboardSize is the number of entries shown on the leaderboard
const DefaultLeaderboardSize = 10

// StatsService answers read-only questions about a guild's veil activity
type StatsService struct {
	ledger    interfaces.LedgerService
	guessRepo interfaces.GuessRepository
	veilRepo  interfaces.VeilRepository
}

// NewStatsService creates a new stats service
func NewStatsService(ledger interfaces.LedgerService, guessRepo interfaces.GuessRepository, veilRepo interfaces.VeilRepository) *StatsService {
	return &StatsService{
		ledger:    ledger,
		guessRepo: guessRepo,
		veilRepo:  veilRepo,
	}
}

// GetUserStats returns a user's coins, unveils, wrong guesses and next refill.
// A due refill is applied first so the balance shown is current.
func (s *StatsService) GetUserStats(ctx context.Context, userID int64, tier entities.Tier) (*entities.UserStats, error) {
	if _, err := s.ledger.EnsureAccount(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.ledger.Refill(ctx, userID, tier); err != nil {
		return nil, err
	}

	entry, err := s.ledger.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("ledger entry for user %d not found", userID)
	}

	incorrect, err := s.guessRepo.CountIncorrectByGuesser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count incorrect guesses: %w", err)
	}

	stats := &entities.UserStats{
		UserID:           userID,
		Coins:            entry.Coins,
		Unlimited:        tier.Policy().Unlimited,
		VeilsUnveiled:    entry.VeilsUnveiled,
		IncorrectGuesses: incorrect,
	}
	if !stats.Unlimited {
		stats.NextRefillAt = entry.NextRefillAt()
	}

	return stats, nil
}

// GetGuildStats counts the veils posted in the guild and the ones that were unveiled
func (s *StatsService) GetGuildStats(ctx context.Context) (*entities.GuildStats, error) {
	sent, err := s.veilRepo.CountInGuild(ctx)
	if err != nil {
		return nil, err
	}
	unveiled, err := s.guessRepo.CountCorrect(ctx)
	if err != nil {
		return nil, err
	}
	return &entities.GuildStats{VeilsSent: sent, VeilsUnveiled: unveiled}, nil
}

// GetLeaderboard returns the guild's top guessers. Requires a tier with leaderboard access.
func (s *StatsService) GetLeaderboard(ctx context.Context, tier entities.Tier, limit int) ([]*entities.LeaderboardEntry, error) {
	if !tier.Policy().LeaderboardAccess {
		return nil, fmt.Errorf("%w: leaderboard requires %s or %s", ErrTierRequired,
			entities.TierPremium.DisplayName(), entities.TierElite.DisplayName())
	}
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}

	entries, err := s.guessRepo.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}
