package services

import (
	"context"
	"fmt"
	"time"

	"veilbot/domain/entities"
	"veilbot/domain/interfaces"
)

// GuildSettingsService manages per-guild veil configuration
type GuildSettingsService struct {
	guildSettingsRepo interfaces.GuildSettingsRepository
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(guildSettingsRepo interfaces.GuildSettingsRepository) *GuildSettingsService {
	return &GuildSettingsService{
		guildSettingsRepo: guildSettingsRepo,
	}
}

// GetOrCreateSettings retrieves guild settings or creates default ones if not found
func (s *GuildSettingsService) GetOrCreateSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	settings, err := s.guildSettingsRepo.GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create guild settings: %w", err)
	}
	return settings, nil
}

// SetGuessCap changes how many guesses each veil allows
func (s *GuildSettingsService) SetGuessCap(ctx context.Context, guildID int64, guessCap int) (*entities.GuildSettings, error) {
	if !entities.ValidGuessCap(guessCap) {
		return nil, ErrInvalidGuessCap
	}
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) error {
		settings.MaxGuesses = guessCap
		return nil
	})
}

// SetVeilChannel links the channel new veils are posted to
func (s *GuildSettingsService) SetVeilChannel(ctx context.Context, guildID int64, channelID *int64) (*entities.GuildSettings, error) {
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) error {
		settings.VeilChannelID = channelID
		return nil
	})
}

// SetAdminChannel configures the admin log channel. Elite tier only.
func (s *GuildSettingsService) SetAdminChannel(ctx context.Context, guildID int64, channelID *int64) (*entities.GuildSettings, error) {
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) error {
		if channelID != nil && !settings.Tier.Policy().AdminLog {
			return fmt.Errorf("%w: admin log requires %s", ErrTierRequired, entities.TierElite.DisplayName())
		}
		settings.AdminChannelID = channelID
		return nil
	})
}

// SetTier changes the guild's subscription tier
func (s *GuildSettingsService) SetTier(ctx context.Context, guildID int64, tier entities.Tier, renewsAt *time.Time) (*entities.GuildSettings, error) {
	if !tier.IsValid() {
		return nil, fmt.Errorf("unknown tier %q", tier)
	}
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) error {
		settings.Tier = tier
		settings.TierRenewsAt = renewsAt
		return nil
	})
}

func (s *GuildSettingsService) update(ctx context.Context, guildID int64, mutate func(*entities.GuildSettings) error) (*entities.GuildSettings, error) {
	settings, err := s.guildSettingsRepo.GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	if err := mutate(settings); err != nil {
		return nil, err
	}

	if err := s.guildSettingsRepo.UpdateGuildSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update guild settings: %w", err)
	}

	return settings, nil
}
