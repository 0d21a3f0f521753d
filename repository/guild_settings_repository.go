package repository

import (
	"context"
	"errors"
	"fmt"

	"veilbot/domain/entities"
	"veilbot/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// GuildSettingsRepository implements the GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q Queryable
}

// NewGuildSettingsRepositoryWithTx creates a new guild settings repository with a transaction
func NewGuildSettingsRepositoryWithTx(tx Queryable) interfaces.GuildSettingsRepository {
	return &GuildSettingsRepository{q: tx}
}

const guildSettingsColumns = `guild_id, max_guesses, veil_channel_id, admin_channel_id, tier, tier_renews_at`

func scanGuildSettings(row pgx.Row) (*entities.GuildSettings, error) {
	var settings entities.GuildSettings
	err := row.Scan(
		&settings.GuildID,
		&settings.MaxGuesses,
		&settings.VeilChannelID,
		&settings.AdminChannelID,
		&settings.Tier,
		&settings.TierRenewsAt,
	)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// GetOrCreateGuildSettings retrieves guild settings or creates default ones if not found
func (r *GuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	// First try to get existing settings
	query := `SELECT ` + guildSettingsColumns + ` FROM guild_settings WHERE guild_id = $1`

	settings, err := scanGuildSettings(r.q.QueryRow(ctx, query, guildID))
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get guild settings for guild %d: %w", guildID, err)
	}

	// Concurrent creators race on the primary key, so the insert is a no-op upsert
	insertQuery := `
		INSERT INTO guild_settings (guild_id)
		VALUES ($1)
		ON CONFLICT (guild_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING ` + guildSettingsColumns

	settings, err = scanGuildSettings(r.q.QueryRow(ctx, insertQuery, guildID))
	if err != nil {
		return nil, fmt.Errorf("failed to create guild settings for guild %d: %w", guildID, err)
	}

	return settings, nil
}

// UpdateGuildSettings updates guild settings
func (r *GuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *entities.GuildSettings) error {
	query := `
		UPDATE guild_settings
		SET max_guesses = $2,
		    veil_channel_id = $3,
		    admin_channel_id = $4,
		    tier = $5,
		    tier_renews_at = $6,
		    updated_at = NOW()
		WHERE guild_id = $1
	`

	result, err := r.q.Exec(ctx, query,
		settings.GuildID,
		settings.MaxGuesses,
		settings.VeilChannelID,
		settings.AdminChannelID,
		settings.Tier,
		settings.TierRenewsAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update guild settings for guild %d: %w", settings.GuildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild settings for guild %d not found", settings.GuildID)
	}

	return nil
}
