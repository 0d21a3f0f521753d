package repository

import (
	"context"
	"errors"
	"fmt"

	"veilbot/domain/entities"
	"veilbot/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// LatestPointerRepository implements the LatestPointerRepository interface
type LatestPointerRepository struct {
	q       Queryable
	guildID int64
}

// NewLatestPointerRepositoryScoped creates a new latest pointer repository with a transaction and guild scope
func NewLatestPointerRepositoryScoped(tx Queryable, guildID int64) interfaces.LatestPointerRepository {
	return &LatestPointerRepository{
		q:       tx,
		guildID: guildID,
	}
}

// NewLatestPointerRepository creates an unscoped repository for cross-guild reads
func NewLatestPointerRepository(q Queryable) interfaces.LatestPointerRepository {
	return &LatestPointerRepository{q: q}
}

// Set points the channel at veilID and returns the veil it pointed at before
func (r *LatestPointerRepository) Set(ctx context.Context, channelID, veilID int64) (*int64, error) {
	query := `
		WITH prev AS (
			SELECT veil_id FROM latest_pointers WHERE channel_id = $1 FOR UPDATE
		)
		INSERT INTO latest_pointers (channel_id, guild_id, veil_id, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (channel_id)
		DO UPDATE SET veil_id = EXCLUDED.veil_id, guild_id = EXCLUDED.guild_id, updated_at = NOW()
		RETURNING (SELECT veil_id FROM prev)
	`

	var previous *int64
	if err := r.q.QueryRow(ctx, query, channelID, r.guildID, veilID).Scan(&previous); err != nil {
		return nil, fmt.Errorf("failed to set latest veil for channel %d: %w", channelID, err)
	}

	if previous != nil && *previous == veilID {
		return nil, nil
	}
	return previous, nil
}

// Get returns the channel's pointer, or nil if none exists
func (r *LatestPointerRepository) Get(ctx context.Context, channelID int64) (*entities.LatestPointer, error) {
	query := `SELECT channel_id, guild_id, veil_id FROM latest_pointers WHERE channel_id = $1`

	var pointer entities.LatestPointer
	err := r.q.QueryRow(ctx, query, channelID).Scan(&pointer.ChannelID, &pointer.GuildID, &pointer.VeilID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest veil for channel %d: %w", channelID, err)
	}

	return &pointer, nil
}

// ListHydrationTargets returns the latest veil of every channel with its guild's guess cap
func (r *LatestPointerRepository) ListHydrationTargets(ctx context.Context) ([]*entities.HydrationTarget, error) {
	query := `
		SELECT v.id, v.guild_id, v.channel_id, v.author_id, v.content, v.is_photo, v.veil_number,
		       v.guess_count, v.is_unveiled, v.unveiled_by, v.unveiled_at, v.created_at,
		       COALESCE(gs.max_guesses, $1)
		FROM latest_pointers lp
		JOIN veils v ON v.id = lp.veil_id
		LEFT JOIN guild_settings gs ON gs.guild_id = v.guild_id
		ORDER BY v.created_at DESC
	`

	rows, err := r.q.Query(ctx, query, entities.DefaultGuessCap)
	if err != nil {
		return nil, fmt.Errorf("failed to list hydration targets: %w", err)
	}
	defer rows.Close()

	var targets []*entities.HydrationTarget
	for rows.Next() {
		var target entities.HydrationTarget
		v := &target.Veil
		if err := rows.Scan(
			&v.ID,
			&v.GuildID,
			&v.ChannelID,
			&v.AuthorID,
			&v.Content,
			&v.IsPhoto,
			&v.VeilNumber,
			&v.GuessCount,
			&v.IsUnveiled,
			&v.UnveiledBy,
			&v.UnveiledAt,
			&v.CreatedAt,
			&target.GuessCap,
		); err != nil {
			return nil, fmt.Errorf("failed to scan hydration target: %w", err)
		}
		targets = append(targets, &target)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hydration targets: %w", err)
	}

	return targets, nil
}
