package repository

import (
	"context"
	"errors"
	"fmt"

	"veilbot/domain/entities"
	"veilbot/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// VeilRepository implements the VeilRepository interface
type VeilRepository struct {
	q       Queryable
	guildID int64
}

// NewVeilRepositoryScoped creates a new veil repository with a transaction and guild scope
func NewVeilRepositoryScoped(tx Queryable, guildID int64) interfaces.VeilRepository {
	return &VeilRepository{
		q:       tx,
		guildID: guildID,
	}
}

const veilColumns = `id, guild_id, channel_id, author_id, content, is_photo, veil_number,
		guess_count, is_unveiled, unveiled_by, unveiled_at, created_at`

func scanVeil(row pgx.Row) (*entities.Veil, error) {
	var veil entities.Veil
	err := row.Scan(
		&veil.ID,
		&veil.GuildID,
		&veil.ChannelID,
		&veil.AuthorID,
		&veil.Content,
		&veil.IsPhoto,
		&veil.VeilNumber,
		&veil.GuessCount,
		&veil.IsUnveiled,
		&veil.UnveiledBy,
		&veil.UnveiledAt,
		&veil.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &veil, nil
}

// Create inserts a new veil in the current guild
func (r *VeilRepository) Create(ctx context.Context, veil *entities.Veil) error {
	query := `
		INSERT INTO veils (id, guild_id, channel_id, author_id, content, is_photo, veil_number, photo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING guess_count, is_unveiled, created_at
	`

	veil.GuildID = r.guildID
	err := r.q.QueryRow(ctx, query,
		veil.ID,
		r.guildID,
		veil.ChannelID,
		veil.AuthorID,
		veil.Content,
		veil.IsPhoto,
		veil.VeilNumber,
		veil.Photo,
	).Scan(&veil.GuessCount, &veil.IsUnveiled, &veil.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create veil: %w", err)
	}

	return nil
}

// GetByID retrieves a veil in the current guild
func (r *VeilRepository) GetByID(ctx context.Context, veilID int64) (*entities.Veil, error) {
	query := `SELECT ` + veilColumns + ` FROM veils WHERE id = $1 AND guild_id = $2`

	veil, err := scanVeil(r.q.QueryRow(ctx, query, veilID, r.guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get veil %d: %w", veilID, err)
	}

	return veil, nil
}

// GetPhoto returns the stored photo of a veil, or nil for text veils
func (r *VeilRepository) GetPhoto(ctx context.Context, veilID int64) ([]byte, error) {
	query := `SELECT photo FROM veils WHERE id = $1 AND guild_id = $2`

	var photo []byte
	err := r.q.QueryRow(ctx, query, veilID, r.guildID).Scan(&photo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo for veil %d: %w", veilID, err)
	}

	return photo, nil
}

// CountInGuild counts every veil posted in the current guild
func (r *VeilRepository) CountInGuild(ctx context.Context) (int64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM veils WHERE guild_id = $1`, r.guildID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count veils: %w", err)
	}
	return count, nil
}

// TryUnveil flips the veil to unveiled and counts the winning guess in one statement.
// Concurrent callers block on the row lock and re-check the predicate, so at most one applies.
func (r *VeilRepository) TryUnveil(ctx context.Context, veilID, winnerID int64, guessCap int) (int, bool, error) {
	query := `
		UPDATE veils
		SET is_unveiled = TRUE,
		    unveiled_by = $3,
		    unveiled_at = NOW(),
		    guess_count = guess_count + 1
		WHERE id = $1 AND guild_id = $2
		  AND is_unveiled = FALSE
		  AND guess_count < $4
		RETURNING guess_count
	`

	var guessCount int
	err := r.q.QueryRow(ctx, query, veilID, r.guildID, winnerID, guessCap).Scan(&guessCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to unveil veil %d: %w", veilID, err)
	}

	return guessCount, true, nil
}

// IncrementGuessCount counts an incorrect guess while the veil is still open
func (r *VeilRepository) IncrementGuessCount(ctx context.Context, veilID int64, guessCap int) (int, bool, error) {
	query := `
		UPDATE veils
		SET guess_count = guess_count + 1
		WHERE id = $1 AND guild_id = $2
		  AND is_unveiled = FALSE
		  AND guess_count < $3
		RETURNING guess_count
	`

	var guessCount int
	err := r.q.QueryRow(ctx, query, veilID, r.guildID, guessCap).Scan(&guessCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment guess count for veil %d: %w", veilID, err)
	}

	return guessCount, true, nil
}

// IncrementGuessCountCapped counts a losing guess on a veil that is already closed
func (r *VeilRepository) IncrementGuessCountCapped(ctx context.Context, veilID int64, guessCap int) (int, error) {
	query := `
		UPDATE veils
		SET guess_count = LEAST(guess_count + 1, $3)
		WHERE id = $1 AND guild_id = $2
		RETURNING guess_count
	`

	var guessCount int
	err := r.q.QueryRow(ctx, query, veilID, r.guildID, guessCap).Scan(&guessCount)
	if err != nil {
		return 0, fmt.Errorf("failed to increment guess count for veil %d: %w", veilID, err)
	}

	return guessCount, nil
}
