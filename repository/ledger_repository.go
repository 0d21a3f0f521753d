package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veilbot/domain/entities"
	"veilbot/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// LedgerRepository implements the LedgerRepository interface
type LedgerRepository struct {
	q       Queryable
	guildID int64
}

// NewLedgerRepositoryScoped creates a new ledger repository with a transaction and guild scope
func NewLedgerRepositoryScoped(tx Queryable, guildID int64) interfaces.LedgerRepository {
	return &LedgerRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Ensure creates an empty ledger entry for the user if none exists
func (r *LedgerRepository) Ensure(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO ledger (user_id, guild_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, guild_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, userID, r.guildID); err != nil {
		return fmt.Errorf("failed to ensure ledger entry for user %d: %w", userID, err)
	}
	return nil
}

// Get returns the user's ledger entry, or nil if none exists
func (r *LedgerRepository) Get(ctx context.Context, userID int64) (*entities.LedgerEntry, error) {
	query := `
		SELECT user_id, guild_id, coins, veils_unveiled, last_refill_at, created_at, updated_at
		FROM ledger
		WHERE user_id = $1 AND guild_id = $2
	`

	var entry entities.LedgerEntry
	err := r.q.QueryRow(ctx, query, userID, r.guildID).Scan(
		&entry.UserID,
		&entry.GuildID,
		&entry.Coins,
		&entry.VeilsUnveiled,
		&entry.LastRefillAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry for user %d: %w", userID, err)
	}

	return &entry, nil
}

// Debit subtracts amount only when the balance covers it
func (r *LedgerRepository) Debit(ctx context.Context, userID, amount int64) (int64, bool, error) {
	query := `
		UPDATE ledger
		SET coins = coins - $3, updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2 AND coins >= $3
		RETURNING coins
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, userID, r.guildID, amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to debit user %d: %w", userID, err)
	}

	return balance, true, nil
}

// Credit adds amount, creating the entry if needed
func (r *LedgerRepository) Credit(ctx context.Context, userID, amount int64) (int64, error) {
	query := `
		INSERT INTO ledger (user_id, guild_id, coins)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, guild_id)
		DO UPDATE SET coins = ledger.coins + EXCLUDED.coins, updated_at = NOW()
		RETURNING coins
	`

	var balance int64
	if err := r.q.QueryRow(ctx, query, userID, r.guildID, amount).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to credit user %d: %w", userID, err)
	}

	return balance, nil
}

// Refill adds amount when no refill happened within interval before now. The
// timestamp check lives in the WHERE clause so two concurrent refills cannot both apply.
func (r *LedgerRepository) Refill(ctx context.Context, userID, amount int64, now time.Time, interval time.Duration) (int64, bool, error) {
	query := `
		UPDATE ledger
		SET coins = coins + $3, last_refill_at = $4, updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2
		  AND (last_refill_at IS NULL OR last_refill_at <= $5)
		RETURNING coins
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, userID, r.guildID, amount, now, now.Add(-interval)).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to refill user %d: %w", userID, err)
	}

	return balance, true, nil
}

// IncrementUnveiled bumps the user's unveil counter
func (r *LedgerRepository) IncrementUnveiled(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO ledger (user_id, guild_id, veils_unveiled)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, guild_id)
		DO UPDATE SET veils_unveiled = ledger.veils_unveiled + 1, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, userID, r.guildID); err != nil {
		return fmt.Errorf("failed to increment unveil count for user %d: %w", userID, err)
	}
	return nil
}
