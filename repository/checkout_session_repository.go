package repository

import (
	"context"
	"fmt"
	"time"

	"veilbot/domain/entities"
	"veilbot/domain/interfaces"
)

// CheckoutSessionRepository implements the CheckoutSessionRepository interface
type CheckoutSessionRepository struct {
	q       Queryable
	guildID int64
}

// NewCheckoutSessionRepositoryScoped creates a new checkout session repository with a transaction and guild scope
func NewCheckoutSessionRepositoryScoped(tx Queryable, guildID int64) interfaces.CheckoutSessionRepository {
	return &CheckoutSessionRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Create stores a new checkout session in the current guild
func (r *CheckoutSessionRepository) Create(ctx context.Context, session *entities.CheckoutSession) error {
	query := `
		INSERT INTO checkout_sessions (session_id, user_id, guild_id, coins, price_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	session.GuildID = r.guildID
	err := r.q.QueryRow(ctx, query,
		session.SessionID,
		session.UserID,
		r.guildID,
		session.Coins,
		session.PriceCents,
	).Scan(&session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create checkout session: %w", err)
	}

	return nil
}

// MarkFulfilled flags a matching unfulfilled session. Returns false for unknown,
// mismatched or already fulfilled sessions.
func (r *CheckoutSessionRepository) MarkFulfilled(ctx context.Context, sessionID string, userID, coins int64) (bool, error) {
	query := `
		UPDATE checkout_sessions
		SET fulfilled_at = NOW()
		WHERE session_id = $1 AND guild_id = $2 AND user_id = $3 AND coins = $4
		  AND fulfilled_at IS NULL
	`

	result, err := r.q.Exec(ctx, query, sessionID, r.guildID, userID, coins)
	if err != nil {
		return false, fmt.Errorf("failed to fulfil checkout session %s: %w", sessionID, err)
	}

	return result.RowsAffected() == 1, nil
}

// DeleteStaleUnfulfilled removes unfulfilled sessions created before olderThan in all guilds
func (r *CheckoutSessionRepository) DeleteStaleUnfulfilled(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM checkout_sessions WHERE fulfilled_at IS NULL AND created_at < $1`

	result, err := r.q.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale checkout sessions: %w", err)
	}

	return result.RowsAffected(), nil
}
