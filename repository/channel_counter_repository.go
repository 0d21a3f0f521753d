package repository

import (
	"context"
	"fmt"

	"veilbot/domain/interfaces"
)

// ChannelCounterRepository implements the ChannelCounterRepository interface
type ChannelCounterRepository struct {
	q Queryable
}

// NewChannelCounterRepository creates a new channel counter repository.
// Channel IDs are globally unique so counters need no guild scope.
func NewChannelCounterRepository(tx Queryable) interfaces.ChannelCounterRepository {
	return &ChannelCounterRepository{q: tx}
}

// ClaimNext atomically increments the channel's counter and returns the new value
func (r *ChannelCounterRepository) ClaimNext(ctx context.Context, channelID int64) (int64, error) {
	query := `
		INSERT INTO channel_counters (channel_id, current_number)
		VALUES ($1, 1)
		ON CONFLICT (channel_id)
		DO UPDATE SET current_number = channel_counters.current_number + 1
		RETURNING current_number
	`

	var number int64
	if err := r.q.QueryRow(ctx, query, channelID).Scan(&number); err != nil {
		return 0, fmt.Errorf("failed to claim number for channel %d: %w", channelID, err)
	}

	return number, nil
}
