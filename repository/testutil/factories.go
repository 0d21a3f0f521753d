package testutil

import (
	"context"
	"testing"

	"veilbot/database"
	"veilbot/domain/entities"

	"github.com/stretchr/testify/require"
)

// CreateTestVeil builds an unsaved text veil with sensible defaults
func CreateTestVeil(id, guildID, channelID, authorID, number int64) *entities.Veil {
	return &entities.Veil{
		ID:         id,
		GuildID:    guildID,
		ChannelID:  channelID,
		AuthorID:   authorID,
		Content:    "guess who wrote this",
		VeilNumber: number,
	}
}

// InsertTestVeil stores a veil directly
func InsertTestVeil(t *testing.T, db *database.DB, veil *entities.Veil) {
	t.Helper()
	_, err := db.Pool().Exec(context.Background(), `
		INSERT INTO veils (id, guild_id, channel_id, author_id, content, is_photo, veil_number, guess_count, is_unveiled, photo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		veil.ID, veil.GuildID, veil.ChannelID, veil.AuthorID, veil.Content, veil.IsPhoto,
		veil.VeilNumber, veil.GuessCount, veil.IsUnveiled, veil.Photo,
	)
	require.NoError(t, err)
}

// InsertTestGuildSettings stores settings for a guild with the given cap and tier
func InsertTestGuildSettings(t *testing.T, db *database.DB, guildID int64, guessCap int, tier entities.Tier) {
	t.Helper()
	_, err := db.Pool().Exec(context.Background(), `
		INSERT INTO guild_settings (guild_id, max_guesses, tier)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id) DO UPDATE SET max_guesses = EXCLUDED.max_guesses, tier = EXCLUDED.tier`,
		guildID, guessCap, tier,
	)
	require.NoError(t, err)
}

// FundTestAccount sets a user's coin balance and marks the refill as just applied
func FundTestAccount(t *testing.T, db *database.DB, userID, guildID, coins int64) {
	t.Helper()
	_, err := db.Pool().Exec(context.Background(), `
		INSERT INTO ledger (user_id, guild_id, coins, last_refill_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, guild_id) DO UPDATE SET coins = EXCLUDED.coins, last_refill_at = NOW()`,
		userID, guildID, coins,
	)
	require.NoError(t, err)
}

// GetTestBalance reads a user's coin balance
func GetTestBalance(t *testing.T, db *database.DB, userID, guildID int64) int64 {
	t.Helper()
	var coins int64
	err := db.Pool().QueryRow(context.Background(),
		`SELECT coins FROM ledger WHERE user_id = $1 AND guild_id = $2`, userID, guildID,
	).Scan(&coins)
	require.NoError(t, err)
	return coins
}
