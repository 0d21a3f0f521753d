package stats

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"veilbot/bot/common"
	"veilbot/domain/entities"
	"veilbot/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStatsEmbed(t *testing.T) {
	refill := time.Date(2026, 11, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		stats    entities.UserStats
		coins    string
		accuracy string
		refill   string
	}{
		{
			name:     "metered tier",
			stats:    entities.UserStats{Coins: 1250, VeilsUnveiled: 3, IncorrectGuesses: 7, NextRefillAt: &refill},
			coins:    "1,250 coins",
			accuracy: "30% (3/10)",
			refill:   fmt.Sprintf("<t:%d:R>", refill.Unix()),
		},
		{
			name:     "unlimited tier",
			stats:    entities.UserStats{Unlimited: true, VeilsUnveiled: 1},
			coins:    "Unlimited",
			accuracy: "100% (1/1)",
			refill:   "Not needed",
		},
		{
			name:     "no refill yet",
			stats:    entities.UserStats{Coins: 0},
			coins:    "0 coins",
			accuracy: "No guesses yet",
			refill:   "Not scheduled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed := BuildStatsEmbed(&tt.stats)
			require.Len(t, embed.Fields, 5)
			assert.Equal(t, tt.coins, embed.Fields[0].Value)
			assert.Equal(t, fmt.Sprintf("%d", tt.stats.VeilsUnveiled), embed.Fields[1].Value)
			assert.Equal(t, fmt.Sprintf("%d", tt.stats.IncorrectGuesses), embed.Fields[2].Value)
			assert.Equal(t, "Accuracy", embed.Fields[3].Name)
			assert.Equal(t, tt.accuracy, embed.Fields[3].Value)
			assert.Equal(t, tt.refill, embed.Fields[4].Value)
		})
	}
}

func TestToBotError(t *testing.T) {
	var botErr *common.BotError

	require.ErrorAs(t, toBotError(fmt.Errorf("%w: leaderboard", services.ErrTierRequired)), &botErr)
	assert.Equal(t, "The leaderboard is available on Premium and Elite tiers.", botErr.UserMessage)

	require.ErrorAs(t, toBotError(errors.New("boom")), &botErr)
	assert.Equal(t, common.GenericErrorMessage, botErr.UserMessage)
}
