package stats

import (
	"fmt"

	"veilbot/bot/common"
	"veilbot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// BuildStatsEmbed shows a user's veil activity
func BuildStatsEmbed(stats *entities.UserStats) *discordgo.MessageEmbed {
	coins := common.FormatCoins(stats.Coins)
	if stats.Unlimited {
		coins = "Unlimited"
	}

	refill := "Not scheduled"
	switch {
	case stats.Unlimited:
		refill = "Not needed"
	case stats.NextRefillAt != nil:
		refill = common.FormatDiscordTimestamp(*stats.NextRefillAt, "R")
	}

	accuracy := "No guesses yet"
	if ratio, ok := stats.Accuracy(); ok {
		accuracy = fmt.Sprintf("%.0f%% (%d/%d)", ratio*100, stats.VeilsUnveiled, int64(stats.VeilsUnveiled)+stats.IncorrectGuesses)
	}

	return &discordgo.MessageEmbed{
		Title: "🎭 Your Veil Stats",
		Color: common.ColorVeil,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Coins", Value: coins, Inline: true},
			{Name: "Veils unveiled", Value: fmt.Sprintf("%d", stats.VeilsUnveiled), Inline: true},
			{Name: "Incorrect guesses", Value: fmt.Sprintf("%d", stats.IncorrectGuesses), Inline: true},
			{Name: "Accuracy", Value: accuracy, Inline: false},
			{Name: "Next refill", Value: refill, Inline: false},
		},
	}
}
