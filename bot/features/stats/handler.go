package stats

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"veilbot/bot/common"
	"veilbot/domain/entities"
	"veilbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const leaderboardFileName = "leaderboard.png"

// handleVeilStats shows the caller's coins, unveils and next refill
func (f *Feature) handleVeilStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Invalid guild ID"), false)
		return
	}
	userID, err := common.ParseID(common.InteractionUserID(i))
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Invalid user ID"), false)
		return
	}

	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(context.Background()); err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to begin transaction"), false)
		return
	}
	defer uow.Rollback()

	ctx := uow.Context()
	settings, err := services.NewGuildSettingsService(uow.GuildSettingsRepository()).GetOrCreateSettings(ctx, guildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to load guild settings"), false)
		return
	}

	ledger := services.NewLedgerService(uow.LedgerRepository(), uow.EventBus(), guildID)
	statsService := services.NewStatsService(ledger, uow.GuessRepository(), uow.VeilRepository())

	userStats, err := statsService.GetUserStats(ctx, userID, settings.Tier)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to load user stats"), false)
		return
	}

	// A due refill may have been applied while reading
	if err := uow.Commit(); err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to commit user stats"), false)
		return
	}

	if err := common.RespondWithEmbed(s, i, BuildStatsEmbed(userStats), nil, true); err != nil {
		log.WithError(err).Error("Failed to show veil stats")
	}
}

// handleLeaderboard renders the guild's top guessers as an image
func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Invalid guild ID"), false)
		return
	}

	if err := common.DeferResponse(s, i, false); err != nil {
		log.WithError(err).Error("Failed to defer leaderboard response")
		return
	}

	entries, err := f.loadLeaderboard(guildID)
	if err != nil {
		common.HandleError(s, i, toBotError(err), true)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "🏆 Veil Leaderboard",
		Color: common.ColorPrimary,
	}

	if len(entries) == 0 {
		embed.Description = "Nobody has unveiled anything yet."
		if _, err := common.FollowUpWithEmbed(s, i, embed, nil, false); err != nil {
			log.WithError(err).Error("Failed to send empty leaderboard")
		}
		return
	}

	usernames := make(map[int64]string, len(entries))
	for _, entry := range entries {
		usernames[entry.UserID] = common.GetDisplayName(s, i.GuildID, entry.UserID)
	}

	image, err := f.leaderboard.Generate(entries, usernames)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to render leaderboard"), true)
		return
	}
	embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + leaderboardFileName}

	_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
		Files: []*discordgo.File{{
			Name:        leaderboardFileName,
			ContentType: "image/png",
			Reader:      bytes.NewReader(image),
		}},
	})
	if err != nil {
		log.WithError(err).Error("Failed to send leaderboard")
	}
}

func (f *Feature) loadLeaderboard(guildID int64) ([]*entities.LeaderboardEntry, error) {
	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ctx := uow.Context()
	settings, err := services.NewGuildSettingsService(uow.GuildSettingsRepository()).GetOrCreateSettings(ctx, guildID)
	if err != nil {
		return nil, err
	}

	ledger := services.NewLedgerService(uow.LedgerRepository(), uow.EventBus(), guildID)
	entries, err := services.NewStatsService(ledger, uow.GuessRepository(), uow.VeilRepository()).
		GetLeaderboard(ctx, settings.Tier, services.DefaultLeaderboardSize)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entries, nil
}

func toBotError(err error) error {
	if errors.Is(err, services.ErrTierRequired) {
		return common.NewUserError(
			fmt.Sprintf("The leaderboard is available on %s and %s tiers.",
				entities.TierPremium.DisplayName(), entities.TierElite.DisplayName()),
			"Leaderboard requested without tier access")
	}
	return common.NewSystemError(err, "Failed to load leaderboard")
}
