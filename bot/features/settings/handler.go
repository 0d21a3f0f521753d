package settings

import (
	"context"
	"errors"
	"fmt"

	"veilbot/bot/common"
	"veilbot/domain/entities"
	"veilbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type settingsUpdate func(ctx context.Context, svc *services.GuildSettingsService, guildID int64) (*entities.GuildSettings, error)

// handleMaxGuess handles /veilsettings maxguess
func (f *Feature) handleMaxGuess(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please provide a guess cap between 1 and 3.")
		return
	}
	guessCap := int(options[0].IntValue())

	f.applyUpdate(s, i, fmt.Sprintf("✅ Veils now allow **%d** guess(es).", guessCap),
		func(ctx context.Context, svc *services.GuildSettingsService, guildID int64) (*entities.GuildSettings, error) {
			return svc.SetGuessCap(ctx, guildID, guessCap)
		})
}

// handleVeilChannel handles /veilsettings channel. Omitting the channel unlinks it.
func (f *Feature) handleVeilChannel(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	channelID, err := channelOption(s, options)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Invalid channel option"), false)
		return
	}

	message := "✅ Veils will be posted in the channel where `/veil` is used."
	if channelID != nil {
		message = fmt.Sprintf("✅ Veils will be posted in %s.", common.ChannelMention(*channelID))
	}

	f.applyUpdate(s, i, message,
		func(ctx context.Context, svc *services.GuildSettingsService, guildID int64) (*entities.GuildSettings, error) {
			return svc.SetVeilChannel(ctx, guildID, channelID)
		})
}

// handleAdminLog handles /veilsettings adminlog. Elite tier only.
func (f *Feature) handleAdminLog(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	channelID, err := channelOption(s, options)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Invalid channel option"), false)
		return
	}

	message := "✅ Admin log disabled."
	if channelID != nil {
		message = fmt.Sprintf("✅ New veils will be logged with their authors in %s.", common.ChannelMention(*channelID))
	}

	f.applyUpdate(s, i, message,
		func(ctx context.Context, svc *services.GuildSettingsService, guildID int64) (*entities.GuildSettings, error) {
			return svc.SetAdminChannel(ctx, guildID, channelID)
		})
}

// handleShow handles /veilsettings show
func (f *Feature) handleShow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Invalid guild ID"), false)
		return
	}

	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(context.Background()); err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to begin transaction"), false)
		return
	}
	defer uow.Rollback()

	ctx := uow.Context()
	svc := services.NewGuildSettingsService(uow.GuildSettingsRepository())
	settings, err := svc.GetOrCreateSettings(ctx, guildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to load guild settings"), false)
		return
	}

	ledger := services.NewLedgerService(uow.LedgerRepository(), uow.EventBus(), guildID)
	guildStats, err := services.NewStatsService(ledger, uow.GuessRepository(), uow.VeilRepository()).GetGuildStats(ctx)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to load guild stats"), false)
		return
	}

	if err := uow.Commit(); err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to commit guild settings"), false)
		return
	}

	if err := common.RespondWithEmbed(s, i, BuildSettingsEmbed(settings, guildStats), nil, true); err != nil {
		log.WithError(err).Error("Failed to show guild settings")
	}
}

// applyUpdate runs one settings change in its own transaction and reports the result
func (f *Feature) applyUpdate(s *discordgo.Session, i *discordgo.InteractionCreate, successMessage string, update settingsUpdate) {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Invalid guild ID"), false)
		return
	}

	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(context.Background()); err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to begin transaction"), false)
		return
	}
	defer uow.Rollback()

	svc := services.NewGuildSettingsService(uow.GuildSettingsRepository())
	settings, err := update(uow.Context(), svc, guildID)
	if err != nil {
		common.HandleError(s, i, toBotError(err), false)
		return
	}

	if err := uow.Commit(); err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to commit guild settings"), false)
		return
	}

	log.WithFields(log.Fields{
		"guild_id":         guildID,
		"max_guesses":      settings.MaxGuesses,
		"veil_channel_id":  settings.VeilChannelID,
		"admin_channel_id": settings.AdminChannelID,
		"user_id":          common.InteractionUserID(i),
	}).Info("Guild settings updated")

	if err := common.RespondWithEmbed(s, i, common.NewEmbed("Veil settings", successMessage, common.ColorSuccess), nil, true); err != nil {
		log.WithError(err).Error("Failed to confirm settings update")
	}
}

func toBotError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidGuessCap):
		return common.NewUserError("The guess cap must be between 1 and 3.", "Rejected guess cap")
	case errors.Is(err, services.ErrTierRequired):
		return common.NewUserError(
			fmt.Sprintf("The admin log is an %s tier feature.", entities.TierElite.DisplayName()),
			"Rejected settings change for tier")
	default:
		return common.NewSystemError(err, "Failed to update guild settings")
	}
}

func channelOption(s *discordgo.Session, options []*discordgo.ApplicationCommandInteractionDataOption) (*int64, error) {
	for _, opt := range options {
		if opt.Name != "channel" {
			continue
		}
		channel := opt.ChannelValue(s)
		if channel == nil || channel.ID == "" {
			return nil, nil
		}
		id, err := common.ParseID(channel.ID)
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	return nil, nil
}

// BuildSettingsEmbed shows the guild's veil configuration and activity
func BuildSettingsEmbed(settings *entities.GuildSettings, guildStats *entities.GuildStats) *discordgo.MessageEmbed {
	veilChannel := "Where `/veil` is used"
	if settings.HasVeilChannel() {
		veilChannel = common.ChannelMention(*settings.VeilChannelID)
	}

	adminLog := "Disabled"
	if settings.HasAdminChannel() {
		adminLog = common.ChannelMention(*settings.AdminChannelID)
		if !settings.ShouldMirrorToAdminLog() {
			adminLog += fmt.Sprintf(" (inactive, requires %s)", entities.TierElite.DisplayName())
		}
	}

	renewal := "N/A"
	if settings.TierRenewsAt != nil {
		renewal = common.FormatDiscordTimestamp(*settings.TierRenewsAt, "D")
	}

	return &discordgo.MessageEmbed{
		Title: "Veil settings",
		Color: common.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Guesses per veil", Value: fmt.Sprintf("%d", settings.GuessCap()), Inline: true},
			{Name: "Tier", Value: settings.Tier.DisplayName(), Inline: true},
			{Name: "Renewal", Value: renewal, Inline: true},
			{Name: "Veil channel", Value: veilChannel, Inline: false},
			{Name: "Admin log", Value: adminLog, Inline: false},
			{Name: "Veils sent", Value: fmt.Sprintf("%d", guildStats.VeilsSent), Inline: true},
			{Name: "Veils unveiled", Value: fmt.Sprintf("%d", guildStats.VeilsUnveiled), Inline: true},
		},
	}
}
