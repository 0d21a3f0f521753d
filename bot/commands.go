package bot

import (
	"context"
	"fmt"

	"veilbot/bot/common"
	"veilbot/bot/features/veil"
	"veilbot/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Commands returns every slash command the bot registers
func Commands() []*discordgo.ApplicationCommand {
	manageGuild := int64(discordgo.PermissionManageGuild)
	minGuessCap := float64(entities.MinGuessCap)
	dmPermission := false

	return []*discordgo.ApplicationCommand{
		{
			Name:         "veil",
			Description:  "Post an anonymous message or photo",
			DMPermission: &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        veil.PhotoOption,
					Description: "Post a photo instead of text",
					Required:    false,
				},
			},
		},
		{
			Name:         "veilstats",
			Description:  "Show your coins, unveils and next refill",
			DMPermission: &dmPermission,
		},
		{
			Name:         "leaderboard",
			Description:  "Show the top guessers in this server",
			DMPermission: &dmPermission,
		},
		{
			Name:         "store",
			Description:  "Buy coins for guessing",
			DMPermission: &dmPermission,
		},
		{
			Name:                     "veilsettings",
			Description:              "Configure veils for this server (Manage Server)",
			DefaultMemberPermissions: &manageGuild,
			DMPermission:             &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "maxguess",
					Description: "Set how many guesses each veil allows",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "count",
							Description: "Guesses per veil (1-3)",
							Required:    true,
							MinValue:    &minGuessCap,
							MaxValue:    float64(entities.MaxGuessCap),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "channel",
					Description: "Link the channel veils are posted to",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "The veil channel (leave empty to post where /veil is used)",
							Required:     false,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "adminlog",
					Description: "Log new veils with their authors (Elite)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "The admin log channel (leave empty to disable)",
							Required:     false,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show the veil settings and activity for this server",
				},
			},
		},
	}
}

// registerCommands overwrites the bot's global commands, retrying transient failures
func (b *Bot) registerCommands(ctx context.Context) error {
	commands := Commands()
	appID := b.session.State.User.ID

	err := common.Retry(ctx, "register_commands", nil, func() error {
		_, err := b.session.ApplicationCommandBulkOverwrite(appID, "", commands, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}

	log.WithField("count", len(commands)).Info("Slash commands registered")
	return nil
}
