package veil

import (
	"bytes"
	"context"
	"fmt"

	"veilbot/application"
	"veilbot/application/dto"
	"veilbot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const imageFileName = "veil.png"

// Presenter draws veils in Discord and implements application.VeilPresenter
type Presenter struct {
	session *discordgo.Session
	retry   common.RetryPolicy
}

// NewPresenter creates a presenter on the given session
func NewPresenter(session *discordgo.Session) *Presenter {
	return &Presenter{
		session: session,
		retry:   common.DefaultRetryPolicy,
	}
}

var _ application.VeilPresenter = (*Presenter)(nil)

// PostVeil posts the rendered veil with its controls
func (p *Presenter) PostVeil(ctx context.Context, channelID int64, image []byte, state dto.VeilDisplayState) (int64, error) {
	components := BuildComponents(state, "")

	var message *discordgo.Message
	err := common.Retry(ctx, "post_veil", p.retry, func() error {
		var sendErr error
		message, sendErr = p.session.ChannelMessageSendComplex(common.FormatID(channelID), &discordgo.MessageSend{
			Components: components,
			Files: []*discordgo.File{{
				Name:        imageFileName,
				ContentType: "image/png",
				Reader:      bytes.NewReader(image),
			}},
		}, discordgo.WithContext(ctx))
		return sendErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to post veil: %w", err)
	}

	messageID, err := common.ParseID(message.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to parse veil message ID: %w", err)
	}
	return messageID, nil
}

// EditVeil redraws the controls of an existing veil
func (p *Presenter) EditVeil(ctx context.Context, state dto.VeilDisplayState) error {
	authorName := ""
	if state.AuthorRevealed() {
		authorName = p.displayName(ctx, state.GuildID, state.AuthorID)
	}
	components := BuildComponents(state, authorName)

	err := common.Retry(ctx, "edit_veil", p.retry, func() error {
		_, editErr := p.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    common.FormatID(state.ChannelID),
			ID:         common.FormatID(state.VeilID),
			Components: &components,
		}, discordgo.WithContext(ctx))
		return editErr
	})
	if err != nil {
		if common.IsUnknownMessage(err) {
			return fmt.Errorf("veil %d: %w", state.VeilID, application.ErrMessageNotFound)
		}
		return fmt.Errorf("failed to edit veil %d: %w", state.VeilID, err)
	}
	return nil
}

// RevealVeil redraws the controls and replaces the veiled image with the unveiled render
func (p *Presenter) RevealVeil(ctx context.Context, state dto.VeilDisplayState, image []byte) error {
	components := BuildComponents(state, p.displayName(ctx, state.GuildID, state.AuthorID))

	err := common.Retry(ctx, "reveal_veil", p.retry, func() error {
		// An empty attachment list drops the veiled image; Files uploads its replacement
		_, editErr := p.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:     common.FormatID(state.ChannelID),
			ID:          common.FormatID(state.VeilID),
			Components:  &components,
			Attachments: &[]*discordgo.MessageAttachment{},
			Files: []*discordgo.File{{
				Name:        imageFileName,
				ContentType: "image/png",
				Reader:      bytes.NewReader(image),
			}},
		}, discordgo.WithContext(ctx))
		return editErr
	})
	if err != nil {
		if common.IsUnknownMessage(err) {
			return fmt.Errorf("veil %d: %w", state.VeilID, application.ErrMessageNotFound)
		}
		return fmt.Errorf("failed to reveal veil %d: %w", state.VeilID, err)
	}
	return nil
}

// DeleteMessage removes a posted message. A message that is already gone counts as deleted.
func (p *Presenter) DeleteMessage(ctx context.Context, channelID, messageID int64) error {
	err := common.Retry(ctx, "delete_message", p.retry, func() error {
		return p.session.ChannelMessageDelete(common.FormatID(channelID), common.FormatID(messageID), discordgo.WithContext(ctx))
	})
	if err != nil && !common.IsUnknownMessage(err) {
		return fmt.Errorf("failed to delete message %d: %w", messageID, err)
	}
	return nil
}

// MirrorToAdminLog copies a new veil, with its author, to the admin channel
func (p *Presenter) MirrorToAdminLog(ctx context.Context, adminChannelID int64, image []byte, state dto.VeilDisplayState) error {
	embed := BuildAdminLogEmbed(state)

	err := common.Retry(ctx, "mirror_veil", p.retry, func() error {
		_, sendErr := p.session.ChannelMessageSendComplex(common.FormatID(adminChannelID), &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{embed},
			Files: []*discordgo.File{{
				Name:        imageFileName,
				ContentType: "image/png",
				Reader:      bytes.NewReader(image),
			}},
		}, discordgo.WithContext(ctx))
		return sendErr
	})
	if err != nil {
		return fmt.Errorf("failed to mirror veil %d to admin log: %w", state.VeilID, err)
	}
	return nil
}

// displayName resolves a member's name from the state cache, falling back to the API
func (p *Presenter) displayName(ctx context.Context, guildID, userID int64) string {
	guild, user := common.FormatID(guildID), common.FormatID(userID)

	member, err := p.session.State.Member(guild, user)
	if err != nil {
		member, err = p.session.GuildMember(guild, user, discordgo.WithContext(ctx))
	}
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"user_id":  userID,
			"error":    err,
		}).Debug("Failed to resolve member name")
		return ""
	}
	return common.MemberName(member)
}
