package veil

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"veilbot/application/dto"
	"veilbot/bot/common"
	"veilbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// PhotoOption is the /veil option carrying an image attachment
const PhotoOption = "photo"

// Publisher posts veils
type Publisher interface {
	Publish(ctx context.Context, req services.VeilRequest) (*dto.VeilDisplayState, error)
}

// Feature handles /veil, the New Veil button and the veil modal
type Feature struct {
	publisher Publisher
}

// NewFeature creates a new veil feature
func NewFeature(publisher Publisher) *Feature {
	return &Feature{publisher: publisher}
}

// HandleCommand handles /veil. With a photo attachment the veil is posted right away,
// otherwise the text modal is opened.
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	var attachmentID string
	for _, opt := range data.Options {
		if opt.Name == PhotoOption {
			attachmentID, _ = opt.Value.(string)
		}
	}

	if attachmentID == "" {
		if err := common.RespondWithModal(s, i, BuildModal()); err != nil {
			log.WithError(err).Error("Failed to open veil modal")
		}
		return
	}

	var attachment *discordgo.MessageAttachment
	if data.Resolved != nil {
		attachment = data.Resolved.Attachments[attachmentID]
	}
	if attachment == nil {
		common.RespondWithError(s, i, "I couldn't read that attachment. Please try again.")
		return
	}
	if !strings.HasPrefix(attachment.ContentType, "image/") {
		common.RespondWithError(s, i, "Photo veils must be an image.")
		return
	}

	f.publish(s, i, func(req *services.VeilRequest) {
		req.PhotoURL = attachment.URL
	})
}

// HandleInteraction handles the New Veil button and the modal submission
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		if i.MessageComponentData().CustomID == NewVeilButton {
			if err := common.RespondWithModal(s, i, BuildModal()); err != nil {
				log.WithError(err).Error("Failed to open veil modal")
			}
		}
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		if data.CustomID != ModalID {
			return
		}
		content := modalContent(data)
		f.publish(s, i, func(req *services.VeilRequest) {
			req.Content = content
		})
	}
}

func (f *Feature) publish(s *discordgo.Session, i *discordgo.InteractionCreate, fill func(*services.VeilRequest)) {
	req, err := requestFromInteraction(i)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to parse veil request"), false)
		return
	}
	fill(req)

	if err := common.DeferResponse(s, i, true); err != nil {
		log.WithError(err).Error("Failed to defer veil response")
		return
	}

	state, err := f.publisher.Publish(context.Background(), *req)
	if err != nil {
		common.HandleError(s, i, toBotError(err), true)
		return
	}

	embed := common.NewEmbed("🎭 Veil posted",
		fmt.Sprintf("Your veil **#%d** is live in %s. Nobody knows it was you.",
			state.VeilNumber, common.ChannelMention(state.ChannelID)),
		common.ColorSuccess)
	if _, err := common.FollowUpWithEmbed(s, i, embed, nil, true); err != nil {
		log.WithError(err).Warn("Failed to confirm veil to author")
	}
}

func requestFromInteraction(i *discordgo.InteractionCreate) (*services.VeilRequest, error) {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return nil, err
	}
	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		return nil, err
	}
	authorID, err := common.ParseID(common.InteractionUserID(i))
	if err != nil {
		return nil, err
	}
	return &services.VeilRequest{
		GuildID:   guildID,
		ChannelID: channelID,
		AuthorID:  authorID,
	}, nil
}

func toBotError(err error) error {
	if errors.Is(err, services.ErrInvalidVeil) {
		return common.NewUserError(userMessageFor(err), "Rejected invalid veil")
	}
	return common.NewSystemError(err, "Failed to publish veil")
}

func userMessageFor(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "characters"):
		return fmt.Sprintf("Veils can be at most %d characters.", services.MaxVeilLength)
	case strings.Contains(msg, "emoji"):
		return fmt.Sprintf("Veils can contain at most %d emoji.", services.MaxVeilEmoji)
	default:
		return "A veil needs either some text or a photo."
	}
}
