package veil

import (
	"fmt"

	"veilbot/application/dto"
	"veilbot/bot/common"

	"github.com/bwmarrin/discordgo"
)

// Custom IDs used by veil messages. The guess button carries no veil ID; the
// veil is the message the button is attached to.
const (
	GuessButtonID  = "veil_guess"
	NewVeilButton  = "veil_new"
	ModalID        = "veil_modal"
	ContentInputID = "veil_content"

	countLabelID  = "veil_label_count"
	authorLabelID = "veil_label_author"
	numberLabelID = "veil_label_number"
)

// BuildComponents creates the single row of controls shown under a veil.
// authorName is only displayed once the veil has been unveiled.
func BuildComponents(state dto.VeilDisplayState, authorName string) []discordgo.MessageComponent {
	row := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "Unveil",
			Style:    discordgo.PrimaryButton,
			CustomID: GuessButtonID,
			Disabled: state.GuessDisabled(),
			Emoji:    &discordgo.ComponentEmoji{Name: "🔍"},
		},
	}

	if state.IsLatest {
		row = append(row, discordgo.Button{
			Label:    "New Veil",
			Style:    discordgo.SuccessButton,
			CustomID: NewVeilButton,
			Emoji:    &discordgo.ComponentEmoji{Name: "✍️"},
		})
	}

	row = append(row,
		discordgo.Button{
			Label:    fmt.Sprintf("Guesses %d/%d", state.GuessCount, state.GuessCap),
			Style:    discordgo.SecondaryButton,
			CustomID: countLabelID,
			Disabled: true,
		},
		discordgo.Button{
			Label:    "Submitted by " + submitterLabel(state, authorName),
			Style:    discordgo.SecondaryButton,
			CustomID: authorLabelID,
			Disabled: true,
		},
		discordgo.Button{
			Label:    fmt.Sprintf("Veil #%d", state.VeilNumber),
			Style:    discordgo.SecondaryButton,
			CustomID: numberLabelID,
			Disabled: true,
		},
	)

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: row},
	}
}

func submitterLabel(state dto.VeilDisplayState, authorName string) string {
	if !state.AuthorRevealed() {
		return common.RedactedAuthor
	}
	if authorName == "" {
		return "a mystery member"
	}
	return common.Truncate(authorName, 60)
}

// BuildModal creates the modal used to write a text veil
func BuildModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: ModalID,
		Title:    "Post a Veil",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    ContentInputID,
						Label:       "Your anonymous message",
						Style:       discordgo.TextInputParagraph,
						Placeholder: "Nobody will know it was you... until someone guesses",
						Required:    true,
						MaxLength:   200,
					},
				},
			},
		},
	}
}

// BuildAdminLogEmbed describes a new veil for the admin log, including its author
func BuildAdminLogEmbed(state dto.VeilDisplayState) *discordgo.MessageEmbed {
	kind := "Text"
	if state.IsPhoto {
		kind = "Photo"
	}
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Veil #%d posted", state.VeilNumber),
		Color: common.ColorVeil,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Author", Value: common.UserMention(state.AuthorID), Inline: true},
			{Name: "Channel", Value: common.ChannelMention(state.ChannelID), Inline: true},
			{Name: "Type", Value: kind, Inline: true},
			{Name: "Message", Value: messageLink(state), Inline: false},
		},
		Image: &discordgo.MessageEmbedImage{URL: "attachment://" + imageFileName},
	}
}

func messageLink(state dto.VeilDisplayState) string {
	return fmt.Sprintf("https://discord.com/channels/%d/%d/%d", state.GuildID, state.ChannelID, state.VeilID)
}

// modalContent extracts the veil text from a modal submission
func modalContent(data discordgo.ModalSubmitInteractionData) string {
	for _, comp := range data.Components {
		row, ok := comp.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == ContentInputID {
				return input.Value
			}
		}
	}
	return ""
}
