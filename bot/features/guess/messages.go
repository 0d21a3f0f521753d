package guess

import (
	"fmt"

	"veilbot/bot/common"
	"veilbot/domain/entities"
	"veilbot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

// OutcomeEmbed builds the private reply shown to a guesser after settlement
func OutcomeEmbed(result *interfaces.SettlementResult) *discordgo.MessageEmbed {
	switch result.Outcome {
	case entities.OutcomeWon:
		description := "You figured out who posted this veil!"
		if result.Reward > 0 {
			description += fmt.Sprintf(" You earned **%s**.", common.FormatCoins(result.Reward))
		}
		return common.NewEmbed("🎉 Veil Unveiled", description, common.ColorSuccess)

	case entities.OutcomeIncorrect:
		return common.NewEmbed("❌ Incorrect Guess",
			fmt.Sprintf("That's not who posted it. Guesses used: **%d/%d**.", result.GuessCount, result.GuessCap),
			common.ColorDanger)

	case entities.OutcomeExhausted:
		return common.NewEmbed(fmt.Sprintf("🔒 %d Guesses Used", result.GuessCap),
			"Wrong again, and that was the last guess. This veil stays a mystery.",
			common.ColorDanger)

	case entities.OutcomeTooLate:
		return common.NewEmbed("⏱️ Too Late",
			"Someone unveiled this one a moment before you. Your coins were refunded.",
			common.ColorWarning)

	case entities.OutcomeAlreadyGuessed:
		return common.NewEmbed("🔁 You Already Guessed",
			"You only get one guess per veil.",
			common.ColorWarning)

	case entities.OutcomeInsufficientFunds:
		return common.NewEmbed("🪙 Not Enough Coins",
			"You don't have enough coins to guess. Check `/veilstats` for your next refill or visit `/store`.",
			common.ColorWarning)

	case entities.OutcomeNoAttemptsLeft:
		return common.NewEmbed("🚫 No More Guesses",
			"This veil is closed to new guesses.",
			common.ColorWarning)

	case entities.OutcomeNotFound:
		return common.NewEmbed("❓ Message Not Found",
			"This veil no longer exists.",
			common.ColorWarning)

	case entities.OutcomeSelfGuess:
		return common.NewEmbed("🙈 You can't guess your own veil",
			"Nice try.",
			common.ColorWarning)

	default:
		return common.NewEmbed("Guess recorded", "", common.ColorInfo)
	}
}

// BuildCandidateMenu creates the dropdown of people who might have posted the veil
func BuildCandidateMenu(veilID int64, candidates []int64, names map[int64]string) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(candidates))
	for _, id := range candidates {
		if len(options) >= common.MaxSelectOptions {
			break
		}
		name := names[id]
		if name == "" {
			name = "User " + common.FormatID(id)
		}
		options = append(options, discordgo.SelectMenuOption{
			Label: common.Truncate(name, common.MaxSelectLabelLen),
			Value: common.FormatID(id),
		})
	}

	minValues := 1
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    fmt.Sprintf("%s%d", PickMenuPrefix, veilID),
					Placeholder: "Who posted this veil?",
					MinValues:   &minValues,
					MaxValues:   1,
					Options:     options,
				},
			},
		},
	}
}
