package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"veilbot/application"
	"veilbot/application/dto"
	"veilbot/bot/common"
	"veilbot/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// PackButtonPrefix prefixes the custom ID of each coin pack button
const PackButtonPrefix = "store_pack_"

// Checkout starts coin pack purchases
type Checkout interface {
	StartCheckout(ctx context.Context, guildID, userID, coins int64) (*dto.CheckoutLink, error)
}

// Feature handles /store and the coin pack buttons
type Feature struct {
	checkout Checkout
}

// NewFeature creates a new store feature
func NewFeature(checkout Checkout) *Feature {
	return &Feature{checkout: checkout}
}

// HandleCommand shows the coin packs
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := common.RespondWithEmbed(s, i, BuildStoreEmbed(), BuildPackButtons(entities.CoinPacks), true); err != nil {
		log.WithError(err).Error("Failed to show store")
	}
}

// HandleInteraction creates a checkout session for the chosen pack
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, PackButtonPrefix) {
		return
	}

	coins, err := common.ParseCustomIDSuffix(customID, PackButtonPrefix)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Invalid coin pack button"), false)
		return
	}
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

	if err := common.DeferResponse(s, i, true); err != nil {
		log.WithError(err).Error("Failed to defer checkout response")
		return
	}

	link, err := f.checkout.StartCheckout(context.Background(), guildID, userID, coins)
	if errors.Is(err, application.ErrCheckoutUnavailable) {
		common.HandleError(s, i, common.NewUserError("The coin store is closed right now.", "checkout requested without a payment provider"), true)
		return
	}
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to start checkout"), true)
		return
	}

	if _, err := common.FollowUpWithEmbed(s, i, BuildCheckoutEmbed(link), BuildCheckoutButton(link), true); err != nil {
		log.WithError(err).Error("Failed to send checkout link")
	}
}

// BuildStoreEmbed describes the coin packs on offer
func BuildStoreEmbed() *discordgo.MessageEmbed {
	var lines []string
	for _, pack := range entities.CoinPacks {
		lines = append(lines, fmt.Sprintf("🪙 **%s** for %s", common.FormatCoins(pack.Coins), common.FormatPrice(pack.PriceCents)))
	}
	return &discordgo.MessageEmbed{
		Title:       "Coin Store",
		Description: "Coins pay for guesses. Pick a pack to get a checkout link.\n\n" + strings.Join(lines, "\n"),
		Color:       common.ColorPrimary,
	}
}

// BuildPackButtons creates one button per coin pack. Packs beyond what fits in a
// message's action rows are dropped.
func BuildPackButtons(packs []entities.CoinPack) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	var current []discordgo.MessageComponent

	if limit := common.MaxActionRows * common.MaxButtonsPerRow; len(packs) > limit {
		log.WithFields(log.Fields{
			"packs": len(packs),
			"shown": limit,
		}).Warn("Too many coin packs for one message")
		packs = packs[:limit]
	}

	for idx, pack := range packs {
		current = append(current, discordgo.Button{
			Label:    fmt.Sprintf("%s · %s", common.FormatBalance(pack.Coins), common.FormatPrice(pack.PriceCents)),
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("%s%d", PackButtonPrefix, pack.Coins),
			Emoji:    &discordgo.ComponentEmoji{Name: "🪙"},
		})

		if len(current) == common.MaxButtonsPerRow || idx == len(packs)-1 {
			rows = append(rows, discordgo.ActionsRow{Components: current})
			current = nil
		}
	}

	return rows
}

// BuildCheckoutEmbed confirms the pack being purchased
func BuildCheckoutEmbed(link *dto.CheckoutLink) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Checkout ready",
		Description: fmt.Sprintf("**%s** for **%s**. Coins are added as soon as the payment completes.",
			common.FormatCoins(link.Coins), common.FormatPrice(link.PriceCents)),
		Color: common.ColorSuccess,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Session " + link.SessionID,
		},
	}
}

// BuildCheckoutButton creates the link button to the checkout page
func BuildCheckoutButton(link *dto.CheckoutLink) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label: "Pay now",
					Style: discordgo.LinkButton,
					URL:   link.URL,
				},
			},
		},
	}
}
