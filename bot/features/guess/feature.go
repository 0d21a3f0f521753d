package guess

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"veilbot/application"
	"veilbot/bot/common"
	"veilbot/bot/features/veil"
	"veilbot/domain/entities"
	"veilbot/domain/interfaces"
	"veilbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// PickMenuPrefix prefixes the custom ID of the candidate dropdown
const PickMenuPrefix = "veil_pick_"

// Settler settles guesses
type Settler interface {
	SubmitGuess(ctx context.Context, sub interfaces.GuessSubmission) (*application.GuessSettlement, error)
}

// Feature handles the Unveil button and the candidate dropdown
type Feature struct {
	uowFactory application.UnitOfWorkFactory
	settler    Settler

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewFeature creates a new guess feature
func NewFeature(uowFactory application.UnitOfWorkFactory, settler Settler) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		settler:    settler,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// HandleInteraction routes guess components
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID

	switch {
	case customID == veil.GuessButtonID:
		f.handleGuessButton(s, i)
	case strings.HasPrefix(customID, PickMenuPrefix):
		f.handlePick(s, i)
	}
}

// handleGuessButton shows the candidate dropdown for the veil the button belongs to
func (f *Feature) handleGuessButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Message == nil {
		common.RespondWithError(s, i, "I couldn't find that veil.")
		return
	}
	veilID, err := common.ParseID(i.Message.ID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Invalid veil message ID"), false)
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
		log.WithError(err).Error("Failed to defer guess response")
		return
	}

	target, err := f.loadVeil(guildID, veilID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to load veil for guess"), true)
		return
	}

	// Answer the cheap rejections before fetching candidates
	var early *interfaces.SettlementResult
	switch {
	case target == nil:
		early = &interfaces.SettlementResult{Outcome: entities.OutcomeNotFound}
	case target.IsAuthor(userID):
		early = &interfaces.SettlementResult{Outcome: entities.OutcomeSelfGuess}
	case target.IsUnveiled:
		early = &interfaces.SettlementResult{Outcome: entities.OutcomeNoAttemptsLeft}
	}
	if early != nil {
		if _, err := common.FollowUpWithEmbed(s, i, OutcomeEmbed(early), nil, true); err != nil {
			log.WithError(err).Warn("Failed to send guess rejection")
		}
		return
	}

	src, err := collectCandidates(s, i.GuildID, i.ChannelID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to collect guess candidates"), true)
		return
	}

	f.rngMu.Lock()
	pool := services.BuildCandidatePool(target.AuthorID, src.recent, src.members, f.rng)
	f.rngMu.Unlock()

	if _, ok := src.names[target.AuthorID]; !ok {
		src.names[target.AuthorID] = common.GetDisplayName(s, i.GuildID, target.AuthorID)
	}

	embed := common.NewEmbed(fmt.Sprintf("🔍 Who posted Veil #%d?", target.VeilNumber),
		"Pick carefully, you only get one guess.", common.ColorVeil)
	if _, err := common.FollowUpWithEmbed(s, i, embed, BuildCandidateMenu(veilID, pool, src.names), true); err != nil {
		log.WithError(err).Error("Failed to send candidate menu")
	}
}

// handlePick settles the selected candidate and replaces the dropdown with the outcome
func (f *Feature) handlePick(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()

	veilID, err := common.ParseCustomIDSuffix(data.CustomID, PickMenuPrefix)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Invalid candidate menu"), false)
		return
	}
	if len(data.Values) != 1 {
		common.RespondWithError(s, i, "Please pick exactly one member.")
		return
	}
	candidateID, err := common.ParseID(data.Values[0])
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Invalid candidate"), false)
		return
	}
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Invalid guild ID"), false)
		return
	}
	guesserID, err := common.ParseID(common.InteractionUserID(i))
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Invalid user ID"), false)
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		log.WithError(err).Error("Failed to defer guess update")
		return
	}

	settlement, err := f.settler.SubmitGuess(context.Background(), interfaces.GuessSubmission{
		GuildID:     guildID,
		VeilID:      veilID,
		GuesserID:   guesserID,
		CandidateID: candidateID,
	})
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to settle guess"), true)
		return
	}

	empty := []discordgo.MessageComponent{}
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{OutcomeEmbed(settlement.SettlementResult)},
		Components: &empty,
	}); err != nil {
		log.WithError(err).Warn("Failed to show guess outcome")
	}
}

func (f *Feature) loadVeil(guildID, veilID int64) (*entities.Veil, error) {
	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	found, err := uow.VeilRepository().GetByID(uow.Context(), veilID)
	if err != nil {
		return nil, fmt.Errorf("failed to load veil %d: %w", veilID, err)
	}
	return found, nil
}
