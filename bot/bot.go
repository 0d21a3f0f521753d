package bot

import (
	"context"
	"fmt"
	"strings"

	"veilbot/application"
	"veilbot/bot/common"
	"veilbot/bot/features/guess"
	"veilbot/bot/features/settings"
	"veilbot/bot/features/stats"
	"veilbot/bot/features/store"
	"veilbot/bot/features/veil"
	"veilbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token string
}

// Services are the application entry points the features call into
type Services struct {
	Publisher   veil.Publisher
	Settler     guess.Settler
	Checkout    store.Checkout
	Leaderboard stats.LeaderboardRenderer
}

// Bot manages the Discord session and all feature modules
type Bot struct {
	config     Config
	session    *discordgo.Session
	uowFactory application.UnitOfWorkFactory
	presenter  *veil.Presenter

	// Feature modules
	veil     *veil.Feature
	guess    *guess.Feature
	store    *store.Feature
	settings *settings.Feature
	stats    *stats.Feature
}

// New creates the Discord session. The session is not opened until Start so the
// presenter can be handed to the application layer first.
func New(config Config, uowFactory application.UnitOfWorkFactory) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages

	return &Bot{
		config:     config,
		session:    dg,
		uowFactory: uowFactory,
		presenter:  veil.NewPresenter(dg),
	}, nil
}

// Presenter returns the Discord implementation of application.VeilPresenter
func (b *Bot) Presenter() *veil.Presenter {
	return b.presenter
}

// Start wires the features, opens the gateway and registers slash commands
func (b *Bot) Start(ctx context.Context, svc Services) error {
	b.veil = veil.NewFeature(svc.Publisher)
	b.guess = guess.NewFeature(b.uowFactory, svc.Settler)
	b.store = store.NewFeature(svc.Checkout)
	b.settings = settings.NewFeature(b.uowFactory)
	b.stats = stats.NewFeature(b.uowFactory, svc.Leaderboard)

	b.session.AddHandler(b.handleCommands)
	b.session.AddHandler(b.handleInteractions)
	b.session.AddHandler(b.handleGuildCreate)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.registerCommands(ctx); err != nil {
		b.session.Close()
		return fmt.Errorf("error registering commands: %w", err)
	}

	log.WithField("user", b.session.State.User.Username).Info("Discord bot connected")
	return nil
}

// Close gracefully shuts down the gateway connection
func (b *Bot) Close() error {
	return b.session.Close()
}

// handleCommands routes slash commands to appropriate handlers
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" {
		common.RespondWithError(s, i, "Veils only work inside a server.")
		return
	}

	switch i.ApplicationCommandData().Name {
	case "veil":
		b.veil.HandleCommand(s, i)
	case "veilstats", "leaderboard":
		b.stats.HandleCommand(s, i)
	case "store":
		b.store.HandleCommand(s, i)
	case "veilsettings":
		b.settings.HandleCommand(s, i)
	}
}

// handleInteractions routes component interactions and modals to features
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		b.routeComponentInteraction(s, i, i.MessageComponentData().CustomID)
	case discordgo.InteractionModalSubmit:
		if i.ModalSubmitData().CustomID == veil.ModalID {
			b.veil.HandleInteraction(s, i)
		}
	}
}

// routeComponentInteraction routes button and select menu interactions
func (b *Bot) routeComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	switch {
	case customID == veil.NewVeilButton:
		b.veil.HandleInteraction(s, i)

	case customID == veil.GuessButtonID, strings.HasPrefix(customID, guess.PickMenuPrefix):
		b.guess.HandleInteraction(s, i)

	case strings.HasPrefix(customID, store.PackButtonPrefix):
		b.store.HandleInteraction(s, i)
	}
}

// handleGuildCreate makes sure every guild the bot sees has settings
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	guildID, err := common.ParseID(g.ID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", g.ID, err)
		return
	}

	uow := b.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(context.Background()); err != nil {
		log.Errorf("Failed to begin transaction: %v", err)
		return
	}
	defer uow.Rollback()

	guildSettingsService := services.NewGuildSettingsService(uow.GuildSettingsRepository())
	guildSettings, err := guildSettingsService.GetOrCreateSettings(uow.Context(), guildID)
	if err != nil {
		log.Errorf("Failed to track guild %s (%s): %v", g.Name, g.ID, err)
		return
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Failed to commit transaction: %v", err)
		return
	}

	log.WithFields(log.Fields{
		"guild_id":    guildSettings.GuildID,
		"guild_name":  g.Name,
		"tier":        guildSettings.Tier,
		"max_guesses": guildSettings.GuessCap(),
	}).Info("Guild available")
}
