package cmd

import (
	"context"
	"fmt"
	"time"

	"veilbot/application"
	"veilbot/bot"
	"veilbot/config"
	"veilbot/database"
	"veilbot/httpapi"
	"veilbot/infrastructure"
	"veilbot/payments"
	"veilbot/render"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	photoFetchTimeout = 15 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "run",
		Short:        "Start the Discord bot and the webhook server",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context())
		},
	}
}

// Run initializes and starts the application, blocking until ctx is cancelled
func Run(ctx context.Context) error {
	log.Info("Starting veilbot...")

	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL(), database.WithTxTimeout(cfg.DBTxTimeout))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize event bus
	var natsClient *infrastructure.NATSClient
	var subscriber application.EventSubscriber
	subjectMapper := infrastructure.NewEventSubjectMapper()
	if cfg.NATSEnabled() {
		log.Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			db.Close()
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		subscriber = infrastructure.NewNATSEventSubscriber(natsClient, subjectMapper)
	} else {
		log.Warn("NATS_SERVERS not set; events stay in-process")
	}
	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, subjectMapper)
	if err := eventPublisher.EnsureVeilEventStream(); err != nil {
		closeResources(natsClient, db)
		return fmt.Errorf("failed to ensure event stream: %w", err)
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)

	// The session is created first so its presenter can back the application layer
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{Token: cfg.DiscordToken}, uowFactory)
	if err != nil {
		closeResources(natsClient, db)
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	presenter := discordBot.Presenter()

	// Initialize application services
	log.Info("Initializing services...")
	var paymentProvider application.PaymentProvider
	if cfg.CheckoutBaseURL != "" {
		provider, err := payments.NewLinkProvider(cfg.CheckoutBaseURL)
		if err != nil {
			closeResources(natsClient, db)
			return fmt.Errorf("failed to initialize payment provider: %w", err)
		}
		paymentProvider = provider
	} else {
		log.Warn("CHECKOUT_BASE_URL not set; the coin store is closed")
	}

	veilRenderer := render.NewVeilRenderer()
	settlementEngine := application.NewSettlementEngine(uowFactory, presenter, cfg.GuessCost, application.WithUnveilRenderer(veilRenderer))
	veilPublisher := application.NewVeilPublisher(uowFactory, veilRenderer, render.NewHTTPPhotoFetcher(photoFetchTimeout), presenter)
	coinStore := application.NewCoinStore(uowFactory, paymentProvider)
	hydrator := application.NewRecoveryHydrator(uowFactory, presenter, application.WithHydrationRate(cfg.HydrationRate))

	if err := application.RegisterApplicationSubscriptions(eventPublisher, subscriber, coinStore); err != nil {
		closeResources(natsClient, db)
		return fmt.Errorf("failed to register event subscriptions: %w", err)
	}

	stopMaintenance, err := application.NewMaintenanceScheduler(uowFactory).Start(ctx)
	if err != nil {
		closeResources(natsClient, db)
		return fmt.Errorf("failed to start maintenance scheduler: %w", err)
	}
	log.Info("Services initialized successfully")

	// Start the webhook and metrics server
	server := httpapi.NewServer(httpapi.Options{
		Addr:          cfg.HTTPAddr,
		WebhookSecret: cfg.WebhookSecret,
		WebhookRate:   cfg.WebhookRate,
	}, coinStore, db)
	server.Start()

	// Open the gateway and register commands
	if err := discordBot.Start(ctx, bot.Services{
		Publisher:   veilPublisher,
		Settler:     settlementEngine,
		Checkout:    coinStore,
		Leaderboard: render.NewLeaderboardGenerator(),
	}); err != nil {
		shutdown(discordBot, server, stopMaintenance, natsClient, db)
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}
	log.Info("Discord bot started successfully")

	// Redraw the controls of every latest veil left behind by the previous process
	hydrator.Start(ctx)

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	shutdown(discordBot, server, stopMaintenance, natsClient, db)
	log.Info("Shutdown completed")

	return nil
}

func shutdown(discordBot *bot.Bot, server *httpapi.Server, stopMaintenance func(), natsClient *infrastructure.NATSClient, db *database.DB) {
	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	stopMaintenance()
	closeResources(natsClient, db)
}

func closeResources(natsClient *infrastructure.NATSClient, db *database.DB) {
	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}

	log.Info("Closing database connection...")
	db.Close()
}
