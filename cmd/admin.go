package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"veilbot/application"
	"veilbot/config"
	"veilbot/database"
	"veilbot/domain/entities"
	"veilbot/infrastructure"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewCoinsCommand creates the coins operator command
func NewCoinsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coins",
		Short: "Manage member coin balances",
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "grant <guild-id> <user-id> <amount>",
		Short:        "Credit coins to a member",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, userID, amount, err := parseGrantArgs(args)
			if err != nil {
				return err
			}
			return withAdminOperations(cmd.Context(), func(ops *application.AdminOperations) error {
				balance, err := ops.GrantCoins(cmd.Context(), guildID, userID, amount)
				if err != nil {
					return err
				}
				cmd.Printf("Granted %d coins to %d in guild %d; balance is now %d\n", amount, userID, guildID, balance)
				return nil
			})
		},
	})

	return cmd
}

// NewTierCommand creates the tier operator command
func NewTierCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "tier",
		Short: "Manage guild subscription tiers",
	}

	set := &cobra.Command{
		Use:          "set <guild-id> <tier>",
		Short:        "Change a guild's tier",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, tier, err := parseTierArgs(args)
			if err != nil {
				return err
			}
			if days < 0 {
				return fmt.Errorf("days must not be negative, got %d", days)
			}
			duration := time.Duration(days) * 24 * time.Hour
			return withAdminOperations(cmd.Context(), func(ops *application.AdminOperations) error {
				settings, err := ops.SetTier(cmd.Context(), guildID, tier, duration)
				if err != nil {
					return err
				}
				cmd.Printf("Guild %d is now on the %s tier\n", guildID, settings.Tier)
				return nil
			})
		},
	}
	set.Flags().IntVar(&days, "days", 30, "days until the tier renews (0 for no renewal date)")

	cmd.AddCommand(set)
	return cmd
}

func parseGrantArgs(args []string) (guildID, userID, amount int64, err error) {
	if guildID, err = parseSnowflake("guild-id", args[0]); err != nil {
		return 0, 0, 0, err
	}
	if userID, err = parseSnowflake("user-id", args[1]); err != nil {
		return 0, 0, 0, err
	}
	amount, err = strconv.ParseInt(args[2], 10, 64)
	if err != nil || amount <= 0 {
		return 0, 0, 0, fmt.Errorf("amount must be a positive integer, got %q", args[2])
	}
	return guildID, userID, amount, nil
}

func parseTierArgs(args []string) (int64, entities.Tier, error) {
	guildID, err := parseSnowflake("guild-id", args[0])
	if err != nil {
		return 0, "", err
	}
	tier, err := entities.ParseTier(args[1])
	if err != nil {
		return 0, "", err
	}
	return guildID, tier, nil
}

func parseSnowflake(name, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a Discord ID, got %q", name, value)
	}
	return id, nil
}

// withAdminOperations opens a short-lived database connection for one operator action.
// Events raised by the action are dropped; the running bot owns the event bus.
func withAdminOperations(ctx context.Context, fn func(ops *application.AdminOperations) error) error {
	cfg := config.Get()

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL(), database.WithTxTimeout(cfg.DBTxTimeout))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, infrastructure.NewNoopEventPublisher())
	if err := fn(application.NewAdminOperations(uowFactory)); err != nil {
		log.WithError(err).Error("Operator command failed")
		return err
	}
	return nil
}
