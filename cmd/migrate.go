package cmd

import (
	"fmt"
	"strconv"

	"veilbot/config"
	"veilbot/database"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command and its subcommands
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "up",
		Short:        "Apply all pending migrations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.MigrateUp(config.Get().GetDatabaseURL())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:          "down [steps]",
		Short:        "Roll back migrations (default 1)",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseSteps(args)
			if err != nil {
				return err
			}
			return database.MigrateDown(config.Get().GetDatabaseURL(), steps)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:          "status",
		Short:        "Show the current schema version",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := database.MigrateStatus(config.Get().GetDatabaseURL())
			if err != nil {
				return err
			}
			if !status.Applied {
				log.Info("No migrations applied")
				return nil
			}
			log.WithFields(log.Fields{
				"version": status.Version,
				"dirty":   status.Dirty,
			}).Info("Migration status")
			return nil
		},
	})

	return cmd
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps <= 0 {
		return 0, fmt.Errorf("steps must be a positive integer, got %q", args[0])
	}
	return steps, nil
}
