package cmd

import (
	"veilbot/config"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the veilbot command tree. Without a subcommand the bot runs.
func NewRootCommand() *cobra.Command {
	var closeLogs func()

	cmd := &cobra.Command{
		Use:   "veilbot",
		Short: "VeilBot - anonymous confessions with a guessing game",
		Long: `VeilBot posts anonymous veils to Discord channels and lets members spend
coins guessing who wrote them.

Run without a subcommand to start the bot.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			closeLogs, err = configureLogging(config.Get())
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeLogs != nil {
				closeLogs()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context())
		},
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewCoinsCommand())
	cmd.AddCommand(NewTierCommand())

	return cmd
}
