package cli

import (
	"github.com/spf13/cobra"

	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/logger"
)

// NewRootCmd creates the top-level "nfl-dfs" command.
func NewRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "nfl-dfs",
		Short:         "Build FanDuel NFL lineup portfolios from a player CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitLogger(logLevel, true)
			logger.SetOutput(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newOptimizeCmd())
	return root
}
