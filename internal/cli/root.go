package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootConfig carries the persistent flags into every subcommand.
type RootConfig struct {
	ConfigPath string
	DataDir    string
	DBPath     string
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:           "classmarket",
		Short:         "classmarket — classroom peer-to-peer trading market",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.DataDir, "data", "", "Data directory for the JSON store (overrides config)")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", "", "SQLite database path (overrides config, selects the sqlite store)")

	// Subcommands
	cmd.AddCommand(
		newSubmitCmd(rc),
		newOffersCmd(rc),
		newAcceptCmd(rc),
		newCloseCmd(rc),
		newPortfolioCmd(rc),
		newLeaderboardCmd(rc),
		newHistoryCmd(rc),
		newResetCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("classmarket (dev)")
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
