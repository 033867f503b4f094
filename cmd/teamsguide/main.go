// Command teamsguide serves the Teams guide bots and the player tab.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const appName = "teamsguide"

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Teams guide bots, messaging extension and player tab",
		Long: `teamsguide hosts two Bot Framework endpoints and a static tab:

- /api/messages1  Planet Selector messaging extension
- /api/messages2  conversational bot with task modules
- /youTubePlayerTab  the YouTube player tab

Running without a subcommand is the same as "teamsguide serve".`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	cmd.AddCommand(serveCmd(), planetsCmd(), versionCmd())
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	}
}
