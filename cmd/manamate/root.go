package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "manamate",
		Short: "Magic: The Gathering card lookup bot",
		Long: `ManaMate answers !carta queries from a chat with card images from Scryfall.

Configuration is read from manamate.yaml (./config, . or /etc/manamate) and
can be overridden with environment variables such as PORT, LOG_LEVEL,
SCRYFALL_BASE_URL and WORKSPACE_DIR.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "path to the configuration file")

	root.AddCommand(newRunCmd(), newSearchCmd(), newConfigCmd())
	return root
}
