package main

import (
	"os"

	"github.com/spf13/cobra"

	"bizcard/internal/interfaces/cli/migrate"
	"bizcard/internal/interfaces/cli/server"
	"bizcard/internal/interfaces/cli/sweep"
	"bizcard/internal/interfaces/cli/token"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bizcard",
		Short: "Bizcard - payment and publication service for business cards",
		Long:  `Bizcard reconciles card payments from checkout, client confirmation, gateway webhooks and the pending sweeper into the publication state of each business card.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		sweep.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
