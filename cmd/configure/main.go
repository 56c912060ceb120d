package main

import (
	"fmt"
	"os"

	"github.com/benvon/team-builder/cmd/configure/commands"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Same optional .env as the server
	_ = godotenv.Load()

	var rootCmd = &cobra.Command{
		Use:   "team-builder-configure",
		Short: "Configuration tool for the Team Builder API",
		Long:  "CLI tool for managing the team generation rate limit and inspecting its usage",
	}

	rootCmd.AddCommand(commands.NewRatelimitCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
