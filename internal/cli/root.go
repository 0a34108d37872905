// Package cli implements the chiefofstaff CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ChiefOfStaff/internal/app"
	"ChiefOfStaff/internal/config"
	"ChiefOfStaff/internal/logging"
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "chiefofstaff",
	Short: "Daily briefing generator",
	Long: "Aggregates the last day of messages and documents from every configured source,\n" +
		"scores the noisy ones, and turns the merged corpus into an executive briefing.",
}

func buildApp() *app.Application {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)
	return app.New(cfg, logger)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
