package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ChiefOfStaff/internal/corpus"
	"ChiefOfStaff/internal/source"
)

func init() {
	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Aggregate sources and generate the daily briefing",
		Run:   runBrief,
	}

	cmd.Flags().StringSliceP("sources", "s", nil, "Sources to include (default: all configured)")
	cmd.Flags().Int("hours", 0, "Override the recency window in hours")

	RootCmd.AddCommand(cmd)
}

func runBrief(cmd *cobra.Command, args []string) {
	selected, _ := cmd.Flags().GetStringSlice("sources")
	hours, _ := cmd.Flags().GetInt("hours")

	application := buildApp()
	if hours <= 0 {
		hours = application.Cfg.Window.Hours
	}

	day := time.Now().UTC()
	result, err := application.Briefing.Run(cmd.Context(), day, source.LastHours(hours), selected)
	if errors.Is(err, corpus.ErrNoSignal) {
		// A quiet day is a distinct outcome, not a failure.
		fmt.Println("No signal: every source returned zero messages. Nothing to brief.")
		return
	}
	if err != nil {
		exitErr("briefing run failed", err)
	}

	path, err := application.Emitter.Emit(cmd.Context(), day, result.Narrative)
	if err != nil {
		exitErr("emit briefing", err)
	}

	fmt.Printf("Briefing saved to %s (%d messages, snapshot %s)\n", path, result.Messages, result.SnapshotPath)
}
