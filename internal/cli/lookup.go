package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ChiefOfStaff/internal/resolver"
)

func init() {
	cmd := &cobra.Command{
		Use:   "lookup [query]",
		Short: "Resolve a name or symbol against the catalog and print its report",
		Args:  cobra.MinimumNArgs(1),
		Run:   runLookup,
	}

	RootCmd.AddCommand(cmd)
}

func runLookup(cmd *cobra.Command, args []string) {
	query := strings.Join(args, " ")
	application := buildApp()

	id, err := application.Resolver.Resolve(cmd.Context(), query)
	if errors.Is(err, resolver.ErrNotFound) {
		fmt.Printf("No catalog entry matched %q.\n", query)
		return
	}
	if err != nil {
		exitErr("resolve query", err)
	}

	profile, err := application.Catalog.FetchProfile(cmd.Context(), id)
	if err != nil {
		exitErr("fetch profile", err)
	}

	rule := strings.Repeat("=", 60)
	fmt.Printf("\n%s\nREPORT: %s (%s)\n%s\n", rule, profile.Name, profile.Symbol, rule)
	fmt.Printf("Price:        $%.2f\n", profile.PriceUSD)
	fmt.Printf("Market Cap:   $%.0f\n", profile.MarketCap)
	fmt.Printf("Dev Score:    %.0f/100\n", profile.DevScore)
	fmt.Printf("%s\n", strings.Repeat("-", 60))
	fmt.Printf("Summary: %s...\n%s\n\n", profile.Description, rule)
}
