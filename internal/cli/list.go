package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the catalog category's top entries by market cap",
		Run:   runList,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max entries")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	application := buildApp()

	entries, err := application.Catalog.TopMarkets(cmd.Context(), limit)
	if err != nil {
		exitErr("fetch markets", err)
	}

	rule := strings.Repeat("=", 60)
	fmt.Println(rule)
	fmt.Printf("%-5s %-25s %-10s %-12s %s\n", "RANK", "NAME", "SYMBOL", "PRICE", "MARKET CAP")
	fmt.Println(rule)

	for _, entry := range entries {
		rank := "N/A"
		if entry.Rank != nil {
			rank = fmt.Sprintf("%d", *entry.Rank)
		}
		name := entry.Name
		if len(name) > 24 {
			name = name[:24]
		}
		fmt.Printf("%-5s %-25s %-10s $%-11.2f $%.0f\n",
			rank, name, strings.ToUpper(entry.Symbol), entry.PriceUSD, entry.MarketCap)
	}

	fmt.Println(rule)
}
