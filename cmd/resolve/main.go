package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Benji12358/LOL-dashboard/internal/config"
	"github.com/Benji12358/LOL-dashboard/internal/curator"
	"github.com/Benji12358/LOL-dashboard/internal/riot"
)

func main() {
	godotenv.Load()

	configPath := flag.String("config", "config/config.yaml", "Path to the YAML configuration file")
	riotID := flag.String("riot-id", "", "Riot ID in format 'GameName#TagLine'")
	flag.Parse()

	if *riotID == "" {
		fmt.Println("Usage: resolve --riot-id=\"PlayerName#EUW\"")
		os.Exit(1)
	}

	parts := strings.SplitN(*riotID, "#", 2)
	if len(parts) != 2 {
		fmt.Fprintf(os.Stderr, "Invalid Riot ID format. Expected 'GameName#TagLine', got: %s\n", *riotID)
		os.Exit(1)
	}
	gameName, tagLine := parts[0], parts[1]

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		// The tracked-user fields are irrelevant here; only the API key and
		// base URLs matter.
		cfg = config.Default()
		cfg.Riot.APIKey = os.Getenv("RIOT_API_KEY")
		if cfg.Riot.APIKey == "" {
			fmt.Fprintln(os.Stderr, "RIOT_API_KEY environment variable not set")
			os.Exit(1)
		}
	}

	client, err := riot.NewClient(cfg.Riot, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create riot client: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	account, err := client.AccountByRiotID(ctx, gameName, tagLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve %s: %v\n", *riotID, err)
		os.Exit(1)
	}
	fmt.Printf("PUUID: %s\n", account.PUUID)

	entries, err := client.LeagueEntries(ctx, account.PUUID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch league entries: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Solo queue rank: %s\n", curator.RankFromEntries(entries))
	for _, entry := range entries {
		fmt.Printf("  %s: %s %s (%d LP) - %dW %dL\n",
			entry.QueueType, entry.Tier, entry.Rank, entry.LeaguePoints, entry.Wins, entry.Losses)
	}
}
