package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/Benji12358/LOL-dashboard/internal/config"
	"github.com/Benji12358/LOL-dashboard/internal/curator"
	"github.com/Benji12358/LOL-dashboard/internal/db"
	"github.com/Benji12358/LOL-dashboard/internal/progress"
	"github.com/Benji12358/LOL-dashboard/internal/riot"
	"github.com/Benji12358/LOL-dashboard/internal/sync"
)

func main() {
	// Load .env file - try multiple locations
	for _, path := range []string{".env", "../.env"} {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	configPath := flag.String("config", "config/config.yaml", "Path to the YAML configuration file")
	refreshRank := flag.Bool("refresh-rank", false, "Re-resolve the stored summoner's rank before syncing")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := sync.SignalContext(logger)

	store, err := db.New(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.EnsureTables(ctx); err != nil {
		logger.Error("failed to ensure tables", "error", err)
		os.Exit(1)
	}

	client, err := riot.NewClient(cfg.Riot, logger)
	if err != nil {
		logger.Error("failed to create riot client", "error", err)
		os.Exit(1)
	}

	// The auth probe is the one call that is never retried: a rejected key
	// will not be accepted by waiting.
	if err := client.Probe(ctx, cfg.User.GameName, cfg.User.TagLine); err != nil {
		var apiErr *riot.APIError
		if errors.As(err, &apiErr) {
			logger.Error("api connection failed", "status_code", apiErr.Code, "message", apiErr.Message)
		} else {
			logger.Error("api connection failed", "error", err)
		}
		os.Exit(1)
	}
	logger.Info("api connection successful")

	cur := curator.New(store, client, cfg, logger)
	reporter := progress.NewFileReporter(cfg.Progress.Path)

	var opts []sync.Option
	if *refreshRank {
		opts = append(opts, sync.WithRankRefresh())
	}

	orch := sync.New(client, store, cur, reporter, cfg.User, logger, opts...)
	if err := orch.Run(ctx); err != nil {
		logger.Error("sync run failed", "state", orch.State().String(), "error", err)
		os.Exit(1)
	}
}
