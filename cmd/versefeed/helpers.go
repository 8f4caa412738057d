package main

import (
	"log"
	"os"

	"golang.org/x/time/rate"

	"github.com/abelbrown/versefeed/internal/config"
	"github.com/abelbrown/versefeed/internal/dataset"
	"github.com/abelbrown/versefeed/internal/feed"
	"github.com/abelbrown/versefeed/internal/logging"
	"github.com/abelbrown/versefeed/internal/store"
)

// loadConfig resolves configuration and prepares the data directory, or
// fatals.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	if err := logging.Init(cfg.Data.Dir, cfg.Log.Level); err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	return cfg
}

// openStore provisions the dataset per the configured policy and opens
// it, or fatals.
func openStore(cfg *config.Config) *store.Store {
	if _, err := dataset.Provision(cfg.Data.BundledPath, cfg.Data.DatasetPath, dataset.ParsePolicy(cfg.Data.Policy)); err != nil {
		log.Fatalf("failed to provision dataset: %v", err)
	}

	st, err := store.Open(cfg.Data.DatasetPath)
	if err != nil {
		log.Fatalf("failed to open dataset: %v", err)
	}
	return st
}

// feedOptions builds controller options from config.
func feedOptions(cfg *config.Config) []feed.Option {
	opts := []feed.Option{
		feed.WithPrefetchAhead(cfg.Feed.PrefetchAhead),
		feed.WithLogger(logging.WithPrefix("feed")),
	}
	if cfg.Feed.FetchRate > 0 {
		opts = append(opts, feed.WithFetchLimiter(rate.NewLimiter(rate.Limit(cfg.Feed.FetchRate), cfg.Feed.FetchBurst)))
	}
	return opts
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
