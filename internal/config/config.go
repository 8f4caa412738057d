package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// VERSEFEED_FEED_CATEGORY=hope.
const EnvPrefix = "VERSEFEED"

// DatasetFile is the dataset file name inside the data directory.
const DatasetFile = "bible_web.sqlite"

type (
	// Config is the resolved application configuration.
	Config struct {
		Data
		Feed
		Search
		Log
	}

	Data struct {
		Dir         string // Data directory (logs, dataset copy, config.json)
		DatasetPath string // Dataset the store opens
		BundledPath string // Pristine dataset copied into DatasetPath on start; empty disables
		Policy      string // "overwrite" or "preserve"
	}
	Feed struct {
		Category      string
		PrefetchAhead int
		FetchRate     float64 // Fetches per second; 0 disables pacing
		FetchBurst    int
	}
	Search struct {
		PageSize int
	}
	Log struct {
		Level string
	}
)

// DefaultDataDir returns ~/.versefeed.
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".versefeed")
}

// Load resolves configuration from defaults, an optional config.json in the
// data directory and VERSEFEED_* environment variables, in increasing
// priority.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data.dir", DefaultDataDir())
	v.SetDefault("dataset.path", "")
	v.SetDefault("dataset.bundled", "")
	v.SetDefault("dataset.policy", "overwrite")
	v.SetDefault("feed.category", "encouragement")
	v.SetDefault("feed.prefetch_ahead", 1)
	v.SetDefault("feed.fetch_rate", 20.0)
	v.SetDefault("feed.fetch_burst", 4)
	v.SetDefault("search.page_size", 8)
	v.SetDefault("log.level", "info")

	// The config file lives in the data directory, which only env can move.
	dataDir := v.GetString("data.dir")
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(dataDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	datasetPath := v.GetString("dataset.path")
	if datasetPath == "" {
		datasetPath = filepath.Join(dataDir, DatasetFile)
	}

	cfg := &Config{
		Data: Data{
			Dir:         dataDir,
			DatasetPath: datasetPath,
			BundledPath: v.GetString("dataset.bundled"),
			Policy:      v.GetString("dataset.policy"),
		},
		Feed: Feed{
			Category:      v.GetString("feed.category"),
			PrefetchAhead: v.GetInt("feed.prefetch_ahead"),
			FetchRate:     v.GetFloat64("feed.fetch_rate"),
			FetchBurst:    v.GetInt("feed.fetch_burst"),
		},
		Search: Search{
			PageSize: v.GetInt("search.page_size"),
		},
		Log: Log{
			Level: v.GetString("log.level"),
		},
	}

	// Validate
	if cfg.Feed.PrefetchAhead < 0 {
		cfg.Feed.PrefetchAhead = 1
	}
	if cfg.Feed.FetchBurst <= 0 {
		cfg.Feed.FetchBurst = 1
	}
	if cfg.Search.PageSize <= 0 {
		cfg.Search.PageSize = 8
	}
	return cfg, nil
}
