package utils

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	ListenAddr string // HTTP API
	FeedAddr   string // TCP scrape-event feed
	SourceURL  string // scrape target base URL
	MaxPages   int    // page cap for scrape-all runs
}

// LoadServerConfig reads BOOKHUB_* env vars, with an optional .env file for
// local development. Missing values fall back to working defaults.
func LoadServerConfig() ServerConfig {
	_ = godotenv.Load()

	cfg := ServerConfig{
		ListenAddr: ":8080",
		FeedAddr:   ":7070",
		SourceURL:  "https://www.royalroad.com",
		MaxPages:   20,
	}

	if v := os.Getenv("BOOKHUB_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("BOOKHUB_FEED_ADDR"); v != "" {
		cfg.FeedAddr = v
	}
	if v := os.Getenv("BOOKHUB_SOURCE_URL"); v != "" {
		cfg.SourceURL = v
	}
	if v := os.Getenv("BOOKHUB_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxPages = n
		}
	}

	return cfg
}
