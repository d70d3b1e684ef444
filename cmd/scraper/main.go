package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"bookhub/internal/books"
	"bookhub/internal/scraper"
	"bookhub/pkg/database"
	"bookhub/pkg/utils"
)

func main() {
	cfg := utils.LoadServerConfig()

	// ctrl-c stops the page loop between pages
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	// Ensure schema exists
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	repo := books.NewRepo(db)
	royalroad := scraper.NewRoyalRoad(scraper.NewClient(), repo, nil, cfg.SourceURL)

	total, err := royalroad.ScrapeAll(ctx, cfg.MaxPages)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("scrape failed after %d books: %v", total, err)
	}

	log.Printf("scrape finished: %d books persisted", total)
}
