package feed

import (
	"time"

	"bookhub/pkg/models"
)

// Sink adapts the hub to the orchestrator's Notifier interface.
type Sink struct {
	Hub *Hub
}

func (s Sink) BookUpserted(runID string, book models.Book) {
	s.Hub.BroadcastJSON(Event{
		Type:   "book.upsert",
		RunID:  runID,
		BookID: book.ID,
		Title:  book.Title,
		At:     time.Now(),
	})
}

func (s Sink) PageScraped(runID string, page, scraped, skipped int) {
	s.Hub.BroadcastJSON(Event{
		Type:    "scrape.page",
		RunID:   runID,
		Page:    page,
		Scraped: scraped,
		Skipped: skipped,
		At:      time.Now(),
	})
}
