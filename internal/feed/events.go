package feed

import "time"

// Event is one scrape progress message. Types:
//
//	"book.upsert" - a book row and its snapshot were just persisted
//	"scrape.page" - a listing page finished (with scrape/skip counts)
type Event struct {
	Type    string    `json:"type"`
	RunID   string    `json:"run_id"`
	BookID  string    `json:"book_id,omitempty"`
	Title   string    `json:"title,omitempty"`
	Page    int       `json:"page,omitempty"`
	Scraped int       `json:"scraped,omitempty"`
	Skipped int       `json:"skipped,omitempty"`
	At      time.Time `json:"at"`
}
