package models

import "time"

// SourceRoyalRoad is the origin tag stamped on every book produced by the
// Royal Road scraper.
const SourceRoyalRoad = "ROYAL_ROAD"

// UnknownAuthor is the sentinel stored when no author could be extracted.
const UnknownAuthor = "Unknown Author"

// Book is the canonical, normalized form of a scraped fiction entry.
//
// The scraper maps raw HTML into this structure first, then the database
// layer writes from this representation. All string fields default to ""
// (never null) and Tags preserves source order and duplicates.
type Book struct {
	ID          string    `json:"id"`          // stable id from the source URL path segment
	Title       string    `json:"title"`       // "" if unextractable
	AuthorName  string    `json:"authorName"`  // "Unknown Author" when no selector matched
	Description string    `json:"description"` // may be empty
	Tags        []string  `json:"tags"`        // as scraped; duplicates preserved
	CoverURL    string    `json:"coverUrl"`    // "" if missing
	SourceURL   string    `json:"sourceUrl"`   // base URL + /fiction/<id>
	Source      string    `json:"source"`      // e.g. ROYAL_ROAD
	CreatedAt   time.Time `json:"createdAt"`   // first-scrape time; preserved across upserts

	// Stats is the most recent snapshot for this book. A zero CreatedAt
	// means no snapshot exists yet; the numeric fields are still concrete
	// zeros, never absent.
	Stats BookStats `json:"stats"`
}

// HasStats reports whether at least one stats snapshot has been captured.
func (b Book) HasStats() bool {
	return !b.Stats.CreatedAt.IsZero()
}

// BookStats is one immutable, append-only snapshot of a book's numbers.
// Snapshots are history: new scrapes add rows, they never overwrite old ones.
type BookStats struct {
	Rating    float64   `json:"rating"`    // 0 if absent
	Followers int       `json:"followers"` // 0 if absent
	Pages     int       `json:"pages"`     // 0 if absent
	Views     int       `json:"views"`     // total views, 0 if absent
	CreatedAt time.Time `json:"createdAt"` // capture time
}

// SortKey values accepted by BookSearchParams.SortBy.
const (
	SortByRating    = "rating"
	SortByFollowers = "followers"
	SortByViews     = "views"
	SortByPages     = "pages"
	SortByLatest    = "latest"
)

// DefaultSearchLimit bounds a search page when the caller gives no limit.
const DefaultSearchLimit = 50

// BookSearchParams is the transient filter/sort input for a search.
// Every field is optional; the zero value matches everything.
type BookSearchParams struct {
	Tags          []string `json:"tags"`
	MinRating     float64  `json:"minRating"`
	MinPages      int      `json:"minPages"`
	OnlyCompleted bool     `json:"onlyCompleted"`
	SortBy        string   `json:"sortBy"` // rating | followers | views | pages | latest
	Limit         int      `json:"limit"`
	Offset        int      `json:"offset"`
}
