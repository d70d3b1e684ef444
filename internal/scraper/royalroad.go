package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"bookhub/pkg/models"
)

// Fetcher fetches raw HTML. Satisfied by *Client.
type Fetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// Store is the persistence capability the orchestrator needs.
type Store interface {
	// SaveBook upserts the book row and appends one stats snapshot in a
	// single transaction.
	SaveBook(ctx context.Context, book models.Book) error
}

// Notifier receives scrape progress events. Optional.
type Notifier interface {
	BookUpserted(runID string, book models.Book)
	PageScraped(runID string, page, scraped, skipped int)
}

// RoyalRoad scrapes royalroad.com listing and detail pages into the store.
// Entries are processed strictly one at a time: each is extracted, assembled
// and persisted before the next is touched, so a crash mid-page leaves all
// prior entries durable and peak memory stays bounded.
type RoyalRoad struct {
	fetch   Fetcher
	store   Store
	notify  Notifier
	baseURL string
	now     func() time.Time
}

func NewRoyalRoad(fetch Fetcher, store Store, notify Notifier, baseURL string) *RoyalRoad {
	return &RoyalRoad{
		fetch:   fetch,
		store:   store,
		notify:  notify,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// ScrapePage fetches one best-rated listing page and persists every entry it
// can. A malformed entry is logged and skipped, never aborting its siblings;
// only a transport failure for the page itself is returned as an error.
func (r *RoyalRoad) ScrapePage(ctx context.Context, page int) ([]models.Book, error) {
	runID := uuid.NewString()
	return r.scrapePage(ctx, runID, page)
}

func (r *RoyalRoad) scrapePage(ctx context.Context, runID string, page int) ([]models.Book, error) {
	pageURL := fmt.Sprintf("%s/fictions/best-rated?page=%d", r.baseURL, page)

	html, err := r.fetch.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing page %d: %w", page, err)
	}

	var books []models.Book
	skipped := 0

	doc.Find(EntrySelector).Each(func(i int, entry *goquery.Selection) {
		book, err := r.scrapeEntry(ctx, entry)
		if err != nil {
			slog.WarnContext(ctx, "skipping entry", "page", page, "index", i, "err", err)
			skipped++
			return
		}
		books = append(books, *book)
		if r.notify != nil {
			r.notify.BookUpserted(runID, *book)
		}
	})

	slog.InfoContext(ctx, "scraped page", "page", page, "scraped", len(books), "skipped", skipped)
	if r.notify != nil {
		r.notify.PageScraped(runID, page, len(books), skipped)
	}
	return books, nil
}

// scrapeEntry runs extract -> normalize -> assemble -> persist for one
// listing entry. The book upsert and stats append land together or not at
// all (Store contract).
func (r *RoyalRoad) scrapeEntry(ctx context.Context, entry *goquery.Selection) (*models.Book, error) {
	f := ExtractEntry(entry)
	stats := NormalizeStats(f.StatPairs, f.StatsText, r.now())

	book, err := AssembleBook(f, stats, r.baseURL, r.now())
	if err != nil {
		return nil, err
	}

	if err := r.store.SaveBook(ctx, book); err != nil {
		return nil, fmt.Errorf("persist book %s: %w", book.ID, err)
	}
	return &book, nil
}

// ScrapeFiction fetches one fiction detail page by id, persists it and
// returns the assembled book.
func (r *RoyalRoad) ScrapeFiction(ctx context.Context, id string) (*models.Book, error) {
	html, err := r.fetch.FetchHTML(ctx, r.baseURL+"/fiction/"+id)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse fiction %s: %w", id, err)
	}

	f := ExtractDetail(doc)
	if f.ID == "" {
		// detail URLs carry the id even when the page markup doesn't
		f.ID = id
	}
	stats := NormalizeStats(f.StatPairs, f.StatsText, r.now())

	book, err := AssembleBook(f, stats, r.baseURL, r.now())
	if err != nil {
		return nil, err
	}

	if err := r.store.SaveBook(ctx, book); err != nil {
		return nil, fmt.Errorf("persist book %s: %w", book.ID, err)
	}
	return &book, nil
}

// ScrapeAll walks listing pages starting at 1 until an empty page, the
// maxPages cap (<= 0 means no cap), or ctx cancellation. Returns how many
// books were persisted.
func (r *RoyalRoad) ScrapeAll(ctx context.Context, maxPages int) (int, error) {
	runID := uuid.NewString()
	total := 0

	for page := 1; maxPages <= 0 || page <= maxPages; page++ {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		books, err := r.scrapePage(ctx, runID, page)
		if err != nil {
			return total, err
		}
		if len(books) == 0 {
			break
		}
		total += len(books)
	}

	return total, nil
}
