package books

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"bookhub/pkg/models"
)

// FictionScraper fetches and persists a single fiction live from the source
// site. Satisfied by *scraper.RoyalRoad.
type FictionScraper interface {
	ScrapeFiction(ctx context.Context, id string) (*models.Book, error)
}

// Service is the read-path driver: filtering, sorting and paging over the
// latest-snapshot projection the repo returns.
type Service struct {
	Repo    *Repo
	Scraper FictionScraper // optional; enables live fetch on cache miss
}

func NewService(repo *Repo, scraper FictionScraper) *Service {
	return &Service{Repo: repo, Scraper: scraper}
}

// Search retrieves books by tag overlap, then applies rating/page thresholds
// and sorting in memory. Books without any snapshot are excluded once a
// rating or page filter is in play.
func (s *Service) Search(ctx context.Context, params models.BookSearchParams) ([]models.Book, error) {
	found, err := s.Repo.FindByTagOverlap(ctx, params.Tags)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Book, 0, len(found))
	for _, b := range found {
		if params.OnlyCompleted && !hasTag(b, models.CompletedTag) {
			continue
		}
		if params.MinRating > 0 && (!b.HasStats() || b.Stats.Rating < params.MinRating) {
			continue
		}
		if params.MinPages > 0 && (!b.HasStats() || b.Stats.Pages < params.MinPages) {
			continue
		}
		filtered = append(filtered, b)
	}

	sortBooks(filtered, params.SortBy)

	return page(filtered, params.Limit, params.Offset), nil
}

func hasTag(b models.Book, tag string) bool {
	for _, t := range b.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// sortBooks sorts in place, stably, so ties keep their input order. An
// unrecognized or empty key leaves the slice untouched.
func sortBooks(books []models.Book, key string) {
	switch key {
	case models.SortByRating:
		sort.SliceStable(books, func(i, j int) bool { return books[i].Stats.Rating > books[j].Stats.Rating })
	case models.SortByFollowers:
		sort.SliceStable(books, func(i, j int) bool { return books[i].Stats.Followers > books[j].Stats.Followers })
	case models.SortByViews:
		sort.SliceStable(books, func(i, j int) bool { return books[i].Stats.Views > books[j].Stats.Views })
	case models.SortByPages:
		sort.SliceStable(books, func(i, j int) bool { return books[i].Stats.Pages > books[j].Stats.Pages })
	case models.SortByLatest:
		sort.SliceStable(books, func(i, j int) bool { return books[i].CreatedAt.After(books[j].CreatedAt) })
	}
}

func page(books []models.Book, limit, offset int) []models.Book {
	if limit <= 0 {
		limit = models.DefaultSearchLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(books) {
		return []models.Book{}
	}
	end := offset + limit
	if end > len(books) {
		end = len(books)
	}
	return books[offset:end]
}

// ListPage returns one fixed-size browse page plus paging metadata.
func (s *Service) ListPage(ctx context.Context, pageNum int) ([]models.Book, int, error) {
	if pageNum < 1 {
		pageNum = 1
	}

	total, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	items, err := s.Repo.List(ctx, models.DefaultSearchLimit, (pageNum-1)*models.DefaultSearchLimit)
	if err != nil {
		return nil, 0, err
	}

	totalPages := (total + models.DefaultSearchLimit - 1) / models.DefaultSearchLimit
	return items, totalPages, nil
}

// GetBook returns the cached book, or scrapes the fiction live from the
// source when it's not stored yet. A failed live fetch degrades to
// ErrNotFound rather than surfacing the transport failure.
func (s *Service) GetBook(ctx context.Context, id string) (*models.Book, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrNotFound) || s.Scraper == nil {
		return nil, err
	}

	scraped, scrapeErr := s.Scraper.ScrapeFiction(ctx, id)
	if scrapeErr != nil {
		slog.WarnContext(ctx, "live fetch failed", "id", id, "err", scrapeErr)
		return nil, ErrNotFound
	}
	return scraped, nil
}

// SimilarBooks searches with the target book's own tag set. The source book
// is not excluded from its own results.
func (s *Service) SimilarBooks(ctx context.Context, id string, limit int) ([]models.Book, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.Search(ctx, models.BookSearchParams{
		Tags:   b.Tags,
		SortBy: models.SortByFollowers,
		Limit:  limit,
	})
}

// AuthorBooks returns an author's catalog, title ascending.
func (s *Service) AuthorBooks(ctx context.Context, name string) ([]models.Book, error) {
	return s.Repo.FindByAuthor(ctx, name)
}

// LitRPG returns every book matching the canonical tag set.
func (s *Service) LitRPG(ctx context.Context) ([]models.Book, error) {
	return s.Repo.FindByTagOverlap(ctx, models.CanonicalTags)
}

// Trending returns the top books by snapshot count within the canonical
// tag set.
func (s *Service) Trending(ctx context.Context, limit int) ([]models.Book, error) {
	return s.Repo.Trending(ctx, models.CanonicalTags, limit)
}

// History returns the full snapshot history for one book.
func (s *Service) History(ctx context.Context, id string) ([]models.BookStats, error) {
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.Repo.StatsHistory(ctx, id)
}
