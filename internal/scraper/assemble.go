package scraper

import (
	"errors"
	"strings"
	"time"

	"bookhub/pkg/models"
)

// ErrMissingID marks an entry with no derivable identifier. Such entries
// cannot be persisted and are skipped by the orchestrator.
var ErrMissingID = errors.New("entry has no derivable id")

// AssembleBook combines extracted fields and a normalized snapshot into the
// canonical record. Guarantees: non-empty id (else ErrMissingID), all string
// fields at least "", Tags never nil, deterministic SourceURL concatenation.
func AssembleBook(f Fields, stats models.BookStats, baseURL string, now time.Time) (models.Book, error) {
	if f.ID == "" {
		return models.Book{}, ErrMissingID
	}

	author := strings.TrimSpace(f.AuthorName)
	if author == "" {
		author = models.UnknownAuthor
	}

	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}

	base := strings.TrimRight(baseURL, "/")

	return models.Book{
		ID:          f.ID,
		Title:       f.Title,
		AuthorName:  author,
		Description: f.Description,
		Tags:        tags,
		CoverURL:    f.CoverURL,
		SourceURL:   base + "/fiction/" + f.ID,
		Source:      models.SourceRoyalRoad,
		CreatedAt:   now,
		Stats:       stats,
	}, nil
}
