package books

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bookhub/pkg/database"
	"bookhub/pkg/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON;`)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func testBook(id, title, author string, tags []string, created time.Time) models.Book {
	return models.Book{
		ID:         id,
		Title:      title,
		AuthorName: author,
		Tags:       tags,
		SourceURL:  "https://rr.test/fiction/" + id,
		Source:     models.SourceRoyalRoad,
		CreatedAt:  created,
	}
}

func TestSaveBookUpsertOverwrites(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	b := testBook("1", "Old Title", "Someone", []string{"LitRPG"}, created)
	b.Stats = models.BookStats{Followers: 10, CreatedAt: created}
	require.NoError(t, repo.SaveBook(ctx, b))

	b.Title = "New Title"
	b.Tags = []string{"LitRPG", "Fantasy"}
	b.Stats = models.BookStats{Followers: 20, CreatedAt: created.Add(time.Hour)}
	b.CreatedAt = created.Add(48 * time.Hour) // must not replace the original
	require.NoError(t, repo.SaveBook(ctx, b))

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "New Title", got.Title)
	require.Equal(t, []string{"LitRPG", "Fantasy"}, got.Tags)
	require.Equal(t, 20, got.Stats.Followers)
	require.True(t, got.CreatedAt.Equal(created))

	history, err := repo.StatsHistory(ctx, "1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, 20, history[0].Followers) // newest first
	require.Equal(t, 10, history[1].Followers)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewRepo(openTestDB(t))

	_, err := repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLatestSnapshotWins(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpsertBook(ctx, testBook("1", "T", "A", nil, created)))
	require.NoError(t, repo.InsertStats(ctx, "1", models.BookStats{Followers: 500, CreatedAt: created.Add(time.Hour)}))
	require.NoError(t, repo.InsertStats(ctx, "1", models.BookStats{Followers: 100, CreatedAt: created}))

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, 500, got.Stats.Followers)
}

func TestFindByTagOverlapCaseInsensitive(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.SaveBook(ctx, testBook("1", "A", "x", []string{"LitRPG"}, now)))
	require.NoError(t, repo.SaveBook(ctx, testBook("2", "B", "x", []string{"romance"}, now)))

	found, err := repo.FindByTagOverlap(ctx, []string{"litrpg"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "1", found[0].ID)

	found, err = repo.FindByTagOverlap(ctx, []string{"ROMANCE"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "2", found[0].ID)

	// empty tag set matches everything
	found, err = repo.FindByTagOverlap(ctx, nil)
	require.NoError(t, err)
	require.Len(t, found, 2)
}

func TestFindByTagOverlapMatchesWholeTagsOnly(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.SaveBook(ctx, testBook("1", "Gritty", "x", []string{"Grimdark"}, now)))

	// a query tag that is a strict substring of a stored tag is not overlap
	for _, q := range []string{"dark", "grim", "rim"} {
		found, err := repo.FindByTagOverlap(ctx, []string{q})
		require.NoError(t, err)
		require.Empty(t, found, "query %q must not match tag Grimdark", q)
	}

	found, err := repo.FindByTagOverlap(ctx, []string{"grimdark"})
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestScanBookToleratesCorruptTagsColumn(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	_, err := db.Exec(`
		INSERT INTO books (id, title, author_name, description, tags, cover_url, source_url, source)
		VALUES ('1', 'T', 'A', '', 'not json', '', '', 'ROYAL_ROAD')
	`)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, []string{}, got.Tags)
}

func TestFindByAuthor(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.SaveBook(ctx, testBook("1", "Zebra Run", "Quant Penguin", nil, now)))
	require.NoError(t, repo.SaveBook(ctx, testBook("2", "Apple Dive", "Quant Penguin", nil, now)))
	require.NoError(t, repo.SaveBook(ctx, testBook("3", "Other", "Somebody Else", nil, now)))

	found, err := repo.FindByAuthor(ctx, "quant penguin")
	require.NoError(t, err)
	require.Len(t, found, 2)
	// title ascending
	require.Equal(t, "Apple Dive", found[0].Title)
	require.Equal(t, "Zebra Run", found[1].Title)
}

func TestTrendingOrdersBySnapshotCount(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()
	now := time.Now()

	// book 1: one snapshot, book 2: three
	require.NoError(t, repo.SaveBook(ctx, testBook("1", "A", "x", []string{"LitRPG"}, now)))
	require.NoError(t, repo.SaveBook(ctx, testBook("2", "B", "x", []string{"LitRPG"}, now)))
	require.NoError(t, repo.InsertStats(ctx, "2", models.BookStats{CreatedAt: now.Add(time.Minute)}))
	require.NoError(t, repo.InsertStats(ctx, "2", models.BookStats{CreatedAt: now.Add(2 * time.Minute)}))

	found, err := repo.Trending(ctx, []string{"LitRPG"}, 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, "2", found[0].ID)

	capped, err := repo.Trending(ctx, []string{"LitRPG"}, 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
}

func TestCascadeDeleteStats(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveBook(ctx, testBook("1", "A", "x", nil, time.Now())))

	_, err := db.Exec(`DELETE FROM books WHERE id = ?`, "1")
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM book_stats`).Scan(&n))
	require.Equal(t, 0, n)
}
