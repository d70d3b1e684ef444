package books

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookhub/pkg/models"
)

// ErrNotFound marks a single-row lookup that matched nothing. Collection
// queries return empty slices instead.
var ErrNotFound = errors.New("not found")

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// baseSelect joins each book with its most recent stats snapshot. Older
// snapshots stay untouched as history.
const baseSelect = `
	SELECT b.id, b.title, b.author_name, b.description, b.tags,
	       b.cover_url, b.source_url, b.source, b.created_at,
	       s.rating, s.followers, s.pages, s.views, s.created_at
	FROM books b
	LEFT JOIN book_stats s ON s.id = (
		SELECT id FROM book_stats
		WHERE book_id = b.id
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	)
`

// SaveBook upserts the book row and appends one stats snapshot atomically.
// The upsert overwrites every scalar field (last-write-wins) but keeps the
// original created_at; the stats insert always adds a new row.
func (r *Repo) SaveBook(ctx context.Context, book models.Book) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := upsertBook(ctx, tx, book); err != nil {
		return err
	}
	if err := insertStats(ctx, tx, book.ID, book.Stats); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// UpsertBook writes the book row alone, outside any snapshot append.
func (r *Repo) UpsertBook(ctx context.Context, book models.Book) error {
	return upsertBook(ctx, r.DB, book)
}

// InsertStats appends one snapshot row for bookID.
func (r *Repo) InsertStats(ctx context.Context, bookID string, st models.BookStats) error {
	return insertStats(ctx, r.DB, bookID, st)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertBook(ctx context.Context, db execer, book models.Book) error {
	tagsJSON, err := json.Marshal(book.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags for %s: %w", book.ID, err)
	}

	createdAt := book.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO books (id, title, author_name, description, tags, cover_url, source_url, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title,
		  author_name = excluded.author_name,
		  description = excluded.description,
		  tags = excluded.tags,
		  cover_url = excluded.cover_url,
		  source_url = excluded.source_url,
		  source = excluded.source
	`,
		book.ID, book.Title, book.AuthorName, book.Description,
		string(tagsJSON), book.CoverURL, book.SourceURL, book.Source, createdAt,
	)
	if err != nil {
		return fmt.Errorf("exec upsert for %s: %w", book.ID, err)
	}
	return nil
}

func insertStats(ctx context.Context, db execer, bookID string, st models.BookStats) error {
	createdAt := st.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO book_stats (book_id, rating, followers, pages, views, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, bookID, st.Rating, st.Followers, st.Pages, st.Views, createdAt)
	if err != nil {
		return fmt.Errorf("exec insert stats for %s: %w", bookID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (models.Book, error) {
	var (
		b         models.Book
		tagsJSON  string
		rating    sql.NullFloat64
		followers sql.NullInt64
		pages     sql.NullInt64
		views     sql.NullInt64
		statsAt   sql.NullTime
	)

	if err := row.Scan(
		&b.ID, &b.Title, &b.AuthorName, &b.Description, &tagsJSON,
		&b.CoverURL, &b.SourceURL, &b.Source, &b.CreatedAt,
		&rating, &followers, &pages, &views, &statsAt,
	); err != nil {
		return models.Book{}, err
	}

	if err := json.Unmarshal([]byte(tagsJSON), &b.Tags); err != nil {
		slog.Warn("corrupt tags column, serving empty tag list", "book_id", b.ID, "err", err)
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}

	b.Stats = models.BookStats{
		Rating:    rating.Float64,
		Followers: int(followers.Int64),
		Pages:     int(pages.Int64),
		Views:     int(views.Int64),
	}
	if statsAt.Valid {
		b.Stats.CreatedAt = statsAt.Time
	}
	return b, nil
}

func collectBooks(rows *sql.Rows) ([]models.Book, error) {
	defer rows.Close()

	out := make([]models.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// GetByID returns one book with its latest snapshot, or ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id string) (*models.Book, error) {
	row := r.DB.QueryRowContext(ctx, baseSelect+` WHERE b.id = ?`, id)

	b, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return &b, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

// List returns a page of books, newest first.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]models.Book, error) {
	if limit <= 0 {
		limit = models.DefaultSearchLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx,
		baseSelect+` ORDER BY b.created_at DESC, b.id ASC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	return collectBooks(rows)
}

// FindByTagOverlap returns every book sharing at least one tag
// (case-insensitively) with tags. An empty tag set matches all books.
// Rating/page thresholds are deliberately not pushed down here; the service
// applies them after the fetch.
func (r *Repo) FindByTagOverlap(ctx context.Context, tags []string) ([]models.Book, error) {
	where, args := tagOverlapClause(tags)

	rows, err := r.DB.QueryContext(ctx, baseSelect+where+` ORDER BY b.created_at DESC, b.id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("tag overlap query: %w", err)
	}
	return collectBooks(rows)
}

// tagOverlapClause builds an any-match filter against the JSON-encoded tags
// column, LOWER on both sides so "litrpg" matches "LitRPG". The pattern keeps
// the JSON quotes around the tag, so it matches whole tags only: "dark" must
// not pull in a book tagged "Grimdark".
func tagOverlapClause(tags []string) (string, []any) {
	var ors []string
	var args []any
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		ors = append(ors, "LOWER(b.tags) LIKE ?")
		args = append(args, `%"`+strings.ToLower(t)+`"%`)
	}
	if len(ors) == 0 {
		return "", nil
	}
	return " WHERE (" + strings.Join(ors, " OR ") + ")", args
}

// FindByAuthor matches the author name case-insensitively and exactly,
// sorted by title ascending.
func (r *Repo) FindByAuthor(ctx context.Context, name string) ([]models.Book, error) {
	rows, err := r.DB.QueryContext(ctx,
		baseSelect+` WHERE LOWER(b.author_name) = ? ORDER BY b.title ASC`,
		strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return nil, fmt.Errorf("author query: %w", err)
	}
	return collectBooks(rows)
}

// Trending returns the top books by snapshot count among those matching the
// tag filter. More snapshots means the book kept showing up in scrapes.
func (r *Repo) Trending(ctx context.Context, tags []string, limit int) ([]models.Book, error) {
	if limit <= 0 {
		limit = 10
	}

	where, args := tagOverlapClause(tags)
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, baseSelect+`
		JOIN (
			SELECT book_id, COUNT(*) AS snapshots
			FROM book_stats
			GROUP BY book_id
		) c ON c.book_id = b.id
	`+where+` ORDER BY c.snapshots DESC, b.id ASC LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("trending query: %w", err)
	}
	return collectBooks(rows)
}

// StatsHistory returns every snapshot for one book, newest first.
func (r *Repo) StatsHistory(ctx context.Context, bookID string) ([]models.BookStats, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT rating, followers, pages, views, created_at
		FROM book_stats
		WHERE book_id = ?
		ORDER BY created_at DESC, id DESC
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("history query: %w", err)
	}
	defer rows.Close()

	out := make([]models.BookStats, 0)
	for rows.Next() {
		var st models.BookStats
		if err := rows.Scan(&st.Rating, &st.Followers, &st.Pages, &st.Views, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
