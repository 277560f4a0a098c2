package books

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/booketlist/booketlist/pkg/database"
	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/booketlist/booketlist/pkg/slug"
	"github.com/booketlist/booketlist/pkg/stats"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db    *bun.DB
	stats *stats.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db:    db,
		stats: stats.NewService(db),
	}
}

type RetrieveBookOptions struct {
	ID *int
}

type ListBooksOptions struct {
	AuthorID *int
	Genres   []string
	Search   *string
}

type UpdateBookOptions struct {
	Columns []string
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	if err := svc.ensureAuthor(ctx, book.AuthorID); err != nil {
		return err
	}

	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errcodes.NotFound("Author")
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Author")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// ListBooks returns books with their author, ordered by id. An empty Genres
// slice means every genre; Search matches the title or the author's name.
func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Author").
		Order("b.id ASC")

	if opts.AuthorID != nil {
		q = q.Where("b.author_id = ?", *opts.AuthorID)
	}
	if len(opts.Genres) > 0 {
		q = q.Where("b.genre IN (?)", bun.In(opts.Genres))
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// SQLite's LIKE only folds ASCII, so text search runs here.
	if opts.Search != nil {
		matched := []*models.Book{}
		for _, book := range books {
			if matchesSearch(book, *opts.Search) {
				matched = append(matched, book)
			}
		}
		books = matched
	}

	return books, nil
}

func matchesSearch(book *models.Book, q string) bool {
	if slug.ContainsFold(book.Title, q) {
		return true
	}
	if book.Author == nil {
		return false
	}
	return slug.ContainsFold(book.Author.FirstName+" "+book.Author.LastName, q)
}

// SearchBooks matches q case-insensitively against titles and author names.
func (svc *Service) SearchBooks(ctx context.Context, q string) ([]*models.Book, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errcodes.BadRequest("Search query is required")
	}
	return svc.ListBooks(ctx, ListBooksOptions{Search: &q})
}

// ListBooksByGenreSlug returns books whose genre slugifies to genreSlug, so
// "ciencia-ficcion" finds "Ciencia Ficción".
func (svc *Service) ListBooksByGenreSlug(ctx context.Context, genreSlug string) ([]*models.Book, error) {
	genres, err := svc.ListGenres(ctx)
	if err != nil {
		return nil, err
	}

	matched := []string{}
	for _, genre := range genres {
		if slug.Matches(genre, genreSlug) {
			matched = append(matched, genre)
		}
	}
	if len(matched) == 0 {
		return []*models.Book{}, nil
	}

	return svc.ListBooks(ctx, ListBooksOptions{Genres: matched})
}

// ListGenres returns the distinct genres in use, sorted.
func (svc *Service) ListGenres(ctx context.Context) ([]string, error) {
	genres := []string{}
	err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("DISTINCT b.genre").
		OrderExpr("b.genre ASC").
		Scan(ctx, &genres)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return genres, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	for _, col := range opts.Columns {
		if col == "author_id" {
			if err := svc.ensureAuthor(ctx, book.AuthorID); err != nil {
				return err
			}
		}
	}

	book.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errcodes.NotFound("Author")
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) ensureAuthor(ctx context.Context, authorID int) error {
	exists, err := svc.db.
		NewSelect().
		Model((*models.Author)(nil)).
		Where("a.id = ?", authorID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Author")
	}
	return nil
}

// Review is a rating as shown publicly on a book page.
type Review struct {
	ID        int       `bun:"id" json:"id"`
	UserID    int       `bun:"user_id" json:"user_id"`
	UserName  string    `bun:"user_name" json:"user_name"`
	Score     int       `bun:"score" json:"score"`
	Review    *string   `bun:"review" json:"review"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
}

// ListReviews returns a book's ratings, newest first.
func (svc *Service) ListReviews(ctx context.Context, bookID int) ([]Review, error) {
	if _, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &bookID}); err != nil {
		return nil, err
	}

	reviews := []Review{}
	err := svc.db.
		NewSelect().
		Model((*models.Rating)(nil)).
		ColumnExpr("r.id, r.user_id, r.score, r.review, r.created_at").
		ColumnExpr("TRIM(u.name || ' ' || u.last_name) AS user_name").
		Join("JOIN users AS u ON u.id = r.user_id").
		Where("r.book_id = ?", bookID).
		OrderExpr("r.created_at DESC, r.id DESC").
		Scan(ctx, &reviews)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return reviews, nil
}

// AdminBook is a book with its review aggregates.
type AdminBook struct {
	*models.Book
	ReviewCount   int     `json:"review_count"`
	AverageRating float64 `json:"average_rating"`
}

func (svc *Service) ListAdminBooks(ctx context.Context) ([]AdminBook, error) {
	books, err := svc.ListBooks(ctx, ListBooksOptions{})
	if err != nil {
		return nil, err
	}
	ratings, err := svc.stats.BookRatings(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]AdminBook, len(books))
	for i, book := range books {
		r := ratings[book.ID]
		result[i] = AdminBook{Book: book, ReviewCount: r.ReviewCount, AverageRating: r.AverageRating}
	}
	return result, nil
}

type AdminBookDetail struct {
	Book  *models.Book      `json:"book"`
	Stats *stats.BookDetail `json:"stats"`
}

func (svc *Service) RetrieveAdminBook(ctx context.Context, id int) (*AdminBookDetail, error) {
	book, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return nil, err
	}
	detail, err := svc.stats.BookDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AdminBookDetail{Book: book, Stats: detail}, nil
}
