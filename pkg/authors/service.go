package authors

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/booketlist/booketlist/pkg/slug"
	"github.com/booketlist/booketlist/pkg/stats"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

const (
	// MinSearchLength is the shortest query the simple search acts on.
	MinSearchLength = 2
	// SearchLimit caps the number of simple search results.
	SearchLimit = 10
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

type RetrieveAuthorOptions struct {
	ID *int
}

func (svc *Service) RetrieveAuthor(ctx context.Context, opts RetrieveAuthorOptions) (*models.Author, error) {
	author := &models.Author{}

	q := svc.db.
		NewSelect().
		Model(author)

	if opts.ID != nil {
		q = q.Where("a.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Author")
		}
		return nil, errors.WithStack(err)
	}

	return author, nil
}

// ListAuthors returns every author with BookCount filled in, ordered by id.
func (svc *Service) ListAuthors(ctx context.Context) ([]*models.Author, error) {
	authors := []*models.Author{}
	err := svc.db.
		NewSelect().
		Model(&authors).
		ColumnExpr("a.*").
		ColumnExpr("(SELECT COUNT(*) FROM books AS b WHERE b.author_id = a.id) AS book_count").
		Order("a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return authors, nil
}

func (svc *Service) CreateAuthor(ctx context.Context, author *models.Author) error {
	now := time.Now()
	if author.CreatedAt.IsZero() {
		author.CreatedAt = now
	}
	author.UpdatedAt = author.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(author).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

type UpdateAuthorOptions struct {
	Columns []string
}

func (svc *Service) UpdateAuthor(ctx context.Context, author *models.Author, opts UpdateAuthorOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	author.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(author).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// SearchResult is a compact author match for autocomplete.
type SearchResult struct {
	ID         int    `bun:"id" json:"id"`
	FullName   string `bun:"full_name" json:"full_name"`
	TotalBooks int    `bun:"total_books" json:"total_books"`
	// FirstGenre is the genre of the author's earliest book, or "" without
	// books.
	FirstGenre string `bun:"first_genre" json:"first_genre"`
}

// SearchAuthors matches q against first, last and full name. Queries shorter
// than MinSearchLength return no results.
func (svc *Service) SearchAuthors(ctx context.Context, q string) ([]SearchResult, error) {
	results := []SearchResult{}
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinSearchLength {
		return results, nil
	}

	candidates := []SearchResult{}
	err := svc.db.
		NewSelect().
		Model((*models.Author)(nil)).
		ColumnExpr("a.id").
		ColumnExpr("TRIM(a.first_name || ' ' || a.last_name) AS full_name").
		ColumnExpr("(SELECT COUNT(*) FROM books AS b WHERE b.author_id = a.id) AS total_books").
		ColumnExpr("COALESCE((SELECT b.genre FROM books AS b WHERE b.author_id = a.id ORDER BY b.id ASC LIMIT 1), '') AS first_genre").
		Order("a.id ASC").
		Scan(ctx, &candidates)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// SQLite's LIKE only folds ASCII, so matching runs here.
	for _, c := range candidates {
		if !slug.ContainsFold(c.FullName, q) {
			continue
		}
		results = append(results, c)
		if len(results) == SearchLimit {
			break
		}
	}
	return results, nil
}

// Detail is an author with their books and catalog summary.
type Detail struct {
	Author *models.Author       `json:"author"`
	Books  []*models.Book       `json:"books"`
	Stats  *stats.AuthorProfile `json:"stats"`
}

func (svc *Service) RetrieveDetail(ctx context.Context, id int) (*Detail, error) {
	author, err := svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return nil, err
	}

	books := []*models.Book{}
	err = svc.db.
		NewSelect().
		Model(&books).
		Where("b.author_id = ?", id).
		Order("b.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	profile, err := svc.stats.AuthorProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	bookCount := len(books)
	author.BookCount = &bookCount
	return &Detail{Author: author, Books: books, Stats: profile}, nil
}
