package stats

import (
	"context"
	"time"

	"github.com/booketlist/booketlist/pkg/models"
	"github.com/pkg/errors"
)

// ProfileBook is a book as listed on a user's profile.
type ProfileBook struct {
	ID       int    `bun:"id" json:"id"`
	Title    string `bun:"title" json:"title"`
	Author   string `bun:"author" json:"author"`
	CoverURL string `bun:"cover_url" json:"cover_url"`
	// Rating is the user's score, set only for read books.
	Rating *int   `bun:"rating" json:"rating,omitempty"`
	Status string `bun:"status" json:"-"`
}

type ReadingLists struct {
	Read    []ProfileBook `json:"read"`
	Reading []ProfileBook `json:"reading"`
	ToRead  []ProfileBook `json:"to_read"`
}

// ReadingLists splits a user's books into read (rated), reading and
// want_to_read. Shelf rows for rated books only appear under read.
func (svc *Service) ReadingLists(ctx context.Context, userID int) (*ReadingLists, error) {
	lists := &ReadingLists{
		Read:    []ProfileBook{},
		Reading: []ProfileBook{},
		ToRead:  []ProfileBook{},
	}

	err := svc.db.NewSelect().
		Model((*models.Rating)(nil)).
		ColumnExpr("b.id, b.title, b.cover_url").
		ColumnExpr("TRIM(a.first_name || ' ' || a.last_name) AS author").
		ColumnExpr("r.score AS rating").
		Join("JOIN books AS b ON b.id = r.book_id").
		Join("JOIN authors AS a ON a.id = b.author_id").
		Where("r.user_id = ?", userID).
		OrderExpr("r.created_at DESC, r.id DESC").
		Scan(ctx, &lists.Read)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var shelf []ProfileBook
	err = svc.db.NewSelect().
		Model((*models.UserLibrary)(nil)).
		ColumnExpr("ul.status, b.id, b.title, b.cover_url").
		ColumnExpr("TRIM(a.first_name || ' ' || a.last_name) AS author").
		Join("JOIN books AS b ON b.id = ul.book_id").
		Join("JOIN authors AS a ON a.id = b.author_id").
		Where("ul.user_id = ?", userID).
		Where("NOT EXISTS (SELECT 1 FROM ratings AS r WHERE r.user_id = ul.user_id AND r.book_id = ul.book_id)").
		OrderExpr("ul.created_at DESC, ul.id DESC").
		Scan(ctx, &shelf)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, book := range shelf {
		switch book.Status {
		case models.ReadingStatusReading:
			lists.Reading = append(lists.Reading, book)
		case models.ReadingStatusWantToRead:
			lists.ToRead = append(lists.ToRead, book)
		}
	}

	return lists, nil
}

type AuthorReadCount struct {
	AuthorID   int    `bun:"author_id" json:"author_id"`
	Name       string `bun:"name" json:"name"`
	BooksCount int    `bun:"books_count" json:"books_count"`
}

// TopReadAuthors ranks authors by how many of their books the user has read.
// Ties go to the lowest author id.
func (svc *Service) TopReadAuthors(ctx context.Context, userID, limit int) ([]AuthorReadCount, error) {
	authors := []AuthorReadCount{}
	err := svc.db.NewSelect().
		Model((*models.Rating)(nil)).
		ColumnExpr("a.id AS author_id").
		ColumnExpr("TRIM(a.first_name || ' ' || a.last_name) AS name").
		ColumnExpr("COUNT(*) AS books_count").
		Join("JOIN books AS b ON b.id = r.book_id").
		Join("JOIN authors AS a ON a.id = b.author_id").
		Where("r.user_id = ?", userID).
		Group("a.id").
		OrderExpr("books_count DESC, a.id ASC").
		Limit(limit).
		Scan(ctx, &authors)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return authors, nil
}

type RecentReview struct {
	ID        int       `bun:"id" json:"id"`
	BookID    int       `bun:"book_id" json:"book_id"`
	BookTitle string    `bun:"book_title" json:"book_title"`
	Score     int       `bun:"score" json:"score"`
	Review    string    `bun:"review" json:"review"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
}

// RecentReviews returns the user's latest ratings that have review text.
func (svc *Service) RecentReviews(ctx context.Context, userID, limit int) ([]RecentReview, error) {
	reviews := []RecentReview{}
	err := svc.db.NewSelect().
		Model((*models.Rating)(nil)).
		ColumnExpr("r.id, r.book_id, r.score, r.review, r.created_at").
		ColumnExpr("b.title AS book_title").
		Join("JOIN books AS b ON b.id = r.book_id").
		Where("r.user_id = ?", userID).
		Where("TRIM(COALESCE(r.review, '')) <> ''").
		OrderExpr("r.created_at DESC, r.id DESC").
		Limit(limit).
		Scan(ctx, &reviews)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return reviews, nil
}
