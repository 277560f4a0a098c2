// Package integrity removes books and authors without leaving dangling rows.
//
// Every delete comes in two flavours. A safe delete refuses to touch anything
// while dependents exist and reports what is in the way. A force delete
// removes the dependents first. Both run inside a single transaction, so a
// failure at any step leaves the database as it was.
package integrity

import (
	"context"
	"database/sql"

	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// DeleteReport counts the rows a delete removed. A deleted book counts
// towards BooksRemoved; a deleted author does not appear in the report.
type DeleteReport struct {
	BooksRemoved          int `json:"books_removed"`
	ReviewsRemoved        int `json:"reviews_removed"`
	LibraryEntriesRemoved int `json:"library_entries_removed"`
}

type BookDeletion struct {
	Book   *models.Book
	Report DeleteReport
}

type AuthorDeletion struct {
	Author *models.Author
	Report DeleteReport
}

// BookDependents is the conflict detail of a blocked book delete.
type BookDependents struct {
	BookID            int   `json:"book_id"`
	ReviewCount       int   `json:"review_count"`
	ReviewIDs         []int `json:"review_ids"`
	LibraryEntryCount int   `json:"library_entry_count"`
	LibraryEntryIDs   []int `json:"library_entry_ids"`
}

type BlockingBook struct {
	ID          int    `bun:"id" json:"id"`
	Title       string `bun:"title" json:"title"`
	HasReviews  bool   `bun:"has_reviews" json:"has_reviews"`
	InLibraries bool   `bun:"in_libraries" json:"in_libraries"`
}

// AuthorDependents is the conflict detail of a blocked author delete.
type AuthorDependents struct {
	AuthorID  int            `json:"author_id"`
	BookCount int            `json:"book_count"`
	Books     []BlockingBook `json:"books"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// SafeDeleteBook deletes a book that has no ratings and sits in no library.
func (svc *Service) SafeDeleteBook(ctx context.Context, bookID int) (*BookDeletion, error) {
	result := &BookDeletion{}

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		book, err := retrieveBook(ctx, tx, bookID)
		if err != nil {
			return err
		}

		deps := BookDependents{BookID: bookID, ReviewIDs: []int{}, LibraryEntryIDs: []int{}}
		err = tx.NewSelect().
			Model((*models.Rating)(nil)).
			Column("r.id").
			Where("r.book_id = ?", bookID).
			OrderExpr("r.id ASC").
			Scan(ctx, &deps.ReviewIDs)
		if err != nil {
			return errors.WithStack(err)
		}
		err = tx.NewSelect().
			Model((*models.UserLibrary)(nil)).
			Column("ul.id").
			Where("ul.book_id = ?", bookID).
			OrderExpr("ul.id ASC").
			Scan(ctx, &deps.LibraryEntryIDs)
		if err != nil {
			return errors.WithStack(err)
		}
		deps.ReviewCount = len(deps.ReviewIDs)
		deps.LibraryEntryCount = len(deps.LibraryEntryIDs)

		if deps.ReviewCount > 0 || deps.LibraryEntryCount > 0 {
			return errcodes.ConflictWithDetails("Book has reviews or library entries and can't be deleted", deps)
		}

		_, err = tx.NewDelete().Model(book).WherePK().Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		result.Book = book
		result.Report.BooksRemoved = 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ForceDeleteBook deletes a book together with its ratings and library rows.
func (svc *Service) ForceDeleteBook(ctx context.Context, bookID int) (*BookDeletion, error) {
	result := &BookDeletion{}

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		book, err := retrieveBook(ctx, tx, bookID)
		if err != nil {
			return err
		}

		result.Report.ReviewsRemoved, err = deleteRows(ctx, tx.NewDelete().
			Model((*models.Rating)(nil)).
			Where("book_id = ?", bookID))
		if err != nil {
			return err
		}
		result.Report.LibraryEntriesRemoved, err = deleteRows(ctx, tx.NewDelete().
			Model((*models.UserLibrary)(nil)).
			Where("book_id = ?", bookID))
		if err != nil {
			return err
		}

		result.Report.BooksRemoved, err = deleteRows(ctx, tx.NewDelete().Model(book).WherePK())
		if err != nil {
			return err
		}

		result.Book = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// SafeDeleteAuthor deletes an author that has no books. Any book blocks the
// delete, whether or not it has been rated or shelved.
func (svc *Service) SafeDeleteAuthor(ctx context.Context, authorID int) (*AuthorDeletion, error) {
	result := &AuthorDeletion{}

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		author, err := retrieveAuthor(ctx, tx, authorID)
		if err != nil {
			return err
		}

		books := []BlockingBook{}
		err = tx.NewSelect().
			Model((*models.Book)(nil)).
			ColumnExpr("b.id, b.title").
			ColumnExpr("EXISTS (SELECT 1 FROM ratings AS r WHERE r.book_id = b.id) AS has_reviews").
			ColumnExpr("EXISTS (SELECT 1 FROM user_libraries AS ul WHERE ul.book_id = b.id) AS in_libraries").
			Where("b.author_id = ?", authorID).
			OrderExpr("b.id ASC").
			Scan(ctx, &books)
		if err != nil {
			return errors.WithStack(err)
		}

		if len(books) > 0 {
			return errcodes.ConflictWithDetails("Author has books and can't be deleted", AuthorDependents{
				AuthorID:  authorID,
				BookCount: len(books),
				Books:     books,
			})
		}

		_, err = deleteRows(ctx, tx.NewDelete().Model(author).WherePK())
		if err != nil {
			return err
		}

		result.Author = author
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ForceDeleteAuthor deletes an author, its books, and every rating and library
// row that references those books.
func (svc *Service) ForceDeleteAuthor(ctx context.Context, authorID int) (*AuthorDeletion, error) {
	result := &AuthorDeletion{}

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		author, err := retrieveAuthor(ctx, tx, authorID)
		if err != nil {
			return err
		}

		authorBooks := tx.NewSelect().
			Model((*models.Book)(nil)).
			Column("b.id").
			Where("b.author_id = ?", authorID)

		result.Report.ReviewsRemoved, err = deleteRows(ctx, tx.NewDelete().
			Model((*models.Rating)(nil)).
			Where("book_id IN (?)", authorBooks))
		if err != nil {
			return err
		}
		result.Report.LibraryEntriesRemoved, err = deleteRows(ctx, tx.NewDelete().
			Model((*models.UserLibrary)(nil)).
			Where("book_id IN (?)", authorBooks))
		if err != nil {
			return err
		}
		result.Report.BooksRemoved, err = deleteRows(ctx, tx.NewDelete().
			Model((*models.Book)(nil)).
			Where("author_id = ?", authorID))
		if err != nil {
			return err
		}

		_, err = deleteRows(ctx, tx.NewDelete().Model(author).WherePK())
		if err != nil {
			return err
		}

		result.Author = author
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func retrieveBook(ctx context.Context, tx bun.Tx, bookID int) (*models.Book, error) {
	book := &models.Book{}
	err := tx.NewSelect().Model(book).Where("b.id = ?", bookID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}
	return book, nil
}

func retrieveAuthor(ctx context.Context, tx bun.Tx, authorID int) (*models.Author, error) {
	author := &models.Author{}
	err := tx.NewSelect().Model(author).Where("a.id = ?", authorID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Author")
		}
		return nil, errors.WithStack(err)
	}
	return author, nil
}

func deleteRows(ctx context.Context, q *bun.DeleteQuery) (int, error) {
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return int(n), nil
}
