// Package library manages a user's shelf and their ratings.
//
// A rating means the user has read the book, so a book is either on the shelf
// (want_to_read or reading) or rated, never both. Rating a shelved book takes
// it off the shelf, and a rated book can't be shelved again.
package library

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/booketlist/booketlist/pkg/database"
	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// ListEntries returns the user's shelf with each book and its author, most
// recently added first.
func (svc *Service) ListEntries(ctx context.Context, userID int) ([]*models.UserLibrary, error) {
	entries := []*models.UserLibrary{}
	err := svc.db.
		NewSelect().
		Model(&entries).
		Relation("Book").
		Relation("Book.Author").
		Where("ul.user_id = ?", userID).
		Order("ul.created_at DESC", "ul.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return entries, nil
}

// AddEntry puts a book on the user's shelf.
func (svc *Service) AddEntry(ctx context.Context, userID, bookID int, status string) (*models.UserLibrary, error) {
	entry := &models.UserLibrary{}

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureBook(ctx, tx, bookID); err != nil {
			return err
		}

		rated, err := tx.NewSelect().
			Model((*models.Rating)(nil)).
			Where("r.user_id = ?", userID).
			Where("r.book_id = ?", bookID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if rated {
			return errcodes.Conflict("You have already read and rated this book")
		}

		now := time.Now()
		entry.CreatedAt = now
		entry.UpdatedAt = now
		entry.UserID = userID
		entry.BookID = bookID
		entry.Status = status

		_, err = tx.NewInsert().Model(entry).Returning("*").Exec(ctx)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return errcodes.Conflict("Book is already in your library")
			}
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (svc *Service) RetrieveEntry(ctx context.Context, userID, bookID int) (*models.UserLibrary, error) {
	entry := &models.UserLibrary{}
	err := svc.db.
		NewSelect().
		Model(entry).
		Relation("Book").
		Where("ul.user_id = ?", userID).
		Where("ul.book_id = ?", bookID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Library entry")
		}
		return nil, errors.WithStack(err)
	}
	return entry, nil
}

func (svc *Service) UpdateEntryStatus(ctx context.Context, userID, bookID int, status string) (*models.UserLibrary, error) {
	entry, err := svc.RetrieveEntry(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if entry.Status == status {
		return entry, nil
	}

	entry.Status = status
	entry.UpdatedAt = time.Now()
	_, err = svc.db.
		NewUpdate().
		Model(entry).
		Column("status", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return entry, nil
}

func (svc *Service) RemoveEntry(ctx context.Context, userID, bookID int) (*models.UserLibrary, error) {
	entry, err := svc.RetrieveEntry(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	_, err = svc.db.NewDelete().Model(entry).WherePK().Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return entry, nil
}

type CreateRatingOptions struct {
	Score  int
	Review *string
}

// RatingResult is a rating together with whether rating the book took it off
// the user's shelf.
type RatingResult struct {
	Rating              *models.Rating
	LibraryEntryRemoved bool
}

// CreateRating records that the user read and rated a book. Any shelf entry
// for the book is removed in the same transaction.
func (svc *Service) CreateRating(ctx context.Context, userID, bookID int, opts CreateRatingOptions) (*RatingResult, error) {
	result := &RatingResult{}

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureBook(ctx, tx, bookID); err != nil {
			return err
		}

		now := time.Now()
		rating := &models.Rating{
			CreatedAt: now,
			UpdatedAt: now,
			UserID:    userID,
			BookID:    bookID,
			Score:     opts.Score,
			Review:    normalizeReview(opts.Review),
		}
		_, err := tx.NewInsert().Model(rating).Returning("*").Exec(ctx)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return errcodes.Conflict("You have already rated this book")
			}
			return errors.WithStack(err)
		}

		res, err := tx.NewDelete().
			Model((*models.UserLibrary)(nil)).
			Where("user_id = ?", userID).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}

		result.Rating = rating
		result.LibraryEntryRemoved = n > 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (svc *Service) RetrieveRating(ctx context.Context, userID, bookID int) (*models.Rating, error) {
	rating := &models.Rating{}
	err := svc.db.
		NewSelect().
		Model(rating).
		Where("r.user_id = ?", userID).
		Where("r.book_id = ?", bookID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Rating")
		}
		return nil, errors.WithStack(err)
	}
	return rating, nil
}

type UpdateRatingOptions struct {
	Score  *int
	Review *string
}

func (svc *Service) UpdateRating(ctx context.Context, userID, bookID int, opts UpdateRatingOptions) (*models.Rating, error) {
	rating, err := svc.RetrieveRating(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	columns := []string{}
	if opts.Score != nil && *opts.Score != rating.Score {
		rating.Score = *opts.Score
		columns = append(columns, "score")
	}
	if opts.Review != nil {
		rating.Review = normalizeReview(opts.Review)
		columns = append(columns, "review")
	}
	if len(columns) == 0 {
		return rating, nil
	}

	rating.UpdatedAt = time.Now()
	_, err = svc.db.
		NewUpdate().
		Model(rating).
		Column(append(columns, "updated_at")...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return rating, nil
}

// DeleteRating removes the rating. The book does not go back on the shelf.
func (svc *Service) DeleteRating(ctx context.Context, userID, bookID int) (*models.Rating, error) {
	rating, err := svc.RetrieveRating(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	_, err = svc.db.NewDelete().Model(rating).WherePK().Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return rating, nil
}

func ensureBook(ctx context.Context, tx bun.Tx, bookID int) error {
	exists, err := tx.NewSelect().
		Model((*models.Book)(nil)).
		Where("b.id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Book")
	}
	return nil
}

// normalizeReview stores blank reviews as NULL.
func normalizeReview(review *string) *string {
	if review == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*review)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
