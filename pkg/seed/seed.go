// Package seed loads a small demo catalog with a few readers. Running it again
// only adds what is missing.
package seed

import (
	"context"
	"database/sql"
	"time"

	"github.com/booketlist/booketlist/pkg/auth"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Options struct {
	// UserPassword is given to every demo user that has to be created.
	UserPassword string
}

// Report counts the rows a run created.
type Report struct {
	Authors        int `json:"authors"`
	Books          int `json:"books"`
	Users          int `json:"users"`
	Ratings        int `json:"ratings"`
	LibraryEntries int `json:"library_entries"`
}

func Run(ctx context.Context, db *bun.DB, opts Options) (*Report, error) {
	if opts.UserPassword == "" {
		return nil, errors.New("seed: a password for demo users is required")
	}
	hash, err := auth.HashPassword(opts.UserPassword)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		s := &seeder{tx: tx, report: report, now: time.Now(), books: map[string]int{}, users: map[string]int{}}

		for _, a := range authors {
			if err := s.author(ctx, a); err != nil {
				return err
			}
		}
		for _, u := range users {
			if err := s.user(ctx, u, hash); err != nil {
				return err
			}
		}
		for _, r := range ratings {
			if err := s.rating(ctx, r); err != nil {
				return err
			}
		}
		for _, sh := range shelves {
			if err := s.shelf(ctx, sh); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

type seeder struct {
	tx     bun.Tx
	report *Report
	now    time.Time
	books  map[string]int
	users  map[string]int
}

func (s *seeder) author(ctx context.Context, a authorSeed) error {
	author := &models.Author{}
	err := s.tx.NewSelect().
		Model(author).
		Where("a.first_name = ?", a.FirstName).
		Where("a.last_name = ?", a.LastName).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		author = &models.Author{
			CreatedAt: s.now,
			UpdatedAt: s.now,
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Biography: a.Biography,
		}
		_, err = s.tx.NewInsert().Model(author).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		s.report.Authors++
	} else if err != nil {
		return errors.WithStack(err)
	}

	for i, b := range a.Books {
		book := &models.Book{}
		err := s.tx.NewSelect().
			Model(book).
			Where("b.author_id = ?", author.ID).
			Where("b.title = ?", b.Title).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			book = &models.Book{
				// Spread creation dates so author profiles have a first book.
				CreatedAt:   s.now.AddDate(0, 0, -len(a.Books)+i),
				UpdatedAt:   s.now,
				Title:       b.Title,
				Genre:       b.Genre,
				Description: b.Description,
				AuthorID:    author.ID,
			}
			_, err = s.tx.NewInsert().Model(book).Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			s.report.Books++
		} else if err != nil {
			return errors.WithStack(err)
		}
		s.books[b.Title] = book.ID
	}

	return nil
}

func (s *seeder) user(ctx context.Context, u userSeed, hash string) error {
	user := &models.User{}
	err := s.tx.NewSelect().
		Model(user).
		Where("u.email = ? COLLATE NOCASE", u.Email).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		user = &models.User{
			CreatedAt:    s.now,
			UpdatedAt:    s.now,
			Name:         u.Name,
			LastName:     u.LastName,
			Email:        u.Email,
			PasswordHash: hash,
			IsActive:     true,
		}
		_, err = s.tx.NewInsert().Model(user).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		s.report.Users++
	} else if err != nil {
		return errors.WithStack(err)
	}
	s.users[u.Email] = user.ID
	return nil
}

func (s *seeder) rating(ctx context.Context, r ratingSeed) error {
	userID, bookID := s.users[r.Email], s.books[r.Title]

	exists, err := s.tx.NewSelect().
		Model((*models.Rating)(nil)).
		Where("r.user_id = ?", userID).
		Where("r.book_id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return nil
	}

	rating := &models.Rating{
		CreatedAt: s.now,
		UpdatedAt: s.now,
		UserID:    userID,
		BookID:    bookID,
		Score:     r.Score,
	}
	if r.Review != "" {
		review := r.Review
		rating.Review = &review
	}
	_, err = s.tx.NewInsert().Model(rating).Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	s.report.Ratings++
	return nil
}

// shelf skips books the user has already rated.
func (s *seeder) shelf(ctx context.Context, sh shelfSeed) error {
	userID, bookID := s.users[sh.Email], s.books[sh.Title]

	exists, err := s.tx.NewSelect().
		Model((*models.UserLibrary)(nil)).
		Where("ul.user_id = ?", userID).
		Where("ul.book_id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return nil
	}
	rated, err := s.tx.NewSelect().
		Model((*models.Rating)(nil)).
		Where("r.user_id = ?", userID).
		Where("r.book_id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if rated {
		return nil
	}

	entry := &models.UserLibrary{
		CreatedAt: s.now,
		UpdatedAt: s.now,
		UserID:    userID,
		BookID:    bookID,
		Status:    sh.Status,
	}
	_, err = s.tx.NewInsert().Model(entry).Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	s.report.LibraryEntries++
	return nil
}
