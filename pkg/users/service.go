package users

import (
	"context"
	"database/sql"
	"time"

	"github.com/booketlist/booketlist/pkg/auth"
	"github.com/booketlist/booketlist/pkg/database"
	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/booketlist/booketlist/pkg/stats"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

const (
	TopAuthorsLimit    = 5
	RecentReviewsLimit = 10
)

type Service struct {
	db    *bun.DB
	stats *stats.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{db, stats.NewService(db)}
}

type RetrieveUserOptions struct {
	ID *int
}

func (svc *Service) RetrieveUser(ctx context.Context, opts RetrieveUserOptions) (*models.User, error) {
	user := &models.User{}

	q := svc.db.
		NewSelect().
		Model(user)

	if opts.ID != nil {
		q = q.Where("u.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

func (svc *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	err := svc.db.
		NewSelect().
		Model(&users).
		Order("u.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return users, nil
}

// PublicUser is what anyone may see about an active user.
type PublicUser struct {
	ID           int       `bun:"id" json:"id"`
	Name         string    `bun:"name" json:"name"`
	LastName     string    `bun:"last_name" json:"last_name"`
	MemberSince  time.Time `bun:"created_at" json:"member_since"`
	LibraryCount int       `bun:"library_count" json:"total_library_books"`
	ReviewCount  int       `bun:"review_count" json:"total_reviews"`
}

func (svc *Service) ListPublicUsers(ctx context.Context) ([]PublicUser, error) {
	users := []PublicUser{}
	err := svc.db.
		NewSelect().
		Model((*models.User)(nil)).
		ColumnExpr("u.id, u.name, u.last_name, u.created_at").
		ColumnExpr("(SELECT COUNT(*) FROM user_libraries AS ul WHERE ul.user_id = u.id) AS library_count").
		ColumnExpr("(SELECT COUNT(*) FROM ratings AS r WHERE r.user_id = u.id) AS review_count").
		Where("u.is_active = ?", true).
		OrderExpr("u.id ASC").
		Scan(ctx, &users)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return users, nil
}

type ProfileStatistics struct {
	BooksRead    int `json:"books_read"`
	BooksReading int `json:"books_reading"`
	BooksToRead  int `json:"books_to_read"`
	TotalReviews int `json:"total_reviews"`
}

type Profile struct {
	User          *models.User            `json:"user"`
	Statistics    ProfileStatistics       `json:"statistics"`
	ReadingLists  *stats.ReadingLists     `json:"reading_lists"`
	TopAuthors    []stats.AuthorReadCount `json:"top_authors"`
	RecentReviews []stats.RecentReview    `json:"recent_reviews"`
}

// Profile assembles everything the profile page shows for one user.
func (svc *Service) Profile(ctx context.Context, user *models.User) (*Profile, error) {
	detail, err := svc.stats.UserDetail(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	lists, err := svc.stats.ReadingLists(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	topAuthors, err := svc.stats.TopReadAuthors(ctx, user.ID, TopAuthorsLimit)
	if err != nil {
		return nil, err
	}
	recent, err := svc.stats.RecentReviews(ctx, user.ID, RecentReviewsLimit)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User: user,
		Statistics: ProfileStatistics{
			BooksRead:    detail.ReadingStatus[stats.StatusRead],
			BooksReading: detail.ReadingStatus[models.ReadingStatusReading],
			BooksToRead:  detail.ReadingStatus[models.ReadingStatusWantToRead],
			TotalReviews: detail.WrittenReviews,
		},
		ReadingLists:  lists,
		TopAuthors:    topAuthors,
		RecentReviews: recent,
	}, nil
}

type UpdateProfileOptions struct {
	Name     *string
	LastName *string
	Email    *string
	Password *string
}

// UpdateProfile changes the fields that were given. Taking an email that
// belongs to another user is a conflict.
func (svc *Service) UpdateProfile(ctx context.Context, user *models.User, opts UpdateProfileOptions) error {
	columns := []string{}

	if opts.Name != nil && *opts.Name != user.Name {
		user.Name = *opts.Name
		columns = append(columns, "name")
	}
	if opts.LastName != nil && *opts.LastName != user.LastName {
		user.LastName = *opts.LastName
		columns = append(columns, "last_name")
	}
	if opts.Email != nil {
		email := auth.NormalizeEmail(*opts.Email)
		if email != user.Email {
			taken, err := svc.db.NewSelect().
				Model((*models.User)(nil)).
				Where("u.email = ? COLLATE NOCASE", email).
				Where("u.id != ?", user.ID).
				Exists(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if taken {
				return errcodes.Conflict("Email is already in use")
			}
			user.Email = email
			columns = append(columns, "email")
		}
	}
	if opts.Password != nil {
		hash, err := auth.HashPassword(*opts.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		columns = append(columns, "password_hash")
	}

	if len(columns) == 0 {
		return nil
	}

	user.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")
	_, err := svc.db.
		NewUpdate().
		Model(user).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.Conflict("Email is already in use")
		}
		return errors.WithStack(err)
	}

	return nil
}

// ListUserRatings returns a user's ratings with their books, newest first.
func (svc *Service) ListUserRatings(ctx context.Context, userID int) ([]*models.Rating, error) {
	if err := svc.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	ratings := []*models.Rating{}
	err := svc.db.
		NewSelect().
		Model(&ratings).
		Relation("Book").
		Relation("Book.Author").
		Where("r.user_id = ?", userID).
		Order("r.created_at DESC", "r.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ratings, nil
}

func (svc *Service) ListUserLibrary(ctx context.Context, userID int) ([]*models.UserLibrary, error) {
	if err := svc.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

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

// UserDetail is the admin view of a single user's activity.
func (svc *Service) UserDetail(ctx context.Context, userID int) (*stats.UserDetail, error) {
	return svc.stats.UserDetail(ctx, userID)
}

func (svc *Service) UserStats(ctx context.Context) (*stats.UserStats, error) {
	return svc.stats.UserStats(ctx)
}

// ToggleStatus blocks an active user or unblocks a blocked one.
func (svc *Service) ToggleStatus(ctx context.Context, userID int) (*models.User, error) {
	user, err := svc.RetrieveUser(ctx, RetrieveUserOptions{ID: &userID})
	if err != nil {
		return nil, err
	}

	user.IsActive = !user.IsActive
	user.UpdatedAt = time.Now()
	_, err = svc.db.
		NewUpdate().
		Model(user).
		Column("is_active", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return user, nil
}

func (svc *Service) ensureUser(ctx context.Context, userID int) error {
	exists, err := svc.db.NewSelect().Model((*models.User)(nil)).Where("u.id = ?", userID).Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("User")
	}
	return nil
}
