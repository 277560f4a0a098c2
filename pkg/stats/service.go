// Package stats computes the derived numbers shown on the admin dashboard, in
// profiles and in genre listings. Nothing here is stored; every call queries
// the current rows.
package stats

import (
	"context"
	"math"
	"time"

	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// StatusRead is the histogram bucket for books the user has rated. It is not a
// UserLibrary status; a rating is what marks a book as read.
const StatusRead = "read"

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Round2 rounds to exactly two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Percentage returns part/total*100 rounded to two decimals, or 0 when total
// is 0.
func Percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round2(float64(part) / float64(total) * 100)
}

type UserStats struct {
	TotalUsers       int     `json:"total_users"`
	ActiveUsers      int     `json:"active_users"`
	BlockedUsers     int     `json:"blocked_users"`
	UsersWithBooks   int     `json:"users_with_books"`
	UsersWithReviews int     `json:"users_with_reviews"`
	ActivePercentage float64 `json:"active_percentage"`
}

func (svc *Service) UserStats(ctx context.Context) (*UserStats, error) {
	s := &UserStats{}
	var err error

	s.TotalUsers, err = svc.db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	s.ActiveUsers, err = svc.db.NewSelect().Model((*models.User)(nil)).Where("u.is_active = ?", true).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	s.BlockedUsers = s.TotalUsers - s.ActiveUsers

	err = svc.db.NewSelect().
		Model((*models.UserLibrary)(nil)).
		ColumnExpr("COUNT(DISTINCT ul.user_id)").
		Scan(ctx, &s.UsersWithBooks)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	err = svc.db.NewSelect().
		Model((*models.Rating)(nil)).
		ColumnExpr("COUNT(DISTINCT r.user_id)").
		Scan(ctx, &s.UsersWithReviews)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	s.ActivePercentage = Percentage(s.ActiveUsers, s.TotalUsers)
	return s, nil
}

type BookStats struct {
	TotalBooks          int     `json:"total_books"`
	BooksWithReviews    int     `json:"books_with_reviews"`
	BooksInLibraries    int     `json:"books_in_libraries"`
	AverageRating       float64 `json:"average_rating"`
	BooksWithoutReviews int     `json:"books_without_reviews"`
}

func (svc *Service) BookStats(ctx context.Context) (*BookStats, error) {
	s := &BookStats{}
	var err error

	s.TotalBooks, err = svc.db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	err = svc.db.NewSelect().
		Model((*models.Rating)(nil)).
		ColumnExpr("COUNT(DISTINCT r.book_id)").
		Scan(ctx, &s.BooksWithReviews)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	err = svc.db.NewSelect().
		Model((*models.UserLibrary)(nil)).
		ColumnExpr("COUNT(DISTINCT ul.book_id)").
		Scan(ctx, &s.BooksInLibraries)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var avg float64
	err = svc.db.NewSelect().
		Model((*models.Rating)(nil)).
		ColumnExpr("COALESCE(AVG(CAST(r.score AS REAL)), 0.0)").
		Scan(ctx, &avg)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	s.AverageRating = Round2(avg)
	s.BooksWithoutReviews = s.TotalBooks - s.BooksWithReviews

	return s, nil
}

type TopAuthor struct {
	ID        int    `bun:"id" json:"id"`
	FirstName string `bun:"first_name" json:"first_name"`
	LastName  string `bun:"last_name" json:"last_name"`
	BookCount int    `bun:"book_count" json:"book_count"`
}

type AuthorStats struct {
	TotalAuthors     int        `json:"total_authors"`
	AuthorsWithBooks int        `json:"authors_with_books"`
	TopAuthor        *TopAuthor `json:"top_author"`
}

// AuthorStats reports author totals. The top author is the one with the most
// books; ties go to the lowest author id.
func (svc *Service) AuthorStats(ctx context.Context) (*AuthorStats, error) {
	s := &AuthorStats{}
	var err error

	s.TotalAuthors, err = svc.db.NewSelect().Model((*models.Author)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	err = svc.db.NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("COUNT(DISTINCT b.author_id)").
		Scan(ctx, &s.AuthorsWithBooks)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var top []TopAuthor
	err = svc.db.NewSelect().
		Model((*models.Author)(nil)).
		ColumnExpr("a.id, a.first_name, a.last_name").
		ColumnExpr("COUNT(b.id) AS book_count").
		Join("JOIN books AS b ON b.author_id = a.id").
		Group("a.id").
		OrderExpr("book_count DESC, a.id ASC").
		Limit(1).
		Scan(ctx, &top)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(top) > 0 {
		s.TopAuthor = &top[0]
	}

	return s, nil
}

type statusBucket struct {
	Status string `bun:"status"`
	Count  int    `bun:"count"`
}

type ratingAggregate struct {
	Count   int     `bun:"count"`
	Written int     `bun:"written"`
	Avg     float64 `bun:"avg"`
}

type UserDetail struct {
	UserID int `json:"user_id"`
	// ReadingStatus counts the user's books per bucket. want_to_read and
	// reading come from UserLibrary; read is the user's rating count. A
	// library row for a book the user has rated is left out so no book is
	// counted twice.
	ReadingStatus  map[string]int `json:"reading_status"`
	TotalBooks     int            `json:"total_books"`
	TotalReviews   int            `json:"total_reviews"`
	WrittenReviews int            `json:"written_reviews"`
	AverageScore   float64        `json:"average_score"`
}

func (svc *Service) UserDetail(ctx context.Context, userID int) (*UserDetail, error) {
	exists, err := svc.db.NewSelect().Model((*models.User)(nil)).Where("u.id = ?", userID).Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !exists {
		return nil, errcodes.NotFound("User")
	}

	d := &UserDetail{
		UserID:        userID,
		ReadingStatus: map[string]int{},
	}
	for _, status := range models.ReadingStatuses {
		d.ReadingStatus[status] = 0
	}

	var buckets []statusBucket
	err = svc.db.NewSelect().
		Model((*models.UserLibrary)(nil)).
		ColumnExpr("ul.status, COUNT(*) AS count").
		Where("ul.user_id = ?", userID).
		Where("NOT EXISTS (SELECT 1 FROM ratings AS r WHERE r.user_id = ul.user_id AND r.book_id = ul.book_id)").
		Group("ul.status").
		Scan(ctx, &buckets)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, b := range buckets {
		d.ReadingStatus[b.Status] = b.Count
	}

	var agg ratingAggregate
	err = svc.db.NewSelect().
		Model((*models.Rating)(nil)).
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("COUNT(NULLIF(TRIM(COALESCE(r.review, '')), '')) AS written").
		ColumnExpr("COALESCE(AVG(CAST(r.score AS REAL)), 0.0) AS avg").
		Where("r.user_id = ?", userID).
		Scan(ctx, &agg)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	d.ReadingStatus[StatusRead] = agg.Count
	d.TotalReviews = agg.Count
	d.WrittenReviews = agg.Written
	d.AverageScore = Round2(agg.Avg)

	for _, n := range d.ReadingStatus {
		d.TotalBooks += n
	}

	return d, nil
}

type BookDetail struct {
	BookID          int     `json:"book_id"`
	TotalReviews    int     `json:"total_reviews"`
	AverageRating   float64 `json:"average_rating"`
	InUserLibraries int     `json:"in_user_libraries"`
}

func (svc *Service) BookDetail(ctx context.Context, bookID int) (*BookDetail, error) {
	exists, err := svc.db.NewSelect().Model((*models.Book)(nil)).Where("b.id = ?", bookID).Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !exists {
		return nil, errcodes.NotFound("Book")
	}

	d := &BookDetail{BookID: bookID}

	var agg ratingAggregate
	err = svc.db.NewSelect().
		Model((*models.Rating)(nil)).
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("COALESCE(AVG(CAST(r.score AS REAL)), 0.0) AS avg").
		Where("r.book_id = ?", bookID).
		Scan(ctx, &agg)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	d.TotalReviews = agg.Count
	d.AverageRating = Round2(agg.Avg)

	d.InUserLibraries, err = svc.db.NewSelect().
		Model((*models.UserLibrary)(nil)).
		Where("ul.book_id = ?", bookID).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return d, nil
}

// BookRating is a book's review count and average score.
type BookRating struct {
	BookID        int     `bun:"book_id" json:"book_id"`
	ReviewCount   int     `bun:"review_count" json:"review_count"`
	AverageRating float64 `bun:"average_rating" json:"average_rating"`
}

// BookRatings returns review aggregates keyed by book id. Books without
// ratings are absent from the map.
func (svc *Service) BookRatings(ctx context.Context) (map[int]BookRating, error) {
	var rows []BookRating
	err := svc.db.NewSelect().
		Model((*models.Rating)(nil)).
		ColumnExpr("r.book_id").
		ColumnExpr("COUNT(*) AS review_count").
		ColumnExpr("AVG(CAST(r.score AS REAL)) AS average_rating").
		Group("r.book_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	result := make(map[int]BookRating, len(rows))
	for _, row := range rows {
		row.AverageRating = Round2(row.AverageRating)
		result[row.BookID] = row
	}
	return result, nil
}

type DashboardTotals struct {
	TotalUsers          int `json:"total_users"`
	TotalBooks          int `json:"total_books"`
	TotalAuthors        int `json:"total_authors"`
	TotalReviews        int `json:"total_reviews"`
	TotalLibraryEntries int `json:"total_library_entries"`
	ActiveUsers         int `json:"active_users"`
	BlockedUsers        int `json:"blocked_users"`
}

func (svc *Service) DashboardTotals(ctx context.Context) (*DashboardTotals, error) {
	t := &DashboardTotals{}
	counts := []struct {
		dest  *int
		query *bun.SelectQuery
	}{
		{&t.TotalUsers, svc.db.NewSelect().Model((*models.User)(nil))},
		{&t.TotalBooks, svc.db.NewSelect().Model((*models.Book)(nil))},
		{&t.TotalAuthors, svc.db.NewSelect().Model((*models.Author)(nil))},
		{&t.TotalReviews, svc.db.NewSelect().Model((*models.Rating)(nil))},
		{&t.TotalLibraryEntries, svc.db.NewSelect().Model((*models.UserLibrary)(nil))},
		{&t.ActiveUsers, svc.db.NewSelect().Model((*models.User)(nil)).Where("u.is_active = ?", true)},
	}
	for _, c := range counts {
		n, err := c.query.Count(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		*c.dest = n
	}
	t.BlockedUsers = t.TotalUsers - t.ActiveUsers
	return t, nil
}

type GenreCount struct {
	Genre string `bun:"genre" json:"genre"`
	Count int    `bun:"count" json:"count"`
}

// GenreCounts returns the number of books per genre, ordered by genre.
func (svc *Service) GenreCounts(ctx context.Context) ([]GenreCount, error) {
	counts := []GenreCount{}
	err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("b.genre, COUNT(*) AS count").
		Group("b.genre").
		OrderExpr("b.genre ASC").
		Scan(ctx, &counts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return counts, nil
}

type GenreStat struct {
	Genre         string  `bun:"genre" json:"genre"`
	TotalBooks    int     `bun:"total_books" json:"total_books"`
	UniqueAuthors int     `bun:"unique_authors" json:"unique_authors"`
	Percentage    float64 `bun:"-" json:"percentage"`
}

type GenreSummary struct {
	TotalBooks  int `json:"total_books"`
	TotalGenres int `json:"total_genres"`
}

type GenreStats struct {
	Summary GenreSummary `json:"summary"`
	Genres  []GenreStat  `json:"genres"`
}

// GenreStats breaks the catalog down by genre. Each genre's percentage is its
// share of all books.
func (svc *Service) GenreStats(ctx context.Context) (*GenreStats, error) {
	genres := []GenreStat{}
	err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("b.genre").
		ColumnExpr("COUNT(*) AS total_books").
		ColumnExpr("COUNT(DISTINCT b.author_id) AS unique_authors").
		Group("b.genre").
		OrderExpr("total_books DESC, b.genre ASC").
		Scan(ctx, &genres)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	s := &GenreStats{Genres: genres}
	for _, g := range genres {
		s.Summary.TotalBooks += g.TotalBooks
	}
	s.Summary.TotalGenres = len(genres)
	for i := range s.Genres {
		s.Genres[i].Percentage = Percentage(s.Genres[i].TotalBooks, s.Summary.TotalBooks)
	}

	return s, nil
}

type AuthorProfile struct {
	TotalBooks    int        `json:"total_books"`
	Genres        []string   `json:"genres"`
	TotalGenres   int        `json:"total_genres"`
	FirstBookDate *time.Time `json:"first_book_date"`
}

// AuthorProfile summarises one author's catalog. The caller is expected to
// have checked the author exists.
func (svc *Service) AuthorProfile(ctx context.Context, authorID int) (*AuthorProfile, error) {
	p := &AuthorProfile{Genres: []string{}}

	var err error
	p.TotalBooks, err = svc.db.NewSelect().Model((*models.Book)(nil)).Where("b.author_id = ?", authorID).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = svc.db.NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("DISTINCT b.genre").
		Where("b.author_id = ?", authorID).
		OrderExpr("b.genre ASC").
		Scan(ctx, &p.Genres)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	p.TotalGenres = len(p.Genres)

	if p.TotalBooks > 0 {
		first := &models.Book{}
		err = svc.db.NewSelect().
			Model(first).
			ColumnExpr("b.created_at").
			Where("b.author_id = ?", authorID).
			OrderExpr("b.created_at ASC, b.id ASC").
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		p.FirstBookDate = &first.CreatedAt
	}

	return p, nil
}
