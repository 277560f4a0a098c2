package stats

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/booketlist/booketlist/pkg/database"
	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/booketlist/booketlist/pkg/migrations"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	require.NoError(t, database.ApplyPragmas(ctx, db, time.Second))
	_, err = migrations.BringUpToDate(ctx, db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func insert(t *testing.T, db *bun.DB, model interface{}) {
	t.Helper()
	_, err := db.NewInsert().Model(model).Exec(context.Background())
	require.NoError(t, err)
}

func newUser(t *testing.T, db *bun.DB, email string, active bool) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, PasswordHash: "x", IsActive: active}
	insert(t, db, u)
	return u
}

func newAuthor(t *testing.T, db *bun.DB, first, last string) *models.Author {
	t.Helper()
	a := &models.Author{FirstName: first, LastName: last}
	insert(t, db, a)
	return a
}

func newBook(t *testing.T, db *bun.DB, author *models.Author, title, genre string) *models.Book {
	t.Helper()
	b := &models.Book{Title: title, Genre: genre, AuthorID: author.ID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	insert(t, db, b)
	return b
}

func rate(t *testing.T, db *bun.DB, user *models.User, book *models.Book, score int, review *string) {
	t.Helper()
	insert(t, db, &models.Rating{UserID: user.ID, BookID: book.ID, Score: score, Review: review})
}

func shelve(t *testing.T, db *bun.DB, user *models.User, book *models.Book, status string) {
	t.Helper()
	insert(t, db, &models.UserLibrary{UserID: user.ID, BookID: book.ID, Status: status})
}

func TestRound2(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 4.0, Round2(4))
	assert.Equal(t, 3.67, Round2(11.0/3.0))
	assert.Equal(t, 66.67, Percentage(2, 3))
	assert.Equal(t, 0.0, Percentage(5, 0))
}

func TestUserStats_Empty(t *testing.T) {
	t.Parallel()
	svc := NewService(setupTestDB(t))

	s, err := svc.UserStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, s.TotalUsers)
	assert.Equal(t, 0.0, s.ActivePercentage)
}

func TestUserStats(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)

	ana := newUser(t, db, "ana@x.com", true)
	bob := newUser(t, db, "bob@x.com", true)
	newUser(t, db, "eve@x.com", false)

	author := newAuthor(t, db, "Jane", "Austen")
	emma := newBook(t, db, author, "Emma", "Classics")
	persuasion := newBook(t, db, author, "Persuasion", "Classics")

	shelve(t, db, ana, emma, models.ReadingStatusReading)
	shelve(t, db, ana, persuasion, models.ReadingStatusWantToRead)
	rate(t, db, bob, emma, 5, nil)

	s, err := svc.UserStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalUsers)
	assert.Equal(t, 2, s.ActiveUsers)
	assert.Equal(t, 1, s.BlockedUsers)
	assert.Equal(t, 1, s.UsersWithBooks)
	assert.Equal(t, 1, s.UsersWithReviews)
	assert.Equal(t, 66.67, s.ActivePercentage)
}

func TestBookStats(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	s, err := svc.BookStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.AverageRating)

	author := newAuthor(t, db, "Jane", "Austen")
	emma := newBook(t, db, author, "Emma", "Classics")
	persuasion := newBook(t, db, author, "Persuasion", "Classics")
	newBook(t, db, author, "Lady Susan", "Classics")

	ana := newUser(t, db, "ana@x.com", true)
	bob := newUser(t, db, "bob@x.com", true)
	cam := newUser(t, db, "cam@x.com", true)
	rate(t, db, ana, emma, 4, nil)
	rate(t, db, bob, emma, 5, nil)
	rate(t, db, cam, emma, 3, nil)
	shelve(t, db, ana, persuasion, models.ReadingStatusWantToRead)

	s, err = svc.BookStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalBooks)
	assert.Equal(t, 1, s.BooksWithReviews)
	assert.Equal(t, 1, s.BooksInLibraries)
	assert.Equal(t, 4.0, s.AverageRating)
	assert.Equal(t, 2, s.BooksWithoutReviews)
}

func TestAuthorStats_TopAuthorTieGoesToLowestID(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	s, err := svc.AuthorStats(ctx)
	require.NoError(t, err)
	assert.Nil(t, s.TopAuthor)

	austen := newAuthor(t, db, "Jane", "Austen")
	bronte := newAuthor(t, db, "Charlotte", "Brontë")
	newAuthor(t, db, "Idle", "Writer")
	newBook(t, db, bronte, "Jane Eyre", "Classics")
	newBook(t, db, bronte, "Villette", "Classics")
	newBook(t, db, austen, "Emma", "Classics")
	newBook(t, db, austen, "Persuasion", "Classics")

	s, err = svc.AuthorStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalAuthors)
	assert.Equal(t, 2, s.AuthorsWithBooks)
	require.NotNil(t, s.TopAuthor)
	assert.Equal(t, austen.ID, s.TopAuthor.ID)
	assert.Equal(t, 2, s.TopAuthor.BookCount)

	newBook(t, db, bronte, "Shirley", "Classics")
	s, err = svc.AuthorStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, bronte.ID, s.TopAuthor.ID)
	assert.Equal(t, "Charlotte", s.TopAuthor.FirstName)
	assert.Equal(t, 3, s.TopAuthor.BookCount)
}

func TestUserDetail(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.UserDetail(ctx, 42)
	assert.ErrorIs(t, err, errcodes.NotFound("User"))

	ana := newUser(t, db, "ana@x.com", true)
	author := newAuthor(t, db, "Jane", "Austen")
	emma := newBook(t, db, author, "Emma", "Classics")
	persuasion := newBook(t, db, author, "Persuasion", "Classics")
	sense := newBook(t, db, author, "Sense and Sensibility", "Classics")

	d, err := svc.UserDetail(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"want_to_read": 0, "reading": 0, "read": 0}, d.ReadingStatus)
	assert.Equal(t, 0, d.TotalReviews)
	assert.Equal(t, 0.0, d.AverageScore)

	review := "Loved it"
	rate(t, db, ana, emma, 5, &review)
	rate(t, db, ana, persuasion, 4, nil)
	shelve(t, db, ana, sense, models.ReadingStatusReading)
	// A leftover shelf row for a rated book must not be counted again.
	shelve(t, db, ana, emma, models.ReadingStatusReading)

	d, err = svc.UserDetail(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"want_to_read": 0, "reading": 1, "read": 2}, d.ReadingStatus)
	assert.Equal(t, 3, d.TotalBooks)
	assert.Equal(t, 2, d.TotalReviews)
	assert.Equal(t, 1, d.WrittenReviews)
	assert.Equal(t, 4.5, d.AverageScore)
}

func TestBookDetail(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.BookDetail(ctx, 7)
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))

	author := newAuthor(t, db, "Jane", "Austen")
	emma := newBook(t, db, author, "Emma", "Classics")

	d, err := svc.BookDetail(ctx, emma.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, d.TotalReviews)
	assert.Equal(t, 0.0, d.AverageRating)

	ana := newUser(t, db, "ana@x.com", true)
	bob := newUser(t, db, "bob@x.com", true)
	cam := newUser(t, db, "cam@x.com", true)
	rate(t, db, ana, emma, 5, nil)
	rate(t, db, bob, emma, 4, nil)
	rate(t, db, cam, emma, 4, nil)
	shelve(t, db, newUser(t, db, "dan@x.com", true), emma, models.ReadingStatusWantToRead)

	d, err = svc.BookDetail(ctx, emma.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalReviews)
	assert.Equal(t, 4.33, d.AverageRating)
	assert.Equal(t, 1, d.InUserLibraries)

	ratings, err := svc.BookRatings(ctx)
	require.NoError(t, err)
	assert.Equal(t, BookRating{BookID: emma.ID, ReviewCount: 3, AverageRating: 4.33}, ratings[emma.ID])
}

func TestDashboardTotals(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)

	ana := newUser(t, db, "ana@x.com", true)
	newUser(t, db, "eve@x.com", false)
	author := newAuthor(t, db, "Jane", "Austen")
	emma := newBook(t, db, author, "Emma", "Classics")
	persuasion := newBook(t, db, author, "Persuasion", "Classics")
	rate(t, db, ana, emma, 5, nil)
	shelve(t, db, ana, persuasion, models.ReadingStatusReading)

	totals, err := svc.DashboardTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &DashboardTotals{
		TotalUsers:          2,
		TotalBooks:          2,
		TotalAuthors:        1,
		TotalReviews:        1,
		TotalLibraryEntries: 1,
		ActiveUsers:         1,
		BlockedUsers:        1,
	}, totals)
}

func TestGenreStats(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	austen := newAuthor(t, db, "Jane", "Austen")
	asimov := newAuthor(t, db, "Isaac", "Asimov")
	lem := newAuthor(t, db, "Stanisław", "Lem")
	newBook(t, db, austen, "Emma", "Classics")
	newBook(t, db, asimov, "Foundation", "Science Fiction")
	newBook(t, db, asimov, "I, Robot", "Science Fiction")
	newBook(t, db, lem, "Solaris", "Science Fiction")

	s, err := svc.GenreStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, GenreSummary{TotalBooks: 4, TotalGenres: 2}, s.Summary)
	require.Len(t, s.Genres, 2)
	assert.Equal(t, GenreStat{Genre: "Science Fiction", TotalBooks: 3, UniqueAuthors: 2, Percentage: 75}, s.Genres[0])
	assert.Equal(t, GenreStat{Genre: "Classics", TotalBooks: 1, UniqueAuthors: 1, Percentage: 25}, s.Genres[1])

	counts, err := svc.GenreCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []GenreCount{{"Classics", 1}, {"Science Fiction", 3}}, counts)

	p, err := svc.AuthorProfile(ctx, asimov.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalBooks)
	assert.Equal(t, []string{"Science Fiction"}, p.Genres)
	assert.NotNil(t, p.FirstBookDate)
}

func TestGenreStats_Empty(t *testing.T) {
	t.Parallel()
	svc := NewService(setupTestDB(t))

	s, err := svc.GenreStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, s.Summary.TotalBooks)
	assert.Empty(t, s.Genres)

	p, err := svc.AuthorProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalBooks)
	assert.Empty(t, p.Genres)
	assert.Nil(t, p.FirstBookDate)
}
