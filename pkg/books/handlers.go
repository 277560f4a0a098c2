package books

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/booketlist/booketlist/pkg/integrity"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	bookService      *Service
	integrityService *integrity.Service
}

type bookResponse struct {
	Message string       `json:"message"`
	Book    *models.Book `json:"book"`
}

type deleteResponse struct {
	Message string                 `json:"message"`
	Book    *models.Book           `json:"book"`
	Deleted integrity.DeleteReport `json:"deleted"`
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.ListBooks(ctx, ListBooksOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) listByGenre(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.ListBooksByGenreSlug(ctx, c.Param("genre"))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Request().Context()

	params := SearchQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, err := h.bookService.SearchBooks(ctx, params.Q)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) genres(c echo.Context) error {
	ctx := c.Request().Context()

	genres, err := h.bookService.ListGenres(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, GenreList{
		TotalGenres: len(genres),
		Genres:      genres,
	}))
}

func (h *handler) genreCounts(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := h.bookService.stats.GenreCounts(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, counts))
}

func (h *handler) genreStats(c echo.Context) error {
	ctx := c.Request().Context()

	s, err := h.bookService.stats.GenreStats(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, s))
}

func (h *handler) reviews(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	reviews, err := h.bookService.ListReviews(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, reviews))
}

func (h *handler) adminList(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.ListAdminBooks(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) stats(c echo.Context) error {
	ctx := c.Request().Context()

	s, err := h.bookService.stats.BookStats(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, s))
}

func (h *handler) adminRetrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	detail, err := h.bookService.RetrieveAdminBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, detail))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book := &models.Book{
		Title:       params.Title,
		AuthorID:    params.AuthorID,
		Genre:       params.Genre,
		Description: params.Description,
		CoverURL:    params.CoverURL,
		ExternalRef: params.ExternalRef,
	}
	err := h.bookService.CreateBook(ctx, book)
	if err != nil {
		return errors.WithStack(err)
	}

	book, err = h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("book created", logger.Data{"book_id": book.ID, "author_id": book.AuthorID})

	return errors.WithStack(c.JSON(http.StatusCreated, bookResponse{
		Message: "Book created successfully",
		Book:    book,
	}))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateBookOptions{Columns: []string{}}

	if params.Title != nil && strings.TrimSpace(*params.Title) != book.Title {
		book.Title = strings.TrimSpace(*params.Title)
		opts.Columns = append(opts.Columns, "title")
	}
	if params.AuthorID != nil && *params.AuthorID != book.AuthorID {
		book.AuthorID = *params.AuthorID
		opts.Columns = append(opts.Columns, "author_id")
	}
	if params.Genre != nil && strings.TrimSpace(*params.Genre) != book.Genre {
		book.Genre = strings.TrimSpace(*params.Genre)
		opts.Columns = append(opts.Columns, "genre")
	}
	if params.Description != nil && strings.TrimSpace(*params.Description) != book.Description {
		book.Description = strings.TrimSpace(*params.Description)
		opts.Columns = append(opts.Columns, "description")
	}
	if params.CoverURL != nil && strings.TrimSpace(*params.CoverURL) != book.CoverURL {
		book.CoverURL = strings.TrimSpace(*params.CoverURL)
		opts.Columns = append(opts.Columns, "cover_url")
	}
	if params.ExternalRef != nil && strings.TrimSpace(*params.ExternalRef) != book.ExternalRef {
		book.ExternalRef = strings.TrimSpace(*params.ExternalRef)
		opts.Columns = append(opts.Columns, "external_ref")
	}

	err = h.bookService.UpdateBook(ctx, book, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	// Reload so a changed author is reflected.
	book, err = h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, bookResponse{
		Message: "Book updated successfully",
		Book:    book,
	}))
}

// delete refuses while the book has ratings or library entries.
func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	deleted, err := h.integrityService.SafeDeleteBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, deleteResponse{
		Message: "Book deleted successfully",
		Book:    deleted.Book,
		Deleted: deleted.Report,
	}))
}

func (h *handler) forceDelete(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	deleted, err := h.integrityService.ForceDeleteBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("book force deleted", logger.Data{
		"book_id":                 id,
		"reviews_removed":         deleted.Report.ReviewsRemoved,
		"library_entries_removed": deleted.Report.LibraryEntriesRemoved,
	})

	return errors.WithStack(c.JSON(http.StatusOK, deleteResponse{
		Message: "Book and all dependent data deleted successfully",
		Book:    deleted.Book,
		Deleted: deleted.Report,
	}))
}
