package authors

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
	authorService    *Service
	integrityService *integrity.Service
}

type authorResponse struct {
	Message string         `json:"message"`
	Author  *models.Author `json:"author"`
}

type deleteResponse struct {
	Message string                 `json:"message"`
	Author  *models.Author         `json:"author"`
	Deleted integrity.DeleteReport `json:"deleted"`
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	authors, err := h.authorService.ListAuthors(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, authors))
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Request().Context()

	params := SearchQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	results, err := h.authorService.SearchAuthors(ctx, params.Q)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, results))
}

func (h *handler) profile(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	detail, err := h.authorService.RetrieveDetail(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, detail))
}

func (h *handler) stats(c echo.Context) error {
	ctx := c.Request().Context()

	s, err := h.authorService.stats.AuthorStats(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, s))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := CreateAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author := &models.Author{
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Biography: params.Biography,
	}
	err := h.authorService.CreateAuthor(ctx, author)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("author created", logger.Data{"author_id": author.ID})

	return errors.WithStack(c.JSON(http.StatusCreated, authorResponse{
		Message: "Author created successfully",
		Author:  author,
	}))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	params := UpdateAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateAuthorOptions{Columns: []string{}}

	if params.FirstName != nil && strings.TrimSpace(*params.FirstName) != author.FirstName {
		author.FirstName = strings.TrimSpace(*params.FirstName)
		opts.Columns = append(opts.Columns, "first_name")
	}
	if params.LastName != nil && strings.TrimSpace(*params.LastName) != author.LastName {
		author.LastName = strings.TrimSpace(*params.LastName)
		opts.Columns = append(opts.Columns, "last_name")
	}
	if params.Biography != nil && strings.TrimSpace(*params.Biography) != author.Biography {
		author.Biography = strings.TrimSpace(*params.Biography)
		opts.Columns = append(opts.Columns, "biography")
	}

	err = h.authorService.UpdateAuthor(ctx, author, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, authorResponse{
		Message: "Author updated successfully",
		Author:  author,
	}))
}

// delete refuses while the author still has books.
func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	deleted, err := h.integrityService.SafeDeleteAuthor(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, deleteResponse{
		Message: "Author deleted successfully",
		Author:  deleted.Author,
		Deleted: deleted.Report,
	}))
}

func (h *handler) forceDelete(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	deleted, err := h.integrityService.ForceDeleteAuthor(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("author force deleted", logger.Data{
		"author_id":               id,
		"books_removed":           deleted.Report.BooksRemoved,
		"reviews_removed":         deleted.Report.ReviewsRemoved,
		"library_entries_removed": deleted.Report.LibraryEntriesRemoved,
	})

	return errors.WithStack(c.JSON(http.StatusOK, deleteResponse{
		Message: "Author and all dependent data deleted successfully",
		Author:  deleted.Author,
		Deleted: deleted.Report,
	}))
}
