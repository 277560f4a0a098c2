package library

import (
	"net/http"
	"strconv"

	"github.com/booketlist/booketlist/pkg/auth"
	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	libraryService *Service
}

func bookParam(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, errcodes.NotFound("Book")
	}
	return id, nil
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	entries, err := h.libraryService.ListEntries(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, entries))
}

func (h *handler) add(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	params := AddEntryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	entry, err := h.libraryService.AddEntry(ctx, user.ID, params.BookID, params.Status)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, entryResponse{
		Message: "Book added to library",
		Entry:   entry,
	}))
}

func (h *handler) updateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}
	bookID, err := bookParam(c, "bookId")
	if err != nil {
		return err
	}

	params := UpdateEntryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	entry, err := h.libraryService.UpdateEntryStatus(ctx, user.ID, bookID, params.Status)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, entryResponse{
		Message: "Library entry updated",
		Entry:   entry,
	}))
}

func (h *handler) remove(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}
	bookID, err := bookParam(c, "bookId")
	if err != nil {
		return err
	}

	entry, err := h.libraryService.RemoveEntry(ctx, user.ID, bookID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, entryResponse{
		Message: "Book removed from library",
		Entry:   entry,
	}))
}

func (h *handler) createRating(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}
	bookID, err := bookParam(c, "id")
	if err != nil {
		return err
	}

	params := CreateRatingPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.libraryService.CreateRating(ctx, user.ID, bookID, CreateRatingOptions{
		Score:  params.Score,
		Review: params.Review,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("book rated", logger.Data{"user_id": user.ID, "book_id": bookID, "score": params.Score})

	return errors.WithStack(c.JSON(http.StatusCreated, ratingResponse{
		Message:             "Rating created successfully",
		Rating:              result.Rating,
		LibraryEntryRemoved: result.LibraryEntryRemoved,
	}))
}

func (h *handler) updateRating(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}
	bookID, err := bookParam(c, "id")
	if err != nil {
		return err
	}

	params := UpdateRatingPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	rating, err := h.libraryService.UpdateRating(ctx, user.ID, bookID, UpdateRatingOptions(params))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, ratingResponse{
		Message: "Rating updated successfully",
		Rating:  rating,
	}))
}

func (h *handler) deleteRating(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}
	bookID, err := bookParam(c, "id")
	if err != nil {
		return err
	}

	rating, err := h.libraryService.DeleteRating(ctx, user.ID, bookID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, ratingResponse{
		Message: "Rating deleted successfully",
		Rating:  rating,
	}))
}
