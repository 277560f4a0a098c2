package users

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/booketlist/booketlist/pkg/auth"
	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	userService *Service
}

func userParam(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errcodes.NotFound("User")
	}
	return id, nil
}

func (h *handler) listPublic(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.userService.ListPublicUsers(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		TotalUsers int          `json:"total_users"`
		Users      []PublicUser `json:"users"`
	}{len(users), users}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) profile(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	profile, err := h.userService.Profile(ctx, user)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, profile))
}

func (h *handler) updateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	params := UpdateProfilePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	err = h.userService.UpdateProfile(ctx, user, UpdateProfileOptions{
		Name:     params.Username,
		LastName: params.LastName,
		Email:    params.Email,
		Password: params.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Message string      `json:"message"`
		Profile profileInfo `json:"profile"`
	}{
		Message: "Profile updated successfully",
		Profile: profileInfo{
			UserID:   user.ID,
			Username: user.Name,
			LastName: user.LastName,
			Email:    user.Email,
		},
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.userService.ListUsers(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, users))
}

func (h *handler) stats(c echo.Context) error {
	ctx := c.Request().Context()

	s, err := h.userService.UserStats(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, s))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := userParam(c)
	if err != nil {
		return err
	}

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) reviews(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := userParam(c)
	if err != nil {
		return err
	}

	ratings, err := h.userService.ListUserRatings(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, ratings))
}

func (h *handler) library(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := userParam(c)
	if err != nil {
		return err
	}

	entries, err := h.userService.ListUserLibrary(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, entries))
}

func (h *handler) userStats(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := userParam(c)
	if err != nil {
		return err
	}

	detail, err := h.userService.UserDetail(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, detail))
}

func (h *handler) toggleStatus(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, err := userParam(c)
	if err != nil {
		return err
	}

	user, err := h.userService.ToggleStatus(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	action := "unblocked"
	if !user.IsActive {
		action = "blocked"
	}
	log.Info("user status changed", logger.Data{"user_id": user.ID, "is_active": user.IsActive})

	return errors.WithStack(c.JSON(http.StatusOK, userResponse{
		Message: fmt.Sprintf("User %s %s successfully", user.FullName(), action),
		User:    user,
	}))
}
