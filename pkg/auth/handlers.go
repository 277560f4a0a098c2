package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	authService *Service
}

// register creates a user account and signs them in.
func (h *handler) register(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := RegisterPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.RegisterUser(ctx, RegisterUserOptions{
		Name:     params.Username,
		LastName: params.LastName,
		Email:    params.Email,
		Password: params.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	token, err := h.authService.GenerateToken(KindUser, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("user registered", logger.Data{"user_id": user.ID})

	return errors.WithStack(c.JSON(http.StatusCreated, UserTokenResponse{
		Message:     "User registered successfully",
		AccessToken: token,
		User:        user,
	}))
}

// login handles user login.
func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.AuthenticateUser(ctx, params.Email, params.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	token, err := h.authService.GenerateToken(KindUser, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, UserTokenResponse{
		Message:     "Login successful",
		AccessToken: token,
		User:        user,
	}))
}

// me returns the current authenticated user's info.
func (h *handler) me(c echo.Context) error {
	user, err := UserFromContext(c)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, user))
}

// adminLogin handles admin login.
func (h *handler) adminLogin(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	admin, err := h.authService.AuthenticateAdmin(ctx, params.Email, params.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	token, err := h.authService.GenerateToken(KindAdmin, admin.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, AdminTokenResponse{
		Message:     "Admin login successful",
		AccessToken: token,
		Admin:       admin,
	}))
}

// adminMe returns the current authenticated admin.
func (h *handler) adminMe(c echo.Context) error {
	admin, err := AdminFromContext(c)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, admin))
}
