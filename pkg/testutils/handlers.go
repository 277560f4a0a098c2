package testutils

import (
	"context"
	"net/http"

	"github.com/booketlist/booketlist/pkg/admins"
	"github.com/booketlist/booketlist/pkg/auth"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/booketlist/booketlist/pkg/seed"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type handler struct {
	db           *bun.DB
	authService  *auth.Service
	adminService *admins.Service
}

// createPrincipalRequest is the request body for creating a test user or admin.
type createPrincipalRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" mod:"trim,lcase" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// createPrincipalResponse carries a ready-to-use token so tests can skip the
// login step.
type createPrincipalResponse struct {
	ID          int    `json:"id"`
	AccessToken string `json:"access_token"`
}

// createUser creates an active test user.
// POST /test/users.
func (h *handler) createUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req createPrincipalRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.RegisterUser(ctx, auth.RegisterUserOptions{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}

	token, err := h.authService.GenerateToken(auth.KindUser, user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createPrincipalResponse{
		ID:          user.ID,
		AccessToken: token,
	})
}

// createAdmin creates an active test admin.
// POST /test/admins.
func (h *handler) createAdmin(c echo.Context) error {
	ctx := c.Request().Context()

	var req createPrincipalRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	admin, err := h.adminService.CreateAdmin(ctx, admins.CreateAdminOptions(req))
	if err != nil {
		return errors.Wrap(err, "failed to create admin")
	}

	token, err := h.authService.GenerateToken(auth.KindAdmin, admin.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createPrincipalResponse{
		ID:          admin.ID,
		AccessToken: token,
	})
}

// seedDemo loads the demo catalog.
// POST /test/seed.
func (h *handler) seedDemo(c echo.Context) error {
	ctx := c.Request().Context()

	report, err := seed.Run(ctx, h.db, seed.Options{UserPassword: "password123"})
	if err != nil {
		return errors.Wrap(err, "failed to seed")
	}

	return c.JSON(http.StatusOK, report)
}

// deleteAllResponse is the response body for wiping the database.
type deleteAllResponse struct {
	Deleted map[string]int `json:"deleted"`
}

// deleteAll removes every row, children before parents.
// DELETE /test/data.
func (h *handler) deleteAll(c echo.Context) error {
	ctx := c.Request().Context()

	resp := deleteAllResponse{Deleted: map[string]int{}}
	tables := []struct {
		name  string
		model interface{}
	}{
		{"user_libraries", (*models.UserLibrary)(nil)},
		{"ratings", (*models.Rating)(nil)},
		{"books", (*models.Book)(nil)},
		{"authors", (*models.Author)(nil)},
		{"users", (*models.User)(nil)},
		{"admins", (*models.Admin)(nil)},
	}

	err := h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, table := range tables {
			result, err := tx.NewDelete().
				Model(table.model).
				Where("1=1").
				Exec(ctx)
			if err != nil {
				return errors.Wrapf(err, "failed to delete %s", table.name)
			}
			deleted, _ := result.RowsAffected()
			resp.Deleted[table.name] = int(deleted)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}
