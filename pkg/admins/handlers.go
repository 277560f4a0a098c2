package admins

import (
	"net/http"

	"github.com/booketlist/booketlist/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	adminService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	admins, err := h.adminService.ListAdmins(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, admins))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	creator, err := auth.AdminFromContext(c)
	if err != nil {
		return err
	}

	params := CreateAdminPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	admin, err := h.adminService.CreateAdmin(ctx, CreateAdminOptions(params))
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("admin created", logger.Data{"admin_id": admin.ID, "created_by": creator.ID})

	return errors.WithStack(c.JSON(http.StatusCreated, adminResponse{
		Message: "Admin created successfully",
		Admin:   admin,
	}))
}
