package admins

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes mounts admin management on a group that already requires an
// admin token.
func RegisterRoutes(admin *echo.Group, db *bun.DB) *Service {
	adminService := NewService(db)

	h := &handler{
		adminService: adminService,
	}

	admins := admin.Group("/admins")
	admins.GET("", h.list)
	admins.POST("", h.create)

	return adminService
}
