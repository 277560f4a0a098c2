// Package testutils provides test-only API endpoints.
// These routes are only registered when ENVIRONMENT=test.
package testutils

import (
	"github.com/booketlist/booketlist/pkg/admins"
	"github.com/booketlist/booketlist/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authService *auth.Service) {
	h := &handler{
		db:           db,
		authService:  authService,
		adminService: admins.NewService(db),
	}

	test := e.Group("/test")
	test.POST("/users", h.createUser)
	test.POST("/admins", h.createAdmin)
	test.POST("/seed", h.seedDemo)
	test.DELETE("/data", h.deleteAll)
}
