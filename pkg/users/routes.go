package users

import (
	"github.com/booketlist/booketlist/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes mounts the public user list, the caller's profile and the
// admin user management routes. The admin group must already require an admin
// token.
func RegisterRoutes(api, admin *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
	}

	api.GET("/users/public", h.listPublic)

	profile := api.Group("/profile", authMiddleware.AuthenticateUser)
	profile.GET("", h.profile)
	profile.PUT("", h.updateProfile)

	users := admin.Group("/users")
	users.GET("", h.list)
	users.GET("/stats", h.stats)
	users.GET("/:id", h.retrieve)
	users.GET("/:id/reviews", h.reviews)
	users.GET("/:id/library", h.library)
	users.GET("/:id/stats", h.userStats)
	users.PUT("/:id/toggle-status", h.toggleStatus)

	return userService
}
