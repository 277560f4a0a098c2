package library

import (
	"github.com/booketlist/booketlist/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes mounts the shelf and rating routes. Every route requires a
// user token.
func RegisterRoutes(api *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	libraryService := NewService(db)

	h := &handler{
		libraryService: libraryService,
	}

	l := api.Group("/library", authMiddleware.AuthenticateUser)
	l.GET("", h.list)
	l.POST("", h.add)
	l.PUT("/:bookId", h.updateStatus)
	l.DELETE("/:bookId", h.remove)

	api.POST("/books/:id/rating", h.createRating, authMiddleware.AuthenticateUser)
	api.PUT("/books/:id/rating", h.updateRating, authMiddleware.AuthenticateUser)
	api.DELETE("/books/:id/rating", h.deleteRating, authMiddleware.AuthenticateUser)

	return libraryService
}
