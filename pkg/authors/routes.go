package authors

import (
	"github.com/booketlist/booketlist/pkg/integrity"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes mounts the public author routes on api and the management
// routes on admin, which must already require an admin token.
func RegisterRoutes(api *echo.Group, admin *echo.Group, db *bun.DB) {
	authorService := NewService(db)

	h := &handler{
		authorService:    authorService,
		integrityService: integrity.NewService(db),
	}

	api.GET("/authors", h.list)
	api.GET("/authors/search/simple", h.search)
	api.GET("/authors/:id/profile", h.profile)

	a := admin.Group("/authors")
	a.GET("", h.list)
	a.GET("/stats", h.stats)
	a.GET("/:id", h.profile)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)
	a.DELETE("/:id/force", h.forceDelete)
}
