package books

import (
	"github.com/booketlist/booketlist/pkg/integrity"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes mounts the public catalog on api and book management on
// admin, which must already require an admin token.
func RegisterRoutes(api *echo.Group, admin *echo.Group, db *bun.DB) {
	bookService := NewService(db)

	h := &handler{
		bookService:      bookService,
		integrityService: integrity.NewService(db),
	}

	g := api.Group("/books")
	g.GET("", h.list)
	g.GET("/search", h.search)
	g.GET("/genres", h.genres)
	g.GET("/genres/count", h.genreCounts)
	g.GET("/genres/stats", h.genreStats)
	g.GET("/genre/:genre", h.listByGenre)
	g.GET("/:id", h.retrieve)
	g.GET("/:id/ratings", h.reviews)

	a := admin.Group("/books")
	a.GET("", h.adminList)
	a.GET("/stats", h.stats)
	a.GET("/:id", h.adminRetrieve)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)
	a.DELETE("/:id/force", h.forceDelete)
}
