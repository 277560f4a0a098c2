// Package dashboard serves the admin overview numbers.
package dashboard

import (
	"github.com/booketlist/booketlist/pkg/stats"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes mounts the dashboard on a group that already requires an
// admin token.
func RegisterRoutes(admin *echo.Group, db *bun.DB) {
	h := &handler{
		statsService: stats.NewService(db),
	}

	admin.GET("/dashboard/stats", h.stats)
}
