package auth

import (
	"github.com/booketlist/booketlist/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the sign-up and login routes on the API group and
// returns the service the rest of the server authenticates with.
func RegisterRoutes(g *echo.Group, db *bun.DB, cfg *config.Config) *Service {
	authService := NewService(db, cfg.JWTSecret, cfg.TokenExpiry)
	authMiddleware := NewMiddleware(authService)

	h := &handler{
		authService: authService,
	}

	auth := g.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
	auth.GET("/me", h.me, authMiddleware.AuthenticateUser)

	admin := g.Group("/admin")
	admin.POST("/login", h.adminLogin)
	admin.GET("/me", h.adminMe, authMiddleware.AuthenticateAdmin)

	return authService
}
