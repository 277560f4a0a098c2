package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/booketlist/booketlist/pkg/admins"
	"github.com/booketlist/booketlist/pkg/auth"
	"github.com/booketlist/booketlist/pkg/authors"
	"github.com/booketlist/booketlist/pkg/binder"
	"github.com/booketlist/booketlist/pkg/books"
	"github.com/booketlist/booketlist/pkg/config"
	"github.com/booketlist/booketlist/pkg/dashboard"
	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/booketlist/booketlist/pkg/library"
	"github.com/booketlist/booketlist/pkg/testutils"
	"github.com/booketlist/booketlist/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
	}))

	health.RegisterRoutes(e)

	api := e.Group("/api")

	// Register auth routes and get the auth service
	authService := auth.RegisterRoutes(api, db, cfg)
	authMiddleware := auth.NewMiddleware(authService)

	// Admin login lives under /api/admin too, so the token check is attached
	// to this group only and not to the shared prefix.
	admin := api.Group("/admin", authMiddleware.AuthenticateAdmin)

	books.RegisterRoutes(api, admin, db)
	authors.RegisterRoutes(api, admin, db)
	library.RegisterRoutes(api, db, authMiddleware)
	users.RegisterRoutes(api, admin, db, authMiddleware)
	admins.RegisterRoutes(admin, db)
	dashboard.RegisterRoutes(admin, db)

	if cfg.IsTest() {
		testutils.RegisterRoutes(e, db, authService)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
