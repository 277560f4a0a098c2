package auth

import (
	"strings"

	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/labstack/echo/v4"
)

// Context keys used by handlers to read the authenticated principal.
const (
	ContextKeyUser  = "user"
	ContextKeyAdmin = "admin"
)

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// AuthenticateUser requires a user token for an active user and stores the
// user in the context.
func (m *Middleware) AuthenticateUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		claims, err := m.claims(c, KindUser)
		if err != nil {
			return err
		}
		id, err := claims.PrincipalID()
		if err != nil {
			return errcodes.Unauthorized("Invalid or expired token")
		}

		// Blocking a user revokes their outstanding tokens.
		user, err := m.authService.GetActiveUser(ctx, id)
		if err != nil {
			return errcodes.Unauthorized("User not found or inactive")
		}

		c.Set(ContextKeyUser, user)
		return next(c)
	}
}

// AuthenticateAdmin requires an admin token whose subject is an existing,
// active Admin row.
func (m *Middleware) AuthenticateAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		claims, err := m.claims(c, KindAdmin)
		if err != nil {
			return err
		}
		if !claims.Admin {
			return errcodes.Unauthorized("Admin access required")
		}
		id, err := claims.PrincipalID()
		if err != nil {
			return errcodes.Unauthorized("Invalid or expired token")
		}

		admin, err := m.authService.GetActiveAdmin(ctx, id)
		if err != nil {
			return errcodes.Unauthorized("Admin not found or inactive")
		}

		c.Set(ContextKeyAdmin, admin)
		return next(c)
	}
}

func (m *Middleware) claims(c echo.Context, kind string) (*JWTClaims, error) {
	token := bearerToken(c)
	if token == "" {
		return nil, errcodes.Unauthorized("Authentication required")
	}

	claims, err := m.authService.ValidateToken(token)
	if err != nil {
		return nil, errcodes.Unauthorized("Invalid or expired token")
	}
	if claims.Kind != kind {
		if kind == KindAdmin {
			return nil, errcodes.Unauthorized("Admin access required")
		}
		return nil, errcodes.Unauthorized("User token required")
	}

	return claims, nil
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// UserFromContext returns the user stored by AuthenticateUser.
func UserFromContext(c echo.Context) (*models.User, error) {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil, errcodes.Unauthorized("Authentication required")
	}
	return user, nil
}

// AdminFromContext returns the admin stored by AuthenticateAdmin.
func AdminFromContext(c echo.Context) (*models.Admin, error) {
	admin, ok := c.Get(ContextKeyAdmin).(*models.Admin)
	if !ok {
		return nil, errcodes.Unauthorized("Admin access required")
	}
	return admin, nil
}
