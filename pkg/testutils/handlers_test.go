package testutils

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/booketlist/booketlist/pkg/admins"
	"github.com/booketlist/booketlist/pkg/auth"
	"github.com/booketlist/booketlist/pkg/binder"
	"github.com/booketlist/booketlist/pkg/database"
	"github.com/booketlist/booketlist/pkg/migrations"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestHandler(t *testing.T) (*handler, *echo.Echo) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	require.NoError(t, database.ApplyPragmas(ctx, db, time.Second))
	_, err = migrations.BringUpToDate(ctx, db)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b

	return &handler{
		db:           db,
		authService:  auth.NewService(db, "test-secret", time.Hour),
		adminService: admins.NewService(db),
	}, e
}

func TestCreateUserThenDeleteAll(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/test/users", strings.NewReader(`{"name":"Ana","email":"ana@x.com","password":"password123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	require.NoError(t, h.createUser(e.NewContext(req, rr)))
	assert.Equal(t, http.StatusCreated, rr.Code)

	var created createPrincipalResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	claims, err := h.authService.ValidateToken(created.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.KindUser, claims.Kind)

	rr = httptest.NewRecorder()
	require.NoError(t, h.deleteAll(e.NewContext(httptest.NewRequest(http.MethodDelete, "/test/data", nil), rr)))

	var deleted deleteAllResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &deleted))
	assert.Equal(t, 1, deleted.Deleted["users"])

	n, err := h.db.NewSelect().Model((*models.User)(nil)).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
