package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/booketlist/booketlist/pkg/binder"
	"github.com/booketlist/booketlist/pkg/database"
	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/booketlist/booketlist/pkg/migrations"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
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

	return db
}

func newTestContext(t *testing.T, payload, method, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func TestHandler_RegisterThenLogin(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	h := &handler{authService: NewService(db, "test-jwt-secret", time.Hour)}

	c, rr := newTestContext(t, `{"username":"ana","email":"ana@x.com","password":"secret"}`, http.MethodPost, "/api/auth/register")
	require.NoError(t, h.register(c))
	assert.Equal(t, http.StatusCreated, rr.Code)

	var registered UserTokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))
	assert.NotEmpty(t, registered.AccessToken)
	assert.Equal(t, "ana", registered.User.Name)
	assert.Equal(t, "", registered.User.LastName)
	assert.True(t, registered.User.IsActive)
	assert.NotContains(t, rr.Body.String(), "password")

	t.Run("login with the same credentials returns a token", func(tt *testing.T) {
		c, rr := newTestContext(tt, `{"email":"ana@x.com","password":"secret"}`, http.MethodPost, "/api/auth/login")
		require.NoError(tt, h.login(c))
		assert.Equal(tt, http.StatusOK, rr.Code)

		var resp UserTokenResponse
		require.NoError(tt, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(tt, resp.AccessToken)
		assert.Equal(tt, registered.User.ID, resp.User.ID)

		claims, err := h.authService.ValidateToken(resp.AccessToken)
		require.NoError(tt, err)
		assert.Equal(tt, KindUser, claims.Kind)
		assert.False(tt, claims.Admin)
	})

	t.Run("email matching ignores case", func(tt *testing.T) {
		c, rr := newTestContext(tt, `{"email":"ANA@X.COM","password":"secret"}`, http.MethodPost, "/api/auth/login")
		require.NoError(tt, h.login(c))
		assert.Equal(tt, http.StatusOK, rr.Code)
	})

	t.Run("wrong password is unauthorized", func(tt *testing.T) {
		c, _ := newTestContext(tt, `{"email":"ana@x.com","password":"wrong"}`, http.MethodPost, "/api/auth/login")
		err := h.login(c)
		require.Error(tt, err)

		var codeErr *errcodes.Error
		require.ErrorAs(tt, err, &codeErr)
		assert.Equal(tt, http.StatusUnauthorized, codeErr.HTTPCode)
	})

	t.Run("unknown email is unauthorized", func(tt *testing.T) {
		c, _ := newTestContext(tt, `{"email":"nobody@x.com","password":"secret"}`, http.MethodPost, "/api/auth/login")
		err := h.login(c)

		var codeErr *errcodes.Error
		require.ErrorAs(tt, err, &codeErr)
		assert.Equal(tt, http.StatusUnauthorized, codeErr.HTTPCode)
	})

	t.Run("registering the same email again is a conflict", func(tt *testing.T) {
		c, _ := newTestContext(tt, `{"username":"ana2","email":"Ana@x.com","password":"secret"}`, http.MethodPost, "/api/auth/register")
		err := h.register(c)

		var codeErr *errcodes.Error
		require.ErrorAs(tt, err, &codeErr)
		assert.Equal(tt, http.StatusConflict, codeErr.HTTPCode)
	})
}

func TestHandler_Register_MissingFields(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	h := &handler{authService: NewService(db, "test-jwt-secret", time.Hour)}

	c, _ := newTestContext(t, `{"email":"ana@x.com","password":"secret"}`, http.MethodPost, "/api/auth/register")
	err := h.register(c)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusBadRequest, codeErr.HTTPCode)
	assert.Equal(t, `"username" is required`, codeErr.Message)
}

func TestHandler_Login_BlockedUser(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db, "test-jwt-secret", time.Hour)
	h := &handler{authService: svc}

	user, err := svc.RegisterUser(ctx, RegisterUserOptions{Name: "bob", Email: "bob@x.com", Password: "secret"})
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "UPDATE users SET is_active = ? WHERE id = ?", false, user.ID)
	require.NoError(t, err)

	c, _ := newTestContext(t, `{"email":"bob@x.com","password":"secret"}`, http.MethodPost, "/api/auth/login")
	err = h.login(c)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusUnauthorized, codeErr.HTTPCode)
	assert.Equal(t, "Account is blocked", codeErr.Message)
}

func TestHandler_AdminLogin(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db, "test-jwt-secret", time.Hour)
	h := &handler{authService: svc}

	hash, err := HashPassword("admin-password")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO admins (name, email, password_hash, is_active) VALUES (?, ?, ?, ?)",
		"Root", "root@x.com", hash, true)
	require.NoError(t, err)

	c, rr := newTestContext(t, `{"email":"root@x.com","password":"admin-password"}`, http.MethodPost, "/api/admin/login")
	require.NoError(t, h.adminLogin(c))
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp AdminTokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, KindAdmin, claims.Kind)
	assert.True(t, claims.Admin)
	assert.NotEmpty(t, claims.ID)

	c, _ = newTestContext(t, `{"email":"root@x.com","password":"nope"}`, http.MethodPost, "/api/admin/login")
	err = h.adminLogin(c)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusUnauthorized, codeErr.HTTPCode)
}
