package errcodes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Error struct {
		Code       string          `json:"code"`
		Message    string          `json:"message"`
		StatusCode int             `json:"status_code"`
		Details    json.RawMessage `json:"details"`
	} `json:"error"`
}

func handle(t *testing.T, err error) (*httptest.ResponseRecorder, payload) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)

	NewHandler().Handle(err, c)

	var p payload
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return rr, p
}

func TestHandle(t *testing.T) {
	t.Parallel()

	t.Run("custom errors keep their status and code", func(tt *testing.T) {
		rr, p := handle(tt, errors.WithStack(NotFound("Book")))
		assert.Equal(tt, http.StatusNotFound, rr.Code)
		assert.Equal(tt, "not_found", p.Error.Code)
		assert.Equal(tt, "Book not found.", p.Error.Message)
		assert.Equal(tt, http.StatusNotFound, p.Error.StatusCode)
		assert.Empty(tt, p.Error.Details)
	})

	t.Run("conflict details are rendered", func(tt *testing.T) {
		rr, p := handle(tt, ConflictWithDetails("Author has books.", map[string]int{"books": 2}))
		assert.Equal(tt, http.StatusConflict, rr.Code)
		assert.Equal(tt, "conflict", p.Error.Code)
		assert.JSONEq(tt, `{"books":2}`, string(p.Error.Details))
	})

	t.Run("unknown errors become internal server errors", func(tt *testing.T) {
		rr, p := handle(tt, errors.New("boom"))
		assert.Equal(tt, http.StatusInternalServerError, rr.Code)
		assert.Equal(tt, "internal_server_error", p.Error.Code)
		assert.Equal(tt, "Internal Server Error", p.Error.Message)
	})

	t.Run("echo errors are converted", func(tt *testing.T) {
		rr, p := handle(tt, echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))
		assert.Equal(tt, http.StatusMethodNotAllowed, rr.Code)
		assert.Equal(tt, "method_not_allowed", p.Error.Code)
	})
}

func TestIs(t *testing.T) {
	t.Parallel()

	err := errors.Wrap(NotFound("Author"), "retrieve")
	assert.True(t, errors.Is(err, NotFound("Author")))
	assert.False(t, errors.Is(err, NotFound("Book")))

	var e *Error
	require.True(t, errors.As(ConflictWithDetails("x", []int{1}), &e))
	assert.Equal(t, []int{1}, e.Details)
}
