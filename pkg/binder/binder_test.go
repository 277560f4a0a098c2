package binder

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Hello string `json:"hello" mod:"trim" validate:"max=9"`
	Omit  string `json:"-"`
}

type coverParams struct {
	CoverURL string `json:"cover_url" validate:"url"`
}

type searchQuery struct {
	Q     string `query:"q" mod:"trim"`
	Limit int    `query:"limit" default:"10" validate:"min=1,max=50"`
}

var (
	goodJSON             = `{"hello":" world "}`
	unknownFieldsErrJSON = `{"hello":"world","foo":"bar"}`
	typeErrJSON          = `{"hello":123}`
	validationErrJSON    = `{"hello":"0123456789"}`
	malformedJSON        = `{"hello":`
)

func TestNew(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Run("only allows application/json", func(tt *testing.T) {
		c := newContext(http.MethodPost, "/", goodJSON, echo.MIMEApplicationXML)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "Unsupported Media Type")
	})

	t.Run("disallows unknown fields", func(tt *testing.T) {
		c := newContext(http.MethodPost, "/", unknownFieldsErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "foo"`)
	})

	t.Run("returns a good message for type errors", func(tt *testing.T) {
		c := newContext(http.MethodPost, "/", typeErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"hello" should be of type string`)
	})

	t.Run("rejects malformed payloads", func(tt *testing.T) {
		c := newContext(http.MethodPost, "/", malformedJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.ErrorIs(tt, err, errcodes.MalformedPayload())
	})

	t.Run("use mod tag to modify params", func(tt *testing.T) {
		c := newContext(http.MethodPost, "/", goodJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "world", p.Hello)
	})

	t.Run("use validate tag to validate params", func(tt *testing.T) {
		c := newContext(http.MethodPost, "/", validationErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "length must be less than or equal to 9 characters")

		var e *errcodes.Error
		require.ErrorAs(tt, err, &e)
		assert.Equal(tt, http.StatusBadRequest, e.HTTPCode)
	})

	t.Run("rejects empty bodies on writes", func(tt *testing.T) {
		c := newContext(http.MethodPost, "/", "", echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.ErrorIs(tt, err, errcodes.EmptyRequestBody())
	})

	t.Run("validates urls", func(tt *testing.T) {
		c := newContext(http.MethodPost, "/", `{"cover_url":"not a url"}`, echo.MIMEApplicationJSON)
		p := coverParams{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"cover_url" is not a valid URL`)

		c = newContext(http.MethodPost, "/", `{"cover_url":"https://covers.example.com/1.jpg"}`, echo.MIMEApplicationJSON)
		p = coverParams{}
		require.NoError(tt, b.Bind(&p, c))
	})

	t.Run("decodes query strings on GET", func(tt *testing.T) {
		c := newContext(http.MethodGet, "/?q=+austen+", "", "")
		q := searchQuery{}
		err := b.Bind(&q, c)
		require.NoError(tt, err)
		assert.Equal(tt, "austen", q.Q)
		assert.Equal(tt, 10, q.Limit)
	})

	t.Run("rejects unknown query parameters", func(tt *testing.T) {
		c := newContext(http.MethodGet, "/?page=2", "", "")
		q := searchQuery{}
		err := b.Bind(&q, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "page"`)
	})
}

func newContext(method, target, payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	if mime != "" {
		req.Header.Set(echo.HeaderContentType, mime)
	}
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}
