package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/innovativedesigner773/sharecart/pkg/tokens"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func runWith(t *testing.T, mw echo.MiddlewareFunc, decorate func(*http.Request)) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/share", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, c, handler(c)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	t.Parallel()

	m := NewSimpleAuth(testSecret)
	_, _, err := runWith(t, m.RequireAuth, nil)

	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAuth_BearerToken(t *testing.T) {
	t.Parallel()

	m := NewSimpleAuth(testSecret)
	userID := uuid.NewString()

	tok, err := tokens.NewAccessToken(userID, "user", testSecret, time.Now().Add(15*time.Minute).UTC())
	require.NoError(t, err)

	rec, c, err := runWith(t, m.RequireAuth, func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, c.Get("user_id"))
	assert.Equal(t, "user", c.Get("role"))
}

func TestRequireAuth_CookieToken(t *testing.T) {
	t.Parallel()

	m := NewSimpleAuth(testSecret)
	userID := uuid.NewString()

	tok, err := tokens.NewAccessToken(userID, "user", testSecret, time.Now().Add(15*time.Minute).UTC())
	require.NoError(t, err)

	rec, c, err := runWith(t, m.RequireAuth, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: tok})
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, c.Get("user_id"))
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	t.Parallel()

	m := NewSimpleAuth(testSecret)

	tok, err := tokens.NewAccessToken(uuid.NewString(), "user", testSecret, time.Now().Add(-time.Minute).UTC())
	require.NoError(t, err)

	_, _, err = runWith(t, m.RequireAuth, func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	})
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	t.Parallel()

	m := NewSimpleAuth(testSecret)

	tok, err := tokens.NewAccessToken(uuid.NewString(), "user", []byte("other-secret"), time.Now().Add(15*time.Minute).UTC())
	require.NoError(t, err)

	_, _, err = runWith(t, m.RequireAuth, func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	})
	require.Error(t, err)
}

func TestOptionalAuth_PassesThroughAnonymous(t *testing.T) {
	t.Parallel()

	m := NewSimpleAuth(testSecret)

	rec, c, err := runWith(t, m.OptionalAuth, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, c.Get("user_id"))
}

func TestOptionalAuth_AttachesIdentityWhenPresent(t *testing.T) {
	t.Parallel()

	m := NewSimpleAuth(testSecret)
	userID := uuid.NewString()

	tok, err := tokens.NewAccessToken(userID, "user", testSecret, time.Now().Add(15*time.Minute).UTC())
	require.NoError(t, err)

	_, c, err := runWith(t, m.OptionalAuth, func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	})
	require.NoError(t, err)
	assert.Equal(t, userID, c.Get("user_id"))
}
