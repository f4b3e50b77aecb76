package middleware

import (
	"net/http"
	"strings"

	"github.com/innovativedesigner773/sharecart/pkg/tokens"
	"github.com/labstack/echo/v4"
)

type SimpleAuth struct {
	JWTSecret []byte
}

func NewSimpleAuth(secret []byte) *SimpleAuth {
	return &SimpleAuth{JWTSecret: secret}
}

func (m *SimpleAuth) claimsFrom(c echo.Context) (*tokens.AccessClaims, error) {
	raw := ""
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		raw = strings.TrimPrefix(h, "Bearer ")
	} else if cookie, err := c.Cookie("accessToken"); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
	if err != nil || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func (m *SimpleAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.claimsFrom(c)
		if err != nil {
			return err
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)

		return next(c)
	}
}

// OptionalAuth attaches the user identity when a valid token is present and
// lets the request through either way. Guests create shares identified by a
// session reference instead.
func (m *SimpleAuth) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if claims, err := m.claimsFrom(c); err == nil {
			c.Set("user_id", claims.Subject)
			c.Set("role", claims.Role)
		}
		return next(c)
	}
}
