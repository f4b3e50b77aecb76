package httpserver

import (
	"net/http"

	middleware "github.com/innovativedesigner773/sharecart/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	ShareHandler *ShareHTTP
	JWTSecret    []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMW := middleware.NewSimpleAuth(d.JWTSecret)

	share := e.Group("/share")
	share.POST("", d.ShareHandler.CreateShare, authMW.OptionalAuth)
	share.GET("", d.ShareHandler.ListShares, authMW.RequireAuth)
	share.GET("/:token", d.ShareHandler.Resolve)
	share.POST("/:token/payment", d.ShareHandler.CompletePayment, authMW.RequireAuth)
	share.DELETE("/:token", d.ShareHandler.Cancel, authMW.RequireAuth)

	e.GET("/notifications", d.ShareHandler.Notifications, authMW.RequireAuth)
}
