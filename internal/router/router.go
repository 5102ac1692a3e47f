// Package router registers the HTTP routes of the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
)

// RegisterRoutes registers the unauthenticated health checks and, when
// staticDir is set, the static front end at /.
func RegisterRoutes(e *echo.Echo, staticDir string) {
	e.GET("/healthz", handler.Health)
	e.GET("/health", handler.Health)
	if staticDir != "" {
		e.Static("/", staticDir)
	}
}

// RegisterAuth registers /v1/auth.  Register and login are open; /me needs
// a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}
