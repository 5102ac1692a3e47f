package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
)

// RegisterEmployee registers staff endpoints.  The listing is served
// through the response cache, which reservation writes purge.
func RegisterEmployee(e *echo.Echo, h *handler.ReservationHandler, cache *middleware.ResponseCache, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleEmployee),
	)
	g.GET("/reservations", h.List, cache.Middleware())
}
