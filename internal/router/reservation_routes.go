package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
)

// RegisterReservations registers the guest-facing reservation endpoints.
// Booking and lookup accept anonymous callers; edits and cancellations need
// a token, and the handler enforces ownership for guests.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	open := e.Group("/v1", middleware.JWTOptional(jwtSecret))
	open.POST("/reservations", h.Create)
	open.GET("/reservations/:id", h.Get)

	authed := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	authed.PATCH("/reservations/:id", h.Update)
	authed.POST("/reservations/:id/cancel", h.Cancel)
	// Guests reach the handler so the lifecycle service can reject them
	// with its own Forbidden message.
	authed.PUT("/reservations/:id/status", h.UpdateStatus)
	authed.GET("/my-reservations", h.Mine, middleware.RequireRole(model.RoleGuest))
}
