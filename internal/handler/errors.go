package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/reservation"
)

// statusFor maps a lifecycle rejection to its HTTP status.
func statusFor(k reservation.Kind) int {
	switch k.Class() {
	case reservation.ClassConflict, reservation.ClassState:
		return http.StatusConflict
	case reservation.ClassAuthorization:
		if k == reservation.KindUnauthenticated {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}

// writeError renders err as {"error", "code"}.  Lifecycle rejections keep
// their message; anything else is logged and hidden behind a 500.
func writeError(c echo.Context, err error) error {
	var re *reservation.Error
	if errors.As(err, &re) {
		return c.JSON(statusFor(re.Kind), echo.Map{"error": re.Message, "code": re.Kind.String()})
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error", "code": "Internal"})
}

func notFound(c echo.Context, what string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found", "code": "NotFound"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "code": "BadRequest"})
}
