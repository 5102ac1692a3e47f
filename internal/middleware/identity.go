package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/utils"
)

// Context keys set by JWTAuth and JWTOptional.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c echo.Context) string {
	s, _ := c.Get(ctxUserID).(string)
	return s
}

// ActorRole returns the caller's role.  Requests without a valid token are
// anonymous.
func ActorRole(c echo.Context) model.Role {
	s, _ := c.Get(ctxRole).(string)
	if r := model.Role(s); r.Valid() {
		return r
	}
	return model.RoleAnonymous
}

// rateSubject identifies the caller for rate limiting.  The limiter runs
// ahead of the route-level JWT middleware, so a bearer token is read here
// directly when the context carries no identity yet.  Missing or invalid
// tokens share the "anon" subject.
func rateSubject(c echo.Context, secret string) string {
	if id := UserID(c); id != "" {
		return id
	}
	if raw, ok := bearer(c); ok && secret != "" {
		if claims, err := utils.ParseAccessToken(secret, raw); err == nil && claims.UserID != "" {
			return claims.UserID
		}
	}
	return "anon"
}
