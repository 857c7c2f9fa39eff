package middleware

import (
	"net/http"

	"stockmed/internal/common"
	"stockmed/internal/models"

	"github.com/labstack/echo/v4"
)

// RequireCapability gates a route on a role capability. Runs after
// JWTMiddleware, which places the role in the request context.
func RequireCapability(check func(models.Role) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if !check(role) {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
