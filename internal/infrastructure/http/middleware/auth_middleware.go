package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/meetsync-team/meetsync/errors"
	"github.com/meetsync-team/meetsync/pkg/jwt"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// UserIDContextKey is the echo context key for the authenticated user id
	UserIDContextKey = "auth_user_id"
	// UserRoleContextKey is the echo context key for the authenticated role
	UserRoleContextKey = "auth_user_role"
)

// EchoAuth returns an echo middleware that validates the bearer token on
// admin routes and stores the caller's identity in the request context
func EchoAuth(manager *jwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearer(c)
			if token == "" {
				appErr := apperrors.ErrUnauthenticated()
				return c.JSON(appErr.HTTPCode, map[string]interface{}{
					"code":    appErr.Code,
					"message": appErr.Message,
				})
			}

			claims, err := manager.ValidateAccessToken(token)
			if err != nil {
				appErr := apperrors.ErrUnauthenticated()
				return c.JSON(appErr.HTTPCode, map[string]interface{}{
					"code":    appErr.Code,
					"message": appErr.Message,
				})
			}

			c.Set(UserIDContextKey, claims.UserID)
			c.Set(UserRoleContextKey, claims.Role)
			return next(c)
		}
	}
}

// extractBearer pulls the token out of the Authorization header
func extractBearer(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
