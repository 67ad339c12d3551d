package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func claimsMiddleware(allowed func(Claims) bool, roles []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if allowed(claims) && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// adminMiddleware only lets administrators through, optionally holding any of roles.
func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return claimsMiddleware(func(c Claims) bool { return c.IsAdmin }, roles)
}

// staffMiddleware lets administrators and teachers through.
func staffMiddleware(roles ...string) echo.MiddlewareFunc {
	return claimsMiddleware(func(c Claims) bool { return c.IsAdmin || c.IsTeacher }, roles)
}
