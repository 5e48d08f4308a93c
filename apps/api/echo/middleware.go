package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// adminMiddleware guards user management and other back-office routes.
// Njia only has two flat roles, so the admin claim alone decides.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
