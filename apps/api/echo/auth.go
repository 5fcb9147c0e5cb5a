package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mjuric/labtrack/core"
	"github.com/mjuric/labtrack/core/user"
)

const (
	// bearerPrefix is matched exactly: case-sensitive, single trailing space.
	bearerPrefix   = "Bearer "
	contextUserKey = "user"
)

// authRequired extracts the bearer token, verifies it, and resolves the
// claimed subject against the user store. The resolved principal is set on
// the context; its stored role (not the token's role claim) is what the
// role policy sees, so a role change applies on the very next request.
func authRequired(svc user.ServiceInterface, conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return errMissingToken
			}

			claims, err := user.VerifyToken(header[len(bearerPrefix):], conf)
			if err != nil {
				if err == user.ErrTokenExpired {
					return errTokenExpired
				}
				return errUnauthorized
			}

			usr, err := svc.GetByUsername(ctx.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errUserNotFound
				}
				return errors.Wrap(err, "finding user by username")
			}

			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

// roleRequired gates a route on flat set membership of the principal's
// stored role. An empty allowed set means any authenticated principal.
func roleRequired(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if len(roles) == 0 || user.HasAnyRole(usr.Role, roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}
