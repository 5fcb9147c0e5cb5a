package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mjuric/labtrack/core"
	"github.com/mjuric/labtrack/core/course"
	"github.com/mjuric/labtrack/core/lab"
	"github.com/mjuric/labtrack/core/user"
)

var (
	errMissingToken = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed authorization header")
	errTokenExpired = echo.NewHTTPError(http.StatusUnauthorized, "Token has expired. Please log in again.")
	errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "Please log in")
	errUserNotFound = echo.NewHTTPError(http.StatusNotFound, "User not found")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpBadRequest = echo.NewHTTPError(http.StatusBadRequest, "bad request")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that translates
// every failure into a stable status category: not-found, unauthorized,
// forbidden, conflict or bad-request. signalShutdown is called to gracefully
// stop the server whenever a core shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if m := origErr.FieldMap(); m != nil {
				message = m
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch origErr {
			case user.ErrInvalidCredentials:
				code = http.StatusUnauthorized
				message = "Invalid username or password."
			case user.ErrNotFound:
				code = http.StatusNotFound
				message = "User not found"
			case course.ErrNotFound:
				code = http.StatusNotFound
				message = origErr.Error()
			case lab.ErrExerciseNotFound, lab.ErrStudentNotFound, lab.ErrPointsNotFound:
				code = http.StatusNotFound
				message = origErr.Error()
			// duplicate course codes and usernames never reach this handler:
			// the services wrap them into field-level validation errors
			case course.ErrAlreadyEnrolled, course.ErrAlreadyAssigned:
				code = http.StatusConflict
				message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var usr user.User
				if u, uErr := getContextUser(ctx); uErr == nil {
					usr = u
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
