package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	authmw "github.com/stockroom-app/stockroom/internal/middleware/auth"
	"github.com/stockroom-app/stockroom/internal/service"
)

const friendlyInternalError = "Unable to process your request at the moment, please try again later!"

func callerID(c echo.Context) (uuid.UUID, error) {
	v, _ := c.Get(authmw.CtxUserID).(string)
	if v == "" {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}
	return id, nil
}

func callerRole(c echo.Context) string {
	role, _ := c.Get(authmw.CtxRole).(string)
	return role
}

// serviceError maps the service sentinels onto HTTP status codes. Validation
// text is user-facing; anything unexpected turns into the generic message so
// internals never leak to the caller.
func serviceError(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", userMessage(err))
		return echo.NewHTTPError(http.StatusBadRequest, userMessage(err))
	case errors.Is(err, service.ErrUnauthorized):
		l.Warn(event, "status", 401, "reason", userMessage(err))
		return echo.NewHTTPError(http.StatusUnauthorized, userMessage(err))
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", 403, "reason", userMessage(err))
		return echo.NewHTTPError(http.StatusForbidden, userMessage(err))
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", userMessage(err))
		return echo.NewHTTPError(http.StatusNotFound, userMessage(err))
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", userMessage(err))
		return echo.NewHTTPError(http.StatusConflict, userMessage(err))
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, friendlyInternalError)
	}
}

// userMessage strips the sentinel prefix, leaving the text written for the
// caller: "validation: Insufficient stock: ..." -> "Insufficient stock: ...".
func userMessage(err error) string {
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, ": "); ok {
		return rest
	}
	return msg
}
