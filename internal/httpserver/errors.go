package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the last-resort catch: anything a handler did not map to a
// specific status becomes a generic 500 carrying the error's string detail.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, echo.Map{"detail": he.Message})
		return
	}
	_ = c.JSON(http.StatusInternalServerError, echo.Map{"detail": err.Error()})
}
