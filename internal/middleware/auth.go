package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avdonin/shop_backend/internal/apperr"
	"github.com/avdonin/shop_backend/internal/models"
	"github.com/avdonin/shop_backend/internal/service"
)

const userContextKey = "user"

// RequireAuth resolves the bearer token into a user and stores it on the echo
// context. Ownership and admin checks stay with the handlers; this only
// answers "who is calling".
func RequireAuth(svc *service.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)

			user, err := svc.Authorize(c.Request().Context(), header)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return echo.NewHTTPError(http.StatusNotFound, "account not found")
				}
				if errors.Is(err, apperr.ErrUnauthorized) {
					return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
				}
				return err
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user RequireAuth stored, or nil outside a
// protected route.
func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}
