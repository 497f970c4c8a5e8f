package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avdonin/shop_backend/internal/apperr"
	"github.com/avdonin/shop_backend/internal/logging"
	"github.com/avdonin/shop_backend/internal/mykafka"
	"github.com/avdonin/shop_backend/internal/service"
)

type AuthHandler struct {
	Svc         *service.SessionService
	Producer    *mykafka.Producer
	EventsTopic string
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, h.EventsTopic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if _, err := h.Svc.Register(ctx, req.Username, req.Email, req.Password); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Email already registered")
		}
		l.Error("register failed", "error", err)
		return err
	}

	h.publish(c, req.Email, map[string]interface{}{
		"type":     "user_registered",
		"username": req.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{"msg": "The letter has been sent"})
}

func (h *AuthHandler) Confirm(c echo.Context) error {
	ctx := c.Request().Context()

	res, err := h.Svc.Confirm(ctx, c.Param("token"))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidToken):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid confirm token")
		case errors.Is(err, apperr.ErrExpired):
			return echo.NewHTTPError(http.StatusBadRequest, "Token already expired")
		case errors.Is(err, apperr.ErrNotFound):
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		}
		return err
	}

	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
		}
		l.Error("login failed", "error", err)
		return err
	}

	h.publish(c, req.Email, map[string]interface{}{
		"type": "user_logged_in",
	})

	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Logout(ctx, req.Token); err != nil {
		switch {
		case errors.Is(err, apperr.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		case errors.Is(err, apperr.ErrExpired):
			return echo.NewHTTPError(http.StatusUnauthorized, "Token already expired")
		case errors.Is(err, apperr.ErrAlreadyRevoked):
			return echo.NewHTTPError(http.StatusBadRequest, "Token already revoked")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "Successful logout"})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Refresh(ctx, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		case errors.Is(err, apperr.ErrExpired):
			return echo.NewHTTPError(http.StatusUnauthorized, "Token already expired")
		case errors.Is(err, apperr.ErrAlreadyRevoked):
			return echo.NewHTTPError(http.StatusBadRequest, "Token already revoked")
		}
		return err
	}

	return c.JSON(http.StatusOK, res)
}
