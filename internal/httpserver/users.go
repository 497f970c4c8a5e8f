package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avdonin/shop_backend/internal/apperr"
	"github.com/avdonin/shop_backend/internal/hash"
	"github.com/avdonin/shop_backend/internal/middleware"
	"github.com/avdonin/shop_backend/internal/models"
	"github.com/avdonin/shop_backend/internal/policy"
	"github.com/avdonin/shop_backend/internal/repo"
)

type UserHandler struct {
	Repo *repo.Store
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func policyErr(err error) error {
	if errors.Is(err, apperr.ErrForbidden) {
		return echo.NewHTTPError(http.StatusForbidden, "Not enough rights")
	}
	return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
}

func (h *UserHandler) List(c echo.Context) error {
	if err := policy.Check(policy.AdminOnly, middleware.CurrentUser(c), 0); err != nil {
		return policyErr(err)
	}

	users, err := h.Repo.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := policy.Check(policy.OwnerOrAdmin, middleware.CurrentUser(c), id); err != nil {
		return policyErr(err)
	}

	user, err := h.Repo.UserByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Create is the admin-originated path: unlike registration it may produce a
// pre-confirmed account and set the admin flag directly.
func (h *UserHandler) Create(c echo.Context) error {
	if err := policy.Check(policy.AdminOnly, middleware.CurrentUser(c), 0); err != nil {
		return policyErr(err)
	}

	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		IsConfirmed bool   `json:"is_confirmed"`
		IsAdmin     bool   `json:"is_admin"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return err
	}
	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		IsConfirmed:  req.IsConfirmed,
		IsAdmin:      req.IsAdmin,
	}
	if err := h.Repo.CreateUser(c.Request().Context(), &user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Email already registered")
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	caller := middleware.CurrentUser(c)
	if err := policy.Check(policy.OwnerOrAdmin, caller, id); err != nil {
		return policyErr(err)
	}

	var patch models.UserPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	// only admins may grant or revoke the admin flag
	if patch.IsAdmin != nil && !caller.IsAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Not enough rights")
	}

	ctx := c.Request().Context()
	user, err := h.Repo.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}

	patch.Apply(user)
	if patch.Password != nil {
		pwHash, err := hash.HashPassword(*patch.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = pwHash
	}

	if err := h.Repo.SaveUser(ctx, user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := policy.Check(policy.OwnerOrAdmin, middleware.CurrentUser(c), id); err != nil {
		return policyErr(err)
	}

	ctx := c.Request().Context()
	user, err := h.Repo.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}

	if err := h.Repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
