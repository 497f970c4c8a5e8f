package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avdonin/shop_backend/internal/middleware"
	"github.com/avdonin/shop_backend/internal/models"
	"github.com/avdonin/shop_backend/internal/policy"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func (h *CategoryHandler) List(c echo.Context) error {
	var cats []models.Category
	if err := h.DB.WithContext(c.Request().Context()).Order("id ASC").Find(&cats).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var cat models.Category
	if err := h.DB.WithContext(c.Request().Context()).First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Create(c echo.Context) error {
	if err := policy.Check(policy.AdminOnly, middleware.CurrentUser(c), 0); err != nil {
		return policyErr(err)
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cat := models.Category{Name: req.Name}
	if err := h.DB.WithContext(c.Request().Context()).Create(&cat).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) Update(c echo.Context) error {
	if err := policy.Check(policy.AdminOnly, middleware.CurrentUser(c), 0); err != nil {
		return policyErr(err)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var patch models.CategoryPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	var cat models.Category
	if err := h.DB.WithContext(ctx).First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		return err
	}

	patch.Apply(&cat)
	if err := h.DB.WithContext(ctx).Save(&cat).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	if err := policy.Check(policy.AdminOnly, middleware.CurrentUser(c), 0); err != nil {
		return policyErr(err)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.DB.WithContext(c.Request().Context()).Delete(&models.Category{}, id).Error; err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
