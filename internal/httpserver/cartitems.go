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

type CartItemHandler struct {
	DB *gorm.DB
}

func (h *CartItemHandler) List(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var items []models.CartItem
	if err := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ?", user.ID).Order("id ASC").Find(&items).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartItemHandler) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item := models.CartItem{
		UserID:    user.ID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&item).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *CartItemHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var patch models.CartItemPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	var item models.CartItem
	if err := h.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Cart item not found")
		}
		return err
	}

	if err := policy.Check(policy.OwnerOrAdmin, middleware.CurrentUser(c), item.UserID); err != nil {
		return policyErr(err)
	}

	patch.Apply(&item)
	if err := h.DB.WithContext(ctx).Save(&item).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartItemHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	var item models.CartItem
	if err := h.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Cart item not found")
		}
		return err
	}

	if err := policy.Check(policy.OwnerOrAdmin, middleware.CurrentUser(c), item.UserID); err != nil {
		return policyErr(err)
	}

	if err := h.DB.WithContext(ctx).Delete(&item).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}
