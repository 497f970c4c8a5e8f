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

type OrderHandler struct {
	DB *gorm.DB
}

func (h *OrderHandler) List(c echo.Context) error {
	user := middleware.CurrentUser(c)

	q := h.DB.WithContext(c.Request().Context()).Order("id ASC")
	if !user.IsAdmin {
		q = q.Where("user_id = ?", user.ID)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var order models.Order
	if err := h.DB.WithContext(c.Request().Context()).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Order not found")
		}
		return err
	}

	if err := policy.Check(policy.OwnerOrAdmin, middleware.CurrentUser(c), order.UserID); err != nil {
		return policyErr(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req struct {
		ProductID *uint  `json:"product_id"`
		Quantity  uint   `json:"quantity"`
		Status    string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Status == "" {
		req.Status = "created"
	}

	order := models.Order{
		UserID:    user.ID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Status:    req.Status,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&order).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var patch models.OrderPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	var order models.Order
	if err := h.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Order not found")
		}
		return err
	}

	if err := policy.Check(policy.OwnerOrAdmin, middleware.CurrentUser(c), order.UserID); err != nil {
		return policyErr(err)
	}

	patch.Apply(&order)
	if err := h.DB.WithContext(ctx).Save(&order).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	var order models.Order
	if err := h.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Order not found")
		}
		return err
	}

	if err := policy.Check(policy.OwnerOrAdmin, middleware.CurrentUser(c), order.UserID); err != nil {
		return policyErr(err)
	}

	if err := h.DB.WithContext(ctx).Delete(&order).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}
