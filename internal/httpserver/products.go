package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avdonin/shop_backend/internal/logging"
	"github.com/avdonin/shop_backend/internal/middleware"
	"github.com/avdonin/shop_backend/internal/models"
	"github.com/avdonin/shop_backend/internal/mykafka"
	"github.com/avdonin/shop_backend/internal/policy"
	"github.com/avdonin/shop_backend/internal/service/search"
	"github.com/avdonin/shop_backend/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Topic    string
	ES       *elasticsearch.Client
	Index    string
}

func (h *ProductHandler) publish(c echo.Context, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, h.Topic, fmt.Sprint(event["product_id"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *ProductHandler) reindex(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	if err := search.IndexProduct(c.Request().Context(), h.ES, h.Index, p); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index error", "product_id", p.ID, "error", err)
	}
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.WithContext(c.Request().Context()).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) List(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	ctx := c.Request().Context()

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return err
	}

	var items []models.Product
	if err := h.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) Create(c echo.Context) error {
	if err := policy.Check(policy.AdminOnly, middleware.CurrentUser(c), 0); err != nil {
		return policyErr(err)
	}

	var req struct {
		CategoryID  *uint   `json:"category_id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Image       string  `json:"image"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod := models.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&prod).Error; err != nil {
		return err
	}

	h.reindex(c, &prod)
	h.publish(c, map[string]interface{}{
		"type":       "product_created",
		"product_id": prod.ID,
		"name":       prod.Name,
	})

	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) Update(c echo.Context) error {
	if err := policy.Check(policy.AdminOnly, middleware.CurrentUser(c), 0); err != nil {
		return policyErr(err)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var patch models.ProductPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	var prod models.Product
	if err := h.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return err
	}

	patch.Apply(&prod)
	if err := h.DB.WithContext(ctx).Save(&prod).Error; err != nil {
		return err
	}

	h.reindex(c, &prod)
	h.publish(c, map[string]interface{}{
		"type":       "product_updated",
		"product_id": prod.ID,
		"name":       prod.Name,
	})

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	if err := policy.Check(policy.AdminOnly, middleware.CurrentUser(c), 0); err != nil {
		return policyErr(err)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.DB.WithContext(ctx).Delete(&models.Product{}, id).Error; err != nil {
		return err
	}

	if h.ES != nil {
		if err := search.DeleteProduct(ctx, h.ES, h.Index, id); err != nil {
			logging.FromContext(ctx).Error("es delete error", "product_id", id, "error", err)
		}
	}
	h.publish(c, map[string]interface{}{
		"type":       "product_deleted",
		"product_id": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) Search(c echo.Context) error {
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query error")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, products, err := search.Search(c.Request().Context(), h.ES, h.Index, q, from, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
