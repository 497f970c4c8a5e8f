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

type CommentHandler struct {
	DB *gorm.DB
}

// commentOwner maps a detached comment (author deleted) to owner id 0, which
// only an admin can match.
func commentOwner(cm *models.Comment) uint {
	if cm.UserID == nil {
		return 0
	}
	return *cm.UserID
}

func (h *CommentHandler) List(c echo.Context) error {
	var comments []models.Comment
	if err := h.DB.WithContext(c.Request().Context()).Order("id ASC").Find(&comments).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var cm models.Comment
	if err := h.DB.WithContext(c.Request().Context()).First(&cm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *CommentHandler) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req struct {
		Rating int    `json:"rating"`
		Text   string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cm := models.Comment{
		UserID: &user.ID,
		Rating: req.Rating,
		Text:   req.Text,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&cm).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cm)
}

func (h *CommentHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var patch models.CommentPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	var cm models.Comment
	if err := h.DB.WithContext(ctx).First(&cm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return err
	}

	if err := policy.Check(policy.OwnerOrAdmin, middleware.CurrentUser(c), commentOwner(&cm)); err != nil {
		return policyErr(err)
	}

	patch.Apply(&cm)
	if err := h.DB.WithContext(ctx).Save(&cm).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *CommentHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	var cm models.Comment
	if err := h.DB.WithContext(ctx).First(&cm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return err
	}

	if err := policy.Check(policy.OwnerOrAdmin, middleware.CurrentUser(c), commentOwner(&cm)); err != nil {
		return policyErr(err)
	}

	if err := h.DB.WithContext(ctx).Delete(&cm).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cm)
}
