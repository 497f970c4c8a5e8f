package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avdonin/shop_backend/internal/middleware"
	"github.com/avdonin/shop_backend/internal/service"
)

type Deps struct {
	Session *service.SessionService

	AuthHandler     *AuthHandler
	UserHandler     *UserHandler
	ProductHandler  *ProductHandler
	CategoryHandler *CategoryHandler
	OrderHandler    *OrderHandler
	CartItemHandler *CartItemHandler
	CommentHandler  *CommentHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.GET("/confirm/:token", d.AuthHandler.Confirm)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.POST("/refresh", d.AuthHandler.Refresh)

	requireAuth := middleware.RequireAuth(d.Session)

	users := api.Group("/users", requireAuth)
	users.GET("", d.UserHandler.List)
	users.GET("/:id", d.UserHandler.Get)
	users.POST("", d.UserHandler.Create)
	users.PUT("/:id", d.UserHandler.Update)
	users.DELETE("/:id", d.UserHandler.Delete)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.List)
	products.GET("/search", d.ProductHandler.Search)
	products.GET("/:id", d.ProductHandler.Get)
	products.POST("", d.ProductHandler.Create, requireAuth)
	products.PUT("/:id", d.ProductHandler.Update, requireAuth)
	products.DELETE("/:id", d.ProductHandler.Delete, requireAuth)

	categories := api.Group("/categories")
	categories.GET("", d.CategoryHandler.List)
	categories.GET("/:id", d.CategoryHandler.Get)
	categories.POST("", d.CategoryHandler.Create, requireAuth)
	categories.PUT("/:id", d.CategoryHandler.Update, requireAuth)
	categories.DELETE("/:id", d.CategoryHandler.Delete, requireAuth)

	orders := api.Group("/orders", requireAuth)
	orders.GET("", d.OrderHandler.List)
	orders.GET("/:id", d.OrderHandler.Get)
	orders.POST("", d.OrderHandler.Create)
	orders.PUT("/:id", d.OrderHandler.Update)
	orders.DELETE("/:id", d.OrderHandler.Delete)

	cart := api.Group("/cart_items", requireAuth)
	cart.GET("", d.CartItemHandler.List)
	cart.POST("", d.CartItemHandler.Create)
	cart.PUT("/:id", d.CartItemHandler.Update)
	cart.DELETE("/:id", d.CartItemHandler.Delete)

	comments := api.Group("/comments")
	comments.GET("", d.CommentHandler.List)
	comments.GET("/:id", d.CommentHandler.Get)
	comments.POST("", d.CommentHandler.Create, requireAuth)
	comments.PUT("/:id", d.CommentHandler.Update, requireAuth)
	comments.DELETE("/:id", d.CommentHandler.Delete, requireAuth)
}
