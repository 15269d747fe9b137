package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	authmw "github.com/stockroom-app/stockroom/internal/middleware/auth"
	"github.com/stockroom-app/stockroom/internal/models"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	ProductHandler *ProductHTTP
	OrderHandler   *OrderHTTP
	SearchHandler  *SearchHTTP
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMW := authmw.Middleware(d.JWTSecret)
	adminMW := authmw.RequireRole(models.RoleAdmin)

	api := e.Group("/api/v1")

	api.POST("/auth/signup", d.AuthHandler.Signup)
	api.POST("/auth/login", d.AuthHandler.Login)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.ListProducts)
	products.GET("/search", d.SearchHandler.SearchProducts)
	products.GET("/availability", d.ProductHandler.CheckAvailability)
	products.GET("/:id", d.ProductHandler.GetProduct)

	admin := products.Group("", authMW, adminMW)
	admin.POST("", d.ProductHandler.CreateProduct)
	admin.PATCH("/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/:id", d.ProductHandler.DeleteProduct)

	orders := api.Group("/orders", authMW)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("/:id/cancel", d.OrderHandler.CancelOrder)
}
