package server

import (
	"net/http"

	"marketplace/internal/middleware"

	"github.com/labstack/echo/v4"
)

type statusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func registerRoutes(e *echo.Echo, prefix string, gate middleware.Authenticator, h Handlers) {
	api := e.Group(prefix)

	authMW := middleware.AuthJWT(gate)
	optionalAuthMW := middleware.OptionalAuthJWT(gate)

	//ヘルスチェック
	api.GET("", health)
	api.GET("/", health)

	h.Auth.RegisterRoutes(api, authMW)
	h.Cart.RegisterRoutes(api, authMW)
	h.Order.RegisterRoutes(api, authMW)
	h.Product.RegisterRoutes(api, authMW, optionalAuthMW)
	h.AdminProduct.RegisterRoutes(api, authMW)
	h.AdminOrder.RegisterRoutes(api, authMW)
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{Message: "Marketplace API", Status: "active"})
}
