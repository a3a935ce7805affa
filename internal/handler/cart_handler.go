package handler

import (
	"net/http"

	"marketplace/internal/domain/model"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID      string `json:"product_id"`
	Quantity       int64  `json:"quantity"`
	IsPoolPurchase bool   `json:"is_pool_purchase"`
}

type CartMutationResponse struct {
	Message string     `json:"message"`
	Cart    model.Cart `json:"cart"`
}

// /cart 以下を登録（全部ログイン必須）
func (h *CartHandler) RegisterRoutes(g *echo.Group, authMW echo.MiddlewareFunc) {
	cg := g.Group("/cart", authMW)

	cg.GET("", h.getCart)
	cg.POST("/add", h.addItem)
	cg.DELETE("/remove/:productId", h.removeItem)
	cg.DELETE("/clear", h.clear)
}

func (h *CartHandler) getCart(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetCart(c.Request().Context(), user.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddItem(c.Request().Context(), user.ID, usecase.AddCartInput{
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		IsPoolPurchase: req.IsPoolPurchase,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CartMutationResponse{Message: "Item added to cart", Cart: out})
}

func (h *CartHandler) removeItem(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), user.ID, c.Param("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CartMutationResponse{Message: "Item removed from cart", Cart: out})
}

func (h *CartHandler) clear(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Clear(c.Request().Context(), user.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CartMutationResponse{Message: "Cart cleared", Cart: out})
}
