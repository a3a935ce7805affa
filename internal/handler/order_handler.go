package handler

import (
	"net/http"

	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderItemRequest struct {
	ProductID      string `json:"product_id"`
	Quantity       int64  `json:"quantity"`
	IsPoolPurchase bool   `json:"is_pool_purchase"`
}

type OrderCreateRequest struct {
	Items       []OrderItemRequest `json:"items"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group, authMW echo.MiddlewareFunc) {
	og := g.Group("/orders", authMW)

	og.POST("", h.create)
	og.GET("", h.list)
	og.GET("/:id", h.detail)
}

func (h *OrderHandler) create(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.OrderItemInput{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			IsPoolPurchase: it.IsPoolPurchase,
		})
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), user.ID, usecase.CreateOrderInput{
		Items:       items,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.ListOrders(c.Request().Context(), user.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetOrder(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
