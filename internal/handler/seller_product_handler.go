package handler

import (
	"net/http"

	"marketplace/internal/domain/model"
	"marketplace/internal/middleware"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /seller/products と /products/:id
type ProductHandler struct {
	uc *usecase.ListingUsecase
}

func NewProductHandler(uc *usecase.ListingUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(g *echo.Group, authMW, optionalAuthMW echo.MiddlewareFunc) {
	g.POST("/seller/products", h.create, authMW, middleware.RoleGuard(model.RoleSeller))
	g.GET("/seller/products", h.listOwn, authMW)
	g.GET("/seller/products/all", h.listPublic)

	g.GET("/products/:id", h.detail, optionalAuthMW)
}

func (h *ProductHandler) create(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.CreateListingInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Create(c.Request().Context(), user, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) listOwn(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.ListOwn(c.Request().Context(), user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 公開カタログ
func (h *ProductHandler) listPublic(c echo.Context) error {
	out, err := h.uc.ListPublic(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 未ログインでも見られる（approvedのみ）
func (h *ProductHandler) detail(c echo.Context) error {
	var caller *model.User
	if user, ok := currentUser(c); ok {
		caller = &user
	}

	out, err := h.uc.GetByID(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
