package handler

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 出品審査（管理者）
type AdminProductHandler struct {
	uc *usecase.ListingUsecase
}

func NewAdminProductHandler(uc *usecase.ListingUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(g *echo.Group, authMW echo.MiddlewareFunc) {
	admin := g.Group("/admin/products", authMW, middleware.AdminRoleGuard())

	admin.GET("/all", h.listAll)
	admin.GET("/pending", h.listPending)
	admin.POST("/approve/:id", h.approve)
	admin.POST("/reject/:id", h.reject)
}

func (h *AdminProductHandler) listAll(c echo.Context) error {
	out, err := h.uc.ListAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) listPending(c echo.Context) error {
	out, err := h.uc.ListPending(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) approve(c echo.Context) error {
	admin, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Approve(c.Request().Context(), admin, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) reject(c echo.Context) error {
	admin, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Reject(c.Request().Context(), admin, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
