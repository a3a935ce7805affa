package handler

import (
	"log/slog"
	"net/http"

	"marketplace/internal/domain/model"
	"marketplace/internal/middleware"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// usecaseのエラーをHTTPに変換する。500は中身を返さずログだけ残す。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ue, ok := usecase.AsError(err); ok && ue.Kind != usecase.KindInternal {
		return c.JSON(ue.Kind.HTTPStatus(), ErrorResponse{Error: ue.Message})
	}

	//500
	slog.ErrorContext(c.Request().Context(), "internal error",
		slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		slog.String("path", c.Path()),
		slog.Any("error", err),
	)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func currentUser(c echo.Context) (model.User, bool) {
	return middleware.CurrentUser(c)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
}
