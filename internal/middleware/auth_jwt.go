package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"marketplace/internal/domain/model"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserKey = "user" // model.User
)

// トークンからユーザーを引く約束（usecase.AccessGate）
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (model.User, error)
}

// bearerAuth用のJWT検証ミドルウェア。ユーザーはDBから引き直してcontextへ入れる。
func AuthJWT(gate Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return authenticate(c, gate, rawToken, next)
		}
	}
}

// ヘッダが無ければ匿名で通す。あるのに不正なら401。
func OptionalAuthJWT(gate Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}
			rawToken, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return authenticate(c, gate, rawToken, next)
		}
	}
}

func authenticate(c echo.Context, gate Authenticator, rawToken string, next echo.HandlerFunc) error {
	user, err := gate.Authenticate(c.Request().Context(), rawToken)
	if err != nil {
		kind := usecase.KindOf(err)
		if kind == usecase.KindInternal {
			slog.ErrorContext(c.Request().Context(), "authenticate failed",
				slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				slog.String("path", c.Path()),
				slog.Any("error", err),
			)
			return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
		}
		return c.JSON(kind.HTTPStatus(), errorJSON("unauthorized"))
	}

	//contextへ保存
	c.Set(CtxUserKey, user)
	return next(c)
}

// Bearer形式か確認してtokenを抜く
func bearerToken(c echo.Context) (string, bool) {
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return "", false
	}
	return rawToken, true
}

// AuthJWT/OptionalAuthJWTが入れたユーザー
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(CtxUserKey).(model.User)
	if !ok || u.ID == "" {
		return model.User{}, false
	}
	return u, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
