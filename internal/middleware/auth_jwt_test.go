package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/internal/domain/model"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Authenticator モック
// =====================

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, rawToken string) (model.User, error) {
	args := m.Called(ctx, rawToken)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func okHandler(c echo.Context) error {
	u, ok := CurrentUser(c)
	if !ok {
		return c.String(http.StatusOK, "anonymous")
	}
	return c.String(http.StatusOK, u.ID+":"+string(u.Role))
}

func serve(mw []echo.MiddlewareFunc, authz string) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/x", okHandler, mw...)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWT_Success(t *testing.T) {
	gate := new(mockAuthenticator)
	gate.On("Authenticate", mock.Anything, "good").Return(model.User{ID: "u1", Role: model.RoleBuyer}, nil)

	rec := serve([]echo.MiddlewareFunc{AuthJWT(gate)}, "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1:buyer", rec.Body.String())
}

func TestAuthJWT_MissingOrMalformedHeader(t *testing.T) {
	gate := new(mockAuthenticator)

	for _, h := range []string{"", "Basic abc", "Bearer", "Bearer   "} {
		rec := serve([]echo.MiddlewareFunc{AuthJWT(gate)}, h)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, h)
		assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
	}
	gate.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

func TestAuthJWT_RejectedToken(t *testing.T) {
	gate := new(mockAuthenticator)
	gate.On("Authenticate", mock.Anything, "bad").
		Return(model.User{}, usecase.NewError(usecase.KindUnauthenticated, "unauthorized"))

	rec := serve([]echo.MiddlewareFunc{AuthJWT(gate)}, "bearer bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_StoreFailureIs500(t *testing.T) {
	gate := new(mockAuthenticator)
	gate.On("Authenticate", mock.Anything, "tok").Return(model.User{}, errors.New("db down"))

	rec := serve([]echo.MiddlewareFunc{AuthJWT(gate)}, "Bearer tok")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// 500はslogにrequest_id付きで出る
func TestAuthJWT_StoreFailureLoggedWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	gate := new(mockAuthenticator)
	gate.On("Authenticate", mock.Anything, "tok").Return(model.User{}, errors.New("db down"))

	e := echo.New()
	e.Use(echomw.RequestID())
	e.GET("/x", okHandler, AuthJWT(gate))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok")
	req.Header.Set(echo.HeaderXRequestID, "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), `"error":"db down"`)
}

func TestOptionalAuthJWT(t *testing.T) {
	gate := new(mockAuthenticator)
	gate.On("Authenticate", mock.Anything, "good").Return(model.User{ID: "u1", Role: model.RoleSeller}, nil)
	gate.On("Authenticate", mock.Anything, "bad").
		Return(model.User{}, usecase.NewError(usecase.KindUnauthenticated, "unauthorized"))

	mw := []echo.MiddlewareFunc{OptionalAuthJWT(gate)}

	rec := serve(mw, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = serve(mw, "Bearer good")
	assert.Equal(t, "u1:seller", rec.Body.String())

	// 壊れたトークンは匿名扱いにしない
	rec = serve(mw, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGuard(t *testing.T) {
	gate := new(mockAuthenticator)
	gate.On("Authenticate", mock.Anything, "buyer").Return(model.User{ID: "u1", Role: model.RoleBuyer}, nil)
	gate.On("Authenticate", mock.Anything, "admin").Return(model.User{ID: "u2", Role: model.RoleAdmin}, nil)

	mw := []echo.MiddlewareFunc{AuthJWT(gate), AdminRoleGuard()}

	rec := serve(mw, "Bearer buyer")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())

	rec = serve(mw, "Bearer admin")
	assert.Equal(t, http.StatusOK, rec.Code)

	// AuthJWTなしでは401
	rec = serve([]echo.MiddlewareFunc{RoleGuard(model.RoleSeller)}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
