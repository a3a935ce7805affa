package usecase_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"marketplace/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestKind_HTTPStatus(t *testing.T) {
	cases := map[usecase.Kind]int{
		usecase.KindInvalidArgument: http.StatusBadRequest,
		usecase.KindUnauthenticated: http.StatusUnauthorized,
		usecase.KindForbidden:       http.StatusForbidden,
		usecase.KindNotFound:        http.StatusNotFound,
		usecase.KindConflict:        http.StatusConflict,
		usecase.KindInternal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus(), kind.String())
	}
}

func TestKindOf_WrappedAndPlainErrors(t *testing.T) {
	err := fmt.Errorf("wrap: %w", usecase.NewError(usecase.KindNotFound, "order not found"))
	assert.Equal(t, usecase.KindNotFound, usecase.KindOf(err))

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, "order not found", ue.Message)

	assert.Equal(t, usecase.KindInternal, usecase.KindOf(errors.New("boom")))
}
