package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーの種類。HTTPステータスに1対1で対応する。
type Kind int

const (
	KindInvalidArgument Kind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// usecaseが返すエラー。Messageはそのままクライアントに返す。
type Error struct {
	Kind    Kind
	Message string
	// 500の原因（ログ用、クライアントには返さない）
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}

// errのKindを返す。usecaseのエラーでなければInternal。
func KindOf(err error) Kind {
	if ue, ok := AsError(err); ok {
		return ue.Kind
	}
	return KindInternal
}

func invalidArgument(message string) error {
	return &Error{Kind: KindInvalidArgument, Message: message}
}

func unauthenticated() error {
	return &Error{Kind: KindUnauthenticated, Message: "unauthorized"}
}

func forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

func notFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// ストレージ障害。呼び出し側で再試行してよい。
func internal(err error) error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}
