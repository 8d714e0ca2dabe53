package pkg

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 业务错误分类；所有service层错误都属于其中之一
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindConflict
	KindPrecondition
	KindLimitExceeded
	KindPartial
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindPrecondition:
		return "precondition"
	case KindLimitExceeded:
		return "limit_exceeded"
	case KindPartial:
		return "partial"
	}
	return "internal"
}

// AppError 携带目标实体与原因，不向外泄露存储细节
type AppError struct {
	Kind   Kind
	Entity string
	ID     uint64
	Msg    string
	Err    error
}

func (e *AppError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %s %d: %s", e.Kind, e.Entity, e.ID, e.Msg)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Entity, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *AppError) Unwrap() error { return e.Err }

func E(kind Kind, entity string, id uint64, msg string) *AppError {
	return &AppError{Kind: kind, Entity: entity, ID: id, Msg: msg}
}

func Wrap(kind Kind, entity string, id uint64, msg string, err error) *AppError {
	return &AppError{Kind: kind, Entity: entity, ID: id, Msg: msg, Err: err}
}

// KindOf 取出错误分类；非AppError一律视为internal
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus handler层统一的状态码映射
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindPrecondition:
		return http.StatusUnprocessableEntity
	case KindLimitExceeded:
		return http.StatusTooManyRequests
	case KindPartial:
		return http.StatusMultiStatus
	}
	return http.StatusInternalServerError
}
