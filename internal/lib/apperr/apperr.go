// Package apperr описывает доменные ошибки приложения.
//
// Каждая ошибка несёт вид (Kind), стабильный машинный код и сообщение для клиента.
// HTTP-слой отображает вид ошибки в статус ответа, а код отдаёт клиенту как есть.
package apperr

import (
	"errors"
	"net/http"
)

// Kind категория ошибки.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindAuth       Kind = "auth"
	KindUpstream   Kind = "upstream"
	KindInternal   Kind = "internal"
)

// Error доменная ошибка.
type Error struct {
	Kind    Kind
	Code    string // стабильный код, например "already_processed"
	Message string // сообщение для клиента
	Status  int    // явный HTTP-статус, 0 означает статус по виду ошибки
	Err     error  // исходная причина, клиенту не отдаётся
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, поэтому errors.Is работает и для обёрнутых копий.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New создаёт доменную ошибку.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// WithStatus возвращает копию ошибки с явным HTTP-статусом.
func (e *Error) WithStatus(status int) *Error {
	c := *e
	c.Status = status
	return &c
}

// Wrap возвращает копию ошибки с причиной err.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

// From достаёт доменную ошибку из цепочки.
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf возвращает вид ошибки или KindInternal для всего остального.
func KindOf(err error) Kind {
	if e, ok := From(err); ok {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus отображает ошибку в HTTP-статус.
func HTTPStatus(err error) int {
	e, ok := From(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
