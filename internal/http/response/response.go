// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mindwell/internal/lib/apperr"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Code — машинный код ошибки (опционально, при неуспехе).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
	Code   string `json:"code,omitempty" example:"validation_failed"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// CodeValidationFailed — код ответа при ошибке валидации тела запроса.
const CodeValidationFailed = "validation_failed"

// internalMessage отдаётся клиенту вместо текста неизвестных ошибок.
const internalMessage = "internal server error"

// OK возвращает успешный Response с переданными данными.
func OK(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ErrorWithCode возвращает Response с ошибкой, сообщением и кодом.
func ErrorWithCode(msg, code string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
		Code:   code,
	}
}

// FromError строит ответ и HTTP-статус по ошибке. Доменные ошибки отдают
// своё сообщение и код, остальные скрываются за "internal server error".
func FromError(err error) (int, Response) {
	e, ok := apperr.From(err)
	if !ok || e.Kind == apperr.KindInternal {
		return http.StatusInternalServerError, Error(internalMessage)
	}
	return apperr.HTTPStatus(err), ErrorWithCode(e.Message, e.Code)
}

// RenderError пишет ответ с ошибкой err.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := FromError(err)
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "alphanum":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers and letters", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
		Code:   CodeValidationFailed,
	}
}

// RenderValidation пишет ответ 400 для ошибки валидатора. Ошибки другого
// типа (например, неверный тег) считаются внутренними.
func RenderValidation(w http.ResponseWriter, r *http.Request, err error) {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Error(internalMessage))
		return
	}
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ValidationError(verrs))
}
