// Package request содержит разбор входных данных HTTP-запросов, общий для обработчиков.
package request

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mindwell/internal/http/response"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
)

// DecodeJSON читает тело запроса в dst. При ошибке пишет ответ 400 и
// возвращает false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, log *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return false
	}
	return true
}

// QueryInt возвращает целый параметр строки запроса или def, если параметр
// отсутствует или не число.
func QueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// PathID разбирает числовой параметр пути chi. При ошибке пишет ответ 400
// и возвращает false.
func PathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ErrorWithCode("invalid "+name, "invalid_id"))
		return 0, false
	}
	return id, true
}
