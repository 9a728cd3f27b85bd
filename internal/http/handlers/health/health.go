// Package health отдаёт состояние сервиса и доступность базы данных.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mindwell/internal/http/response"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
)

// pingTimeout ограничивает проверку базы, чтобы health не зависал.
const pingTimeout = 2 * time.Second

// Pinger проверяет соединение с базой.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	log *slog.Logger
	db  Pinger
}

func New(log *slog.Logger, db Pinger) *Handler {
	return &Handler{
		log: log,
		db:  db,
	}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Service
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	database := "connected"
	status := "healthy"
	if err := h.db.PingContext(ctx); err != nil {
		h.log.Error("database ping failed", slog.String("op", op), sl.Err(err))
		database = "disconnected"
		status = "degraded"
		render.Status(r, http.StatusServiceUnavailable)
	}

	render.JSON(w, r, response.OK(map[string]any{
		"status":    status,
		"database":  database,
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}))
}
