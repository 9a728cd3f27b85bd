// Package dashboard отдаёт сводку главного экрана.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mindwell/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mindwell/internal/http/response"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/models"
)

type Service interface {
	Summary(ctx context.Context, userID string, premium bool) (models.DashboardSummary, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сводка дашборда
// @Description Тренд настроения, последние записи, прогресс привычек. Кэшируется на минуту.
// @Tags Dashboard
// @Produce  json
// @Success 200 {object} response.Response
// @Router /dashboard/summary [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.summary"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	summary, err := h.service.Summary(r.Context(), middlewarectx.UserIDFrom(r.Context()), middlewarectx.PremiumFrom(r.Context()))
	if err != nil {
		log.Error("failed to build dashboard", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(summary))
}
