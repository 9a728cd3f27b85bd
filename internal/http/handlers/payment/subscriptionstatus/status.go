// Package subscriptionstatus отдаёт текущее состояние подписки.
package subscriptionstatus

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
	Status(ctx context.Context, userID string) (models.SubscriptionView, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статус подписки
// @Description Просроченный премиум переводится в expired при чтении
// @Tags Payments
// @Produce  json
// @Success 200 {object} response.Response
// @Router /payment/subscription-status [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.subscriptionstatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	view, err := h.service.Status(r.Context(), middlewarectx.UserIDFrom(r.Context()))
	if err != nil {
		log.Error("failed to load subscription", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(view))
}
