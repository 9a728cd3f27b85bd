// Package subscriptioncancel отменяет премиум-подписку.
package subscriptioncancel

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
	Cancel(ctx context.Context, userID string) (models.SubscriptionView, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить подписку
// @Tags Payments
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 409 {object} response.ErrorResponse "Нет активного премиума"
// @Router /payment/cancel-subscription [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.subscriptioncancel"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	userID := middlewarectx.UserIDFrom(r.Context())

	view, err := h.service.Cancel(r.Context(), userID)
	if err != nil {
		log.Warn("failed to cancel subscription", slog.String("user_id", userID), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	log.Info("subscription cancelled", slog.String("user_id", userID))
	render.JSON(w, r, response.OK(map[string]any{
		"message":      "Subscription cancelled",
		"subscription": view,
	}))
}
