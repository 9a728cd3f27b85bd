// Package paymentlist отдаёт историю платежей пользователя.
package paymentlist

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

type SubscriptionService interface {
	History(ctx context.Context, userID string) ([]models.Payment, error)
}

type Handler struct {
	log                 *slog.Logger // Логгер для записи информации и ошибок
	subscriptionService SubscriptionService
}

func New(log *slog.Logger, ss SubscriptionService) *Handler {
	return &Handler{
		log:                 log,
		subscriptionService: ss,
	}
}

// ServeHTTP godoc
// @Summary История платежей
// @Tags Payments
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /payment/payment-history [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	userID := middlewarectx.UserIDFrom(r.Context())

	payments, err := h.subscriptionService.History(r.Context(), userID)
	if err != nil {
		log.Error("failed to list payments", slog.String("user_id", userID), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	render.JSON(w, r, response.OK(map[string]any{"payments": payments}))
}
