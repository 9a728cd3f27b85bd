// Package paymentverify подтверждает оплату после возврата пользователя со
// страницы шлюза и активирует премиум.
package paymentverify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mindwell/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mindwell/internal/http/response"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/models"
)

// Request reference транзакции из callback шлюза.
type Request struct {
	Reference string `json:"reference"`
}

// Service определяет интерфейс подтверждения оплаты.
type Service interface {
	Verify(ctx context.Context, reference, userID string) (models.SubscriptionView, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подтвердить оплату
// @Description Проверяет транзакцию в шлюзе и продлевает премиум на 30 дней
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body Request true "Reference транзакции"
// @Success 200 {object} response.Response "Премиум активирован"
// @Failure 400 {object} response.ErrorResponse "Нет reference"
// @Failure 402 {object} response.ErrorResponse "Оплата не подтверждена"
// @Failure 409 {object} response.ErrorResponse "Оплата уже обработана"
// @Failure 502 {object} response.ErrorResponse "Шлюз недоступен"
// @Router /payment/verify-payment [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	userID := middlewarectx.UserIDFrom(r.Context())
	reference := strings.TrimSpace(req.Reference)
	log = log.With(slog.String("user_id", userID), slog.String("reference", reference))

	view, err := h.service.Verify(r.Context(), reference, userID)
	if err != nil {
		log.Error("payment verification failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("payment verified")
	render.JSON(w, r, response.OK(map[string]any{
		"message":      "Payment verified successfully! Welcome to Premium!",
		"subscription": view,
	}))
}
