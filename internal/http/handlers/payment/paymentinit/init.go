// Package paymentinit создаёт транзакцию в платёжном шлюзе и отдаёт ссылку на оплату.
package paymentinit

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mindwell/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mindwell/internal/http/response"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/paymentprovider"
)

// Service определяет интерфейс для создания платежа.
type Service interface {
	Initialize(ctx context.Context, userID string) (*paymentprovider.InitializeData, error)
}

// Handler обрабатывает запросы на создание платежа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Начать оплату премиума
// @Description Создаёт транзакцию на один месяц премиума и возвращает ссылку на страницу оплаты
// @Tags Payments
// @Produce  json
// @Success 200 {object} response.Response "Ссылка на оплату"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 502 {object} response.ErrorResponse "Шлюз недоступен"
// @Router /payment/initialize [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.initialize"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	userID := middlewarectx.UserIDFrom(r.Context())

	data, err := h.service.Initialize(r.Context(), userID)
	if err != nil {
		log.Error("failed to initialize payment", slog.String("user_id", userID), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("payment initialized", slog.String("user_id", userID), slog.String("reference", data.Reference))
	render.JSON(w, r, response.OK(data))
}
