// Package paymentwebhook принимает вебхуки платёжного шлюза.
//
// Подпись проверяется по сырому телу, поэтому тело читается целиком до
// любого разбора. Кроме ошибок подписи, шлюз всегда получает 200: повторная
// доставка не исправит ни неизвестного пользователя, ни ошибку хранилища,
// такие случаи разбираются вручную.
package paymentwebhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mindwell/internal/http/response"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/services/payment"
)

// SignatureHeader заголовок с HMAC-SHA512 подписью тела.
const SignatureHeader = "X-Paystack-Signature"

// maxBodyBytes ограничивает размер тела вебхука.
const maxBodyBytes = 1 << 20

// Service обрабатывает проверенный вебхук.
type Service interface {
	HandleWebhook(ctx context.Context, rawBody []byte, signature string) (payment.WebhookOutcome, error)
}

type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Вебхук платёжного шлюза
// @Description Принимает события charge.success. Отвечает 401 при отсутствующей или неверной подписи, иначе 200.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param X-Paystack-Signature header string true "HMAC-SHA512 подпись тела"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Тело не читается"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Router /payment/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read request body"))
		return
	}
	defer r.Body.Close()

	outcome, err := h.service.HandleWebhook(r.Context(), body, r.Header.Get(SignatureHeader))
	if err != nil {
		if isSignatureError(err) {
			log.Warn("webhook rejected", sl.Err(err))
			response.RenderError(w, r, err)
			return
		}
		// любая другая ошибка не должна вызывать повторную доставку
		log.Error("unexpected webhook error", sl.Err(err))
		outcome = payment.OutcomeFailed
	}

	log.Info("webhook acknowledged", slog.String("outcome", string(outcome)))
	render.JSON(w, r, response.OK(map[string]string{"outcome": string(outcome)}))
}

func isSignatureError(err error) bool {
	return errors.Is(err, payment.ErrMissingSignature) || errors.Is(err, payment.ErrInvalidSignature)
}
