// Package forgotpassword реализует запрос сброса пароля. Ответ не зависит от
// того, зарегистрирован ли адрес.
package forgotpassword

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mindwell/internal/http/response"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
)

// Message отдаётся на любой корректный запрос.
const Message = "If the email exists, a password reset link has been sent"

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

type Service interface {
	RequestPasswordReset(ctx context.Context, email string) error
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Запрос сброса пароля
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email"
// @Success 200 {object} response.Response
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /auth/forgot-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword"

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
	if err := h.validate.Struct(req); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		// клиент получает тот же ответ, ошибка остаётся в логах
		log.Error("password reset request failed", sl.Err(err))
	}
	render.JSON(w, r, response.OK(map[string]string{"message": Message}))
}
