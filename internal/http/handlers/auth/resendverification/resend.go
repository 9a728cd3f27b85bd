// Package resendverification реализует повторную отправку письма подтверждения.
package resendverification

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

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

type Service interface {
	Resend(ctx context.Context, email string) error
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
// @Summary Повторная отправка письма подтверждения
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 409 {object} response.ErrorResponse "Почта уже подтверждена"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /auth/resend-verification [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resendverification"

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

	if err := h.service.Resend(r.Context(), req.Email); err != nil {
		log.Warn("resend verification failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(map[string]string{
		"message": "Verification email sent",
	}))
}
