// Package verifyemail реализует подтверждение почты по одноразовому токену.
// После подтверждения пользователь сразу получает сессию.
package verifyemail

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
	"github.com/magabrotheeeer/mindwell/internal/models"
)

// Request токен из ссылки в письме.
type Request struct {
	Token string `json:"token" validate:"required"`
}

// Verifier погашает токен подтверждения.
type Verifier interface {
	ConsumeToken(ctx context.Context, plain string) (*models.User, error)
}

// SessionIssuer выпускает JWT.
type SessionIssuer interface {
	IssueSession(user *models.User) (string, error)
}

type Handler struct {
	log      *slog.Logger
	verifier Verifier
	sessions SessionIssuer
	validate *validator.Validate
}

func New(log *slog.Logger, verifier Verifier, sessions SessionIssuer) *Handler {
	return &Handler{
		log:      log,
		verifier: verifier,
		sessions: sessions,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтверждение email
// @Description Погашает токен подтверждения и выдаёт JWT.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Токен подтверждения"
// @Success 200 {object} response.Response "Почта подтверждена"
// @Failure 400 {object} response.ErrorResponse "Неверный или просроченный токен"
// @Router /auth/verify-email [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyemail"

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

	user, err := h.verifier.ConsumeToken(r.Context(), req.Token)
	if err != nil {
		log.Warn("email verification failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	token, err := h.sessions.IssueSession(user)
	if err != nil {
		log.Error("failed to issue session", slog.String("user_id", user.ID), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("email verified", slog.String("user_id", user.ID))
	render.JSON(w, r, response.OK(map[string]any{
		"message": "Email verified successfully",
		"token":   token,
		"user":    user.Profile(),
	}))
}
