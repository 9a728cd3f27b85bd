// Package profile отдаёт профиль текущего пользователя.
package profile

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
	Profile(ctx context.Context, userID string) (*models.User, error)
}

// PremiumChecker применяет ленивое истечение, чтобы профиль показывал актуальный статус.
type PremiumChecker interface {
	Evaluate(ctx context.Context, user *models.User) (bool, string)
}

type Handler struct {
	log     *slog.Logger
	service Service
	sub     PremiumChecker
}

func New(log *slog.Logger, service Service, sub PremiumChecker) *Handler {
	return &Handler{log: log, service: service, sub: sub}
}

// ServeHTTP godoc
// @Summary Профиль пользователя
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /auth/profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, err := h.service.Profile(r.Context(), middlewarectx.UserIDFrom(r.Context()))
	if err != nil {
		log.Error("failed to load profile", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	premium, _ := h.sub.Evaluate(r.Context(), user)

	render.JSON(w, r, response.OK(map[string]any{
		"user":       user.Profile(),
		"is_premium": premium,
	}))
}
