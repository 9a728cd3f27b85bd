// Package ai отдаёт аффирмации и подсказки для дневника (премиум).
package ai

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mindwell/internal/http/request"
	"github.com/magabrotheeeer/mindwell/internal/http/response"
)

type Service interface {
	Enabled() bool
	Affirmation(ctx context.Context) string
	JournalPrompt(ctx context.Context, mood int) string
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Affirmation godoc
// @Summary Аффирмация дня
// @Description Без настроенного OpenAI отдаётся случайный текст из заготовок
// @Tags AI
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 403 {object} middlewarectx.PremiumRequiredResponse
// @Router /ai/affirmation [get]
// @Security BearerAuth
func (h *Handler) Affirmation(w http.ResponseWriter, r *http.Request) {
	h.log.Debug("affirmation requested",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Bool("ai_enabled", h.service.Enabled()))

	render.JSON(w, r, response.OK(map[string]any{
		"affirmation":  h.service.Affirmation(r.Context()),
		"ai_generated": h.service.Enabled(),
	}))
}

// JournalPrompt godoc
// @Summary Подсказка для записи в дневник
// @Tags AI
// @Produce  json
// @Param mood query int false "Текущее настроение 1..5"
// @Success 200 {object} response.Response
// @Failure 403 {object} middlewarectx.PremiumRequiredResponse
// @Router /ai/journal-prompt [get]
// @Security BearerAuth
func (h *Handler) JournalPrompt(w http.ResponseWriter, r *http.Request) {
	mood := request.QueryInt(r, "mood", 0)
	h.log.Debug("journal prompt requested",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("mood", mood))

	render.JSON(w, r, response.OK(map[string]any{
		"prompt":       h.service.JournalPrompt(r.Context(), mood),
		"ai_generated": h.service.Enabled(),
	}))
}
