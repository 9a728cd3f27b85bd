// Package mood содержит обработчики дневника настроения.
package mood

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mindwell/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mindwell/internal/http/request"
	"github.com/magabrotheeeer/mindwell/internal/http/response"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/models"
	"github.com/magabrotheeeer/mindwell/internal/services/wellness"
)

// LogRequest отметка настроения.
type LogRequest struct {
	Mood  int    `json:"mood" validate:"required,min=1,max=5"`
	Notes string `json:"notes" validate:"max=2000"`
}

type Service interface {
	Log(ctx context.Context, userID string, mood int, notes string) (models.Mood, error)
	History(ctx context.Context, userID string, days int, premium bool) ([]models.Mood, int, error)
	Stats(ctx context.Context, userID string, days int) (models.MoodStats, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Log godoc
// @Summary Отметить настроение
// @Tags Mood
// @Accept  json
// @Produce  json
// @Param request body LogRequest true "Оценка 1..5 и заметка"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /mood/log [post]
// @Security BearerAuth
func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.mood.log")

	var req LogRequest
	if !request.DecodeJSON(w, r, log, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	m, err := h.service.Log(r.Context(), middlewarectx.UserIDFrom(r.Context()), req.Mood, req.Notes)
	if err != nil {
		log.Error("failed to log mood", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK(m))
}

// History godoc
// @Summary История настроения
// @Description Бесплатный тариф видит до 30 дней, премиум до 365
// @Tags Mood
// @Produce  json
// @Param days query int false "Глубина в днях" default(7)
// @Success 200 {object} response.Response
// @Router /mood/history [get]
// @Security BearerAuth
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.mood.history")
	premium := middlewarectx.PremiumFrom(r.Context())

	days := request.QueryInt(r, "days", wellness.DefaultHistoryDays)
	moods, effective, err := h.service.History(r.Context(), middlewarectx.UserIDFrom(r.Context()), days, premium)
	if err != nil {
		log.Error("failed to load mood history", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if moods == nil {
		moods = []models.Mood{}
	}
	render.JSON(w, r, response.OK(map[string]any{
		"moods":       moods,
		"period_days": effective,
		"is_premium":  premium,
	}))
}

// Stats godoc
// @Summary Статистика настроения
// @Tags Mood
// @Produce  json
// @Param days query int false "Период в днях" default(30)
// @Success 200 {object} response.Response
// @Failure 403 {object} middlewarectx.PremiumRequiredResponse
// @Router /mood/stats [get]
// @Security BearerAuth
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.mood.stats")

	days := request.QueryInt(r, "days", wellness.DefaultStatsDays)
	stats, err := h.service.Stats(r.Context(), middlewarectx.UserIDFrom(r.Context()), days)
	if err != nil {
		log.Error("failed to compute mood stats", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(stats))
}
