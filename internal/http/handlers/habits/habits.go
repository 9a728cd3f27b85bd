// Package habits содержит обработчики трекера привычек.
package habits

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
)

// CreateRequest новая привычка. Пустые поля заполняются значениями по умолчанию.
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description" validate:"max=1000"`
	Frequency   string `json:"frequency" validate:"omitempty,oneof=daily weekly monthly"`
	Goal        int    `json:"goal" validate:"min=0"`
	Unit        string `json:"unit" validate:"max=50"`
}

// LogRequest отметка выполнения.
type LogRequest struct {
	HabitID int64 `json:"habit_id" validate:"required"`
	Value   int   `json:"value"`
}

type Service interface {
	Create(ctx context.Context, h models.Habit) (models.Habit, error)
	List(ctx context.Context, userID string) ([]models.HabitProgress, error)
	Log(ctx context.Context, userID string, habitID int64, value int) (models.HabitLog, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// Create godoc
// @Summary Новая привычка
// @Tags Habits
// @Accept  json
// @Produce  json
// @Param request body CreateRequest true "Привычка"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /habits/create [post]
// @Security BearerAuth
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.habits.create"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	var req CreateRequest
	if !request.DecodeJSON(w, r, log, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	habit, err := h.service.Create(r.Context(), models.Habit{
		UserID:      middlewarectx.UserIDFrom(r.Context()),
		Name:        req.Name,
		Description: req.Description,
		Frequency:   req.Frequency,
		Goal:        req.Goal,
		Unit:        req.Unit,
	})
	if err != nil {
		log.Warn("failed to create habit", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK(habit))
}

// List godoc
// @Summary Привычки с прогрессом за сегодня
// @Tags Habits
// @Produce  json
// @Success 200 {object} response.Response
// @Router /habits/list [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.habits.list"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	habits, err := h.service.List(r.Context(), middlewarectx.UserIDFrom(r.Context()))
	if err != nil {
		log.Error("failed to list habits", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if habits == nil {
		habits = []models.HabitProgress{}
	}
	render.JSON(w, r, response.OK(map[string]any{"habits": habits}))
}

// Log godoc
// @Summary Отметить выполнение привычки
// @Tags Habits
// @Accept  json
// @Produce  json
// @Param request body LogRequest true "ID привычки и значение"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /habits/log [post]
// @Security BearerAuth
func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.habits.log"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	var req LogRequest
	if !request.DecodeJSON(w, r, log, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	entry, err := h.service.Log(r.Context(), middlewarectx.UserIDFrom(r.Context()), req.HabitID, req.Value)
	if err != nil {
		log.Warn("failed to log habit", slog.Int64("habit_id", req.HabitID), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK(entry))
}
