// Package journal содержит обработчики дневника.
package journal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mindwell/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mindwell/internal/http/request"
	"github.com/magabrotheeeer/mindwell/internal/http/response"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/models"
	"github.com/magabrotheeeer/mindwell/internal/services/wellness"
)

// CreateRequest новая запись. Длины проверяет сервис.
type CreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Service interface {
	Create(ctx context.Context, userID, title, content string) (models.Journal, error)
	List(ctx context.Context, userID string, page, perPage int) (models.JournalPage, error)
	Get(ctx context.Context, userID string, id int64) (*models.Journal, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Create godoc
// @Summary Новая запись дневника
// @Description Тональность определяется автоматически
// @Tags Journal
// @Accept  json
// @Produce  json
// @Param request body CreateRequest true "Заголовок и текст"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /journal/entry [post]
// @Security BearerAuth
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.journal.create"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	var req CreateRequest
	if !request.DecodeJSON(w, r, log, &req) {
		return
	}
	entry, err := h.service.Create(r.Context(), middlewarectx.UserIDFrom(r.Context()), req.Title, req.Content)
	if err != nil {
		log.Warn("failed to create journal entry", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK(entry))
}

// List godoc
// @Summary Записи дневника
// @Tags Journal
// @Produce  json
// @Param page query int false "Страница" default(1)
// @Param per_page query int false "Размер страницы, не больше 50" default(10)
// @Success 200 {object} response.Response
// @Router /journal/entries [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.journal.list"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	page := request.QueryInt(r, "page", 1)
	perPage := request.QueryInt(r, "per_page", wellness.DefaultPerPage)
	result, err := h.service.List(r.Context(), middlewarectx.UserIDFrom(r.Context()), page, perPage)
	if err != nil {
		log.Error("failed to list journal entries", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if result.Entries == nil {
		result.Entries = []models.Journal{}
	}
	render.JSON(w, r, response.OK(result))
}

// Get godoc
// @Summary Запись дневника
// @Tags Journal
// @Produce  json
// @Param id path int true "ID записи"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /journal/entry/{id} [get]
// @Security BearerAuth
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.journal.get"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	id, ok := request.PathID(w, r, "id")
	if !ok {
		return
	}
	entry, err := h.service.Get(r.Context(), middlewarectx.UserIDFrom(r.Context()), id)
	if err != nil {
		log.Warn("failed to get journal entry", slog.Int64("id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(entry))
}
