// Package community содержит обработчики доски сообщества.
package community

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
)

// CreateRequest новое сообщение. Пустой автор публикуется как Anonymous.
type CreateRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

type Service interface {
	List(ctx context.Context) ([]models.CommunityPost, error)
	Create(ctx context.Context, userID, author, content string) (models.CommunityPost, error)
	Delete(ctx context.Context, postID int64, userID, role string) error
	ToggleLike(ctx context.Context, postID int64, userID string) (models.LikeResult, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))
}

// List godoc
// @Summary Лента сообщества
// @Tags Community
// @Produce  json
// @Success 200 {object} response.Response
// @Router /community/posts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.community.list")

	posts, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list posts", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if posts == nil {
		posts = []models.CommunityPost{}
	}
	render.JSON(w, r, response.OK(posts))
}

// Create godoc
// @Summary Опубликовать сообщение
// @Tags Community
// @Accept  json
// @Produce  json
// @Param request body CreateRequest true "Сообщение"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /community/posts [post]
// @Security BearerAuth
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.community.create")

	var req CreateRequest
	if !request.DecodeJSON(w, r, log, &req) {
		return
	}
	post, err := h.service.Create(r.Context(), middlewarectx.UserIDFrom(r.Context()), req.Author, req.Content)
	if err != nil {
		log.Warn("failed to create post", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK(post))
}

// Delete godoc
// @Summary Удалить сообщение
// @Description Доступно автору и администратору
// @Tags Community
// @Produce  json
// @Param id path int true "ID сообщения"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /community/posts/{id} [delete]
// @Security BearerAuth
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.community.delete")

	id, ok := request.PathID(w, r, "id")
	if !ok {
		return
	}
	err := h.service.Delete(r.Context(), id, middlewarectx.UserIDFrom(r.Context()), middlewarectx.RoleFrom(r.Context()))
	if err != nil {
		log.Warn("failed to delete post", slog.Int64("post_id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(map[string]string{"message": "Post deleted"}))
}

// Like godoc
// @Summary Поставить или снять лайк
// @Tags Community
// @Produce  json
// @Param id path int true "ID сообщения"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /community/posts/{id}/like [post]
// @Security BearerAuth
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.community.like")

	id, ok := request.PathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.service.ToggleLike(r.Context(), id, middlewarectx.UserIDFrom(r.Context()))
	if err != nil {
		log.Warn("failed to toggle like", slog.Int64("post_id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(res))
}
