// Package community доска сообщений сообщества: лента, публикация,
// удаление и лайки.
package community

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/magabrotheeeer/mindwell/internal/cache"
	"github.com/magabrotheeeer/mindwell/internal/lib/apperr"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/models"
	"github.com/magabrotheeeer/mindwell/internal/storage/repository"
)

// Параметры ленты.
const (
	FeedLimit       = 100
	FeedTTL         = 30 * time.Second
	MaxAuthorLength = 50
)

var (
	ErrContentRequired = apperr.New(apperr.KindValidation, "content_required", "content is required")
	ErrContentTooLong  = apperr.New(apperr.KindValidation, "content_too_long", "content too long (max 1000 characters)")
	ErrAuthorTooLong   = apperr.New(apperr.KindValidation, "author_too_long", "author must be at most 50 characters")
	ErrPostNotFound    = apperr.New(apperr.KindNotFound, "post_not_found", "post not found")
	ErrForbidden       = apperr.New(apperr.KindAuth, "forbidden", "only the author or an admin can delete this post").WithStatus(403)
)

// Repository хранилище сообщений.
type Repository interface {
	ListPosts(ctx context.Context, limit int) ([]models.CommunityPost, error)
	CreatePost(ctx context.Context, p models.CommunityPost) (models.CommunityPost, error)
	GetPost(ctx context.Context, id int64) (*models.CommunityPost, error)
	DeletePost(ctx context.Context, id int64) error
	ToggleLike(ctx context.Context, postID int64, userID string) (models.LikeResult, error)
}

// Cache кэш ленты.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Service доска сообщества.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создаёт Service. cache может быть nil.
func New(repo Repository, c Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, log: log}
}

// List возвращает ленту, новые сообщения первыми.
func (s *Service) List(ctx context.Context) ([]models.CommunityPost, error) {
	const op = "community.List"
	log := s.log.With(slog.String("op", op))

	if s.cache != nil {
		var posts []models.CommunityPost
		found, err := s.cache.Get(ctx, cache.CommunityFeedKey, &posts)
		if err != nil {
			log.Warn("failed to read feed cache", sl.Err(err))
		}
		if found {
			return posts, nil
		}
	}

	posts, err := s.repo.ListPosts(ctx, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.CommunityFeedKey, posts, FeedTTL); err != nil {
			log.Warn("failed to store feed cache", sl.Err(err))
		}
	}
	return posts, nil
}

// Create публикует сообщение. Пустой автор заменяется на Anonymous.
func (s *Service) Create(ctx context.Context, userID, author, content string) (models.CommunityPost, error) {
	const op = "community.Create"

	content = strings.TrimSpace(content)
	if content == "" {
		return models.CommunityPost{}, fmt.Errorf("%s: %w", op, ErrContentRequired)
	}
	if utf8.RuneCountInString(content) > models.MaxPostLength {
		return models.CommunityPost{}, fmt.Errorf("%s: %w", op, ErrContentTooLong)
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = models.AnonymousAuthor
	}
	if utf8.RuneCountInString(author) > MaxAuthorLength {
		return models.CommunityPost{}, fmt.Errorf("%s: %w", op, ErrAuthorTooLong)
	}

	p := models.CommunityPost{Author: author, Content: content}
	if userID != "" {
		p.UserID = &userID
	}
	created, err := s.repo.CreatePost(ctx, p)
	if err != nil {
		return models.CommunityPost{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op)
	return created, nil
}

// Delete удаляет сообщение. Удалить может автор или администратор.
func (s *Service) Delete(ctx context.Context, postID int64, userID, role string) error {
	const op = "community.Delete"

	post, err := s.repo.GetPost(ctx, postID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrPostNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	owner := post.UserID != nil && *post.UserID == userID
	if !owner && role != models.RoleAdmin {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	err = s.repo.DeletePost(ctx, postID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrPostNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op)
	s.log.Info("community post deleted",
		slog.String("op", op),
		slog.Int64("post_id", postID),
		slog.String("user_id", userID),
		slog.Bool("moderated", !owner),
	)
	return nil
}

// ToggleLike ставит или снимает лайк пользователя.
func (s *Service) ToggleLike(ctx context.Context, postID int64, userID string) (models.LikeResult, error) {
	const op = "community.ToggleLike"

	res, err := s.repo.ToggleLike(ctx, postID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.LikeResult{}, fmt.Errorf("%s: %w", op, ErrPostNotFound)
	}
	if err != nil {
		return models.LikeResult{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op)
	return res, nil
}

func (s *Service) invalidate(ctx context.Context, op string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.CommunityFeedKey); err != nil {
		s.log.Warn("failed to invalidate feed cache", slog.String("op", op), sl.Err(err))
	}
}
