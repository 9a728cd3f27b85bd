package wellness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/magabrotheeeer/mindwell/internal/lib/apperr"
	"github.com/magabrotheeeer/mindwell/internal/models"
	"github.com/magabrotheeeer/mindwell/internal/storage/repository"
)

// Параметры дневника.
const (
	MaxTitleLength   = 200
	DefaultPerPage   = 10
	MaxPerPage       = 50
	ListPreviewRunes = 200
)

var (
	ErrTitleRequired   = apperr.New(apperr.KindValidation, "title_required", "title is required")
	ErrTitleTooLong    = apperr.New(apperr.KindValidation, "title_too_long", "title must be at most 200 characters")
	ErrContentRequired = apperr.New(apperr.KindValidation, "content_required", "content is required")
	ErrJournalNotFound = apperr.New(apperr.KindNotFound, "journal_not_found", "journal entry not found")
)

// JournalRepository хранилище записей дневника.
type JournalRepository interface {
	CreateJournal(ctx context.Context, j models.Journal) (models.Journal, error)
	ListJournals(ctx context.Context, userID string, limit, offset int) ([]models.Journal, int, error)
	GetJournal(ctx context.Context, userID string, id int64) (*models.Journal, error)
}

// SentimentAnalyzer определяет тональность текста.
type SentimentAnalyzer interface {
	Sentiment(ctx context.Context, text string) string
}

// JournalService дневник пользователя.
type JournalService struct {
	repo     JournalRepository
	analyzer SentimentAnalyzer
	cache    Cache
	log      *slog.Logger
}

// NewJournalService создаёт JournalService.
func NewJournalService(repo JournalRepository, analyzer SentimentAnalyzer, cache Cache, log *slog.Logger) *JournalService {
	return &JournalService{repo: repo, analyzer: analyzer, cache: cache, log: log}
}

// Create сохраняет запись с определённой тональностью.
func (s *JournalService) Create(ctx context.Context, userID, title, content string) (models.Journal, error) {
	const op = "wellness.JournalService.Create"

	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return models.Journal{}, fmt.Errorf("%s: %w", op, ErrTitleRequired)
	case utf8.RuneCountInString(title) > MaxTitleLength:
		return models.Journal{}, fmt.Errorf("%s: %w", op, ErrTitleTooLong)
	case strings.TrimSpace(content) == "":
		return models.Journal{}, fmt.Errorf("%s: %w", op, ErrContentRequired)
	}

	sentiment := models.SentimentNeutral
	if s.analyzer != nil {
		sentiment = s.analyzer.Sentiment(ctx, content)
	}
	j, err := s.repo.CreateJournal(ctx, models.Journal{
		UserID:    userID,
		Title:     title,
		Content:   content,
		Sentiment: sentiment,
	})
	if err != nil {
		return models.Journal{}, fmt.Errorf("%s: %w", op, err)
	}
	invalidateDashboard(ctx, s.cache, s.log.With(slog.String("op", op)), userID)
	return j, nil
}

// List возвращает страницу записей с укороченным текстом.
func (s *JournalService) List(ctx context.Context, userID string, page, perPage int) (models.JournalPage, error) {
	const op = "wellness.JournalService.List"

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)

	entries, total, err := s.repo.ListJournals(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return models.JournalPage{}, fmt.Errorf("%s: %w", op, err)
	}
	for i := range entries {
		entries[i].Content = preview(entries[i].Content, ListPreviewRunes)
	}
	return models.JournalPage{
		Entries:     entries,
		Total:       total,
		Pages:       (total + perPage - 1) / perPage,
		CurrentPage: page,
	}, nil
}

// Get возвращает запись владельца целиком.
func (s *JournalService) Get(ctx context.Context, userID string, id int64) (*models.Journal, error) {
	const op = "wellness.JournalService.Get"

	j, err := s.repo.GetJournal(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrJournalNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return j, nil
}
