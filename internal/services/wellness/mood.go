package wellness

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/magabrotheeeer/mindwell/internal/lib/apperr"
	"github.com/magabrotheeeer/mindwell/internal/models"
)

// Ограничения глубины истории настроения.
const (
	DefaultHistoryDays = 7
	DefaultStatsDays   = 30
	FreeMaxDays        = 30
	PremiumMaxDays     = 365
)

// ErrInvalidMood оценка вне шкалы.
var ErrInvalidMood = apperr.New(apperr.KindValidation, "invalid_mood", "mood must be between 1 and 5")

// MoodRepository хранилище отметок настроения.
type MoodRepository interface {
	CreateMood(ctx context.Context, m models.Mood) (models.Mood, error)
	ListMoods(ctx context.Context, userID string, since time.Time) ([]models.Mood, error)
}

// MoodService трекер настроения.
type MoodService struct {
	repo  MoodRepository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// NewMoodService создаёт MoodService.
func NewMoodService(repo MoodRepository, cache Cache, log *slog.Logger) *MoodService {
	return &MoodService{repo: repo, cache: cache, log: log, now: time.Now}
}

// Log сохраняет отметку настроения.
func (s *MoodService) Log(ctx context.Context, userID string, mood int, notes string) (models.Mood, error) {
	const op = "wellness.MoodService.Log"

	if mood < models.MoodMin || mood > models.MoodMax {
		return models.Mood{}, fmt.Errorf("%s: %w", op, ErrInvalidMood)
	}
	m, err := s.repo.CreateMood(ctx, models.Mood{UserID: userID, Mood: mood, Notes: notes})
	if err != nil {
		return models.Mood{}, fmt.Errorf("%s: %w", op, err)
	}
	invalidateDashboard(ctx, s.cache, s.log.With(slog.String("op", op)), userID)
	return m, nil
}

// HistoryDays приводит запрошенную глубину к допустимой для тарифа.
func HistoryDays(days int, premium bool) int {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	limit := FreeMaxDays
	if premium {
		limit = PremiumMaxDays
	}
	return min(days, limit)
}

// History возвращает отметки за последние days дней, новые первыми.
func (s *MoodService) History(ctx context.Context, userID string, days int, premium bool) ([]models.Mood, int, error) {
	const op = "wellness.MoodService.History"

	days = HistoryDays(days, premium)
	moods, err := s.repo.ListMoods(ctx, userID, s.now().Add(-time.Duration(days)*24*time.Hour))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return moods, days, nil
}

// Stats считает среднее и распределение оценок за последние days дней.
func (s *MoodService) Stats(ctx context.Context, userID string, days int) (models.MoodStats, error) {
	const op = "wellness.MoodService.Stats"

	if days <= 0 {
		days = DefaultStatsDays
	}
	days = min(days, PremiumMaxDays)
	moods, err := s.repo.ListMoods(ctx, userID, s.now().Add(-time.Duration(days)*24*time.Hour))
	if err != nil {
		return models.MoodStats{}, fmt.Errorf("%s: %w", op, err)
	}
	return summarize(moods, days), nil
}

func summarize(moods []models.Mood, days int) models.MoodStats {
	stats := models.MoodStats{Distribution: make(map[string]int), PeriodDays: days}
	if len(moods) == 0 {
		return stats
	}
	var sum int
	for _, m := range moods {
		sum += m.Mood
		stats.Distribution[strconv.Itoa(m.Mood)]++
	}
	stats.AverageMood = round(float64(sum)/float64(len(moods)), 2)
	return stats
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
