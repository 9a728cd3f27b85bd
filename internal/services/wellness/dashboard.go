package wellness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mindwell/internal/cache"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/models"
)

// Параметры сводки.
const (
	FreeTrendDays       = 7
	PremiumTrendDays    = 30
	RecentEntries       = 3
	RecentPreviewRunes  = 100
	DefaultDashboardTTL = time.Minute
)

// DashboardRepository данные для сводки.
type DashboardRepository interface {
	MoodTrends(ctx context.Context, userID string, since time.Time) ([]models.MoodTrendPoint, error)
	LatestMood(ctx context.Context, userID string, since time.Time) (*models.Mood, error)
	ListJournals(ctx context.Context, userID string, limit, offset int) ([]models.Journal, int, error)
	ListHabitsWithProgress(ctx context.Context, userID string, dayStart time.Time) ([]models.HabitProgress, error)
}

// DashboardService собирает сводку для главного экрана.
type DashboardService struct {
	repo  DashboardRepository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time
}

// NewDashboardService создаёт DashboardService. cache может быть nil.
func NewDashboardService(repo DashboardRepository, cache Cache, ttl time.Duration, log *slog.Logger) *DashboardService {
	if ttl <= 0 {
		ttl = DefaultDashboardTTL
	}
	return &DashboardService{repo: repo, cache: cache, ttl: ttl, log: log, now: time.Now}
}

// Summary возвращает сводку пользователя. Снимок берётся из кэша, если он
// собран для того же тарифа.
func (s *DashboardService) Summary(ctx context.Context, userID string, premium bool) (models.DashboardSummary, error) {
	const op = "wellness.DashboardService.Summary"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	key := cache.DashboardKey(userID)
	if s.cache != nil {
		var cached models.DashboardSummary
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn("failed to read dashboard cache", sl.Err(err))
		}
		if found && cached.IsPremium == premium {
			return cached, nil
		}
	}

	summary, err := s.build(ctx, userID, premium)
	if err != nil {
		return models.DashboardSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.ttl); err != nil {
			log.Warn("failed to store dashboard cache", sl.Err(err))
		}
	}
	return summary, nil
}

func (s *DashboardService) build(ctx context.Context, userID string, premium bool) (models.DashboardSummary, error) {
	now := s.now()
	today := dayStart(now)

	trendDays := FreeTrendDays
	if premium {
		trendDays = PremiumTrendDays
	}
	trends, err := s.repo.MoodTrends(ctx, userID, now.Add(-time.Duration(trendDays)*24*time.Hour))
	if err != nil {
		return models.DashboardSummary{}, err
	}

	var todays models.TodaysMood
	latest, err := s.repo.LatestMood(ctx, userID, today)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	if latest != nil {
		todays = models.TodaysMood{Mood: &latest.Mood, Notes: &latest.Notes, LoggedAt: &latest.CreatedAt}
	}

	entries, total, err := s.repo.ListJournals(ctx, userID, RecentEntries, 0)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	for i := range entries {
		entries[i].Content = preview(entries[i].Content, RecentPreviewRunes)
	}

	habits, err := s.repo.ListHabitsWithProgress(ctx, userID, today)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	progress := make([]models.HabitSummary, 0, len(habits))
	completed := 0
	for _, h := range habits {
		if h.CompletedToday {
			completed++
		}
		progress = append(progress, models.HabitSummary{
			ID:         h.ID,
			Name:       h.Name,
			Progress:   h.TodayProgress,
			Goal:       h.Goal,
			Unit:       h.Unit,
			Percentage: percentage(h.TodayProgress, h.Goal),
			Completed:  h.CompletedToday,
		})
	}

	return models.DashboardSummary{
		MoodTrends:    trends,
		TodaysMood:    todays,
		RecentEntries: entries,
		HabitProgress: progress,
		Stats: models.DashboardStats{
			TotalEntries:         total,
			ActiveHabits:         len(habits),
			CompletedHabitsToday: completed,
		},
		IsPremium: premium,
	}, nil
}

// percentage доля выполнения цели, не больше 100, с одним знаком после запятой.
func percentage(progress, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	return round(min(float64(progress)/float64(goal)*100, 100), 1)
}
