package wellness

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mindwell/internal/cache"
	"github.com/magabrotheeeer/mindwell/internal/config"
	"github.com/magabrotheeeer/mindwell/internal/models"
)

// RepoMock реализует все репозитории пакета.
type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateMood(ctx context.Context, mood models.Mood) (models.Mood, error) {
	args := m.Called(ctx, mood)
	return args.Get(0).(models.Mood), args.Error(1)
}

func (m *RepoMock) ListMoods(ctx context.Context, userID string, since time.Time) ([]models.Mood, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Mood), args.Error(1)
}

func (m *RepoMock) MoodTrends(ctx context.Context, userID string, since time.Time) ([]models.MoodTrendPoint, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MoodTrendPoint), args.Error(1)
}

func (m *RepoMock) LatestMood(ctx context.Context, userID string, since time.Time) (*models.Mood, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mood), args.Error(1)
}

func (m *RepoMock) CreateJournal(ctx context.Context, j models.Journal) (models.Journal, error) {
	args := m.Called(ctx, j)
	return args.Get(0).(models.Journal), args.Error(1)
}

func (m *RepoMock) ListJournals(ctx context.Context, userID string, limit, offset int) ([]models.Journal, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Journal), args.Int(1), args.Error(2)
}

func (m *RepoMock) GetJournal(ctx context.Context, userID string, id int64) (*models.Journal, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Journal), args.Error(1)
}

func (m *RepoMock) CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	args := m.Called(ctx, h)
	return args.Get(0).(models.Habit), args.Error(1)
}

func (m *RepoMock) GetHabit(ctx context.Context, userID string, id int64) (*models.Habit, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Habit), args.Error(1)
}

func (m *RepoMock) ListHabitsWithProgress(ctx context.Context, userID string, dayStart time.Time) ([]models.HabitProgress, error) {
	args := m.Called(ctx, userID, dayStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HabitProgress), args.Error(1)
}

func (m *RepoMock) CreateHabitLog(ctx context.Context, l models.HabitLog) (models.HabitLog, error) {
	args := m.Called(ctx, l)
	return args.Get(0).(models.HabitLog), args.Error(1)
}

type AnalyzerMock struct {
	mock.Mock
}

func (m *AnalyzerMock) Sentiment(ctx context.Context, text string) string {
	return m.Called(ctx, text).String(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var testNow = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

func setupTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}
