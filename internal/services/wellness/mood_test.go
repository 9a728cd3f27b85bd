package wellness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mindwell/internal/cache"
	"github.com/magabrotheeeer/mindwell/internal/models"
)

func TestMoodService_Log(t *testing.T) {
	tests := []struct {
		name    string
		mood    int
		wantErr error
	}{
		{name: "lowest", mood: 1},
		{name: "highest", mood: 5},
		{name: "zero", mood: 0, wantErr: ErrInvalidMood},
		{name: "above scale", mood: 6, wantErr: ErrInvalidMood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			if tt.wantErr == nil {
				repo.On("CreateMood", mock.Anything, models.Mood{UserID: "u1", Mood: tt.mood, Notes: "n"}).
					Return(models.Mood{ID: 1, UserID: "u1", Mood: tt.mood, Notes: "n"}, nil).Once()
			}
			svc := NewMoodService(repo, nil, newNoopLogger())

			m, err := svc.Log(context.Background(), "u1", tt.mood, "n")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "CreateMood", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mood, m.Mood)
			repo.AssertExpectations(t)
		})
	}
}

func TestMoodService_LogInvalidatesDashboard(t *testing.T) {
	c, mr := setupTestCache(t)
	require.NoError(t, c.Set(context.Background(), cache.DashboardKey("u1"), models.DashboardSummary{}, time.Minute))

	repo := new(RepoMock)
	repo.On("CreateMood", mock.Anything, mock.Anything).Return(models.Mood{ID: 1}, nil).Once()

	_, err := NewMoodService(repo, c, newNoopLogger()).Log(context.Background(), "u1", 3, "")
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.DashboardKey("u1")))
}

func TestHistoryDays(t *testing.T) {
	tests := []struct {
		name    string
		days    int
		premium bool
		want    int
	}{
		{name: "default", days: 0, want: 7},
		{name: "free within cap", days: 14, want: 14},
		{name: "free capped", days: 90, want: 30},
		{name: "premium extended", days: 90, premium: true, want: 90},
		{name: "premium capped", days: 1000, premium: true, want: 365},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HistoryDays(tt.days, tt.premium))
		})
	}
}

func TestMoodService_History(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListMoods", mock.Anything, "u1", testNow.Add(-30*24*time.Hour)).
		Return([]models.Mood{{ID: 2, Mood: 4}}, nil).Once()

	svc := NewMoodService(repo, nil, newNoopLogger())
	svc.now = func() time.Time { return testNow }

	moods, days, err := svc.History(context.Background(), "u1", 120, false)
	require.NoError(t, err)
	assert.Equal(t, 30, days)
	assert.Len(t, moods, 1)
	repo.AssertExpectations(t)
}

func TestMoodService_Stats(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListMoods", mock.Anything, "u1", testNow.Add(-30*24*time.Hour)).
		Return([]models.Mood{{Mood: 5}, {Mood: 4}, {Mood: 4}}, nil).Once()

	svc := NewMoodService(repo, nil, newNoopLogger())
	svc.now = func() time.Time { return testNow }

	stats, err := svc.Stats(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, 4.33, stats.AverageMood)
	assert.Equal(t, map[string]int{"5": 1, "4": 2}, stats.Distribution)
	assert.Equal(t, 30, stats.PeriodDays)
}

func TestMoodService_StatsEmpty(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListMoods", mock.Anything, "u1", mock.Anything).Return([]models.Mood{}, nil).Once()

	stats, err := NewMoodService(repo, nil, newNoopLogger()).Stats(context.Background(), "u1", 7)
	require.NoError(t, err)
	assert.Zero(t, stats.AverageMood)
	assert.Empty(t, stats.Distribution)
	assert.Equal(t, 7, stats.PeriodDays)
}
