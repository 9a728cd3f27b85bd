package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mindwell/internal/models"
)

func TestStorage_Wellness(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "tracker", "tracker@example.com")
	strangerID := factory.CreateUser(t, "stranger", "stranger@example.com")
	now := time.Now()

	t.Run("moods since", func(t *testing.T) {
		factory.CreateMoodAt(t, userID, 2, now.Add(-10*24*time.Hour))
		factory.CreateMoodAt(t, userID, 4, now.Add(-time.Hour))
		_, err := storage.CreateMood(ctx, models.Mood{UserID: userID, Mood: 5, Notes: "great"})
		require.NoError(t, err)

		list, err := storage.ListMoods(ctx, userID, now.Add(-7*24*time.Hour))
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, 5, list[0].Mood)

		latest, err := storage.LatestMood(ctx, userID, now.Add(-2*time.Hour))
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "great", latest.Notes)

		none, err := storage.LatestMood(ctx, strangerID, now.Add(-2*time.Hour))
		require.NoError(t, err)
		assert.Nil(t, none)

		trend, err := storage.MoodTrends(ctx, userID, now.Add(-30*24*time.Hour))
		require.NoError(t, err)
		assert.NotEmpty(t, trend)
	})

	t.Run("journals are owner scoped", func(t *testing.T) {
		var last models.Journal
		for _, title := range []string{"one", "two", "three"} {
			j, err := storage.CreateJournal(ctx, models.Journal{UserID: userID, Title: title, Content: "c", Sentiment: models.SentimentNeutral})
			require.NoError(t, err)
			last = j
		}

		page, total, err := storage.ListJournals(ctx, userID, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, page, 2)
		assert.Equal(t, "three", page[0].Title)

		_, err = storage.GetJournal(ctx, strangerID, last.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		got, err := storage.GetJournal(ctx, userID, last.ID)
		require.NoError(t, err)
		assert.Equal(t, "three", got.Title)
	})

	t.Run("habit progress today", func(t *testing.T) {
		h, err := storage.CreateHabit(ctx, models.Habit{UserID: userID, Name: "water", Frequency: models.FrequencyDaily, Goal: 3, Unit: "glasses"})
		require.NoError(t, err)

		_, err = storage.GetHabit(ctx, strangerID, h.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		for range 3 {
			_, err := storage.CreateHabitLog(ctx, models.HabitLog{UserID: userID, HabitID: h.ID, Value: 1})
			require.NoError(t, err)
		}

		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		list, err := storage.ListHabitsWithProgress(ctx, userID, dayStart)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 3, list[0].TodayProgress)
		assert.True(t, list[0].CompletedToday)
	})
}

func TestStorage_Community(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "poster", "poster@example.com")

	post, err := storage.CreatePost(ctx, models.CommunityPost{UserID: &userID, Author: "poster", Content: "hello"})
	require.NoError(t, err)

	t.Run("like toggles", func(t *testing.T) {
		res, err := storage.ToggleLike(ctx, post.ID, userID)
		require.NoError(t, err)
		assert.True(t, res.Liked)
		assert.Equal(t, 1, res.Likes)

		res, err = storage.ToggleLike(ctx, post.ID, userID)
		require.NoError(t, err)
		assert.False(t, res.Liked)
		assert.Equal(t, 0, res.Likes)
	})

	t.Run("like missing post", func(t *testing.T) {
		_, err := storage.ToggleLike(ctx, post.ID+100, userID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list and delete", func(t *testing.T) {
		list, err := storage.ListPosts(ctx, 50)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.NotNil(t, list[0].UserID)
		assert.Equal(t, userID, *list[0].UserID)

		require.NoError(t, storage.DeletePost(ctx, post.ID))
		assert.ErrorIs(t, storage.DeletePost(ctx, post.ID), ErrNotFound)

		_, err = storage.GetPost(ctx, post.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
