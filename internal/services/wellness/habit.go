package wellness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/magabrotheeeer/mindwell/internal/lib/apperr"
	"github.com/magabrotheeeer/mindwell/internal/models"
	"github.com/magabrotheeeer/mindwell/internal/storage/repository"
)

// Значения привычки по умолчанию.
const (
	DefaultHabitUnit   = "times"
	MaxHabitNameLength = 100
)

var (
	ErrHabitNameRequired = apperr.New(apperr.KindValidation, "name_required", "habit name is required")
	ErrHabitNameTooLong  = apperr.New(apperr.KindValidation, "name_too_long", "habit name must be at most 100 characters")
	ErrInvalidFrequency  = apperr.New(apperr.KindValidation, "invalid_frequency", "frequency must be daily, weekly or monthly")
	ErrInvalidGoal       = apperr.New(apperr.KindValidation, "invalid_goal", "goal must be at least 1")
	ErrInvalidValue      = apperr.New(apperr.KindValidation, "invalid_value", "value must be positive")
	ErrHabitNotFound     = apperr.New(apperr.KindNotFound, "habit_not_found", "habit not found")
)

// HabitRepository хранилище привычек.
type HabitRepository interface {
	CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error)
	GetHabit(ctx context.Context, userID string, id int64) (*models.Habit, error)
	ListHabitsWithProgress(ctx context.Context, userID string, dayStart time.Time) ([]models.HabitProgress, error)
	CreateHabitLog(ctx context.Context, l models.HabitLog) (models.HabitLog, error)
}

// HabitService трекер привычек.
type HabitService struct {
	repo  HabitRepository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// NewHabitService создаёт HabitService.
func NewHabitService(repo HabitRepository, cache Cache, log *slog.Logger) *HabitService {
	return &HabitService{repo: repo, cache: cache, log: log, now: time.Now}
}

// Create заводит привычку. Пустые частота, цель и единица заменяются
// на daily, 1 и times.
func (s *HabitService) Create(ctx context.Context, h models.Habit) (models.Habit, error) {
	const op = "wellness.HabitService.Create"

	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" {
		return models.Habit{}, fmt.Errorf("%s: %w", op, ErrHabitNameRequired)
	}
	if utf8.RuneCountInString(h.Name) > MaxHabitNameLength {
		return models.Habit{}, fmt.Errorf("%s: %w", op, ErrHabitNameTooLong)
	}
	switch h.Frequency {
	case "":
		h.Frequency = models.FrequencyDaily
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly:
	default:
		return models.Habit{}, fmt.Errorf("%s: %w", op, ErrInvalidFrequency)
	}
	if h.Goal == 0 {
		h.Goal = 1
	}
	if h.Goal < 1 {
		return models.Habit{}, fmt.Errorf("%s: %w", op, ErrInvalidGoal)
	}
	if h.Unit == "" {
		h.Unit = DefaultHabitUnit
	}

	created, err := s.repo.CreateHabit(ctx, h)
	if err != nil {
		return models.Habit{}, fmt.Errorf("%s: %w", op, err)
	}
	invalidateDashboard(ctx, s.cache, s.log.With(slog.String("op", op)), h.UserID)
	return created, nil
}

// List возвращает привычки с прогрессом за сегодня.
func (s *HabitService) List(ctx context.Context, userID string) ([]models.HabitProgress, error) {
	const op = "wellness.HabitService.List"

	habits, err := s.repo.ListHabitsWithProgress(ctx, userID, dayStart(s.now()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return habits, nil
}

// Log отмечает выполнение привычки. value 0 считается как 1.
func (s *HabitService) Log(ctx context.Context, userID string, habitID int64, value int) (models.HabitLog, error) {
	const op = "wellness.HabitService.Log"

	if value == 0 {
		value = 1
	}
	if value < 0 {
		return models.HabitLog{}, fmt.Errorf("%s: %w", op, ErrInvalidValue)
	}
	habit, err := s.repo.GetHabit(ctx, userID, habitID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.HabitLog{}, fmt.Errorf("%s: %w", op, ErrHabitNotFound)
	}
	if err != nil {
		return models.HabitLog{}, fmt.Errorf("%s: %w", op, err)
	}

	l, err := s.repo.CreateHabitLog(ctx, models.HabitLog{
		UserID:    userID,
		HabitID:   habit.ID,
		Value:     value,
		Completed: value >= habit.Goal,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return models.HabitLog{}, fmt.Errorf("%s: %w", op, ErrHabitNotFound)
	}
	if err != nil {
		return models.HabitLog{}, fmt.Errorf("%s: %w", op, err)
	}
	invalidateDashboard(ctx, s.cache, s.log.With(slog.String("op", op)), userID)
	return l, nil
}
