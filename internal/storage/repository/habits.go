package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/mindwell/internal/models"
)

// CreateHabit сохраняет привычку.
func (s *Storage) CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	const op = "storage.CreateHabit"

	if err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO habits (user_id, name, description, frequency, goal, unit)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		h.UserID, h.Name, h.Description, h.Frequency, h.Goal, h.Unit).Scan(&h.ID, &h.CreatedAt); err != nil {
		return models.Habit{}, fmt.Errorf("%s: %w", op, err)
	}
	return h, nil
}

// GetHabit возвращает привычку, только если она принадлежит пользователю.
func (s *Storage) GetHabit(ctx context.Context, userID string, id int64) (*models.Habit, error) {
	const op = "storage.GetHabit"

	var h models.Habit
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, user_id, name, description, frequency, goal, unit, created_at
		 FROM habits WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.Frequency, &h.Goal, &h.Unit, &h.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &h, nil
}

// ListHabitsWithProgress возвращает привычки пользователя с суммой отметок начиная с dayStart.
func (s *Storage) ListHabitsWithProgress(ctx context.Context, userID string, dayStart time.Time) ([]models.HabitProgress, error) {
	const op = "storage.ListHabitsWithProgress"

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT h.id, h.user_id, h.name, h.description, h.frequency, h.goal, h.unit, h.created_at,
		        COALESCE(SUM(l.value), 0)::int
		 FROM habits h
		 LEFT JOIN habit_logs l ON l.habit_id = h.id AND l.logged_at >= $2
		 WHERE h.user_id = $1
		 GROUP BY h.id
		 ORDER BY h.created_at, h.id`, userID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.HabitProgress, 0)
	for rows.Next() {
		var p models.HabitProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Frequency,
			&p.Goal, &p.Unit, &p.CreatedAt, &p.TodayProgress); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.CompletedToday = p.TodayProgress >= p.Goal
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// CreateHabitLog сохраняет отметку выполнения привычки.
func (s *Storage) CreateHabitLog(ctx context.Context, l models.HabitLog) (models.HabitLog, error) {
	const op = "storage.CreateHabitLog"

	if err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO habit_logs (user_id, habit_id, value, completed) VALUES ($1, $2, $3, $4)
		 RETURNING id, logged_at`,
		l.UserID, l.HabitID, l.Value, l.Completed).Scan(&l.ID, &l.LoggedAt); err != nil {
		if isForeignKeyViolation(err) {
			return models.HabitLog{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return models.HabitLog{}, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}
