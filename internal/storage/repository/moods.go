package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/mindwell/internal/models"
)

// CreateMood сохраняет отметку настроения.
func (s *Storage) CreateMood(ctx context.Context, m models.Mood) (models.Mood, error) {
	const op = "storage.CreateMood"

	if err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO moods (user_id, mood, notes) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		m.UserID, m.Mood, m.Notes).Scan(&m.ID, &m.CreatedAt); err != nil {
		return models.Mood{}, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// ListMoods возвращает отметки настроения начиная с since, новые первыми.
func (s *Storage) ListMoods(ctx context.Context, userID string, since time.Time) ([]models.Mood, error) {
	const op = "storage.ListMoods"

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, user_id, mood, notes, created_at
		 FROM moods
		 WHERE user_id = $1 AND created_at >= $2
		 ORDER BY created_at DESC, id DESC`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.Mood, 0)
	for rows.Next() {
		var m models.Mood
		if err := rows.Scan(&m.ID, &m.UserID, &m.Mood, &m.Notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// MoodTrends возвращает среднее настроение по дням начиная с since.
func (s *Storage) MoodTrends(ctx context.Context, userID string, since time.Time) ([]models.MoodTrendPoint, error) {
	const op = "storage.MoodTrends"

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT to_char(date_trunc('day', created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS day,
		        ROUND(AVG(mood)::numeric, 2)::float8
		 FROM moods
		 WHERE user_id = $1 AND created_at >= $2
		 GROUP BY day
		 ORDER BY day`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.MoodTrendPoint, 0)
	for rows.Next() {
		var p models.MoodTrendPoint
		if err := rows.Scan(&p.Date, &p.Mood); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// LatestMood возвращает последнюю отметку начиная с since или nil.
func (s *Storage) LatestMood(ctx context.Context, userID string, since time.Time) (*models.Mood, error) {
	const op = "storage.LatestMood"

	var m models.Mood
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, user_id, mood, notes, created_at
		 FROM moods
		 WHERE user_id = $1 AND created_at >= $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`, userID, since).Scan(&m.ID, &m.UserID, &m.Mood, &m.Notes, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &m, nil
}
