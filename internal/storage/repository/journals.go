package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/mindwell/internal/models"
)

// CreateJournal сохраняет запись дневника.
func (s *Storage) CreateJournal(ctx context.Context, j models.Journal) (models.Journal, error) {
	const op = "storage.CreateJournal"

	if err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO journals (user_id, title, content, sentiment) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		j.UserID, j.Title, j.Content, j.Sentiment).Scan(&j.ID, &j.CreatedAt); err != nil {
		return models.Journal{}, fmt.Errorf("%s: %w", op, err)
	}
	return j, nil
}

// ListJournals возвращает страницу записей пользователя и их общее число.
func (s *Storage) ListJournals(ctx context.Context, userID string, limit, offset int) ([]models.Journal, int, error) {
	const op = "storage.ListJournals"

	total, err := s.CountJournals(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, user_id, title, content, sentiment, created_at
		 FROM journals
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.Journal, 0, limit)
	for rows.Next() {
		var j models.Journal
		if err := rows.Scan(&j.ID, &j.UserID, &j.Title, &j.Content, &j.Sentiment, &j.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return res, total, nil
}

// CountJournals возвращает число записей пользователя.
func (s *Storage) CountJournals(ctx context.Context, userID string) (int, error) {
	const op = "storage.CountJournals"

	var n int
	if err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journals WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// GetJournal возвращает запись, только если она принадлежит пользователю.
func (s *Storage) GetJournal(ctx context.Context, userID string, id int64) (*models.Journal, error) {
	const op = "storage.GetJournal"

	var j models.Journal
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, user_id, title, content, sentiment, created_at
		 FROM journals
		 WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&j.ID, &j.UserID, &j.Title, &j.Content, &j.Sentiment, &j.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &j, nil
}
