package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/mindwell/internal/models"
)

const postColumns = `p.id, p.user_id, p.author, p.content, p.created_at,
	(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id)::int`

func scanPost(row rowScanner) (models.CommunityPost, error) {
	var (
		p      models.CommunityPost
		userID sql.NullString
	)
	if err := row.Scan(&p.ID, &userID, &p.Author, &p.Content, &p.CreatedAt, &p.Likes); err != nil {
		return models.CommunityPost{}, err
	}
	if userID.Valid {
		p.UserID = &userID.String
	}
	return p, nil
}

// ListPosts возвращает последние сообщения сообщества.
func (s *Storage) ListPosts(ctx context.Context, limit int) ([]models.CommunityPost, error) {
	const op = "storage.ListPosts"

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT `+postColumns+`
		 FROM community_posts p
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.CommunityPost, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// CreatePost сохраняет сообщение.
func (s *Storage) CreatePost(ctx context.Context, p models.CommunityPost) (models.CommunityPost, error) {
	const op = "storage.CreatePost"

	if err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO community_posts (user_id, author, content) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		p.UserID, p.Author, p.Content).Scan(&p.ID, &p.CreatedAt); err != nil {
		return models.CommunityPost{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetPost возвращает сообщение по ID.
func (s *Storage) GetPost(ctx context.Context, id int64) (*models.CommunityPost, error) {
	const op = "storage.GetPost"

	p, err := scanPost(s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM community_posts p WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// DeletePost удаляет сообщение вместе с лайками.
func (s *Storage) DeletePost(ctx context.Context, id int64) error {
	return s.execOne(ctx, "storage.DeletePost", `DELETE FROM community_posts WHERE id = $1`, id)
}

// ToggleLike ставит лайк, если его не было, иначе снимает.
func (s *Storage) ToggleLike(ctx context.Context, postID int64, userID string) (models.LikeResult, error) {
	const op = "storage.ToggleLike"

	res := models.LikeResult{PostID: postID}
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		del, err := s.conn(ctx).ExecContext(ctx,
			`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
		if err != nil {
			return err
		}
		n, err := del.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			if _, err := s.conn(ctx).ExecContext(ctx,
				`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID); err != nil {
				if isForeignKeyViolation(err) {
					return ErrNotFound
				}
				return err
			}
			res.Liked = true
		}
		return s.conn(ctx).QueryRowContext(ctx,
			`SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&res.Likes)
	})
	if err != nil {
		return models.LikeResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
