package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/mindwell/internal/models"
)

const userColumns = `id, username, email, password_hash, role, email_verified,
	email_verification_token, email_verification_expires,
	password_reset_token, password_reset_expires,
	subscription_status, subscription_expires_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var (
		verifyToken, resetToken                 sql.NullString
		verifyExpires, resetExpires, subExpires sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.EmailVerified,
		&verifyToken, &verifyExpires, &resetToken, &resetExpires,
		&u.SubscriptionStatus, &subExpires, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if verifyToken.Valid {
		u.EmailVerificationToken = &verifyToken.String
	}
	if verifyExpires.Valid {
		u.EmailVerificationExpires = &verifyExpires.Time
	}
	if resetToken.Valid {
		u.PasswordResetToken = &resetToken.String
	}
	if resetExpires.Valid {
		u.PasswordResetExpires = &resetExpires.Time
	}
	if subExpires.Valid {
		u.SubscriptionExpiresAt = &subExpires.Time
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его ID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.SubscriptionStatus == "" {
		user.SubscriptionStatus = models.SubscriptionFree
	}

	query := `INSERT INTO users (id, username, email, password_hash, role, subscription_status)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.conn(ctx).ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.SubscriptionStatus); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return user.ID, nil
}

func (s *Storage) getUser(ctx context.Context, op, where string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по ID.
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByID", "id = $1", userID)
}

// GetUserByUsername возвращает пользователя по username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByUsername", "username = $1", username)
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByEmail", "email = $1", email)
}

// GetUserByLogin ищет пользователя по username или email.
func (s *Storage) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByLogin", "username = $1 OR email = $1", login)
}

// GetUserByVerificationToken находит владельца токена подтверждения и блокирует
// его строку до конца транзакции. Вызывать внутри WithinTx.
func (s *Storage) GetUserByVerificationToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByVerificationToken", "email_verification_token = $1 FOR UPDATE", tokenHash)
}

// GetUserByResetToken находит владельца токена сброса пароля с блокировкой строки.
func (s *Storage) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByResetToken", "password_reset_token = $1 FOR UPDATE", tokenHash)
}

// execOne выполняет запрос над одной строкой и возвращает ErrNotFound,
// если строка не изменилась.
func (s *Storage) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := s.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// SetVerificationToken сохраняет хэш нового токена подтверждения, заменяя прежний.
func (s *Storage) SetVerificationToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return s.execOne(ctx, "storage.SetVerificationToken",
		`UPDATE users SET email_verification_token = $2, email_verification_expires = $3 WHERE id = $1`,
		userID, tokenHash, expiresAt)
}

// MarkEmailVerified подтверждает почту и очищает токен вместе с его сроком.
func (s *Storage) MarkEmailVerified(ctx context.Context, userID string) error {
	return s.execOne(ctx, "storage.MarkEmailVerified",
		`UPDATE users SET email_verified = TRUE,
			email_verification_token = NULL, email_verification_expires = NULL
		 WHERE id = $1`, userID)
}

// SetPasswordResetToken сохраняет хэш токена сброса пароля.
func (s *Storage) SetPasswordResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return s.execOne(ctx, "storage.SetPasswordResetToken",
		`UPDATE users SET password_reset_token = $2, password_reset_expires = $3 WHERE id = $1`,
		userID, tokenHash, expiresAt)
}

// UpdatePassword меняет хэш пароля и гасит токен сброса.
func (s *Storage) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.execOne(ctx, "storage.UpdatePassword",
		`UPDATE users SET password_hash = $2,
			password_reset_token = NULL, password_reset_expires = NULL
		 WHERE id = $1`, userID, passwordHash)
}

// ActivatePremium переводит пользователя в premium до expiresAt.
func (s *Storage) ActivatePremium(ctx context.Context, userID string, expiresAt time.Time) error {
	return s.execOne(ctx, "storage.ActivatePremium",
		`UPDATE users SET subscription_status = 'premium', subscription_expires_at = $2 WHERE id = $1`,
		userID, expiresAt)
}

// ExpireSubscription помечает подписку истёкшей. Обновление условное: строка
// меняется только если пользователь всё ещё premium, поэтому параллельное
// продление не затирается. Возвращает true, если статус изменён.
func (s *Storage) ExpireSubscription(ctx context.Context, userID string, now time.Time) (bool, error) {
	const op = "storage.ExpireSubscription"

	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE users SET subscription_status = 'expired'
		 WHERE id = $1 AND subscription_status = 'premium' AND subscription_expires_at <= $2`,
		userID, now)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// CancelSubscription отменяет активную подписку, сохраняя срок её окончания.
// Возвращает false, если пользователь не premium.
func (s *Storage) CancelSubscription(ctx context.Context, userID string) (bool, error) {
	const op = "storage.CancelSubscription"

	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE users SET subscription_status = 'cancelled'
		 WHERE id = $1 AND subscription_status = 'premium'`, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// ListExpiringSubscriptions возвращает premium-подписки, истекающие в интервале [from, to).
func (s *Storage) ListExpiringSubscriptions(ctx context.Context, from, to time.Time) ([]models.ExpiringSubscription, error) {
	const op = "storage.ListExpiringSubscriptions"

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, username, email, subscription_expires_at
		 FROM users
		 WHERE subscription_status = 'premium'
		   AND subscription_expires_at >= $1 AND subscription_expires_at < $2
		 ORDER BY subscription_expires_at`, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []models.ExpiringSubscription
	for rows.Next() {
		var e models.ExpiringSubscription
		if err := rows.Scan(&e.UserID, &e.Username, &e.Email, &e.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetUserByIDForUpdate возвращает пользователя и блокирует его строку до конца
// транзакции. Вызывать внутри WithinTx.
func (s *Storage) GetUserByIDForUpdate(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByIDForUpdate", "id = $1 FOR UPDATE", userID)
}
