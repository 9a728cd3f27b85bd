// Package verification выпускает и погашает одноразовые токены из писем:
// подтверждение почты и сброс пароля.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mindwell/internal/emails"
	"github.com/magabrotheeeer/mindwell/internal/lib/apperr"
	"github.com/magabrotheeeer/mindwell/internal/lib/password"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/lib/token"
	"github.com/magabrotheeeer/mindwell/internal/models"
	"github.com/magabrotheeeer/mindwell/internal/storage/repository"
)

const invalidTokenMessage = "invalid or expired token"

var (
	// ErrTokenNotFound токен не выдавался или уже погашен.
	ErrTokenNotFound = apperr.New(apperr.KindAuth, "token_not_found", invalidTokenMessage).WithStatus(400)
	// ErrTokenExpired срок токена истёк. Клиент видит то же сообщение, что и для
	// неизвестного токена, код отличается для логов.
	ErrTokenExpired = apperr.New(apperr.KindAuth, "token_expired", invalidTokenMessage).WithStatus(400)
	// ErrAlreadyVerified почта уже подтверждена.
	ErrAlreadyVerified = apperr.New(apperr.KindConflict, "already_verified", "email is already verified")
	// ErrUserNotFound пользователь не найден.
	ErrUserNotFound = apperr.New(apperr.KindNotFound, "user_not_found", "user not found")
	// ErrWeakPassword пароль короче password.MinLength.
	ErrWeakPassword = apperr.New(apperr.KindValidation, "weak_password",
		fmt.Sprintf("password must be at least %d characters", password.MinLength))
)

// UserRepository хранилище пользователей и их токенов.
type UserRepository interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetVerificationToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetUserByVerificationToken(ctx context.Context, tokenHash string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, userID string) error
	SetPasswordResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// TxManager выполняет функцию в одной транзакции.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Mailer отправляет письма.
type Mailer interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// Settings параметры токенов и ссылок.
type Settings struct {
	FrontendURL      string
	VerificationTTL  time.Duration
	PasswordResetTTL time.Duration
}

// Service выпускает и погашает токены.
type Service struct {
	users    UserRepository
	tx       TxManager
	mailer   Mailer
	settings Settings
	log      *slog.Logger
	now      func() time.Time
}

// New создаёт Service.
func New(users UserRepository, tx TxManager, mailer Mailer, settings Settings, log *slog.Logger) *Service {
	if settings.VerificationTTL <= 0 {
		settings.VerificationTTL = 24 * time.Hour
	}
	if settings.PasswordResetTTL <= 0 {
		settings.PasswordResetTTL = time.Hour
	}
	return &Service{
		users:    users,
		tx:       tx,
		mailer:   mailer,
		settings: settings,
		log:      log,
		now:      time.Now,
	}
}

// IssueToken выпускает токен подтверждения почты, заменяя ранее выданный.
// Возвращает исходное значение токена, в базе остаётся только хэш.
func (s *Service) IssueToken(ctx context.Context, userID string) (string, error) {
	const op = "verification.IssueToken"

	plain, hash, err := token.Generate()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	expiresAt := s.now().Add(s.settings.VerificationTTL)
	if err := s.users.SetVerificationToken(ctx, userID, hash, expiresAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return plain, nil
}

// ConsumeToken погашает токен подтверждения: строка пользователя блокируется,
// почта помечается подтверждённой, токен очищается. Всё в одной транзакции,
// поэтому одновременные запросы с одним токеном успешны не более одного раза.
func (s *Service) ConsumeToken(ctx context.Context, plain string) (*models.User, error) {
	const op = "verification.ConsumeToken"

	if plain == "" {
		return nil, ErrTokenNotFound
	}

	var user *models.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.GetUserByVerificationToken(ctx, token.Hash(plain))
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		if err != nil {
			return err
		}
		if u.EmailVerificationExpires == nil || !s.now().Before(*u.EmailVerificationExpires) {
			return ErrTokenExpired
		}
		if err := s.users.MarkEmailVerified(ctx, u.ID); err != nil {
			return err
		}
		u.EmailVerified = true
		u.EmailVerificationToken = nil
		u.EmailVerificationExpires = nil
		user = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// SendVerification выпускает токен и отправляет письмо со ссылкой.
func (s *Service) SendVerification(ctx context.Context, user *models.User) error {
	const op = "verification.SendVerification"

	plain, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	msg := emails.Verification(s.settings.FrontendURL, user.Email, user.Username, plain, s.settings.VerificationTTL)
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Resend повторно отправляет письмо подтверждения.
func (s *Service) Resend(ctx context.Context, email string) error {
	const op = "verification.Resend"

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.EmailVerified {
		return fmt.Errorf("%s: %w", op, ErrAlreadyVerified)
	}
	if err := s.SendVerification(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RequestPasswordReset отправляет письмо со ссылкой сброса пароля. Для
// неизвестной почты ничего не делает и ошибку не возвращает, чтобы ответ не
// раскрывал, зарегистрирован ли адрес.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	const op = "verification.RequestPasswordReset"
	log := s.log.With(slog.String("op", op))

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		log.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	plain, hash, err := token.Generate()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SetPasswordResetToken(ctx, user.ID, hash, s.now().Add(s.settings.PasswordResetTTL)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := emails.PasswordReset(s.settings.FrontendURL, user.Email, user.Username, plain, s.settings.PasswordResetTTL)
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Error("failed to send password reset email", slog.String("user_id", user.ID), sl.Err(err))
	}
	return nil
}

// ResetPassword погашает токен сброса и устанавливает новый пароль.
func (s *Service) ResetPassword(ctx context.Context, plain, newPassword string) error {
	const op = "verification.ResetPassword"

	if len(newPassword) < password.MinLength {
		return ErrWeakPassword
	}
	if plain == "" {
		return ErrTokenNotFound
	}
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.GetUserByResetToken(ctx, token.Hash(plain))
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		if err != nil {
			return err
		}
		if u.PasswordResetExpires == nil || !s.now().Before(*u.PasswordResetExpires) {
			return ErrTokenExpired
		}
		return s.users.UpdatePassword(ctx, u.ID, hashed)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
