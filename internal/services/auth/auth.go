// Package services содержит логику регистрации, входа и проверки сессий.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/mindwell/internal/lib/apperr"
	"github.com/magabrotheeeer/mindwell/internal/lib/jwt"
	"github.com/magabrotheeeer/mindwell/internal/lib/password"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/models"
	"github.com/magabrotheeeer/mindwell/internal/storage/repository"
)

var (
	// ErrInvalidCredentials неверный логин или пароль.
	ErrInvalidCredentials = apperr.New(apperr.KindAuth, "invalid_credentials", "invalid credentials")
	// ErrEmailNotVerified вход запрещён до подтверждения почты.
	ErrEmailNotVerified = apperr.New(apperr.KindAuth, "email_verification_required",
		"please verify your email address before logging in")
	// ErrUserExists username или email заняты.
	ErrUserExists = apperr.New(apperr.KindConflict, "user_exists", "username or email already exists")
	// ErrUserNotFound пользователь не найден.
	ErrUserNotFound = apperr.New(apperr.KindNotFound, "user_not_found", "user not found")
	// ErrInvalidToken сессионный токен не прошёл проверку.
	ErrInvalidToken = apperr.New(apperr.KindAuth, "invalid_token", "invalid or expired token")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (string, error)

	// GetUserByLogin возвращает пользователя по username или email.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)

	// GetUserByID возвращает пользователя по ID.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// Verifier отправляет письмо подтверждения почты.
type Verifier interface {
	SendVerification(ctx context.Context, user *models.User) error
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	verifier Verifier
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, verifier Verifier, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		verifier: verifier,
		log:      log,
	}
}

// Register создает неподтверждённого пользователя с ролью "user" и статусом free
// и отправляет письмо подтверждения. Ошибка отправки письма регистрацию не
// отменяет: emailSent сообщает клиенту, ушло ли письмо.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (user *models.User, emailSent bool, err error) {
	const op = "services.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	user = &models.User{
		Email:              strings.TrimSpace(email),
		Username:           strings.TrimSpace(username),
		PasswordHash:       hashed,
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubscriptionFree,
	}
	id, err := s.users.CreateUser(ctx, *user)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, false, fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	user.ID = id

	if err := s.verifier.SendVerification(ctx, user); err != nil {
		s.log.Error("failed to send verification email",
			slog.String("op", op), slog.String("user_id", id), sl.Err(err))
		return user, false, nil
	}
	return user, true, nil
}

// Login проверяет пароль пользователя и выпускает JWT. login может быть
// username или email. Неподтверждённая почта запрещает вход.
func (s *AuthService) Login(ctx context.Context, login, rawPassword string) (string, *models.User, error) {
	const op = "services.Login"

	user, err := s.users.GetUserByLogin(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if !user.EmailVerified {
		return "", user, fmt.Errorf("%s: %w", op, ErrEmailNotVerified)
	}

	token, err := s.IssueSession(user)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// IssueSession выпускает JWT для пользователя.
func (s *AuthService) IssueSession(user *models.User) (string, error) {
	return s.jwtMaker.GenerateToken(user.ID, user.Username, user.Role)
}

// Profile возвращает пользователя по ID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	const op = "services.Profile"

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// ValidateToken проверяет JWT и возвращает информацию о пользователе из claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, ErrInvalidToken.Wrap(err)
	}
	return &models.User{
		ID:       claims.UserID(),
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
