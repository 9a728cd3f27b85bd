// Package subscription вычисляет статус премиум-подписки и управляет им.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mindwell/internal/lib/apperr"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/models"
	"github.com/magabrotheeeer/mindwell/internal/storage/repository"
)

// Period длительность одного оплаченного периода.
const Period = 30 * 24 * time.Hour

var (
	// ErrUserNotFound пользователь не найден.
	ErrUserNotFound = apperr.New(apperr.KindNotFound, "user_not_found", "user not found")
	// ErrNotPremium отменить можно только активную подписку.
	ErrNotPremium = apperr.New(apperr.KindConflict, "not_premium", "no active premium subscription")
)

// Repository хранилище пользователей и платежей.
type Repository interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	ExpireSubscription(ctx context.Context, userID string, now time.Time) (bool, error)
	CancelSubscription(ctx context.Context, userID string) (bool, error)
	ListPayments(ctx context.Context, userID string) ([]models.Payment, error)
}

// ComputeStatus вычисляет статус подписки на момент now без побочных эффектов.
// premium истинно, только если статус premium и срок не задан или ещё не
// наступил. changed сообщает, что сохранённый статус надо заменить на status.
func ComputeStatus(user *models.User, now time.Time) (status string, premium, changed bool) {
	status = user.SubscriptionStatus
	if status != models.SubscriptionPremium {
		return status, false, false
	}
	if user.SubscriptionExpiresAt == nil || now.Before(*user.SubscriptionExpiresAt) {
		return status, true, false
	}
	return models.SubscriptionExpired, false, true
}

// NextExpiry срок окончания после оплаты. Период всегда отсчитывается от now,
// остаток активной подписки не переносится.
func NextExpiry(now time.Time) time.Time {
	return now.Add(Period)
}

// Service операции над подпиской пользователя.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New создаёт Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Evaluate вычисляет статус пользователя и, если подписка истекла, сохраняет
// статус expired. Ошибка сохранения только логируется: ответ вычисляется и
// без неё, а следующее чтение повторит попытку.
func (s *Service) Evaluate(ctx context.Context, user *models.User) (premium bool, status string) {
	const op = "subscription.Evaluate"

	now := s.now()
	status, premium, changed := ComputeStatus(user, now)
	if !changed {
		return premium, status
	}

	if _, err := s.repo.ExpireSubscription(ctx, user.ID, now); err != nil {
		s.log.Error("failed to persist expired subscription",
			slog.String("op", op), slog.String("user_id", user.ID), sl.Err(err))
		return premium, status
	}
	user.SubscriptionStatus = status
	return premium, status
}

// IsPremium загружает пользователя и возвращает, активен ли премиум, и статус.
func (s *Service) IsPremium(ctx context.Context, userID string) (bool, string, error) {
	const op = "subscription.IsPremium"

	user, err := s.load(ctx, userID)
	if err != nil {
		return false, "", fmt.Errorf("%s: %w", op, err)
	}
	premium, status := s.Evaluate(ctx, user)
	return premium, status, nil
}

// Status возвращает состояние подписки для клиента.
func (s *Service) Status(ctx context.Context, userID string) (models.SubscriptionView, error) {
	const op = "subscription.Status"

	user, err := s.load(ctx, userID)
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}
	premium, status := s.Evaluate(ctx, user)
	return models.SubscriptionView{
		SubscriptionStatus: status,
		IsPremium:          premium,
		ExpiresAt:          user.SubscriptionExpiresAt,
	}, nil
}

// Cancel отменяет подписку. Оплаченный срок сохраняется, но доступ к премиум
// функциям закрывается сразу.
func (s *Service) Cancel(ctx context.Context, userID string) (models.SubscriptionView, error) {
	const op = "subscription.Cancel"

	if _, _, err := s.IsPremium(ctx, userID); err != nil {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}
	ok, err := s.repo.CancelSubscription(ctx, userID)
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, ErrNotPremium)
	}
	s.log.Info("subscription cancelled", slog.String("op", op), slog.String("user_id", userID))
	return s.Status(ctx, userID)
}

// History возвращает платежи пользователя, новые первыми.
func (s *Service) History(ctx context.Context, userID string) ([]models.Payment, error) {
	const op = "subscription.History"

	payments, err := s.repo.ListPayments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payments, nil
}

func (s *Service) load(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
