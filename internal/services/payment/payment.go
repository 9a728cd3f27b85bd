// Package payment подтверждает оплату премиум-подписки через платёжный шлюз:
// по запросу клиента (Verify) и по вебхуку шлюза (HandleWebhook). Оба пути
// сходятся в одном обновлении журнала платежей.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/mindwell/internal/lib/apperr"
	"github.com/magabrotheeeer/mindwell/internal/lib/metrics"
	"github.com/magabrotheeeer/mindwell/internal/models"
	"github.com/magabrotheeeer/mindwell/internal/paymentprovider"
	"github.com/magabrotheeeer/mindwell/internal/services/subscription"
	"github.com/magabrotheeeer/mindwell/internal/storage/repository"
)

var (
	ErrMissingReference    = apperr.New(apperr.KindValidation, "missing_reference", "payment reference is required")
	ErrUserNotFound        = apperr.New(apperr.KindNotFound, "user_not_found", "user not found")
	ErrGatewayUnreachable  = apperr.New(apperr.KindUpstream, "gateway_unreachable", "payment gateway is unavailable, try again later")
	ErrPaymentNotConfirmed = apperr.New(apperr.KindUpstream, "payment_not_confirmed", "payment was not confirmed by the gateway").WithStatus(402)
	ErrAlreadyProcessed    = apperr.New(apperr.KindConflict, "already_processed", "payment has already been processed")

	ErrMissingSignature     = apperr.New(apperr.KindAuth, "missing_signature", "missing webhook signature")
	ErrInvalidSignature     = apperr.New(apperr.KindAuth, "invalid_signature", "invalid webhook signature")
	ErrMissingCustomerEmail = apperr.New(apperr.KindValidation, "missing_customer_email", "customer email is required")
	ErrMalformedPayload     = apperr.New(apperr.KindValidation, "malformed_payload", "malformed webhook payload")
)

// Repository хранилище пользователей и журнала платежей.
type Repository interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByIDForUpdate(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	PaymentExists(ctx context.Context, reference string) (bool, error)
	InsertPayment(ctx context.Context, p models.Payment) (int64, error)
	ActivatePremium(ctx context.Context, userID string, expiresAt time.Time) error
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Gateway платёжный шлюз.
type Gateway interface {
	VerifyTransaction(ctx context.Context, reference string) (*paymentprovider.Transaction, error)
	InitializeTransaction(ctx context.Context, in paymentprovider.InitializeRequest) (*paymentprovider.InitializeData, error)
}

// Settings параметры тарифа и шлюза.
type Settings struct {
	WebhookSecret string
	PlanAmount    int64
	PlanCurrency  string
	CallbackURL   string
}

// Service обрабатывает оплату подписки.
type Service struct {
	repo     Repository
	gateway  Gateway
	settings Settings
	log      *slog.Logger
	now      func() time.Time
}

// New создаёт Service.
func New(repo Repository, gateway Gateway, settings Settings, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		gateway:  gateway,
		settings: settings,
		log:      log,
		now:      time.Now,
	}
}

// Initialize создаёт транзакцию в шлюзе на один период подписки.
func (s *Service) Initialize(ctx context.Context, userID string) (*paymentprovider.InitializeData, error) {
	const op = "payment.Initialize"

	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := s.gateway.InitializeTransaction(ctx, paymentprovider.InitializeRequest{
		Email:       user.Email,
		Amount:      s.settings.PlanAmount,
		Currency:    s.settings.PlanCurrency,
		Reference:   "mw_" + uuid.NewString(),
		CallbackURL: s.settings.CallbackURL,
		Metadata:    map[string]string{"user_id": user.ID, "plan": "premium_monthly"},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrGatewayUnreachable.Wrap(err))
	}
	return data, nil
}

// Verify подтверждает оплату по reference для пользователя, который
// вернулся со страницы оплаты.
func (s *Service) Verify(ctx context.Context, reference, userID string) (models.SubscriptionView, error) {
	const op = "payment.Verify"

	if reference == "" {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, ErrMissingReference)
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}

	view, err := s.confirm(ctx, reference, user, "verify")
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}
	return view, nil
}

// Reconcile применяет подтверждённую шлюзом оплату к пользователю с почтой
// email. Нужен для ручного разбора вебхуков, у которых не нашёлся пользователь.
func (s *Service) Reconcile(ctx context.Context, reference, email string) (models.SubscriptionView, error) {
	const op = "payment.Reconcile"

	if reference == "" {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, ErrMissingReference)
	}
	if email == "" {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, ErrMissingCustomerEmail)
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}

	view, err := s.confirm(ctx, reference, user, "reconcile")
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}
	return view, nil
}

// confirm спрашивает шлюз о транзакции и при успехе обновляет журнал.
func (s *Service) confirm(ctx context.Context, reference string, user *models.User, path string) (models.SubscriptionView, error) {
	tx, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return models.SubscriptionView{}, ErrGatewayUnreachable.Wrap(err)
	}
	if !tx.Success() {
		return models.SubscriptionView{}, ErrPaymentNotConfirmed
	}

	exists, err := s.repo.PaymentExists(ctx, reference)
	if err != nil {
		return models.SubscriptionView{}, err
	}
	if exists {
		return models.SubscriptionView{}, ErrAlreadyProcessed
	}

	return s.applyLedger(ctx, user.ID, models.Payment{
		ExternalReference: reference,
		Amount:            tx.Amount,
		Currency:          tx.Currency,
		RawPayload:        tx.Raw,
	}, path)
}

// applyLedger записывает платёж и продлевает премиум в одной транзакции.
// Повтор reference (в том числе от параллельного запроса) даёт ErrAlreadyProcessed.
func (s *Service) applyLedger(ctx context.Context, userID string, p models.Payment, path string) (models.SubscriptionView, error) {
	const op = "payment.applyLedger"

	p.UserID = userID
	p.Status = models.PaymentSuccess
	p.PaymentType = models.PaymentTypeSubscription

	var expiresAt time.Time
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetUserByIDForUpdate(ctx, userID); err != nil {
			return err
		}
		if _, err := s.repo.InsertPayment(ctx, p); err != nil {
			return err
		}
		expiresAt = subscription.NextExpiry(s.now())
		return s.repo.ActivatePremium(ctx, userID, expiresAt)
	})
	if errors.Is(err, repository.ErrDuplicateReference) {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, ErrAlreadyProcessed)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.PremiumActivations.WithLabelValues(path).Inc()
	s.log.Info("premium activated",
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.String("reference", p.ExternalReference),
		slog.String("path", path),
		slog.Time("expires_at", expiresAt),
	)
	return models.SubscriptionView{
		SubscriptionStatus: models.SubscriptionPremium,
		IsPremium:          true,
		ExpiresAt:          &expiresAt,
	}, nil
}
