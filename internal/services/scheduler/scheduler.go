// Package scheduler периодически рассылает напоминания об окончании
// премиум-подписки.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mindwell/internal/emails"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/models"
)

// SubscriptionRepository поиск истекающих подписок.
type SubscriptionRepository interface {
	ListExpiringSubscriptions(ctx context.Context, from, to time.Time) ([]models.ExpiringSubscription, error)
}

// Mailer отправка писем.
type Mailer interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// Settings параметры рассылки.
type Settings struct {
	FrontendURL string
	// Lead за сколько до окончания подписки отправлять напоминание.
	Lead time.Duration
	// Interval период запуска.
	Interval time.Duration
}

// Service планировщик напоминаний.
type Service struct {
	repo     SubscriptionRepository
	mailer   Mailer
	settings Settings
	log      *slog.Logger
	now      func() time.Time
}

// New создаёт Service.
func New(repo SubscriptionRepository, mailer Mailer, settings Settings, log *slog.Logger) *Service {
	if settings.Interval <= 0 {
		settings.Interval = 24 * time.Hour
	}
	if settings.Lead <= 0 {
		settings.Lead = 72 * time.Hour
	}
	return &Service{repo: repo, mailer: mailer, settings: settings, log: log, now: time.Now}
}

// Run запускает рассылку сразу и затем каждые Interval до отмены ctx.
func (s *Service) Run(ctx context.Context) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.settings.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce отправляет напоминания подпискам, срок которых попадает в окно
// [now+Lead-Interval, now+Lead). Соседние запуски берут соседние окна, так
// что каждая подписка получает одно напоминание. Возвращает число
// поставленных в очередь писем.
func (s *Service) RunOnce(ctx context.Context) int {
	const op = "scheduler.RunOnce"
	log := s.log.With(slog.String("op", op))

	to := s.now().Add(s.settings.Lead)
	from := to.Add(-s.settings.Interval)

	subs, err := s.repo.ListExpiringSubscriptions(ctx, from, to)
	if err != nil {
		log.Error("failed to find expiring subscriptions", sl.Err(err))
		return 0
	}
	if len(subs) == 0 {
		log.Info("no expiring subscriptions found")
		return 0
	}
	log.Info("found expiring subscriptions", slog.Int("count", len(subs)))

	sent := 0
	for _, sub := range subs {
		if err := s.mailer.Send(ctx, emails.SubscriptionExpiry(s.settings.FrontendURL, sub)); err != nil {
			log.Error("failed to queue reminder", slog.String("user_id", sub.UserID), sl.Err(err))
			continue
		}
		sent++
	}
	return sent
}
