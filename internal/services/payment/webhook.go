package payment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/mindwell/internal/lib/metrics"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/models"
	"github.com/magabrotheeeer/mindwell/internal/paymentprovider"
	"github.com/magabrotheeeer/mindwell/internal/storage/repository"
)

// WebhookOutcome результат обработки вебхука. Кроме ошибок подписи, любой
// результат подтверждается шлюзу ответом 200, чтобы он не повторял доставку.
type WebhookOutcome string

const (
	OutcomeProcessed        WebhookOutcome = "processed"
	OutcomeIgnored          WebhookOutcome = "ignored"
	OutcomeAlreadyProcessed WebhookOutcome = "already_processed"
	OutcomeUserNotFound     WebhookOutcome = "user_not_found"
	OutcomeInvalidPayload   WebhookOutcome = "invalid_payload"
	OutcomeFailed           WebhookOutcome = "failed"
)

// HandleWebhook обрабатывает вебхук шлюза. rawBody должен быть ровно тем,
// что пришло по сети: подпись проверяется до разбора JSON. Ошибка
// возвращается только при отсутствующей или неверной подписи.
func (s *Service) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (WebhookOutcome, error) {
	const op = "payment.HandleWebhook"
	log := s.log.With(slog.String("op", op))

	if signature == "" {
		metrics.WebhookEvents.WithLabelValues("missing_signature").Inc()
		return "", ErrMissingSignature
	}
	if !paymentprovider.VerifySignature(s.settings.WebhookSecret, rawBody, signature) {
		metrics.WebhookEvents.WithLabelValues("invalid_signature").Inc()
		log.Warn("webhook signature mismatch")
		return "", ErrInvalidSignature
	}

	outcome := s.processWebhook(ctx, log, rawBody)
	metrics.WebhookEvents.WithLabelValues(string(outcome)).Inc()
	return outcome, nil
}

func (s *Service) processWebhook(ctx context.Context, log *slog.Logger, rawBody []byte) WebhookOutcome {
	var event paymentprovider.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		log.Error("failed to decode webhook payload", sl.Err(ErrMalformedPayload.Wrap(err)))
		return OutcomeInvalidPayload
	}
	log = log.With(slog.String("event", event.Event), slog.String("reference", event.Data.Reference))

	if event.Event != paymentprovider.EventChargeSuccess {
		log.Info("webhook event ignored")
		return OutcomeIgnored
	}
	if event.Data.Reference == "" {
		log.Error("webhook without reference", sl.Err(ErrMissingReference))
		return OutcomeInvalidPayload
	}
	if event.Data.Customer.Email == "" {
		log.Error("webhook without customer email", sl.Err(ErrMissingCustomerEmail))
		return OutcomeInvalidPayload
	}

	exists, err := s.repo.PaymentExists(ctx, event.Data.Reference)
	if err != nil {
		log.Error("failed to check payment reference", sl.Err(err))
		return OutcomeFailed
	}
	if exists {
		log.Info("webhook for already processed payment")
		return OutcomeAlreadyProcessed
	}

	user, err := s.repo.GetUserByEmail(ctx, event.Data.Customer.Email)
	if errors.Is(err, repository.ErrNotFound) {
		// Оплата есть, а пользователя нет: деньги не зачислены. Шлюзу
		// отвечаем 200, разбор вручную через mindwellctl payment reconcile.
		metrics.WebhookUnresolved.Inc()
		log.Error("successful charge for unknown customer, reconcile manually",
			slog.String("email", event.Data.Customer.Email),
			slog.Int64("amount", event.Data.Amount),
			slog.String("currency", event.Data.Currency),
		)
		return OutcomeUserNotFound
	}
	if err != nil {
		log.Error("failed to resolve customer", sl.Err(err))
		return OutcomeFailed
	}

	_, err = s.applyLedger(ctx, user.ID, models.Payment{
		ExternalReference: event.Data.Reference,
		Amount:            event.Data.Amount,
		Currency:          event.Data.Currency,
		RawPayload:        rawBody,
	}, "webhook")
	if errors.Is(err, ErrAlreadyProcessed) {
		log.Info("concurrent delivery already recorded this payment")
		return OutcomeAlreadyProcessed
	}
	if err != nil {
		log.Error("failed to apply ledger update", slog.String("user_id", user.ID), sl.Err(err))
		return OutcomeFailed
	}
	return OutcomeProcessed
}
