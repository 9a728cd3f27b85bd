// Package sender доставляет письма из очереди по SMTP.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/mindwell/internal/lib/metrics"
	"github.com/magabrotheeeer/mindwell/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/lib/smtp"
	"github.com/magabrotheeeer/mindwell/internal/models"
)

// Transport SMTP-соединение.
type Transport interface {
	Configured() bool
	Connect() (smtp.Client, error)
	From() string
}

// Service отправитель писем.
type Service struct {
	transport Transport
	log       *slog.Logger
}

// New создаёт Service.
func New(transport Transport, log *slog.Logger) *Service {
	return &Service{transport: transport, log: log}
}

// HandleMessage обрабатывает сообщение из очереди. Нераспознанные сообщения
// отбрасываются, ошибки SMTP возвращают сообщение в очередь.
func (s *Service) HandleMessage(body []byte) error {
	const op = "sender.HandleMessage"

	var msg models.EmailMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrDrop, err)
	}
	if msg.To == "" {
		return fmt.Errorf("%s: %w: empty recipient", op, rabbitmq.ErrDrop)
	}
	return s.Send(context.Background(), msg)
}

// Send отправляет письмо. Без настроенного SMTP письмо только логируется.
func (s *Service) Send(_ context.Context, msg models.EmailMessage) error {
	const op = "sender.Send"
	log := s.log.With(slog.String("op", op), slog.String("kind", msg.Kind), slog.String("to", msg.To))

	if !s.transport.Configured() {
		log.Info("smtp not configured, email logged only", slog.String("subject", msg.Subject))
		metrics.EmailsSent.WithLabelValues(msg.Kind, "logged").Inc()
		return nil
	}

	if err := s.deliver(msg); err != nil {
		log.Error("failed to send email", sl.Err(err))
		metrics.EmailsSent.WithLabelValues(msg.Kind, "failed").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("email sent successfully")
	metrics.EmailsSent.WithLabelValues(msg.Kind, "sent").Inc()
	return nil
}

func (s *Service) deliver(msg models.EmailMessage) error {
	from := s.transport.From()
	raw, err := smtp.BuildMessage(from, msg)
	if err != nil {
		return err
	}

	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		// после Quit соединение уже закрыто
		_ = client.Close()
	}()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := wc.Write(raw); err != nil {
		_ = wc.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}
	return client.Quit()
}
