package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
)

// prefetch сколько сообщений обрабатывается одновременно.
const prefetch = 10

// ErrDrop обработчик возвращает его для сообщений, которые нет смысла
// доставлять повторно (например, битый JSON).
var ErrDrop = errors.New("drop message")

// ConsumerMessage запускает потребителя очереди. Успешно обработанные
// сообщения подтверждаются, ошибка возвращает сообщение в очередь, ErrDrop
// отбрасывает его. Обработка идёт до отмены ctx или закрытия канала;
// возвращённый канал закрывается, когда завершились все начатые обработчики.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, handler func([]byte) error, log *slog.Logger) (<-chan struct{}, error) {
	const op = "rabbitmq.ConsumerMessage"
	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		var wg sync.WaitGroup
		defer wg.Wait()

		sem := make(chan struct{}, prefetch)
		for {
			select {
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				sem <- struct{}{}
				wg.Add(1)
				go func(d amqp.Delivery) {
					defer wg.Done()
					defer func() { <-sem }()
					settle(d, handler(d.Body), log)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return finished, nil
}

// Acknowledger часть amqp.Delivery для подтверждения.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(d Acknowledger, err error, log *slog.Logger) {
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
	case errors.Is(err, ErrDrop):
		log.Error("dropping message", sl.Err(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	default:
		log.Warn("message handling failed, requeueing", sl.Err(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	}
}
