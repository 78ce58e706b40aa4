// Package notifications publishes reservation change notices for the
// mail/formatting services downstream. Fire and forget: the core never
// consumes a result.
package notifications

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/resplan/resplan-backend/internal/config"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

type Notifier struct {
	logger *zap.SugaredLogger
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func NewNotifier(logger *zap.SugaredLogger) (*Notifier, error) {
	conn, err := amqp.Dial(config.AMQPURL())
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(config.AMQPExchange(), "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	n := &Notifier{logger: logger, conn: conn, ch: ch}
	closer.Bind(func() {
		_ = n.ch.Close()
		if err := n.conn.Close(); err != nil {
			logger.Errorw("Failed closing rabbitmq connection", "err", err)
		}
	})

	return n, nil
}

func (n *Notifier) Notify(ctx context.Context, reservationID int64) {
	body := fmt.Sprintf(`{"reservation_id":%d}`, reservationID)
	err := n.ch.PublishWithContext(ctx, config.AMQPExchange(), "reservation.changed", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        []byte(body),
	})
	if err != nil {
		n.logger.Errorw("failed to publish notification",
			"reservation_id", reservationID, "err", err)
	}
}
