package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/resplan/resplan-backend/internal/config"
	"github.com/resplan/resplan-backend/internal/model"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

// Consumer feeds the listener from the calendar-changes queue. Only a
// failure to open the session at startup is fatal; everything after
// that is handled per message.
type Consumer struct {
	logger *zap.SugaredLogger
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
}

func NewConsumer(logger *zap.SugaredLogger) (*Consumer, error) {
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
	q, err := ch.QueueDeclare(config.InboundQueue(), true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "calendar.changed.*", config.AMQPExchange(), false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	c := &Consumer{logger: logger, conn: conn, ch: ch, queue: q.Name}
	closer.Bind(func() {
		_ = c.ch.Close()
		if err := c.conn.Close(); err != nil {
			logger.Errorw("Failed closing rabbitmq connection", "err", err)
		}
	})

	return c, nil
}

// Start pumps deliveries into the listener until the context ends.
func (c *Consumer) Start(ctx context.Context, l *Listener) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		for d := range deliveries {
			m, err := decodeMessage(d.Body)
			if err != nil {
				c.logger.Errorw("undecodable inbound message", "err", err)
				_ = d.Nack(false, false)
				continue
			}
			l.Enqueue(m)
			_ = d.Ack(false)
		}
	}()

	return nil
}

type eventEnvelope struct {
	Principal string       `json:"principal"`
	Event     eventPayload `json:"event"`
}

type eventPayload struct {
	UniqueID       string           `json:"unique_id"`
	Kind           string           `json:"kind"`
	Subject        string           `json:"subject"`
	Body           string           `json:"body"`
	BodyIsHTML     bool             `json:"body_is_html"`
	Start          time.Time        `json:"start"`
	End            time.Time        `json:"end"`
	Location       string           `json:"location"`
	Organizer      string           `json:"organizer"`
	Attendees      []string         `json:"attendees"`
	ReservationID  int64            `json:"reservation_id"`
	OccurrenceIDs  map[string]int64 `json:"occurrence_ids"`
	MasterUniqueID string           `json:"master_unique_id"`
	OriginalStart  time.Time        `json:"original_start"`
}

var kinds = map[string]model.AppointmentKind{
	"single":           model.AppointmentSingle,
	"recurring_master": model.AppointmentRecurringMaster,
	"occurrence":       model.AppointmentOccurrence,
	"exception":        model.AppointmentException,
}

func decodeMessage(body []byte) (*Message, error) {
	var env eventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	kind, ok := kinds[env.Event.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown appointment kind %q", env.Event.Kind)
	}

	original := env.Event.OriginalStart
	if original.IsZero() {
		original = env.Event.Start
	}

	return &Message{
		Principal: env.Principal,
		Event: &model.CalendarEvent{
			UniqueID:       env.Event.UniqueID,
			Kind:           kind,
			Subject:        env.Event.Subject,
			Body:           env.Event.Body,
			BodyIsHTML:     env.Event.BodyIsHTML,
			Start:          env.Event.Start,
			End:            env.Event.End,
			Location:       env.Event.Location,
			Organizer:      env.Event.Organizer,
			Attendees:      env.Event.Attendees,
			ReservationID:  env.Event.ReservationID,
			OccurrenceIDs:  env.Event.OccurrenceIDs,
			MasterUniqueID: env.Event.MasterUniqueID,
			OriginalStart:  original,
		},
	}, nil
}
