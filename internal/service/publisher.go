package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/auth-service/internal/queue"
)

// Publisher delivers auth events.  Failures are reported to the caller, who
// logs and otherwise ignores them.
type Publisher interface {
	Publish(ctx context.Context, ev queue.AuthEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.AuthEvent) error { return nil }

// AMQPPublisher publishes each event on its own connection to the durable
// auth events queue.  Auth traffic is low enough that a pooled channel is
// not worth the reconnect handling.
type AMQPPublisher struct {
	URL string
}

func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.AuthEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue.AuthEventsQueue, // name
		true,                  // durable
		false,                 // autoDelete
		false,                 // exclusive
		false,                 // noWait
		nil,                   // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return ch.PublishWithContext(ctx,
		"",                    // default exchange
		queue.AuthEventsQueue, // routing key = queue name
		false,                 // mandatory
		false,                 // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.ID,
			Type:         ev.Type,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// newEvent stamps an event with a fresh id and the current time.
func newEvent(typ string, userID uint64, email string) queue.AuthEvent {
	return queue.AuthEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		UserID:     userID,
		Email:      email,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
