package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"product_api/internal/observability"

	amqp "github.com/rabbitmq/amqp091-go"
)

type EventType string

const (
	ProductCreated EventType = "product.created"
	ProductUpdated EventType = "product.updated"
	ProductDeleted EventType = "product.deleted"
	UserCreated    EventType = "user.created"
	UserUpdated    EventType = "user.updated"
	UserDeleted    EventType = "user.deleted"
)

// Known reports whether t is one of the event types this service emits.
func (t EventType) Known() bool {
	switch t {
	case ProductCreated, ProductUpdated, ProductDeleted, UserCreated, UserUpdated, UserDeleted:
		return true
	}
	return false
}

// Event is the message body published after every successful mutation.
type Event struct {
	Type       EventType `json:"type"`
	EntityID   string    `json:"entityId"`
	ActorID    string    `json:"actorId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewEvent(t EventType, entityID, actorID string) Event {
	return Event{
		Type:       t,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends events to a single durable queue through the default
// exchange. A channel is not shared across concurrent publishes.
type AMQPPublisher struct {
	mu      sync.Mutex
	ch      channel
	queue   string
	metrics *observability.Metrics
}

func NewAMQPPublisher(conn *amqp.Connection, queueName string, metrics *observability.Metrics) (*AMQPPublisher, error) {
	ch, err := CreateChannel(conn)
	if err != nil {
		return nil, err
	}
	if _, err := DeclareQueue(ch, queueName); err != nil {
		ch.Close()
		return nil, err
	}
	return newPublisher(ch, queueName, metrics), nil
}

func newPublisher(ch channel, queueName string, metrics *observability.Metrics) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, queue: queueName, metrics: metrics}
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	p.mu.Lock()
	err = p.ch.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	p.mu.Unlock()

	result := "success"
	if err != nil {
		result = "error"
	}
	if p.metrics != nil {
		p.metrics.EventsPublishedTotal.WithLabelValues(string(event.Type), result).Inc()
	}
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.ch.Close()
}
