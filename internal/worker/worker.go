package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"product_api/internal/observability"
	"product_api/internal/queue"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	retryHeader = "x-retry-count"
	maxRetries  = 3
)

const (
	resultOK      = "ok"
	resultInvalid = "invalid"
	resultUnknown = "unknown"
	resultRetried = "retried"
	resultDropped = "dropped"
)

// publisher is the part of *amqp.Channel used to requeue a failed event.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Worker struct {
	id        int
	queueName string
	auditor   Auditor
	metrics   *observability.Metrics
}

func New(id int, queueName string, auditor Auditor, metrics *observability.Metrics) *Worker {
	if auditor == nil {
		auditor = LogAuditor{}
	}
	return &Worker{id: id, queueName: queueName, auditor: auditor, metrics: metrics}
}

// Run consumes the event queue until ctx is done or the channel closes.
func (w *Worker) Run(ctx context.Context, conn *amqp.Connection) error {
	ch, err := queue.CreateChannel(conn)
	if err != nil {
		return fmt.Errorf("worker %d: %w", w.id, err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("worker %d failed to set QoS: %w", w.id, err)
	}

	msgs, err := ch.Consume(
		w.queueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("worker %d failed to start consuming messages: %w", w.id, err)
	}

	logrus.Infof("Worker %d started", w.id)

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("Worker %d stopping", w.id)
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("worker %d: delivery channel closed", w.id)
			}
			w.handleDelivery(ctx, ch, msg)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, pub publisher, msg amqp.Delivery) string {
	var event queue.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		logrus.WithError(err).Error("Invalid event payload")
		w.finish(msg, "", resultInvalid)
		return resultInvalid
	}

	if !event.Type.Known() {
		logrus.WithField("event", event.Type).Warn("Dropping event of unknown type")
		w.finish(msg, event.Type, resultUnknown)
		return resultUnknown
	}

	retryCount := retriesOf(msg)
	err := handleEvent(ctx, w.auditor, event, w.id)
	if err == nil {
		w.finish(msg, event.Type, resultOK)
		return resultOK
	}

	logrus.WithError(err).WithField("event", event.Type).Error("Failed to process event")

	if retryCount >= maxRetries {
		w.finish(msg, event.Type, resultDropped)
		return resultDropped
	}

	logrus.Infof("Worker %d: event failed, requeuing (retry %d/%d)", w.id, retryCount+1, maxRetries)
	if err := republishWithRetry(ctx, pub, &msg, retryCount+1); err != nil {
		logrus.WithError(err).Error("Failed to republish message")
		w.finish(msg, event.Type, resultDropped)
		return resultDropped
	}

	w.finish(msg, event.Type, resultRetried)
	return resultRetried
}

// finish acks handled or requeued messages and dead-drops everything else.
func (w *Worker) finish(msg amqp.Delivery, t queue.EventType, result string) {
	var err error
	switch result {
	case resultOK, resultRetried:
		err = msg.Ack(false)
	default:
		err = msg.Nack(false, false)
	}
	if err != nil {
		logrus.WithError(err).Warn("Failed to acknowledge message")
	}

	if w.metrics != nil {
		label := string(t)
		if label == "" {
			label = "unparsed"
		}
		w.metrics.EventsConsumedTotal.WithLabelValues(label, result).Inc()
	}
}

func retriesOf(msg amqp.Delivery) int32 {
	if msg.Headers == nil {
		return 0
	}
	if count, ok := msg.Headers[retryHeader].(int32); ok {
		return count
	}
	return 0
}

func republishWithRetry(ctx context.Context, pub publisher, msg *amqp.Delivery, retryCount int32) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[retryHeader] = retryCount

	return pub.PublishWithContext(
		ctx,
		"",             // exchange
		msg.RoutingKey, // routing key (queue name)
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  msg.ContentType,
			DeliveryMode: amqp.Persistent,
			Body:         msg.Body,
			Headers:      headers,
		},
	)
}
