package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"product_api/internal/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	keys []string
	msgs []amqp.Publishing
	err  error
}

func (r *recordingChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if r.err != nil {
		return r.err
	}
	r.keys = append(r.keys, key)
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recordingChannel) Close() error { return nil }

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &recordingChannel{}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	p := newPublisher(ch, "catalog_events", metrics)

	event := NewEvent(ProductCreated, "prod-1", "user-1")
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, ch.msgs, 1)
	assert.Equal(t, "catalog_events", ch.keys[0])
	msg := ch.msgs[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "product.created", msg.Type)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "product.created", decoded["type"])
	assert.Equal(t, "prod-1", decoded["entityId"])
	assert.Equal(t, "user-1", decoded["actorId"])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsPublishedTotal.WithLabelValues("product.created", "success")))
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &recordingChannel{err: errors.New("channel closed")}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	p := newPublisher(ch, "catalog_events", metrics)

	err := p.Publish(context.Background(), NewEvent(UserDeleted, "user-9", ""))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user.deleted")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsPublishedTotal.WithLabelValues("user.deleted", "error")))
}

func TestEventType_Known(t *testing.T) {
	assert.True(t, ProductUpdated.Known())
	assert.True(t, UserCreated.Known())
	assert.False(t, EventType("order.created").Known())
}
