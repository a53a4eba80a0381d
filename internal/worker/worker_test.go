package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"product_api/internal/observability"
	"product_api/internal/queue"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcknowledger struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *fakeAcknowledger) Ack(uint64, bool) error { a.acked++; return nil }

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(uint64, bool) error { return nil }

type fakePublisher struct {
	published []amqp.Publishing
	keys      []string
	err       error
}

func (p *fakePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	p.published = append(p.published, msg)
	p.keys = append(p.keys, key)
	return p.err
}

type fakeAuditor struct {
	events []queue.Event
	err    error
}

func (a *fakeAuditor) Record(_ context.Context, e queue.Event) error {
	a.events = append(a.events, e)
	return a.err
}

func delivery(t *testing.T, ack amqp.Acknowledger, body any, headers amqp.Table) amqp.Delivery {
	t.Helper()
	raw, ok := body.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	return amqp.Delivery{
		Acknowledger: ack,
		Body:         raw,
		Headers:      headers,
		RoutingKey:   "catalog_events",
		ContentType:  "application/json",
	}
}

func TestHandleDelivery_RecordsKnownEvent(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	auditor := &fakeAuditor{}
	w := New(1, "catalog_events", auditor, metrics)
	ack := &fakeAcknowledger{}

	event := queue.NewEvent(queue.ProductCreated, "p-1", "u-1")
	result := w.handleDelivery(context.Background(), &fakePublisher{}, delivery(t, ack, event, nil))

	assert.Equal(t, resultOK, result)
	assert.Equal(t, 1, ack.acked)
	require.Len(t, auditor.events, 1)
	assert.Equal(t, "p-1", auditor.events[0].EntityID)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsConsumedTotal.WithLabelValues("product.created", resultOK)))
}

func TestHandleDelivery_DropsUnknownAndInvalid(t *testing.T) {
	w := New(1, "catalog_events", &fakeAuditor{}, nil)

	ack := &fakeAcknowledger{}
	result := w.handleDelivery(context.Background(), &fakePublisher{}, delivery(t, ack, map[string]string{"type": "order.created"}, nil))
	assert.Equal(t, resultUnknown, result)
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)

	ack = &fakeAcknowledger{}
	result = w.handleDelivery(context.Background(), &fakePublisher{}, delivery(t, ack, []byte("{not json"), nil))
	assert.Equal(t, resultInvalid, result)
	assert.Equal(t, 1, ack.nacked)
}

func TestHandleDelivery_RetriesFailedEvent(t *testing.T) {
	auditor := &fakeAuditor{err: errors.New("sink unavailable")}
	w := New(1, "catalog_events", auditor, nil)
	pub := &fakePublisher{}
	ack := &fakeAcknowledger{}

	event := queue.NewEvent(queue.UserUpdated, "u-1", "")
	result := w.handleDelivery(context.Background(), pub, delivery(t, ack, event, amqp.Table{retryHeader: int32(1)}))

	assert.Equal(t, resultRetried, result)
	assert.Equal(t, 1, ack.acked)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "catalog_events", pub.keys[0])
	assert.Equal(t, int32(2), pub.published[0].Headers[retryHeader])
}

func TestHandleDelivery_DropsAfterMaxRetries(t *testing.T) {
	auditor := &fakeAuditor{err: errors.New("sink unavailable")}
	w := New(1, "catalog_events", auditor, nil)
	pub := &fakePublisher{}
	ack := &fakeAcknowledger{}

	event := queue.NewEvent(queue.ProductDeleted, "p-1", "")
	result := w.handleDelivery(context.Background(), pub, delivery(t, ack, event, amqp.Table{retryHeader: int32(maxRetries)}))

	assert.Equal(t, resultDropped, result)
	assert.Equal(t, 1, ack.nacked)
	assert.Empty(t, pub.published)
}

func TestHandleDelivery_DropsWhenRepublishFails(t *testing.T) {
	auditor := &fakeAuditor{err: errors.New("sink unavailable")}
	w := New(1, "catalog_events", auditor, nil)
	ack := &fakeAcknowledger{}

	event := queue.NewEvent(queue.ProductUpdated, "p-1", "")
	result := w.handleDelivery(context.Background(), &fakePublisher{err: errors.New("channel closed")}, delivery(t, ack, event, nil))

	assert.Equal(t, resultDropped, result)
	assert.Equal(t, 1, ack.nacked)
}

func TestHandleEvent_RejectsUnknownType(t *testing.T) {
	err := handleEvent(context.Background(), LogAuditor{}, queue.Event{Type: "order.created"}, 1)
	assert.Error(t, err)

	assert.NoError(t, handleEvent(context.Background(), LogAuditor{}, queue.NewEvent(queue.UserCreated, "u-1", ""), 1))
}
