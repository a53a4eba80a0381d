package worker

import (
	"context"
	"fmt"

	"product_api/internal/queue"

	"github.com/sirupsen/logrus"
)

// Auditor is where consumed change events end up.
type Auditor interface {
	Record(ctx context.Context, event queue.Event) error
}

// LogAuditor writes every event to the structured log.
type LogAuditor struct{}

func (LogAuditor) Record(_ context.Context, event queue.Event) error {
	logrus.WithFields(logrus.Fields{
		"event":       event.Type,
		"entity_id":   event.EntityID,
		"actor_id":    event.ActorID,
		"occurred_at": event.OccurredAt,
	}).Info("Audit event recorded")
	return nil
}

func handleEvent(ctx context.Context, auditor Auditor, event queue.Event, workerID int) error {
	switch event.Type {
	case queue.ProductCreated, queue.ProductUpdated, queue.ProductDeleted:
		return processProductEvent(ctx, auditor, event, workerID)
	case queue.UserCreated, queue.UserUpdated, queue.UserDeleted:
		return processUserEvent(ctx, auditor, event, workerID)
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}

func processProductEvent(ctx context.Context, auditor Auditor, event queue.Event, workerID int) error {
	logrus.Debugf("Worker %d recording %s for product=%s", workerID, event.Type, event.EntityID)
	return auditor.Record(ctx, event)
}

func processUserEvent(ctx context.Context, auditor Auditor, event queue.Event, workerID int) error {
	logrus.Debugf("Worker %d recording %s for user=%s", workerID, event.Type, event.EntityID)
	return auditor.Record(ctx, event)
}
