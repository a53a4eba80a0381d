package product

import (
	"context"
	"errors"
	"time"

	"product_api/internal/observability"
)

const metricsEntity = "product"

type instrumentedRepository struct {
	next    Repository
	metrics *observability.Metrics
}

// NewInstrumentedRepository records latency and failures of every store
// call. A missing product is not counted as a failure.
func NewInstrumentedRepository(next Repository, metrics *observability.Metrics) Repository {
	if metrics == nil {
		return next
	}
	return &instrumentedRepository{next: next, metrics: metrics}
}

func (r *instrumentedRepository) observe(op string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	r.metrics.ObserveStore(metricsEntity, op, time.Since(start).Seconds(), err)
}

func (r *instrumentedRepository) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := r.next.Count(ctx)
	r.observe("count", start, err)
	return n, err
}

func (r *instrumentedRepository) List(ctx context.Context, skip, limit int) ([]*Product, error) {
	start := time.Now()
	products, err := r.next.List(ctx, skip, limit)
	r.observe("list", start, err)
	return products, err
}

func (r *instrumentedRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	start := time.Now()
	p, err := r.next.GetByID(ctx, id)
	r.observe("get", start, err)
	return p, err
}

func (r *instrumentedRepository) Create(ctx context.Context, in Input) (*Product, error) {
	start := time.Now()
	p, err := r.next.Create(ctx, in)
	r.observe("create", start, err)
	return p, err
}

func (r *instrumentedRepository) Update(ctx context.Context, id string, in Input) (*Product, error) {
	start := time.Now()
	p, err := r.next.Update(ctx, id, in)
	r.observe("update", start, err)
	return p, err
}

func (r *instrumentedRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.observe("delete", start, err)
	return err
}
