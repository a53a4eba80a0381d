package user

import (
	"context"
	"errors"
	"time"

	"product_api/internal/observability"
)

type instrumentedRepository struct {
	next    Repository
	metrics *observability.Metrics
}

func NewInstrumentedRepository(next Repository, metrics *observability.Metrics) Repository {
	if metrics == nil {
		return next
	}
	return &instrumentedRepository{next: next, metrics: metrics}
}

func (r *instrumentedRepository) observe(op string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateEmail) {
		err = nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		err = nil
	}
	r.metrics.ObserveStore("user", op, time.Since(start).Seconds(), err)
}

func (r *instrumentedRepository) List(ctx context.Context) ([]*User, error) {
	start := time.Now()
	users, err := r.next.List(ctx)
	r.observe("list", start, err)
	return users, err
}

func (r *instrumentedRepository) GetByID(ctx context.Context, id string) (*User, error) {
	start := time.Now()
	u, err := r.next.GetByID(ctx, id)
	r.observe("get", start, err)
	return u, err
}

func (r *instrumentedRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	start := time.Now()
	u, err := r.next.GetByEmail(ctx, email)
	r.observe("get_by_email", start, err)
	return u, err
}

func (r *instrumentedRepository) Create(ctx context.Context, u *User) error {
	start := time.Now()
	err := r.next.Create(ctx, u)
	r.observe("create", start, err)
	return err
}

func (r *instrumentedRepository) Update(ctx context.Context, id string, apply func(u *User) error) (*User, error) {
	start := time.Now()
	u, err := r.next.Update(ctx, id, apply)
	r.observe("update", start, err)
	return u, err
}

func (r *instrumentedRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.observe("delete", start, err)
	return err
}
