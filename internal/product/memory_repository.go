package product

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	product Product
	seq     uint64
}

// MemoryRepository is an in-process store for tests and local runs.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*memoryEntry
	next  uint64
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]*memoryEntry),
		now:   time.Now,
	}
}

func (r *MemoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

func (r *MemoryRepository) List(ctx context.Context, skip, limit int) ([]*Product, error) {
	r.mu.RLock()
	entries := make([]memoryEntry, 0, len(r.items))
	for _, e := range r.items {
		entries = append(entries, *e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.product.CreatedAt.Equal(b.product.CreatedAt) {
			return a.product.CreatedAt.After(b.product.CreatedAt)
		}
		return a.seq > b.seq
	})

	products := make([]*Product, 0)
	if skip >= len(entries) {
		return products, nil
	}
	entries = entries[skip:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	for i := range entries {
		products = append(products, &entries[i].product)
	}
	return products, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := e.product
	return &p, nil
}

func (r *MemoryRepository) Create(ctx context.Context, in Input) (*Product, error) {
	now := r.now().UTC()
	p := Product{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Price:     in.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.next++
	r.items[p.ID] = &memoryEntry{product: p, seq: r.next}
	r.mu.Unlock()

	return &p, nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, in Input) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.product.Name = in.Name
	e.product.Price = in.Price
	e.product.UpdatedAt = r.now().UTC()

	p := e.product
	return &p, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}
