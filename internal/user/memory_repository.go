package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	user User
	seq  uint64
}

// MemoryRepository is an in-process store for tests and local runs.
type MemoryRepository struct {
	mu     sync.RWMutex
	items  map[string]*memoryEntry
	emails map[string]string
	next   uint64
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items:  make(map[string]*memoryEntry),
		emails: make(map[string]string),
		now:    time.Now,
	}
}

func (r *MemoryRepository) List(ctx context.Context) ([]*User, error) {
	r.mu.RLock()
	entries := make([]memoryEntry, 0, len(r.items))
	for _, e := range r.items {
		entries = append(entries, *e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.user.CreatedAt.Equal(b.user.CreatedAt) {
			return a.user.CreatedAt.Before(b.user.CreatedAt)
		}
		return a.seq < b.seq
	})

	users := make([]*User, 0, len(entries))
	for i := range entries {
		users = append(users, &entries[i].user)
	}
	return users, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := e.user
	return &u, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := r.items[id].user
	return &u, nil
}

func (r *MemoryRepository) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.emails[u.Email]; taken {
		return ErrDuplicateEmail
	}

	now := r.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	r.next++
	r.items[u.ID] = &memoryEntry{user: *u, seq: r.next}
	r.emails[u.Email] = u.ID
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, apply func(u *User) error) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}

	u := e.user
	if err := apply(&u); err != nil {
		return nil, err
	}
	if u.Email != e.user.Email {
		if _, taken := r.emails[u.Email]; taken {
			return nil, ErrDuplicateEmail
		}
		delete(r.emails, e.user.Email)
		r.emails[u.Email] = id
	}
	u.UpdatedAt = r.now().UTC()

	e.user = u
	return &u, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.emails, e.user.Email)
	delete(r.items, id)
	return nil
}
