package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/ports"
)

// Repository implements ports.Repository in memory.
// Safe for concurrent use. Values are stored by value, so keep T free of
// shared references (maps, slices, pointers) if isolation matters.
type Repository[T any] struct {
	data map[string]T
	mu   sync.RWMutex
}

var _ ports.Repository[struct{}] = (*Repository[struct{}])(nil)

// NewRepository creates a new in-memory repository.
func NewRepository[T any]() *Repository[T] {
	return &Repository[T]{
		data: make(map[string]T),
	}
}

// Save stores v under id.
func (r *Repository[T]) Save(ctx context.Context, id string, v T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[id] = v
	return nil
}

// Load retrieves the value stored under id.
func (r *Repository[T]) Load(ctx context.Context, id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.data[id]
	if !ok {
		var zero T
		return zero, domain.ErrNotFound
	}
	return v, nil
}

// Delete removes id.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

// List returns all values ordered by id.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.data))
	for id := range r.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.data[id])
	}
	return out, nil
}
