package ports

import "context"

// Repository persists values of type T by id.
type Repository[T any] interface {
	// Save creates or replaces the value stored under id.
	Save(ctx context.Context, id string, v T) error

	// Load returns the value stored under id.
	// Returns domain.ErrNotFound if there is none.
	Load(ctx context.Context, id string) (T, error)

	// Delete removes id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every stored value ordered by id.
	List(ctx context.Context) ([]T, error)
}
