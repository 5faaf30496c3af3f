package behavior

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/pkg/mediator"
	"github.com/aretw0/courier/pkg/ports"
)

// Keyed is implemented by requests that must not run concurrently with
// other requests sharing the same key.
type Keyed interface {
	LockKey() string
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// LockingBehavior serializes Keyed requests per key. Requests that are not
// Keyed pass straight through. Unused keys are garbage collected by
// reference counting.
type LockingBehavior struct {
	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	ttl    time.Duration
	logger *slog.Logger
}

var _ mediator.PipelineBehavior = (*LockingBehavior)(nil)

// LockingOption configures a LockingBehavior.
type LockingOption func(*LockingBehavior)

// WithLocker additionally takes a distributed lock for every key, so
// replicas sharing the locker serialize too.
func WithLocker(locker ports.DistributedLocker) LockingOption {
	return func(b *LockingBehavior) {
		b.locker = locker
	}
}

// WithLockTTL bounds how long a distributed lock survives a crashed holder.
func WithLockTTL(ttl time.Duration) LockingOption {
	return func(b *LockingBehavior) {
		b.ttl = ttl
	}
}

// WithLockLogger sets the logger used for release failures.
func WithLockLogger(logger *slog.Logger) LockingOption {
	return func(b *LockingBehavior) {
		b.logger = logger
	}
}

// Locking creates a LockingBehavior.
func Locking(opts ...LockingOption) *LockingBehavior {
	b := &LockingBehavior{
		locks:  make(map[string]*lockEntry),
		ttl:    30 * time.Second,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handle runs next while holding the request's key.
func (b *LockingBehavior) Handle(ctx context.Context, req any, next mediator.NextAny) (any, error) {
	keyed, ok := req.(Keyed)
	if !ok {
		return next(ctx)
	}
	key := keyed.LockKey()

	entry := b.acquire(key)
	defer b.release(key)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if b.locker != nil {
		unlock, err := b.locker.Lock(ctx, key, b.ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %q: %w", key, err)
		}
		defer func() {
			// the caller's ctx may already be canceled
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				b.logger.Error("failed to release lock", "key", key, "err", err)
			}
		}()
	}

	return next(ctx)
}

// Held reports how many keys currently have holders or waiters.
func (b *LockingBehavior) Held() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.locks)
}

func (b *LockingBehavior) acquire(key string) *lockEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.locks[key]
	if !ok {
		entry = &lockEntry{}
		b.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (b *LockingBehavior) release(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.locks[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(b.locks, key)
	}
}
