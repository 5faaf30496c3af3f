package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/courier/pkg/ports"
)

var afterFunc = time.AfterFunc

// Locker implements ports.DistributedLocker within a single process.
// It is meant for tests and single-replica deployments.
type Locker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

var _ ports.DistributedLocker = (*Locker)(nil)

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{held: make(map[string]chan struct{})}
}

// Lock waits until key is free, then holds it until unlocked or ttl elapses.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	for {
		l.mu.Lock()
		released, busy := l.held[key]
		if !busy {
			token := make(chan struct{})
			l.held[key] = token
			l.mu.Unlock()
			return l.unlocker(key, token, ttl), nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-released:
		}
	}
}

func (l *Locker) unlocker(key string, token chan struct{}, ttl time.Duration) ports.UnlockFunc {
	var (
		once  sync.Once
		timer *time.Timer
	)
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			if l.held[key] == token {
				delete(l.held, key)
			}
			l.mu.Unlock()
			close(token)
		})
	}
	if ttl > 0 {
		l.mu.Lock()
		timer = afterFunc(ttl, release)
		l.mu.Unlock()
	}
	return func(ctx context.Context) error {
		release()
		return nil
	}
}
