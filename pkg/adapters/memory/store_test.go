package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/courier/pkg/adapters/memory"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Contract(t *testing.T) {
	repo := memory.NewRepository[domain.School]()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	ports.RunRepositoryContract[domain.School](t, repo, func(id string) domain.School {
		return domain.School{
			ID:        id,
			Name:      "School " + id,
			City:      "Lisbon",
			OwnerID:   "owner-1",
			CreatedAt: created,
			UpdatedAt: created,
		}
	})
}

func TestLocker_SerializesHolders(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", 0)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		second, err := locker.Lock(ctx, "k", 0)
		if err == nil {
			_ = second(ctx)
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held lock")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, unlock(ctx))

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second holder never acquired the lock")
	}
}

func TestLocker_ContextCanceled(t *testing.T) {
	locker := memory.NewLocker()
	unlock, err := locker.Lock(context.Background(), "k", 0)
	require.NoError(t, err)
	defer unlock(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, "k", 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocker_TTLExpires(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	_, err := locker.Lock(ctx, "k", 10*time.Millisecond)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlock, err := locker.Lock(waitCtx, "k", 0)
	require.NoError(t, err)
	assert.NoError(t, unlock(ctx))
	assert.NoError(t, unlock(ctx), "unlocking twice is harmless")
}
