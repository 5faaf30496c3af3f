package ports

import (
	"context"
	"testing"

	"github.com/aretw0/courier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRepositoryContract runs a suite of tests to verify that a Repository
// implementation adheres to the defined interface contract.
// newValue builds a distinct value for an id; the repository must start empty.
func RunRepositoryContract[T any](t *testing.T, repo Repository[T], newValue func(id string) T) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		want := newValue("contract-a")
		require.NoError(t, repo.Save(ctx, "contract-a", want), "Save should not return error")

		got, err := repo.Load(ctx, "contract-a")
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, want, got)
	})

	t.Run("Save replaces", func(t *testing.T) {
		replacement := newValue("contract-a-v2")
		require.NoError(t, repo.Save(ctx, "contract-a", replacement))

		got, err := repo.Load(ctx, "contract-a")
		require.NoError(t, err)
		assert.Equal(t, replacement, got)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := repo.Load(ctx, "contract-missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("List is ordered by id", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, "contract-c", newValue("contract-c")))
		require.NoError(t, repo.Save(ctx, "contract-b", newValue("contract-b")))

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []T{newValue("contract-a-v2"), newValue("contract-b"), newValue("contract-c")}, all)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "contract-b"))
		_, err := repo.Load(ctx, "contract-b")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		require.NoError(t, repo.Delete(ctx, "contract-b"), "deleting twice is not an error")

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}
