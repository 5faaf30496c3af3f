// Package testutils starts the storage backends used by adapter and app tests.
package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// SetupRedis starts an in-memory Redis server and a client bound to it.
// Both are closed when the test ends.
func SetupRedis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

// SetupLoam opens an unversioned Loam document store in a fresh temp dir.
func SetupLoam(t *testing.T) core.Repository {
	t.Helper()

	repo, err := loam.Init(t.TempDir(), loam.WithVersioning(false))
	require.NoError(t, err, "failed to init loam store")
	return repo
}
