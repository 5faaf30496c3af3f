package persistence_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/aretw0/courier/pkg/adapters/memory"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/persistence"
	"github.com/aretw0/courier/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, persistence.KeySize)
	_, err := rand.Read(k)
	require.NoError(t, err)
	return k
}

func newSchool(id string) domain.School {
	return domain.School{ID: id, Name: "School " + id, OwnerID: "owner"}
}

func TestEncrypted_Contract(t *testing.T) {
	repo, err := persistence.NewEncrypted[domain.School](memory.NewRepository[persistence.Envelope](),
		persistence.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	ports.RunRepositoryContract[domain.School](t, repo, newSchool)
}

func TestEncrypted_HidesValues(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewRepository[persistence.Envelope]()
	repo, err := persistence.NewEncrypted[domain.School](underlying, persistence.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, "s1", newSchool("s1")))

	env, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, env.Data)
	assert.NotContains(t, env.Data, "School s1")
}

func TestEncrypted_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewRepository[persistence.Envelope]()
	oldKey, newKey := generateKey(t), generateKey(t)

	before, err := persistence.NewEncrypted[domain.School](underlying, persistence.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, err)
	require.NoError(t, before.Save(ctx, "s1", newSchool("s1")))

	after, err := persistence.NewEncrypted[domain.School](underlying, persistence.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	require.NoError(t, err)

	got, err := after.Load(ctx, "s1")
	require.NoError(t, err, "fallback key decrypts old data")
	assert.Equal(t, newSchool("s1"), got)

	require.NoError(t, after.Save(ctx, "s1", got))
	_, err = before.Load(ctx, "s1")
	assert.Error(t, err, "the old key alone cannot read data sealed with the new key")
}

func TestEncrypted_MissingIsNotFound(t *testing.T) {
	repo, err := persistence.NewEncrypted[domain.School](memory.NewRepository[persistence.Envelope](),
		persistence.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	_, err = repo.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewEncrypted_InvalidKey(t *testing.T) {
	_, err := persistence.NewEncrypted[domain.School](memory.NewRepository[persistence.Envelope](),
		persistence.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, persistence.ErrKeySize)

	_, err = persistence.NewEncrypted[domain.School](memory.NewRepository[persistence.Envelope](),
		persistence.EncryptionConfig{ActiveKey: generateKey(t), FallbackKeys: [][]byte{[]byte("short")}})
	assert.ErrorIs(t, err, persistence.ErrKeySize)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	got, err := persistence.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = persistence.ParseKey("not base64!")
	assert.Error(t, err)

	_, err = persistence.ParseKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, persistence.ErrKeySize)
}
