package loam_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/courier/internal/testutils"
	"github.com/aretw0/courier/pkg/adapters/loam"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func user(id string) domain.User {
	return domain.User{
		ID:        id,
		Name:      "User " + id,
		Email:     id + "@example.com",
		CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestRepository_Contract(t *testing.T) {
	repo := testutils.SetupLoam(t)
	users := loam.NewRepository[domain.User](repo, "users")

	ports.RunRepositoryContract[domain.User](t, users, user)
}

func TestRepository_KindsShareDirectory(t *testing.T) {
	repo := testutils.SetupLoam(t)
	users := loam.NewRepository[domain.User](repo, "users")
	schools := loam.NewRepository[domain.School](repo, "schools")
	ctx := context.Background()

	require.NoError(t, users.Save(ctx, "x", user("x")))
	require.NoError(t, schools.Save(ctx, "x", domain.School{ID: "x", Name: "Alpha", OwnerID: "x"}))

	gotUsers, err := users.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.User{user("x")}, gotUsers)

	gotSchool, err := schools.Load(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", gotSchool.Name)
}
