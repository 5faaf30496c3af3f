package courier_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/courier"
	"github.com/aretw0/courier/internal/config"
	"github.com/aretw0/courier/internal/school"
	"github.com/aretw0/courier/internal/testutils"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/mediator"
	"github.com/aretw0/courier/pkg/result"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerAndCreate(t *testing.T, app *courier.App) domain.School {
	t.Helper()
	ctx := context.Background()

	u, err := mediator.Send[result.Result[domain.User]](ctx, app.Mediator(), school.RegisterUser{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	require.True(t, u.IsSuccess(), u.String())

	s, err := mediator.Send[result.Result[domain.School]](ctx, app.Mediator(), school.CreateSchool{ActorID: u.Value().ID, Name: "Alpha", City: "Lisbon"})
	require.NoError(t, err)
	require.True(t, s.IsSuccess(), s.String())
	return s.Value()
}

func TestNew_Memory(t *testing.T) {
	app, err := courier.New(courier.DefaultConfig())
	require.NoError(t, err)
	defer app.Close()

	created := registerAndCreate(t, app)

	got, err := mediator.Send[result.Result[domain.School]](context.Background(), app.Mediator(), school.GetSchool{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, created, got.Value())
}

func TestNew_PipelineOrder(t *testing.T) {
	app, err := courier.New(courier.DefaultConfig())
	require.NoError(t, err)

	var rename *mediator.RequestInfo
	cat := app.Catalog()
	for i := range cat.Requests {
		if strings.HasSuffix(cat.Requests[i].Request, "school.RenameSchool") {
			rename = &cat.Requests[i]
		}
	}
	require.NotNil(t, rename)
	require.Len(t, rename.Behaviors, 5)
	assert.Contains(t, rename.Behaviors[0], "Recovery")
	assert.Contains(t, rename.Behaviors[1], "Logging")
	assert.Contains(t, rename.Behaviors[2], "Metrics")
	assert.Contains(t, rename.Behaviors[3], "Locking")
	assert.Contains(t, rename.Behaviors[4], "Validation")
}

func TestNew_RedisWithDistributedLocking(t *testing.T) {
	mr, client := testutils.SetupRedis(t)

	cfg := courier.DefaultConfig()
	cfg.Store.Driver = config.DriverRedis
	cfg.Locking.Distributed = true

	app, err := courier.New(cfg, courier.WithRedisClient(client))
	require.NoError(t, err)
	defer app.Close()

	created := registerAndCreate(t, app)
	assert.True(t, mr.Exists("courier:schools:"+created.ID))
}

func TestNew_Loam(t *testing.T) {
	cfg := courier.DefaultConfig()
	cfg.Store.Driver = config.DriverLoam
	cfg.Store.Path = t.TempDir()

	app, err := courier.New(cfg)
	require.NoError(t, err)
	created := registerAndCreate(t, app)

	// a second App over the same directory sees the data
	reopened, err := courier.New(cfg)
	require.NoError(t, err)
	got, err := mediator.Send[result.Result[domain.School]](context.Background(), reopened.Mediator(), school.GetSchool{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Value().Name)
}

func TestNew_EncryptedRedis(t *testing.T) {
	mr, client := testutils.SetupRedis(t)

	cfg := courier.DefaultConfig()
	cfg.Store.Driver = config.DriverRedis
	cfg.Store.EncryptionKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

	app, err := courier.New(cfg, courier.WithRedisClient(client))
	require.NoError(t, err)
	defer app.Close()

	created := registerAndCreate(t, app)

	raw, err := mr.Get("courier:schools:" + created.ID)
	require.NoError(t, err)
	assert.NotContains(t, raw, created.Name, "values are sealed at rest")

	got, err := mediator.Send[result.Result[domain.School]](context.Background(), app.Mediator(), school.GetSchool{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Value().Name)
}

func TestNew_SharedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	app, err := courier.New(courier.DefaultConfig(), courier.WithRegisterer(reg))
	require.NoError(t, err)

	registerAndCreate(t, app)

	count, err := testutil.GatherAndCount(reg, "courier_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "courier_notifications_total")
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := courier.DefaultConfig()
	cfg.Store.Driver = "etcd"
	_, err := courier.New(cfg)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestServe_StopsOnCancel(t *testing.T) {
	app, err := courier.New(courier.DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
