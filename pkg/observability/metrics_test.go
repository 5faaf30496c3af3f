package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err, "collectors are already registered")
}

func TestObserveRequest(t *testing.T) {
	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveRequest("school.GetSchool", observability.OutcomeSuccess, 10*time.Millisecond)
	m.ObserveRequest("school.GetSchool", observability.OutcomeFailure, time.Millisecond)
	m.ObserveRequest("school.GetSchool", observability.OutcomeSuccess, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("school.GetSchool", observability.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("school.GetSchool", observability.OutcomeFailure)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestNotificationObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	obs := observability.NewNotificationObserver[domain.SchoolDeleted](m)
	require.NoError(t, obs.Handle(context.Background(), domain.SchoolDeleted{SchoolID: "s1"}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("domain.SchoolDeleted")))

	w := httptest.NewRecorder()
	observability.Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `courier_notifications_total{notification="domain.SchoolDeleted"} 1`)
}
