package behavior

import (
	"context"
	"time"

	"github.com/aretw0/courier/pkg/mediator"
	"github.com/aretw0/courier/pkg/observability"
)

// MetricsBehavior records request counts and latency.
type MetricsBehavior struct {
	metrics *observability.Metrics
}

var _ mediator.PipelineBehavior = (*MetricsBehavior)(nil)

// Metrics creates a MetricsBehavior recording into m.
func Metrics(m *observability.Metrics) *MetricsBehavior {
	return &MetricsBehavior{metrics: m}
}

// Handle times next and records its outcome.
func (b *MetricsBehavior) Handle(ctx context.Context, req any, next mediator.NextAny) (any, error) {
	start := time.Now()
	out, err := next(ctx)
	b.metrics.ObserveRequest(requestName(req), outcome(out, err), time.Since(start))
	return out, err
}
