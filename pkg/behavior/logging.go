package behavior

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/pkg/mediator"
	"github.com/aretw0/courier/pkg/observability"
)

// LoggingBehavior logs every dispatch with its duration and outcome.
type LoggingBehavior struct {
	logger *slog.Logger
}

var _ mediator.PipelineBehavior = (*LoggingBehavior)(nil)

// Logging creates a LoggingBehavior. A nil logger discards output.
func Logging(logger *slog.Logger) *LoggingBehavior {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LoggingBehavior{logger: logger}
}

// Handle logs around next.
func (b *LoggingBehavior) Handle(ctx context.Context, req any, next mediator.NextAny) (any, error) {
	name := requestName(req)
	start := time.Now()
	b.logger.DebugContext(ctx, "request started", "request", name)

	out, err := next(ctx)

	elapsed := time.Since(start)
	switch outcome(out, err) {
	case observability.OutcomeError:
		b.logger.ErrorContext(ctx, "request failed",
			"request", name,
			"duration", elapsed,
			"err", err,
		)
	case observability.OutcomeFailure:
		b.logger.InfoContext(ctx, "request rejected",
			"request", name,
			"duration", elapsed,
			"codes", failureCodes(out),
		)
	default:
		b.logger.DebugContext(ctx, "request completed",
			"request", name,
			"duration", elapsed,
		)
	}
	return out, err
}
