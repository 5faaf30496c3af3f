package school

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/mediator"
	"github.com/aretw0/courier/pkg/observability"
)

// Audit writes one structured log line per school notification.
type Audit struct {
	logger *slog.Logger
}

var _ mediator.Module = (*Audit)(nil)

// NewAudit creates an Audit. A nil logger discards output.
func NewAudit(logger *slog.Logger) *Audit {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Audit{logger: logger.With("component", "audit")}
}

// Register subscribes the audit handlers.
func (a *Audit) Register(r *mediator.Registry) error {
	return errors.Join(
		mediator.SubscribeFunc(r, a.created),
		mediator.SubscribeFunc(r, a.renamed),
		mediator.SubscribeFunc(r, a.deleted),
	)
}

func (a *Audit) created(ctx context.Context, n domain.SchoolCreated) error {
	a.logger.InfoContext(ctx, "school created",
		"school_id", n.School.ID,
		"owner_id", n.School.OwnerID,
		"name", n.School.Name,
	)
	return nil
}

func (a *Audit) renamed(ctx context.Context, n domain.SchoolRenamed) error {
	a.logger.InfoContext(ctx, "school renamed",
		"school_id", n.SchoolID,
		"old_name", n.OldName,
		"new_name", n.NewName,
	)
	return nil
}

func (a *Audit) deleted(ctx context.Context, n domain.SchoolDeleted) error {
	a.logger.InfoContext(ctx, "school deleted",
		"school_id", n.SchoolID,
		"owner_id", n.OwnerID,
	)
	return nil
}

// ObserveNotifications counts every school notification in m.
func ObserveNotifications(m *observability.Metrics) mediator.Module {
	return mediator.ModuleFunc(func(r *mediator.Registry) error {
		return errors.Join(
			mediator.Subscribe[domain.SchoolCreated](r, observability.NewNotificationObserver[domain.SchoolCreated](m)),
			mediator.Subscribe[domain.SchoolRenamed](r, observability.NewNotificationObserver[domain.SchoolRenamed](m)),
			mediator.Subscribe[domain.SchoolDeleted](r, observability.NewNotificationObserver[domain.SchoolDeleted](m)),
		)
	})
}
