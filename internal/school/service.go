package school

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/pkg/behavior"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/mediator"
	"github.com/aretw0/courier/pkg/ports"
	"github.com/aretw0/courier/pkg/result"
	"github.com/google/uuid"
)

// Service holds the handlers of the driving-school requests.
type Service struct {
	users   ports.Repository[domain.User]
	schools ports.Repository[domain.School]
	events  ports.Dispatcher

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

var _ mediator.Module = (*Service)(nil)

// Option configures the Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator replaces the UUID generator used for new entities.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// WithLogger configures a logger for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service over the given repositories.
func NewService(users ports.Repository[domain.User], schools ports.Repository[domain.School], opts ...Option) *Service {
	s := &Service{
		users:   users,
		schools: schools,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach sets the dispatcher notifications are published through.
// Until attached, notifications are dropped. Call it before serving.
func (s *Service) Attach(d ports.Dispatcher) {
	s.events = d
}

// Register installs handlers and validators into r.
func (s *Service) Register(r *mediator.Registry) error {
	return errors.Join(
		mediator.RegisterFunc(r, s.RegisterUser),
		mediator.RegisterFunc(r, s.CreateSchool),
		mediator.RegisterFunc(r, s.RenameSchool),
		mediator.RegisterFunc(r, s.DeleteSchool),
		mediator.RegisterFunc(r, s.GetSchool),
		mediator.RegisterFunc(r, s.ListSchools),
		mediator.RegisterFunc(r, s.GetOverview),

		mediator.AddBehavior[RegisterUser, result.Result[domain.User]](r,
			behavior.Validation[RegisterUser, domain.User](behavior.ValidatorFunc[RegisterUser](validateRegisterUser))),
		mediator.AddBehavior[CreateSchool, result.Result[domain.School]](r,
			behavior.Validation[CreateSchool, domain.School](behavior.ValidatorFunc[CreateSchool](validateCreateSchool))),
		mediator.AddBehavior[RenameSchool, result.Result[domain.School]](r,
			behavior.Validation[RenameSchool, domain.School](behavior.ValidatorFunc[RenameSchool](validateRenameSchool))),
		mediator.AddBehavior[DeleteSchool, result.Result[bool]](r,
			behavior.Validation[DeleteSchool, bool](behavior.ValidatorFunc[DeleteSchool](validateDeleteSchool))),
	)
}

func (s *Service) publish(ctx context.Context, n any) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishAny(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "notification delivery failed",
			"notification", fmt.Sprintf("%T", n),
			"err", err,
		)
	}
}

func (s *Service) loadUser(ctx context.Context, id string) result.Result[domain.User] {
	return load(ctx, s.users, id, domain.UserNotFound)
}

func (s *Service) loadSchool(ctx context.Context, id string) result.Result[domain.School] {
	return load(ctx, s.schools, id, domain.SchoolNotFound)
}

func load[T any](ctx context.Context, repo ports.Repository[T], id string, notFound func(string) result.Error) result.Result[T] {
	v, err := repo.Load(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return result.Failure[T](notFound(id))
	case err != nil:
		return result.Failure[T](domain.StorageFailure(err))
	}
	return result.Success(v)
}

func stored(err error) result.Result[result.Unit] {
	if err != nil {
		return result.Failure[result.Unit](domain.StorageFailure(err))
	}
	return result.Success(result.Unit{})
}
