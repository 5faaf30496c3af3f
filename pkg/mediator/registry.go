package mediator

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

type invoker func(ctx context.Context, req any) (any, error)

type handlerEntry struct {
	reqType  reflect.Type
	respType reflect.Type
	name     string
	invoke   invoker
}

type behaviorEntry struct {
	// reqType is nil for pipeline-wide behaviors.
	reqType  reflect.Type
	respType reflect.Type
	name     string
	wrap     func(ctx context.Context, req any, next NextAny) (any, error)
}

func (b behaviorEntry) appliesTo(h handlerEntry) bool {
	if b.reqType == nil {
		return true
	}
	return b.reqType == h.reqType && b.respType == h.respType
}

type subscriberEntry struct {
	name   string
	invoke func(ctx context.Context, n any) error
}

// Module groups registrations so the host can install them in one call.
type Module interface {
	Register(r *Registry) error
}

// ModuleFunc adapts a function into a Module.
type ModuleFunc func(r *Registry) error

// Register calls f.
func (f ModuleFunc) Register(r *Registry) error { return f(r) }

// Registry collects handlers, subscribers and behaviors at startup.
// It is sealed by New; later registrations fail with ErrSealed.
type Registry struct {
	mu          sync.Mutex
	sealed      bool
	handlers    map[reflect.Type]handlerEntry
	subscribers map[reflect.Type][]subscriberEntry
	behaviors   []behaviorEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers:    make(map[reflect.Type]handlerEntry),
		subscribers: make(map[reflect.Type][]subscriberEntry),
	}
}

// Install registers every module in order and stops at the first error.
func (r *Registry) Install(modules ...Module) error {
	for _, m := range modules {
		if err := m.Register(r); err != nil {
			return fmt.Errorf("install %T: %w", m, err)
		}
	}
	return nil
}

// Register makes h the handler for requests of type Q.
// A second registration for the same Q fails with ErrDuplicateHandler.
func Register[Q Request[R], R any](r *Registry, h Handler[Q, R]) error {
	reqType := reflect.TypeFor[Q]()
	if reqType.Kind() == reflect.Interface {
		return fmt.Errorf("%w: %v", ErrInterfaceKey, reqType)
	}

	entry := handlerEntry{
		reqType:  reqType,
		respType: reflect.TypeFor[R](),
		name:     typeName(h),
		invoke: func(ctx context.Context, req any) (any, error) {
			q, ok := req.(Q)
			if !ok {
				return nil, fmt.Errorf("%w: handler for %v received %T", ErrTypeMismatch, reqType, req)
			}
			resp, err := h.Handle(ctx, q)
			return resp, err
		},
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrSealed
	}
	if existing, ok := r.handlers[reqType]; ok {
		return fmt.Errorf("%w: %v (have %s, got %s)", ErrDuplicateHandler, reqType, existing.name, entry.name)
	}
	r.handlers[reqType] = entry
	return nil
}

// RegisterFunc registers fn as the handler for requests of type Q.
func RegisterFunc[Q Request[R], R any](r *Registry, fn func(ctx context.Context, req Q) (R, error)) error {
	return Register[Q, R](r, HandlerFunc[Q, R](fn))
}

// Subscribe adds h to the handlers of notifications of type N.
// Any number of subscribers may share a notification type.
func Subscribe[N any](r *Registry, h NotificationHandler[N]) error {
	nType := reflect.TypeFor[N]()
	if nType.Kind() == reflect.Interface {
		return fmt.Errorf("%w: %v", ErrInterfaceKey, nType)
	}

	entry := subscriberEntry{
		name: typeName(h),
		invoke: func(ctx context.Context, n any) error {
			typed, ok := n.(N)
			if !ok {
				return fmt.Errorf("%w: subscriber for %v received %T", ErrTypeMismatch, nType, n)
			}
			return h.Handle(ctx, typed)
		},
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrSealed
	}
	r.subscribers[nType] = append(r.subscribers[nType], entry)
	return nil
}

// SubscribeFunc subscribes fn to notifications of type N.
func SubscribeFunc[N any](r *Registry, fn func(ctx context.Context, n N) error) error {
	return Subscribe[N](r, NotificationFunc[N](fn))
}

// AddBehavior wraps every request of shape (Q, R) with b.
// Behaviors run in registration order, the first one outermost.
func AddBehavior[Q Request[R], R any](r *Registry, b Behavior[Q, R]) error {
	reqType := reflect.TypeFor[Q]()
	if reqType.Kind() == reflect.Interface {
		return fmt.Errorf("%w: %v", ErrInterfaceKey, reqType)
	}
	entry := behaviorEntry{
		reqType:  reqType,
		respType: reflect.TypeFor[R](),
		name:     typeName(b),
		wrap: func(ctx context.Context, req any, next NextAny) (any, error) {
			q, ok := req.(Q)
			if !ok {
				return nil, fmt.Errorf("%w: behavior for %v received %T", ErrTypeMismatch, reqType, req)
			}
			typedNext := func(ctx context.Context) (R, error) {
				out, err := next(ctx)
				v, castErr := cast[R](out)
				if err != nil {
					return v, err
				}
				return v, castErr
			}
			resp, err := b.Handle(ctx, q, typedNext)
			return resp, err
		},
	}
	return r.addBehavior(entry)
}

// AddPipeline wraps every request, whatever its shape, with b.
func (r *Registry) AddPipeline(b PipelineBehavior) error {
	return r.addBehavior(behaviorEntry{
		name: typeName(b),
		wrap: b.Handle,
	})
}

func (r *Registry) addBehavior(entry behaviorEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrSealed
	}
	r.behaviors = append(r.behaviors, entry)
	return nil
}

type snapshot struct {
	handlers    map[reflect.Type]handlerEntry
	subscribers map[reflect.Type][]subscriberEntry
	behaviors   []behaviorEntry
}

// seal freezes the registry and returns its contents.
func (r *Registry) seal() snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
	return snapshot{
		handlers:    r.handlers,
		subscribers: r.subscribers,
		behaviors:   r.behaviors,
	}
}

func cast[R any](out any) (R, error) {
	var zero R
	if out == nil {
		return zero, nil
	}
	v, ok := out.(R)
	if !ok {
		return zero, fmt.Errorf("%w: expected %v, got %T", ErrTypeMismatch, reflect.TypeFor[R](), out)
	}
	return v, nil
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
