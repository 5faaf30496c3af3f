package mediator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"
	"sync"

	"github.com/aretw0/courier/internal/logging"
)

// Mediator dispatches requests to their handler through the registered
// behaviors, and broadcasts notifications to their subscribers.
// It is safe for concurrent use.
type Mediator struct {
	handlers    map[reflect.Type]handlerEntry
	subscribers map[reflect.Type][]subscriberEntry
	behaviors   []behaviorEntry

	cache  *Cache
	logger *slog.Logger
}

// Option configures the Mediator.
type Option func(*Mediator)

// WithCache uses c for resolution instead of a private cache.
func WithCache(c *Cache) Option {
	return func(m *Mediator) {
		m.cache = c
	}
}

// WithLogger configures a logger for configuration failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mediator) {
		m.logger = logger
	}
}

// New seals reg and builds a Mediator over its registrations.
func New(reg *Registry, opts ...Option) *Mediator {
	snap := reg.seal()
	m := &Mediator{
		handlers:    snap.handlers,
		subscribers: snap.subscribers,
		behaviors:   snap.behaviors,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.cache == nil {
		m.cache = NewCache()
	}
	return m
}

// Send dispatches req to its handler and returns the handler's response as
// passed back through the behaviors.
func Send[R any](ctx context.Context, m *Mediator, req Request[R]) (R, error) {
	out, err := m.dispatch(ctx, req)
	v, castErr := cast[R](out)
	if err != nil {
		return v, err
	}
	return v, castErr
}

// SendAny dispatches a request held in an untyped value.
// Values that do not embed Returns fail with ErrNotARequest.
func (m *Mediator) SendAny(ctx context.Context, req any) (any, error) {
	if _, ok := req.(shaped); !ok {
		m.logger.Error("dispatch of a non-request value", "type", fmt.Sprintf("%T", req))
		return nil, fmt.Errorf("%w: %T", ErrNotARequest, req)
	}
	return m.dispatch(ctx, req)
}

func (m *Mediator) dispatch(ctx context.Context, req any) (any, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: <nil>", ErrNotARequest)
	}
	reqType := reflect.TypeOf(req)
	call, err := m.cache.pipeline(reqType, func() (invoker, error) {
		return m.compose(reqType)
	})
	if err != nil {
		m.logger.Error("request resolution failed", "request", reqType.String(), "err", err)
		return nil, err
	}
	return call(ctx, req)
}

// compose nests the behaviors applying to reqType around its handler,
// the first registered behavior outermost.
func (m *Mediator) compose(reqType reflect.Type) (invoker, error) {
	h, ok := m.handlers[reqType]
	if !ok {
		return nil, fmt.Errorf("%w: %v (response %v)", ErrHandlerNotFound, reqType, responseTypeOf(reqType))
	}

	call := h.invoke
	chain := m.behaviorsFor(h)
	for i := len(chain) - 1; i >= 0; i-- {
		b, inner := chain[i], call
		call = func(ctx context.Context, req any) (any, error) {
			return b.wrap(ctx, req, func(ctx context.Context) (any, error) {
				return inner(ctx, req)
			})
		}
	}
	return call, nil
}

func (m *Mediator) behaviorsFor(h handlerEntry) []behaviorEntry {
	var out []behaviorEntry
	for _, b := range m.behaviors {
		if b.appliesTo(h) {
			out = append(out, b)
		}
	}
	return out
}

// Publish broadcasts n to every subscriber of N.
func Publish[N any](ctx context.Context, m *Mediator, n N) error {
	return m.PublishAny(ctx, n)
}

// PublishAny broadcasts n to every subscriber of its dynamic type.
//
// Subscribers run concurrently and are all awaited. A failing or panicking
// subscriber does not stop the others; every failure is reported, in
// subscription order, through errors.Join.
func (m *Mediator) PublishAny(ctx context.Context, n any) error {
	if n == nil {
		return ErrNilNotification
	}
	nType := reflect.TypeOf(n)
	subs := m.cache.subscribersOf(nType, func() []subscriberEntry {
		return m.subscribers[nType]
	})
	if len(subs) == 0 {
		return nil
	}

	errs := make([]error, len(subs))
	var wg sync.WaitGroup
	for i, s := range subs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = &PanicError{Source: s.name, Value: r, Stack: debug.Stack()}
				}
			}()
			if err := s.invoke(ctx, n); err != nil {
				errs[i] = fmt.Errorf("%s: %w", s.name, err)
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

func responseTypeOf(reqType reflect.Type) reflect.Type {
	v := reflect.Zero(reqType)
	if reqType.Kind() == reflect.Pointer {
		v = reflect.New(reqType.Elem())
	}
	if s, ok := v.Interface().(shaped); ok {
		return s.responseType()
	}
	return nil
}
