package mediator

import (
	"context"
	"reflect"

	"github.com/aretw0/courier/pkg/result"
)

// Request is a value asking for a response of type R.
// Types satisfy it by embedding Returns[R]:
//
//	type GetSchool struct {
//		mediator.Returns[result.Result[domain.School]]
//		ID string
//	}
//
// A request's identity is its dynamic type, so register and send the same
// form (value or pointer).
type Request[R any] interface {
	shaped
	response() R
}

type shaped interface {
	responseType() reflect.Type
}

// Returns marks the embedding type as a request producing R.
type Returns[R any] struct{}

func (Returns[R]) response() (r R) { return r }

func (Returns[R]) responseType() reflect.Type { return reflect.TypeFor[R]() }

// Void marks a request without a meaningful response.
type Void = Returns[result.Unit]

// Handler fulfills requests of type Q.
type Handler[Q Request[R], R any] interface {
	Handle(ctx context.Context, req Q) (R, error)
}

// HandlerFunc adapts a function into a Handler.
type HandlerFunc[Q Request[R], R any] func(ctx context.Context, req Q) (R, error)

// Handle calls f.
func (f HandlerFunc[Q, R]) Handle(ctx context.Context, req Q) (R, error) {
	return f(ctx, req)
}

// NotificationHandler reacts to notifications of type N.
type NotificationHandler[N any] interface {
	Handle(ctx context.Context, n N) error
}

// NotificationFunc adapts a function into a NotificationHandler.
type NotificationFunc[N any] func(ctx context.Context, n N) error

// Handle calls f.
func (f NotificationFunc[N]) Handle(ctx context.Context, n N) error {
	return f(ctx, n)
}

// Next continues the pipeline towards the handler. Behaviors may call it
// zero, one or several times.
type Next[R any] func(ctx context.Context) (R, error)

// Behavior wraps handler invocation for one (Q, R) shape.
type Behavior[Q Request[R], R any] interface {
	Handle(ctx context.Context, req Q, next Next[R]) (R, error)
}

// BehaviorFunc adapts a function into a Behavior.
type BehaviorFunc[Q Request[R], R any] func(ctx context.Context, req Q, next Next[R]) (R, error)

// Handle calls f.
func (f BehaviorFunc[Q, R]) Handle(ctx context.Context, req Q, next Next[R]) (R, error) {
	return f(ctx, req, next)
}

// NextAny is the untyped Next handed to pipeline-wide behaviors.
type NextAny func(ctx context.Context) (any, error)

// PipelineBehavior wraps every request regardless of its shape.
type PipelineBehavior interface {
	Handle(ctx context.Context, req any, next NextAny) (any, error)
}

// PipelineFunc adapts a function into a PipelineBehavior.
type PipelineFunc func(ctx context.Context, req any, next NextAny) (any, error)

// Handle calls f.
func (f PipelineFunc) Handle(ctx context.Context, req any, next NextAny) (any, error) {
	return f(ctx, req, next)
}

// ResponseType returns the response type declared by req, or nil when req
// is not a request.
func ResponseType(req any) reflect.Type {
	if s, ok := req.(shaped); ok {
		return s.responseType()
	}
	return nil
}
