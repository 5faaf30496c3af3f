package behavior

import (
	"context"

	"github.com/aretw0/courier/pkg/mediator"
	"github.com/aretw0/courier/pkg/result"
)

// Validator checks a request and returns the rules it breaks.
type Validator[Q any] interface {
	Validate(ctx context.Context, req Q) []result.Error
}

// ValidatorFunc adapts a function into a Validator.
type ValidatorFunc[Q any] func(ctx context.Context, req Q) []result.Error

// Validate calls f.
func (f ValidatorFunc[Q]) Validate(ctx context.Context, req Q) []result.Error {
	return f(ctx, req)
}

// ValidationBehavior runs validators before the handler of a
// (Q, result.Result[T]) request and short-circuits with their errors.
type ValidationBehavior[Q mediator.Request[result.Result[T]], T any] struct {
	validators []Validator[Q]
}

// Validation creates a ValidationBehavior. Every validator runs; their errors
// are concatenated in order.
func Validation[Q mediator.Request[result.Result[T]], T any](validators ...Validator[Q]) *ValidationBehavior[Q, T] {
	return &ValidationBehavior[Q, T]{validators: validators}
}

// Handle validates req and calls next only when no rule is broken.
func (b *ValidationBehavior[Q, T]) Handle(ctx context.Context, req Q, next mediator.Next[result.Result[T]]) (result.Result[T], error) {
	var errs []result.Error
	for _, v := range b.validators {
		errs = append(errs, v.Validate(ctx, req)...)
	}
	if len(errs) > 0 {
		return result.Failure[T](errs...), nil
	}
	return next(ctx)
}
