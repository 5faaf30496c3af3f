package chain

import (
	"context"

	"github.com/aretw0/courier/pkg/result"
)

// CodeCanceled is the error code of a chain whose pending step stopped being
// awaited because the caller's context ended.
const CodeCanceled = "Chain.Canceled"

// Start creates a Context seeded with values, each stored under its own type.
// Two seeds of the same type panic with a *MisuseError.
func Start(values ...any) result.Result[*Context] {
	c := newContext()
	for _, v := range values {
		c.Add(v)
	}
	return result.Success(c)
}

// Then runs step on the context held by r and stores the value it produces.
// A failed r is returned unchanged and step is not invoked; a failed step
// ends the chain with the step's errors.
func Then[U any](r result.Result[*Context], step func(*Context) result.Result[U]) result.Result[*Context] {
	if r.IsFailure() {
		return r
	}
	c := r.Value()
	return absorb(c, step(c))
}

// ThenAsync is Then for a step that completes asynchronously.
func ThenAsync[U any](ctx context.Context, r result.Result[*Context], step func(context.Context, *Context) *result.Future[U]) *result.Future[*Context] {
	if r.IsFailure() {
		return result.Resolved(r)
	}
	c := r.Value()
	return result.Go(func() result.Result[*Context] {
		ur, err := step(ctx, c).Await(ctx)
		if err != nil {
			return canceled[*Context](err)
		}
		return absorb(c, ur)
	})
}

// AwaitThen is Then for a context that is still being built.
func AwaitThen[U any](ctx context.Context, f *result.Future[*Context], step func(*Context) result.Result[U]) *result.Future[*Context] {
	return result.Go(func() result.Result[*Context] {
		r, err := f.Await(ctx)
		if err != nil {
			return canceled[*Context](err)
		}
		return Then(r, step)
	})
}

// AwaitThenAsync is ThenAsync for a context that is still being built.
func AwaitThenAsync[U any](ctx context.Context, f *result.Future[*Context], step func(context.Context, *Context) *result.Future[U]) *result.Future[*Context] {
	return result.Go(func() result.Result[*Context] {
		r, err := f.Await(ctx)
		if err != nil {
			return canceled[*Context](err)
		}
		next, err := ThenAsync(ctx, r, step).Await(ctx)
		if err != nil {
			return canceled[*Context](err)
		}
		return next
	})
}

// Link is one stage of a Run pipeline.
type Link func(result.Result[*Context]) result.Result[*Context]

// Step adapts a typed step into a Link.
func Step[U any](fn func(*Context) result.Result[U]) Link {
	return func(r result.Result[*Context]) result.Result[*Context] {
		return Then(r, fn)
	}
}

// Run applies links in order, stopping at the first failure.
func Run(r result.Result[*Context], links ...Link) result.Result[*Context] {
	for _, link := range links {
		if r.IsFailure() {
			return r
		}
		r = link(r)
	}
	return r
}

// Map ends the chain by projecting the context into a final value.
func Map[V any](r result.Result[*Context], final func(*Context) result.Result[V]) result.Result[V] {
	if r.IsFailure() {
		return result.Propagate[V](r)
	}
	return final(r.Value())
}

// MapAsync is Map for a context that is still being built.
func MapAsync[V any](ctx context.Context, f *result.Future[*Context], final func(*Context) result.Result[V]) *result.Future[V] {
	return result.Go(func() result.Result[V] {
		r, err := f.Await(ctx)
		if err != nil {
			return canceled[V](err)
		}
		return Map(r, final)
	})
}

// Finalize ends the chain with a side effect and reports Success(true) once
// action has run.
func Finalize(r result.Result[*Context], action func(*Context)) result.Result[bool] {
	if r.IsFailure() {
		return result.Propagate[bool](r)
	}
	action(r.Value())
	return result.Success(true)
}

func absorb[U any](c *Context, ur result.Result[U]) result.Result[*Context] {
	if ur.IsFailure() {
		return result.Propagate[*Context](ur)
	}
	v := ur.Value()
	// Unit steps are checks, not producers.
	if _, ok := any(v).(result.Unit); !ok {
		c.Add(v)
	}
	return result.Success(c)
}

func canceled[T any](err error) result.Result[T] {
	return result.Failure[T](result.NewError(CodeCanceled, err.Error()))
}
