package result

import (
	"context"
	"errors"
	"fmt"
)

// ErrAwaitCanceled is returned by Await when the caller stops waiting before
// the computation finishes.
var ErrAwaitCanceled = errors.New("await canceled")

// Future is a Result that may still be in flight.
type Future[T any] struct {
	done      chan struct{}
	res       Result[T]
	recovered any
}

// Go runs fn on its own goroutine and returns a Future for its result.
// A panic in fn is captured and re-raised by Await.
func Go[T any](fn func() Result[T]) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.recovered = r
			}
		}()
		f.res = fn()
	}()
	return f
}

// Resolved returns an already-completed Future.
func Resolved[T any](r Result[T]) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), res: r}
	close(f.done)
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx is done.
// Cancellation only stops the wait; the computation keeps running.
func (f *Future[T]) Await(ctx context.Context) (Result[T], error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		// Prefer a result that is already there.
		select {
		case <-f.done:
		default:
			return Result[T]{}, fmt.Errorf("%w: %w", ErrAwaitCanceled, ctx.Err())
		}
	}
	if f.recovered != nil {
		panic(f.recovered)
	}
	return f.res, nil
}
