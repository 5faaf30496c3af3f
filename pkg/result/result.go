package result

import (
	"errors"
	"fmt"
)

// Error is a structured domain failure: a stable machine-facing code and a
// human-readable message. The core never inspects either field.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewError creates an Error.
func NewError(code, message string) Error {
	return Error{Code: code, Message: message}
}

func (e Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unit is the "no value" type. Requests without a meaningful response produce it.
type Unit struct{}

// Result is either a success carrying a value of type T or a failure carrying
// a non-empty, ordered list of Errors. The zero value is a success holding the
// zero T.
type Result[T any] struct {
	value T
	errs  []Error
}

// Success wraps v as a successful result.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure builds a failed result. It panics if errs is empty: a failure
// without errors is indistinguishable from a success.
func Failure[T any](errs ...Error) Result[T] {
	if len(errs) == 0 {
		panic("result: Failure requires at least one error")
	}
	cp := make([]Error, len(errs))
	copy(cp, errs)
	return Result[T]{errs: cp}
}

// Propagate re-types the failure r as a Result[U], keeping its errors as-is.
// It panics when r is a success.
func Propagate[U, T any](r Result[T]) Result[U] {
	if r.IsSuccess() {
		panic("result: Propagate called on a success")
	}
	return Result[U]{errs: r.errs}
}

// IsSuccess reports whether r carries a value.
func (r Result[T]) IsSuccess() bool { return len(r.errs) == 0 }

// IsFailure reports whether r carries errors.
func (r Result[T]) IsFailure() bool { return len(r.errs) > 0 }

// Value returns the success payload. It panics on a failure.
func (r Result[T]) Value() T {
	if r.IsFailure() {
		panic(fmt.Sprintf("result: Value called on a failure: %v", r.Err()))
	}
	return r.value
}

// Get returns the payload and true on success, or the zero T and false.
func (r Result[T]) Get() (T, bool) {
	if r.IsFailure() {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Errors returns a copy of the failure's errors, or nil on success.
func (r Result[T]) Errors() []Error {
	if len(r.errs) == 0 {
		return nil
	}
	cp := make([]Error, len(r.errs))
	copy(cp, r.errs)
	return cp
}

// FirstError returns the first error and true, or false on success.
func (r Result[T]) FirstError() (Error, bool) {
	if len(r.errs) == 0 {
		return Error{}, false
	}
	return r.errs[0], true
}

// Err joins the failure's errors into a single error, or returns nil on success.
func (r Result[T]) Err() error {
	if len(r.errs) == 0 {
		return nil
	}
	errs := make([]error, len(r.errs))
	for i, e := range r.errs {
		errs[i] = e
	}
	return errors.Join(errs...)
}

func (r Result[T]) String() string {
	if r.IsFailure() {
		return fmt.Sprintf("Failure(%v)", r.errs)
	}
	return fmt.Sprintf("Success(%v)", r.value)
}

// Fold projects r into a single value using onSuccess or onFailure.
func Fold[T, V any](r Result[T], onSuccess func(T) V, onFailure func([]Error) V) V {
	if r.IsFailure() {
		return onFailure(r.Errors())
	}
	return onSuccess(r.value)
}
