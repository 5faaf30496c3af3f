package mediator

import (
	"errors"
	"fmt"
)

var (
	// ErrHandlerNotFound is returned when no handler is registered for a request type.
	ErrHandlerNotFound = errors.New("no handler registered for request")
	// ErrNotARequest is returned by SendAny for values that do not embed Returns.
	ErrNotARequest = errors.New("value is not a request")
	// ErrDuplicateHandler is returned when a second handler is registered for a request type.
	ErrDuplicateHandler = errors.New("handler already registered for request")
	// ErrSealed is returned when registering into a registry already used by a Mediator.
	ErrSealed = errors.New("registry is sealed")
	// ErrInterfaceKey is returned when a request or notification type parameter is an interface.
	ErrInterfaceKey = errors.New("request and notification types must be concrete")
	// ErrTypeMismatch is returned when a pipeline produces or receives a value of the wrong type.
	ErrTypeMismatch = errors.New("type mismatch in pipeline")
	// ErrNilNotification is returned by PublishAny for a nil notification.
	ErrNilNotification = errors.New("nil notification")
)

// PanicError is a panic recovered from a handler, behavior or subscriber.
type PanicError struct {
	Source string
	Value  any
	Stack  []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Source, e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
