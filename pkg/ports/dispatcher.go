package ports

import "context"

// Dispatcher is what transport adapters need from the mediator.
// *mediator.Mediator implements it.
type Dispatcher interface {
	SendAny(ctx context.Context, req any) (any, error)
	PublishAny(ctx context.Context, n any) error
}
