package behavior

import (
	"context"
	"runtime/debug"

	"github.com/aretw0/courier/pkg/mediator"
)

// RecoveryBehavior turns a panic further down the pipeline into a
// *mediator.PanicError returned to the caller.
type RecoveryBehavior struct{}

var _ mediator.PipelineBehavior = RecoveryBehavior{}

// Recovery creates a RecoveryBehavior.
func Recovery() RecoveryBehavior {
	return RecoveryBehavior{}
}

// Handle calls next and recovers from its panics.
func (RecoveryBehavior) Handle(ctx context.Context, req any, next mediator.NextAny) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &mediator.PanicError{
				Source: requestName(req),
				Value:  r,
				Stack:  debug.Stack(),
			}
		}
	}()
	return next(ctx)
}
