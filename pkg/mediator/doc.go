/*
Package mediator decouples what a request asks for from who fulfills it.

# Requests and handlers

A request is any type embedding Returns[R], where R is the response type.
Exactly one Handler is registered per request type:

	type GetSchool struct {
		mediator.Returns[result.Result[domain.School]]
		ID string
	}

	reg := mediator.NewRegistry()
	err := mediator.Register[GetSchool, result.Result[domain.School]](reg, getSchoolHandler)

A second registration for the same request type fails with ErrDuplicateHandler.

# Behaviors

Behaviors wrap handler invocation. Behavior[Q, R] applies to one shape;
PipelineBehavior applies to every request. Both kinds share one ordering:
the first registered runs outermost, so B1 before B2 yields

	B1 pre -> B2 pre -> handler -> B2 post -> B1 post

# Dispatch

New seals the registry. Send resolves the handler and its behaviors once
per request type, caching the composed chain in a Cache, and then invokes it
with the caller's context. SendAny does the same for untyped values.
Publish fans a notification out to all subscribers concurrently.

Configuration failures (no handler, non-request values) come back as errors.
Domain failures belong inside R, typically a result.Result, and are relayed
untouched.
*/
package mediator
