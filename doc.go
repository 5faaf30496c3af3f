/*
Package courier is an in-process request mediator with pipeline behaviors and notification fan-out, shipped with a driving-school application that exercises it end to end.

# Concept

Senders describe what they want as request values and hand them to a Mediator. The Mediator finds the one handler registered for the request's type, wraps it in the configured behaviors (recovery, logging, metrics, locking, validation) and returns the handler's response. Notifications go the other way: every subscriber of a notification type receives it concurrently, and their failures are aggregated.

Handlers report domain failures as values rather than errors: a result.Result carries either a value or an ordered list of coded errors. Inside a handler, the chain package threads a typed bag of intermediate values through a flat sequence of steps that stops at the first failure.

# Packages

  - pkg/result: Result, Error, Unit and Future.
  - pkg/chain: the chained-result Context and its combinators.
  - pkg/mediator: registry, dispatch, fan-out and the resolution cache.
  - pkg/behavior: stock pipeline behaviors.
  - pkg/adapters: memory, Redis and Loam repositories, distributed locks and the HTTP API.

# Usage

	app, err := courier.New(courier.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	res, err := mediator.Send[result.Result[domain.User]](ctx, app.Mediator(),
		school.RegisterUser{Name: "Ana", Email: "ana@example.com"})

Or serve the HTTP API:

	log.Fatal(app.Serve(ctx, ":8080"))
*/
package courier
