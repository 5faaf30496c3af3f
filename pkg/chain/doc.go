/*
Package chain threads intermediate values through multi-step handlers.

A chain starts from a Context seeded with the request and grows one value per
step. Each step reads what it needs by type and returns a result.Result; the
first failure ends the chain and is what the caller sees.

	res := chain.Map(
		chain.Run(chain.Start(req),
			chain.Step(fetchSchool),
			chain.Step(fetchOwner),
			chain.Step(checkOwnership),
			chain.Step(rename),
		),
		toDTO,
	)

# Duplicate types

A Context holds at most one value per concrete type. Start, Then and Add panic
with a *MisuseError on a duplicate; TryAdd reports it with false instead.
Steps returning result.Unit store nothing, so any number of checks can run in
one chain.

# Asynchronous steps

ThenAsync, AwaitThen, AwaitThenAsync and MapAsync cover steps and contexts
that are still in flight, using result.Future. The Context is handed from one
goroutine to the next and is never touched by two at once.

# Cancellation

When ctx ends while a step is still pending, the async combinators stop
waiting and the chain ends as a failure with code CodeCanceled, wrapping
ctx.Err() in the message. It is the only failure a chain produces itself rather
than receiving from a step, and it is a result.Result, not an error. Callers
tell it apart by its code. The pending work is not stopped, only abandoned.
*/
package chain
