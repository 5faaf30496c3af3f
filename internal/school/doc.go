// Package school implements the driving-school application on top of the
// mediator: user registration, school lifecycle commands and queries, their
// validators and the notification subscribers reacting to them.
//
// Handlers are written as flat chains: every step reads what earlier steps
// produced from a chain.Context and either contributes a new value or stops
// the chain with domain failures.
package school
