/*
Package result provides the success-or-errors union returned by handlers,
chain steps and the mediator.

A Result is either Success(value) or Failure(errors...). Failures always carry
at least one Error, and a success never carries any. Domain failures travel as
data inside a Result; programming and configuration errors are plain Go errors.

Future is the in-flight counterpart used by asynchronous chain steps.
*/
package result
